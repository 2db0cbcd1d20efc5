package bramble

import "math"

// Vector describes how a value type splits into float64 components so that
// springs and tweens can animate it one component at a time.
type Vector[T any] struct {
	Dims  int
	Split func(v T, out []float64)
	Join  func(c []float64) T
}

func (vec Vector[T]) split(v T) []float64 {
	c := make([]float64, vec.Dims)
	vec.Split(v, c)
	return c
}

// Float64 animates a plain float64.
var Float64 = Vector[float64]{
	Dims:  1,
	Split: func(v float64, out []float64) { out[0] = v },
	Join:  func(c []float64) float64 { return c[0] },
}

// Int animates an int. The animated position stays fractional; only the
// published value is rounded.
var Int = Vector[int]{
	Dims:  1,
	Split: func(v int, out []float64) { out[0] = float64(v) },
	Join:  func(c []float64) int { return int(math.Round(c[0])) },
}

// Vec2s animates a Vec2.
var Vec2s = Vector[Vec2]{
	Dims: 2,
	Split: func(v Vec2, out []float64) {
		out[0], out[1] = v.X, v.Y
	},
	Join: func(c []float64) Vec2 { return Vec2{c[0], c[1]} },
}

// Colors animates a Color.
var Colors = Vector[Color]{
	Dims: 4,
	Split: func(v Color, out []float64) {
		out[0], out[1], out[2], out[3] = v.R, v.G, v.B, v.A
	},
	Join: func(c []float64) Color { return Color{c[0], c[1], c[2], c[3]} },
}

// wrapAngle maps a into (-π, π].
func wrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

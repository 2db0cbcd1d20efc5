package watch

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Decode unmarshals YAML data into v. When v points to a struct, its
// validate tags are checked after decoding.
func Decode(data []byte, v any) error {
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if reflect.Indirect(reflect.ValueOf(v)).Kind() != reflect.Struct {
		return nil
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation: %w", err)
	}
	return nil
}

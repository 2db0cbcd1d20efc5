package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/phanxgames/bramble"
	"github.com/phanxgames/bramble/metrics"
)

var headlessCmd = &cobra.Command{
	Use:   "headless",
	Short: "Run the demo without a window",
	Long: `Runs the demo scene without a window, clicking its button periodically.
With --frames the scheduler is stepped that many times at a fixed interval and
the final scene is printed. With --frames 0 it runs in real time until interrupted.`,
	Run: func(cmd *cobra.Command, args []string) {
		frames, _ := cmd.Flags().GetInt("frames")
		interval, _ := cmd.Flags().GetDuration("interval")
		clickEvery, _ := cmd.Flags().GetInt("click-every")
		metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

		if interval <= 0 {
			fmt.Println("Error: --interval must be positive")
			os.Exit(1)
		}

		sched := bramble.NewScheduler()
		a, err := mountDemo(cmd, sched)
		if err != nil {
			fmt.Printf("Error mounting demo: %v\n", err)
			os.Exit(1)
		}
		defer a.close()

		if metricsAddr != "" {
			srv := serveMetrics(metricsAddr)
			defer srv.Close()
		}

		if clickEvery > 0 {
			n := 0
			sched.OnFrame(func(bramble.Frame) {
				n++
				if n%clickEvery == 0 {
					if err := a.demo.Click(); err != nil {
						fmt.Fprintf(os.Stderr, "click: %v\n", err)
					}
				}
			})
		}

		if frames > 0 {
			for i := 0; i < frames; i++ {
				if err := sched.Advance(interval); err != nil {
					fmt.Fprintf(os.Stderr, "frame %d: %v\n", i, err)
				}
			}
			fmt.Print(a.scene.Dump())
			return
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := sched.Run(ctx, interval); err != nil && !errors.Is(err, context.Canceled) {
			fmt.Printf("Error: %v\n", err)
		}
		fmt.Print(a.scene.Dump())
	},
}

func serveMetrics(addr string) *http.Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics.NewCollector())

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		fmt.Fprintf(os.Stderr, "Serving metrics on %s/metrics\n", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "metrics server: %v\n", err)
		}
	}()
	return srv
}

func init() {
	headlessCmd.Flags().Int("frames", 600, "Number of frames to step; 0 runs until interrupted")
	headlessCmd.Flags().Duration("interval", 16*time.Millisecond, "Frame interval")
	headlessCmd.Flags().Int("click-every", 30, "Click the button every N frames; 0 disables")
	headlessCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address")
	rootCmd.AddCommand(headlessCmd)
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phanxgames/bramble"
	"github.com/phanxgames/bramble/game"
	"github.com/phanxgames/bramble/watch"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the demo in a window",
	Long:  `Opens an Ebitengine window running the demo scene. With --config the window settings are read from a YAML file and reloaded when it changes.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")

		cfg := game.DefaultRunConfig()
		if configPath != "" {
			var err error
			if cfg, err = game.LoadRunConfig(configPath); err != nil {
				fmt.Printf("Error loading config: %v\n", err)
				os.Exit(1)
			}
		}
		if cfg.Debug {
			_ = cmd.Flags().Set("debug", "true")
		}

		sched := bramble.NewScheduler()
		a, err := mountDemo(cmd, sched)
		if err != nil {
			fmt.Printf("Error mounting demo: %v\n", err)
			os.Exit(1)
		}
		defer a.close()

		g := game.New(cfg, a.scene, sched)
		if configPath != "" {
			live := watch.YAML(watch.File(configPath, sched), cfg)
			defer live.Subscribe(func(d watch.Decoded[game.RunConfig]) {
				if d.Err != nil {
					fmt.Fprintf(os.Stderr, "config reload: %v\n", d.Err)
					return
				}
				g.Apply(d.Value)
			})()
		}

		if err := game.Run(g); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	runCmd.Flags().String("config", "", "YAML run config file")
	rootCmd.AddCommand(runCmd)
}

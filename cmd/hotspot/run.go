package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/phanxgames/hotspot"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <layout>",
	Short: "Open a window showing the mapper",
	Long: `Builds the mapper described by the layout file and opens a window.

Image and SVG sources are resolved relative to --assets, which defaults to
the directory of the layout file. With --script the JSON test script is
replayed and the process exits once it finished, reporting mismatches.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().String("assets", "", "asset directory (default: layout directory)")
	runCmd.Flags().Int("width", 1280, "window width")
	runCmd.Flags().Int("height", 720, "window height")
	runCmd.Flags().Bool("resizable", true, "allow resizing the window")
	runCmd.Flags().Bool("fps", false, "show the frame rate")
	runCmd.Flags().String("script", "", "JSON test script to replay")
	runCmd.Flags().StringSlice("preload", nil, "extra image glob patterns to decode (supports **)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	layout, err := hotspot.LoadLayout(args[0])
	if err != nil {
		return err
	}
	if err := layout.Validate(); err != nil {
		return fmt.Errorf("invalid layout %s: %w", args[0], err)
	}
	stage, err := layout.BuildTree()
	if err != nil {
		return err
	}

	assets, _ := cmd.Flags().GetString("assets")
	if assets == "" {
		assets = filepath.Dir(args[0])
	}
	fsys := os.DirFS(assets)

	scene, err := hotspot.NewScene(stage, hotspot.SceneOptions{
		Config:     cfg,
		Logger:     log,
		PathLoader: hotspot.FSPathLoader{FS: fsys},
	})
	if err != nil {
		return err
	}

	var runner *hotspot.TestRunner
	if script, _ := cmd.Flags().GetString("script"); script != "" {
		data, err := os.ReadFile(script)
		if err != nil {
			return fmt.Errorf("reading script: %w", err)
		}
		if runner, err = hotspot.LoadTestScript(data); err != nil {
			return err
		}
		scene.SetTestRunner(runner)
	}

	preload, _ := cmd.Flags().GetStringSlice("preload")
	if _, err := hotspot.LoadAssets(context.Background(), scene, hotspot.AssetOptions{
		FS:      fsys,
		Preload: preload,
	}); err != nil {
		return err
	}

	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")
	resizable, _ := cmd.Flags().GetBool("resizable")
	fps, _ := cmd.Flags().GetBool("fps")
	title := layout.Title
	if title == "" {
		title = "hotspot"
	}
	if err := hotspot.Run(scene, hotspot.RunConfig{
		Title:              title,
		Width:              width,
		Height:             height,
		Resizable:          resizable,
		ShowFPS:            fps,
		ClearColor:         hotspot.Color{R: 0.05, G: 0.05, B: 0.07, A: 1},
		ExitWhenScriptDone: runner != nil,
	}); err != nil {
		return err
	}

	if runner != nil {
		failures := runner.Failures()
		for _, f := range failures {
			fmt.Fprintf(os.Stderr, "FAIL %v\n", f)
		}
		if len(failures) > 0 {
			return fmt.Errorf("%d script expectations failed", len(failures))
		}
		fmt.Println("script passed")
	}
	return nil
}

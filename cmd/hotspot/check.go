package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/phanxgames/hotspot"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <layout>",
	Short: "Validate a layout and decode every asset it references",
	Long: `Validates hotspot ids, percent geometry and panel kinds, then decodes
every image and SVG path referenced by the layout. Exits non-zero when
anything is wrong. With --fix, hotspots without an id get a generated one
and the layout is written back.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("assets", "", "asset directory (default: layout directory)")
	checkCmd.Flags().Bool("fix", false, "assign ids to hotspots without one and save the layout")
	checkCmd.Flags().Bool("no-progress", false, "disable the progress bar")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := args[0]
	layout, err := hotspot.LoadLayout(path)
	if err != nil {
		return err
	}

	if fix, _ := cmd.Flags().GetBool("fix"); fix {
		if n := layout.AssignIDs(); n > 0 {
			if strings.EqualFold(filepath.Ext(path), ".json") {
				return fmt.Errorf("--fix only rewrites YAML layouts")
			}
			if err := layout.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "assigned %d hotspot ids\n", n)
		}
	}

	var problems []error
	if err := layout.Validate(); err != nil {
		problems = append(problems, err)
	}

	assets, _ := cmd.Flags().GetString("assets")
	if assets == "" {
		assets = filepath.Dir(path)
	}
	fsys := os.DirFS(assets)

	var images, paths []string
	for _, src := range layout.Sources() {
		if strings.EqualFold(filepath.Ext(src), ".svg") {
			paths = append(paths, src)
		} else {
			images = append(images, src)
		}
	}

	noProgress, _ := cmd.Flags().GetBool("no-progress")
	var bar *progressbar.ProgressBar
	if !noProgress && os.Getenv("CI") == "" {
		bar = progressbar.NewOptions(len(images)+len(paths),
			progressbar.OptionSetDescription("Checking assets"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}
	var mu sync.Mutex
	step := func(src string) {
		if bar == nil {
			return
		}
		mu.Lock()
		bar.Describe(src)
		_ = bar.Add(1)
		mu.Unlock()
	}

	ctx := context.Background()
	if err := hotspot.DecodeSources(ctx, fsys, images, cfg.AssetConcurrency, func(src string, _ image.Image, _ error) {
		step(src)
	}); err != nil {
		problems = append(problems, err)
	}

	loader := hotspot.FSPathLoader{FS: fsys}
	for _, src := range paths {
		g, err := loader.LoadPath(ctx, src)
		switch {
		case err != nil:
			problems = append(problems, fmt.Errorf("path %s: %w", src, err))
		case g.Length == 0:
			problems = append(problems, fmt.Errorf("path %s: zero length", src))
		}
		step(src)
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if err := errors.Join(problems...); err != nil {
		fmt.Fprintf(os.Stderr, "%s:\n%v\n", path, err)
		return fmt.Errorf("check failed")
	}
	fmt.Printf("%s: ok (%d hotspots, %d images, %d paths)\n", path, countHotspots(layout), len(images), len(paths))
	return nil
}

func countHotspots(l *hotspot.Layout) int {
	n := 0
	l.Walk(func(*hotspot.HotspotLayout, int) { n++ })
	return n
}

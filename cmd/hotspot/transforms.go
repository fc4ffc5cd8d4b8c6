package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/phanxgames/hotspot"
	"github.com/spf13/cobra"
)

var transformsCmd = &cobra.Command{
	Use:   "transforms <layout>",
	Short: "Print the zoom transform of every root-level hotspot",
	Long: `Computes the container transform each root-level hotspot zooms to for
the given viewport size, using the current config (padding, fill, scale
mode). No window is opened.`,
	Args: cobra.ExactArgs(1),
	RunE: runTransforms,
}

func init() {
	transformsCmd.Flags().Float64("width", 1280, "viewport width")
	transformsCmd.Flags().Float64("height", 720, "viewport height")
	transformsCmd.Flags().Bool("json", false, "print JSON instead of a table")
	rootCmd.AddCommand(transformsCmd)
}

type transformRow struct {
	Hotspot    string  `json:"hotspot"`
	Scale      float64 `json:"scale"`
	TranslateX float64 `json:"translateX"`
	TranslateY float64 `json:"translateY"`
}

func runTransforms(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.PrecomputeTransforms = true

	layout, err := hotspot.LoadLayout(args[0])
	if err != nil {
		return err
	}
	stage, err := layout.BuildTree()
	if err != nil {
		return err
	}
	scene, err := hotspot.NewScene(stage, hotspot.SceneOptions{Config: cfg, Logger: newLogger(cfg)})
	if err != nil {
		return err
	}
	defer scene.Dispose()

	w, _ := cmd.Flags().GetFloat64("width")
	h, _ := cmd.Flags().GetFloat64("height")
	scene.SetViewport(hotspot.Rect{Width: w, Height: h})

	var rows []transformRow
	for _, mk := range scene.Registry().RootMarkers() {
		t, ok := scene.Mapper().Precomputed(mk.HotspotID)
		if !ok {
			continue
		}
		rows = append(rows, transformRow{mk.HotspotID, t.Scale, t.TranslateX, t.TranslateY})
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "HOTSPOT\tSCALE\tTX\tTY")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%.4f\t%.1f\t%.1f\n", r.Hotspot, r.Scale, r.TranslateX, r.TranslateY)
	}
	return tw.Flush()
}

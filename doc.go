// Package hotspot is an interactive image mapper for [Ebitengine].
//
// A mapper shows a background image with irregularly shaped hotspots
// (markers). Clicking a marker zooms the view onto it, possibly into a
// nested container with its own markers, and reveals the auxiliary panels
// tagged with the marker's hotspot id: side text, a person image, an
// illustration and an SVG path with checkpoints. Floating badges label
// markers, and scroll, swipe and keyboard input walk the markers in order.
//
// # Quick start
//
// Describe the mapper in a [Layout], build the element tree and hand it to
// [Run]:
//
//	layout, err := hotspot.LoadLayout("mapper.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	stage, err := layout.BuildTree()
//	if err != nil {
//		log.Fatal(err)
//	}
//	scene, err := hotspot.NewScene(stage, hotspot.SceneOptions{
//		PathLoader: hotspot.FSPathLoader{FS: os.DirFS("assets")},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	if _, err := hotspot.LoadAssets(ctx, scene, hotspot.AssetOptions{FS: os.DirFS("assets")}); err != nil {
//		log.Fatal(err)
//	}
//	hotspot.Run(scene, hotspot.RunConfig{
//		Title: "Mapper", Width: 1280, Height: 720,
//	})
//
// For full control, implement [ebiten.Game] yourself, feed the viewport
// from Layout and call [Scene.Update] and [Scene.Draw] directly. Device
// input is only read inside [Run]; embedders forward input through
// [Scene.InjectClick], [Scene.InjectWheel] and [Scene.InjectKey].
//
// # Zoom state machine
//
// [Mapper] owns the zoom history. [Mapper.ZoomToMarker] pushes a level,
// [Mapper.SwitchToMarker] retargets the top level to a sibling marker and
// [Mapper.ZoomOut] pops one. Requests that arrive while a transition runs
// are ignored. Panels of the previous focus finish hiding before the next
// set starts showing, and a marker without panels simply shows none.
//
// Zoom transforms come from [ComputeZoomTransform], a pure function of the
// marker box, the container box and the padded viewport. While the root is
// at identity the transforms of root-level markers are precomputed.
//
// # Configuration
//
// [LoadConfig] reads an optional YAML file and overlays HOTSPOT_ environment
// variables (HOTSPOT_NAVIGATION__MODE=click sets navigation.mode). Logging
// goes through [zerolog]; nothing is reported to the end user.
//
// [Ebitengine]: https://ebitengine.org
// [zerolog]: https://github.com/rs/zerolog
package hotspot

package hotspot

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/sync/errgroup"
)

// AssetOptions configures LoadAssets.
type AssetOptions struct {
	// FS resolves every image source of the scene.
	FS fs.FS
	// Preload lists doublestar patterns of extra images to decode, such as
	// zoom images that only appear after a switch.
	Preload []string
	// Progress, when set, is called from worker goroutines after each
	// source finished, successfully or not.
	Progress func(done, total int, src string)
}

// AssetLoad tracks a running LoadAssets call.
type AssetLoad struct {
	total  int
	done   atomic.Int32
	finish chan struct{}
	err    error
}

// Total returns the number of sources being decoded.
func (l *AssetLoad) Total() int { return l.total }

// Loaded returns the number of sources that finished so far.
func (l *AssetLoad) Loaded() int { return int(l.done.Load()) }

// Done is closed once every source finished.
func (l *AssetLoad) Done() <-chan struct{} { return l.finish }

// Wait blocks until loading finished and returns the joined decode errors.
// Results are delivered through the scene mailbox, so Wait must not be
// called from the goroutine that runs the scene's Update.
func (l *AssetLoad) Wait() error {
	<-l.finish
	return l.err
}

// LoadAssets decodes every image the scene references in the background.
// Marker overlays also produce alpha masks for the hit tester; a marker
// whose overlay fails to decode falls back to its bounding box. It must be
// called on the scene goroutine; decoding runs on up to
// Config.AssetConcurrency workers and results are applied through Post.
func LoadAssets(ctx context.Context, s *Scene, opts AssetOptions) (*AssetLoad, error) {
	if opts.FS == nil {
		return nil, fmt.Errorf("load assets: no filesystem")
	}
	masks := make(map[string][]uint32)
	var srcs []string
	seen := make(map[string]bool)
	add := func(src string) {
		if src != "" && !seen[src] && !isPathSource(src) {
			seen[src] = true
			srcs = append(srcs, src)
		}
	}
	s.stage.Walk(func(e *Element) bool {
		if e.Kind == ElementPanel && e.PanelKind == PanelPath {
			return true
		}
		add(e.ImageSrc)
		add(e.ZoomImageSrc)
		if e.Kind == ElementMarker && e.ImageSrc != "" {
			masks[e.ImageSrc] = append(masks[e.ImageSrc], e.ID)
			s.hit.Expect(e.ID)
		}
		return true
	})
	extra, err := GlobSources(opts.FS, opts.Preload...)
	if err != nil {
		return nil, fmt.Errorf("load assets: %w", err)
	}
	for _, src := range extra {
		add(src)
	}

	l := &AssetLoad{total: len(srcs), finish: make(chan struct{})}
	maxPixels := s.cfg.MaxMaskPixels
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)

	go func() {
		defer close(l.finish)
		defer cancel()
		defer stop()
		l.err = DecodeSources(ctx, opts.FS, srcs, s.cfg.AssetConcurrency, func(src string, img image.Image, err error) {
			ids := masks[src]
			if err != nil {
				s.Post(func() {
					for _, id := range ids {
						s.hit.Fail(id, err)
					}
				})
			} else {
				var mask *AlphaMask
				if len(ids) > 0 {
					mask = NewAlphaMask(img, maxPixels)
				}
				s.Post(func() {
					s.SetImage(src, ebiten.NewImageFromImage(img))
					for _, id := range ids {
						s.hit.SetMask(id, mask)
					}
				})
			}
			n := int(l.done.Add(1))
			if opts.Progress != nil {
				opts.Progress(n, l.total, src)
			}
		})
		if l.err != nil {
			s.log.Warn().Err(l.err).Msg("some assets failed to load")
		}
	}()
	return l, nil
}

// DecodeSources decodes srcs from fsys on at most limit goroutines and
// calls fn once per source. A failing source does not stop the others;
// the returned error joins every decode failure and ctx's error.
func DecodeSources(ctx context.Context, fsys fs.FS, srcs []string, limit int, fn func(src string, img image.Image, err error)) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	var (
		mu   sync.Mutex
		errs []error
	)
	for _, src := range srcs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := decodeImage(fsys, src)
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			fn(src, img, err)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func decodeImage(fsys fs.FS, src string) (image.Image, error) {
	f, err := fsys.Open(cleanSource(src))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", src, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", src, err)
	}
	return img, nil
}

// GlobSources expands doublestar patterns against fsys into sorted,
// deduplicated source paths.
func GlobSources(fsys fs.FS, patterns ...string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, p := range patterns {
		matches, err := doublestar.Glob(fsys, cleanSource(p))
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", p, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// isPathSource reports whether src names an SVG document, which is loaded
// by a PathLoader instead of the image decoder.
func isPathSource(src string) bool {
	return strings.EqualFold(path.Ext(src), ".svg")
}

// cleanSource turns a layout source into an fs.FS path.
func cleanSource(src string) string {
	return strings.TrimPrefix(path.Clean("/"+src), "/")
}

package hotspot

import (
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"math"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register decoder
)

// DefaultAlphaThreshold is the alpha value at or below which a pixel counts
// as transparent.
const DefaultAlphaThreshold = 10

// defaultMaxMaskPixels bounds the rasterized mask size; larger overlays are
// downsampled before the alpha channel is cached.
const defaultMaxMaskPixels = 2048 * 2048

// AlphaMask is the cached alpha channel of a marker overlay image.
type AlphaMask struct {
	Width, Height int
	Alpha         []uint8
}

// NewAlphaMask rasterizes img into an alpha buffer. Images above maxPixels
// are scaled down with bilinear filtering; maxPixels <= 0 uses the default.
func NewAlphaMask(img image.Image, maxPixels int) *AlphaMask {
	if maxPixels <= 0 {
		maxPixels = defaultMaxMaskPixels
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return &AlphaMask{}
	}

	dst := image.NewAlpha(image.Rect(0, 0, w, h))
	if w*h > maxPixels {
		f := math.Sqrt(float64(maxPixels) / float64(w*h))
		sw := max(1, int(float64(w)*f))
		sh := max(1, int(float64(h)*f))
		dst = image.NewAlpha(image.Rect(0, 0, sw, sh))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	} else {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	}

	return &AlphaMask{
		Width:  dst.Rect.Dx(),
		Height: dst.Rect.Dy(),
		Alpha:  dst.Pix,
	}
}

// DecodeAlphaMask decodes a png, jpeg, gif or webp stream into a mask.
func DecodeAlphaMask(r io.Reader, maxPixels int) (*AlphaMask, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode overlay: %w", err)
	}
	return NewAlphaMask(img, maxPixels), nil
}

// At returns the alpha value at (x, y), or 0 outside the mask.
func (m *AlphaMask) At(x, y int) uint8 {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return 0
	}
	return m.Alpha[y*m.Width+x]
}

type maskState uint8

const (
	maskPending maskState = iota
	maskReady
	maskFailed
)

type maskEntry struct {
	state maskState
	mask  *AlphaMask
	err   error
}

// HitTester resolves pointer positions against irregularly shaped markers.
// Masks are keyed by element ID. A marker whose mask is pending or failed is
// tested by its bounding box so a broken overlay never disables interaction.
type HitTester struct {
	Threshold uint8

	masks map[uint32]*maskEntry
	log   zerolog.Logger
	buf   []*Element
}

// NewHitTester creates a hit tester with the given alpha threshold.
func NewHitTester(threshold uint8, log zerolog.Logger) *HitTester {
	return &HitTester{
		Threshold: threshold,
		masks:     make(map[uint32]*maskEntry),
		log:       log,
	}
}

// Expect records that a mask for id is being rasterized.
func (h *HitTester) Expect(id uint32) {
	h.masks[id] = &maskEntry{state: maskPending}
}

// SetMask stores the rasterized mask for id.
func (h *HitTester) SetMask(id uint32, m *AlphaMask) {
	h.masks[id] = &maskEntry{state: maskReady, mask: m}
}

// Fail records that rasterization for id failed. Hit tests for that marker
// fall back to the bounding box.
func (h *HitTester) Fail(id uint32, err error) {
	h.masks[id] = &maskEntry{state: maskFailed, err: err}
	h.log.Warn().Uint32("element", id).Err(err).Msg("overlay rasterization failed, using bounding box")
}

// Forget drops any mask for id.
func (h *HitTester) Forget(id uint32) {
	delete(h.masks, id)
}

// Mask reports the mask state for id.
func (h *HitTester) Mask(id uint32) Result[*AlphaMask] {
	e, ok := h.masks[id]
	if !ok {
		return NotFound[*AlphaMask](fmt.Errorf("no mask for element %d", id))
	}
	switch e.state {
	case maskReady:
		return Ok(e.mask)
	case maskFailed:
		return LoadFailed[*AlphaMask](e.err)
	default:
		return NotFound[*AlphaMask](fmt.Errorf("mask for element %d still pending", id))
	}
}

// HitTest reports whether the screen point (x, y) hits marker. The point is
// mapped into the marker's natural pixel space, accounting for any scaling
// between displayed and natural size, then the alpha channel is sampled.
func (h *HitTester) HitTest(marker *Element, x, y float64) bool {
	if marker.Width <= 0 || marker.Height <= 0 {
		return false
	}
	lx, ly := marker.WorldToLocal(x, y)
	if lx < 0 || ly < 0 || lx > marker.Width || ly > marker.Height {
		return false
	}

	entry, ok := h.masks[marker.ID]
	if !ok || entry.state != maskReady || entry.mask.Width == 0 {
		return true
	}
	m := entry.mask
	px := int(lx / marker.Width * float64(m.Width))
	py := int(ly / marker.Height * float64(m.Height))
	px = min(max(px, 0), m.Width-1)
	py = min(max(py, 0), m.Height-1)
	return m.At(px, py) > h.Threshold
}

// Pick returns the marker under (x, y) and, when the hit came through a
// floating badge, that badge. Badges are tested first regardless of z-order
// because they always sit above overlay artwork; markers are then tested
// from the highest ZIndex down, later siblings winning ties.
func (h *HitTester) Pick(markers []*Element, x, y float64) (marker, badge *Element) {
	h.buf = append(h.buf[:0], markers...)
	sort.SliceStable(h.buf, func(i, j int) bool {
		return h.buf[i].ZIndex > h.buf[j].ZIndex
	})
	// Reverse runs of equal ZIndex so the later tree sibling is tested first.
	for i := 0; i < len(h.buf); {
		j := i
		for j < len(h.buf) && h.buf[j].ZIndex == h.buf[i].ZIndex {
			j++
		}
		for a, b := i, j-1; a < b; a, b = a+1, b-1 {
			h.buf[a], h.buf[b] = h.buf[b], h.buf[a]
		}
		i = j
	}

	for _, m := range h.buf {
		if !m.Visible || !m.Interactable {
			continue
		}
		for _, c := range m.children {
			if c.Kind == ElementBadge && c.Visible && c.ScreenRect().Contains(x, y) {
				return m, c
			}
		}
	}
	for _, m := range h.buf {
		if !m.Visible || !m.Interactable {
			continue
		}
		if h.HitTest(m, x, y) {
			return m, nil
		}
	}
	return nil, nil
}

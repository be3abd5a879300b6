// Package greyscale desaturates item images, with a per-item mix that is
// remembered as an annotation.
package greyscale

import (
	"context"
	"image"
	"image/color"
	"sync"

	"github.com/rs/zerolog"

	"github.com/annoforge/annoforge/internal/core/logging"
	"github.com/annoforge/annoforge/internal/plugins"
)

// Plugin blends each pixel toward its luminance. A mix of 0 leaves the
// image untouched, 1 is full greyscale.
type Plugin struct {
	log zerolog.Logger
	rt  plugins.Runtime

	mu     sync.Mutex
	mix    float64
	itemID string
}

var (
	_ plugins.ImageProcessor    = (*Plugin)(nil)
	_ plugins.ItemObserver      = (*Plugin)(nil)
	_ plugins.StatefulProcessor = (*Plugin)(nil)
)

// New creates the greyscale plugin at full mix.
func New() *Plugin {
	return &Plugin{
		log: logging.Component("greyscale"),
		mix: 1,
	}
}

func (p *Plugin) Name() string { return "greyscale" }

func (p *Plugin) DisplayName() string { return "Greyscale" }

func (p *Plugin) Capability() plugins.Capability { return plugins.CapabilityImageProcessor }

func (p *Plugin) Close() error { return nil }

func (p *Plugin) Init(rt plugins.Runtime) error {
	p.rt = rt
	return nil
}

// Mix returns the current blend factor.
func (p *Plugin) Mix() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mix
}

// SetMix changes the blend factor for the focused item, persists it, and
// asks for a redraw. Values are clamped to [0, 1].
func (p *Plugin) SetMix(mix float64) {
	if mix < 0 {
		mix = 0
	}
	if mix > 1 {
		mix = 1
	}

	p.mu.Lock()
	p.mix = mix
	id := p.itemID
	p.mu.Unlock()

	if id == "" || p.rt == nil {
		return
	}

	if err := p.rt.Annotations().Save(context.Background(), id, p.Name(), map[string]any{"mix": mix}); err != nil {
		p.log.Warn().Err(err).Str("item", id).Msg("persist mix")
	}
	p.rt.InvalidateImages([]string{id})
	p.rt.RefreshItems([]string{id})
}

// OnItemSelected restores the mix stored for the newly focused item.
func (p *Plugin) OnItemSelected(id string) {
	p.mu.Lock()
	p.itemID = id
	p.mu.Unlock()

	if id == "" || p.rt == nil {
		return
	}

	var state map[string]any
	if p.rt.Annotations().Get(context.Background(), id, p.Name(), &state) {
		p.OnStateLoaded(state)
		return
	}
	p.OnStateLoaded(nil)
}

// StateToPersist exposes the mix for generic persistence.
func (p *Plugin) StateToPersist() (any, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.itemID == "" {
		return nil, false
	}
	return map[string]any{"mix": p.mix}, true
}

// OnStateLoaded applies stored state; nil resets to the default.
func (p *Plugin) OnStateLoaded(state map[string]any) {
	mix := 1.0
	if v, ok := state["mix"].(float64); ok {
		mix = v
	}

	p.mu.Lock()
	p.mix = mix
	p.mu.Unlock()
}

// Process returns img blended toward greyscale by the current mix.
func (p *Plugin) Process(img image.Image) image.Image {
	mix := p.Mix()
	if mix == 0 {
		return img
	}

	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			// Rec. 601 luma weights
			grey := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)

			out.Set(x, y, color.RGBA64{
				R: blend(r, grey, mix),
				G: blend(g, grey, mix),
				B: blend(b, grey, mix),
				A: uint16(a),
			})
		}
	}
	return out
}

func blend(channel uint32, grey, mix float64) uint16 {
	v := float64(channel)*(1-mix) + grey*mix
	if v > 0xffff {
		v = 0xffff
	}
	return uint16(v)
}

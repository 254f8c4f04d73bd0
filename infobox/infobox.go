// Package infobox chains parsing, layout, font resolution, rendering and
// encoding into one call and guards the boundary against user errors.
package infobox

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ByLCY/infobox/binding"
	"github.com/ByLCY/infobox/fonts"
	"github.com/ByLCY/infobox/layout"
	"github.com/ByLCY/infobox/outline"
	"github.com/ByLCY/infobox/renderer"
	canvasrenderer "github.com/ByLCY/infobox/renderer/canvas"
	"github.com/ByLCY/infobox/sink"
)

// Accepted output widths in pixels. DefaultWidth is what callers should pass
// when the user did not ask for a width; Generate does not substitute it.
const (
	MinWidth     = 200
	MaxWidth     = 4000
	DefaultWidth = 800
)

var (
	// ErrNothingToRender is returned when the text holds no numbered lines.
	ErrNothingToRender = errors.New("nothing to render: no numbered lines found")
	// ErrWidth is returned for widths outside [MinWidth, MaxWidth].
	ErrWidth = errors.New("width out of range")
)

const fontHint = "check font configuration (bold/regular font files or installed system fonts)"

// RenderError wraps failures past the input checks. Its message carries a
// hint pointing at font configuration.
type RenderError struct {
	Stage string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s failed: %v; %s", e.Stage, e.Err, fontHint)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Options configure a single Generate call. Width is required, zero values of
// the other fields select defaults.
type Options struct {
	Width    int
	Config   layout.Config
	Fonts    *fonts.Resolver
	Renderer renderer.Renderer
	Sink     sink.Sink
	Policy   outline.Policy
	Data     any // JSON decoded values for ${...} placeholders
	Log      *zap.Logger
}

// Output is the encoded image together with what produced it.
type Output struct {
	Image   []byte
	Spec    *layout.Spec
	Items   []outline.Item
	Skipped []outline.Skipped
	Fonts   *fonts.Set
}

// Generate renders text as an infobox image. Empty outlines and bad widths
// are reported before any canvas is allocated; panics further down are
// recovered and returned as *RenderError.
func Generate(text string, opts Options) (out *Output, err error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	width := opts.Width
	if width < MinWidth || width > MaxWidth {
		return nil, fmt.Errorf("%w: %d (allowed %d-%d)", ErrWidth, width, MinWidth, MaxWidth)
	}

	parsed := outline.Parse(text, opts.Policy)
	for _, s := range parsed.Skipped {
		log.Info("Skipping line without leading number", zap.Int("line", s.Line), zap.String("text", s.Text))
	}
	if len(parsed.Items) == 0 {
		return nil, ErrNothingToRender
	}
	main, sub := outline.Counts(parsed.Items)
	log.Debug("Outline parsed", zap.Int("main", main), zap.Int("sub", sub), zap.Int("skipped", len(parsed.Skipped)))

	cfg := opts.Config
	if cfg.ReferenceWidth == 0 {
		cfg = layout.Classic()
	}
	title, items := binding.Apply(cfg.Title, parsed.Items, opts.Data)
	cfg.Title = title

	stage := "layout"
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, &RenderError{Stage: stage, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	spec, err := layout.Build(items, width, cfg)
	if err != nil {
		return nil, &RenderError{Stage: stage, Err: err}
	}

	stage = "font resolution"
	resolver := opts.Fonts
	if resolver == nil {
		resolver = fonts.NewResolver(fonts.Paths{}, fonts.WithLogger(log))
	}
	set := resolver.ResolveSet(spec.Metrics)

	stage = "rendering"
	r := opts.Renderer
	if r == nil {
		r = canvasrenderer.NewRenderer(log)
	}
	c := canvasrenderer.NewCanvas(spec)
	if err := r.Render(c, spec, items, set); err != nil {
		return nil, &RenderError{Stage: stage, Err: err}
	}

	stage = "encoding"
	s := opts.Sink
	if s == nil {
		s = sink.PNG(sink.DefaultDPI)
	}
	data, err := s.Encode(c)
	if err != nil {
		return nil, &RenderError{Stage: stage, Err: err}
	}

	return &Output{
		Image:   data,
		Spec:    spec,
		Items:   items,
		Skipped: parsed.Skipped,
		Fonts:   set,
	}, nil
}

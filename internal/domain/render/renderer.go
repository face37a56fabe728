package render

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/GriffinCanCode/HTMLReader/internal/domain/archive"
	"github.com/GriffinCanCode/HTMLReader/internal/domain/isolate"
	"github.com/GriffinCanCode/HTMLReader/internal/domain/overlay"
	"github.com/GriffinCanCode/HTMLReader/internal/domain/patch"
	"github.com/GriffinCanCode/HTMLReader/internal/domain/policy"
	"github.com/GriffinCanCode/HTMLReader/internal/domain/sanitize"
	"github.com/GriffinCanCode/HTMLReader/internal/domain/settings"
	"github.com/GriffinCanCode/HTMLReader/internal/infrastructure/tracing"
)

// Recorder receives pipeline measurements.
type Recorder interface {
	RecordRender(mode string, ok bool, duration time.Duration, size int)
	RecordSanitize(mode string, kinds map[string]int)
	RecordDecode(kind string)
}

type nopRecorder struct{}

func (nopRecorder) RecordRender(string, bool, time.Duration, int) {}
func (nopRecorder) RecordSanitize(string, map[string]int)         {}
func (nopRecorder) RecordDecode(string)                           {}

// Request is one document to render.
type Request struct {
	ID       string
	Name     string
	Location string
	Data     []byte
	Settings settings.Settings
	// SocketPath is where the page script reaches the overlay channel.
	SocketPath string
	// OnZoom observes zoom changes, typically to persist them.
	OnZoom func(scale float64)
}

// Renderer runs the pipeline: decode, sanitize, isolate, patch, overlay.
// It holds no per-document state; every call builds a fresh tree.
type Renderer struct {
	decoder  *archive.Decoder
	engine   *sanitize.Engine
	recorder Recorder
	tracer   *tracing.Tracer
	logger   *zap.Logger
}

// NewRenderer creates a renderer. rec may be nil.
func NewRenderer(logger *zap.Logger, rec Recorder, maxSize int64) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Renderer{
		decoder:  archive.NewDecoder(logger.Named("archive"), maxSize),
		engine:   sanitize.NewEngine(logger.Named("sanitize")),
		recorder: rec,
		logger:   logger,
	}
}

// WithTracer makes every render open a span per stage.
func (r *Renderer) WithTracer(t *tracing.Tracer) *Renderer {
	r.tracer = t
	return r
}

// stage opens the span of one pipeline stage.
func (r *Renderer) stage(ctx context.Context, s Stage) func(error) {
	_, end := r.tracer.Trace(ctx, "render."+string(s))
	return end
}

// Policy returns the policy the renderer applies for m.
func (r *Renderer) Policy(m policy.Mode) *policy.Policy {
	return r.engine.Policy(m)
}

// Render runs the whole pipeline. Errors are *RenderError.
func (r *Renderer) Render(ctx context.Context, req Request) (view *View, err error) {
	start := time.Now()
	ctx, endRender := r.tracer.Trace(ctx, "render")
	defer func() { endRender(err) }()

	mode := req.Settings.Mode()
	p := r.engine.Policy(mode)
	view = &View{
		ID:       req.ID,
		Name:     req.Name,
		Location: req.Location,
		Mode:     mode,
		Policy:   p,
	}
	defer func() {
		view.Rendered = time.Now()
		view.Duration = time.Since(start)
		r.recorder.RecordRender(mode.ID(), err == nil, view.Duration, len(req.Data))
		if err != nil {
			view.Close()
			r.logger.Warn("Render failed",
				zap.String("file", req.Name),
				zap.String("mode", mode.ID()),
				zap.Error(err),
			)
			view = nil
		}
	}()

	end := r.stage(ctx, StageDecode)
	decoded, err := r.decoder.Decode(ctx, req.Data)
	end(err)
	if err != nil {
		return view, fail(StageDecode, req.Name, err)
	}
	r.recorder.RecordDecode(string(decoded.Kind))
	view.Decoded = Decoded{Kind: decoded.Kind, Entry: decoded.Entry, Charset: decoded.Charset, Inlined: decoded.Inlined}
	if strings.TrimSpace(decoded.HTML) == "" {
		return view, fail(StageDecode, req.Name, ErrEmptyDocument)
	}

	end = r.stage(ctx, StageSanitize)
	doc, stats := r.engine.Sanitize(decoded.HTML, mode)
	end(nil)
	view.Sanitized = stats
	r.recorder.RecordSanitize(mode.ID(), stats.Kinds())

	end = r.stage(ctx, StageIsolate)
	boundary, err := isolate.Isolate(ctx, doc, p, isolate.Options{
		Title:             req.Name,
		BlockRemoteImages: req.Settings.BlockRemoteImages,
	})
	end(err)
	if err != nil {
		return view, fail(StageIsolate, req.Name, err)
	}
	view.Boundary = boundary

	end = r.stage(ctx, StagePatch)
	view.Patches, err = patch.Apply(boundary, p, r.logger.Named("patch"))
	end(err)
	if err != nil {
		return view, fail(StagePatch, req.Name, err)
	}

	keymap, kerr := req.Settings.Keymap()
	if kerr != nil {
		r.logger.Warn("Ignoring invalid hotkeys", zap.Error(kerr))
		keymap = overlay.DefaultKeymap()
	}
	err = boundary.OnLoad(func(h *isolate.Handle) error {
		view.Overlay = overlay.NewController(searchRoot(h), p, overlay.Options{
			HighlightAll: req.Settings.HighlightAll,
			Scale:        req.Settings.ZoomValue,
			Wheel:        req.Settings.ZoomByWheelAndGesture,
			Keymap:       &keymap,
			OnZoom:       req.OnZoom,
		})
		return nil
	})
	if err != nil {
		return view, fail(StageOverlay, req.Name, err)
	}

	end = r.stage(ctx, StageOverlay)
	err = boundary.Load(ctx)
	end(err)
	if err != nil {
		return view, fail(StageIsolate, req.Name, err)
	}

	end = r.stage(ctx, StageShell)
	page, err := isolate.Shell(boundary, isolate.ShellOptions{
		Title:         req.Name,
		ViewID:        req.ID,
		Mode:          mode,
		SocketPath:    req.SocketPath,
		Search:        view.Overlay.HasSearch(),
		Zoom:          view.Overlay.HasZoom(),
		Scale:         view.Overlay.Scale(),
		Wheel:         req.Settings.ZoomByWheelAndGesture,
		FixNavigation: p.FixNavigation,
		Bindings:      ShellBindings(view.Overlay),
	})
	end(err)
	if err != nil {
		return view, fail(StageShell, req.Name, err)
	}
	view.Page = page

	r.logger.Debug("Rendered document",
		zap.String("file", req.Name),
		zap.String("mode", mode.ID()),
		zap.String("strategy", boundary.Strategy().String()),
		zap.String("decoded", string(decoded.Kind)),
		zap.Any("sanitized", stats.Kinds()),
		zap.Duration("duration", time.Since(start)),
	)
	return view, nil
}

// searchRoot is the body, or the document when it has none.
func searchRoot(h *isolate.Handle) *html.Node {
	if body := h.Body(); body.Length() > 0 {
		return body.Get(0)
	}
	return h.Root()
}

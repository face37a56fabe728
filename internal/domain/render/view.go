package render

import (
	"time"

	"github.com/GriffinCanCode/HTMLReader/internal/domain/archive"
	"github.com/GriffinCanCode/HTMLReader/internal/domain/isolate"
	"github.com/GriffinCanCode/HTMLReader/internal/domain/overlay"
	"github.com/GriffinCanCode/HTMLReader/internal/domain/patch"
	"github.com/GriffinCanCode/HTMLReader/internal/domain/policy"
	"github.com/GriffinCanCode/HTMLReader/internal/domain/sanitize"
)

// View is one rendered document. A failed render leaves a view with a
// notice and nothing else.
type View struct {
	ID       string
	Name     string
	Location string
	Mode     policy.Mode
	Policy   *policy.Policy

	Boundary  isolate.Boundary
	Overlay   *overlay.Controller
	Patches   *patch.Report
	Sanitized sanitize.Stats
	Decoded   Decoded

	// Page is the host page embedding the boundary.
	Page string

	Rendered time.Time
	Duration time.Duration
	Notice   *Notice
}

// Decoded describes where the document text came from.
type Decoded struct {
	Kind    archive.Kind `json:"kind"`
	Entry   string       `json:"entry,omitempty"`
	Charset string       `json:"charset,omitempty"`
	Inlined int          `json:"inlined,omitempty"`
}

// Failed reports whether the render stopped with a notice.
func (v *View) Failed() bool {
	return v.Notice != nil
}

// Close discards the boundary.
func (v *View) Close() {
	if v.Boundary != nil {
		v.Boundary.Close()
	}
}

// Info is the JSON summary of a view.
type Info struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Location    string         `json:"location"`
	Mode        string         `json:"mode"`
	ModeLabel   string         `json:"modeLabel"`
	Strategy    string         `json:"strategy,omitempty"`
	Search      bool           `json:"search"`
	Zoom        bool           `json:"zoom"`
	Scale       float64        `json:"scale"`
	Sanitized   sanitize.Stats `json:"sanitized"`
	Decoded     Decoded        `json:"decoded"`
	Variables   int            `json:"variables"`
	Rendered    time.Time      `json:"rendered"`
	DurationMs  float64        `json:"durationMs"`
	Notice      *Notice        `json:"notice,omitempty"`
	MatchCount  int            `json:"matchCount"`
	SearchQuery string         `json:"searchQuery,omitempty"`
}

// Info summarizes the view.
func (v *View) Info() Info {
	info := Info{
		ID:         v.ID,
		Name:       v.Name,
		Location:   v.Location,
		Mode:       v.Mode.ID(),
		ModeLabel:  v.Mode.Label(),
		Scale:      overlay.DefaultZoom,
		Sanitized:  v.Sanitized,
		Decoded:    v.Decoded,
		Rendered:   v.Rendered,
		DurationMs: float64(v.Duration.Microseconds()) / 1000,
		Notice:     v.Notice,
	}
	if v.Boundary != nil {
		info.Strategy = v.Boundary.Strategy().String()
	}
	if v.Patches != nil {
		info.Variables = v.Patches.Variables()
	}
	if c := v.Overlay; c != nil {
		info.Search = c.HasSearch()
		info.Zoom = c.HasZoom()
		info.Scale = c.Scale()
		if s := c.Search(); s != nil {
			info.MatchCount = s.Count()
			info.SearchQuery = s.Query()
		}
	}
	return info
}

package isolate

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/google/uuid"

	"github.com/GriffinCanCode/HTMLReader/internal/domain/policy"
)

// ShellBinding is one resolved hotkey handed to the page script so it can
// suppress the browser default before forwarding the key.
type ShellBinding struct {
	Action string `json:"action"`
	Key    string `json:"key"`
	Ctrl   bool   `json:"ctrl"`
	Alt    bool   `json:"alt"`
	Shift  bool   `json:"shift"`
	Meta   bool   `json:"meta"`
}

// ShellOptions configure the host page around a boundary.
type ShellOptions struct {
	Title         string
	ViewID        string
	Mode          policy.Mode
	Nonce         string
	SocketPath    string
	Search        bool
	Zoom          bool
	Scale         float64
	Wheel         bool
	FixNavigation bool
	Bindings      []ShellBinding
}

type shellConfig struct {
	ViewID        string         `json:"viewId"`
	Socket        string         `json:"socket"`
	Strategy      string         `json:"strategy"`
	Search        bool           `json:"search"`
	Zoom          bool           `json:"zoom"`
	Scale         float64        `json:"scale"`
	Wheel         bool           `json:"wheel"`
	FixNavigation bool           `json:"fixNavigation"`
	Bindings      []ShellBinding `json:"bindings"`
}

type shellData struct {
	Title    string
	Mode     string
	Strategy string
	CSP      string
	Nonce    string
	Search   bool
	Zoom     bool
	Scale    string
	Boundary template.HTML
	Config   shellConfig
}

var shellTemplate = template.Must(template.New("shell").Parse(shellHTML))

// Shell renders the host page embedding b. The page carries a CSP only for
// the shadow strategy: there the document shares the page, while frame
// content inherits the page policy and declares its own.
func Shell(b Boundary, opts ShellOptions) (string, error) {
	markup, err := b.Markup()
	if err != nil {
		return "", err
	}
	nonce := opts.Nonce
	if nonce == "" {
		nonce = strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}

	data := shellData{
		Title:    opts.Title,
		Mode:     opts.Mode.ID(),
		Strategy: b.Strategy().String(),
		Nonce:    nonce,
		Search:   opts.Search,
		Zoom:     opts.Zoom,
		Scale:    fmt.Sprintf("%d%%", int(scale*100+0.5)),
		Boundary: template.HTML(markup),
		Config: shellConfig{
			ViewID:        opts.ViewID,
			Socket:        opts.SocketPath,
			Strategy:      b.Strategy().String(),
			Search:        opts.Search,
			Zoom:          opts.Zoom,
			Scale:         scale,
			Wheel:         opts.Wheel,
			FixNavigation: opts.FixNavigation,
			Bindings:      opts.Bindings,
		},
	}
	if b.Strategy() == policy.StrategyShadow {
		data.CSP = ShellCSP(b.CSP(), nonce)
	}

	var sb strings.Builder
	if err := shellTemplate.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render shell: %w", err)
	}
	return sb.String(), nil
}

// ShellCSP extends a document policy with what the page script needs.
func ShellCSP(documentCSP, nonce string) string {
	directives := []string{documentCSP}
	if documentCSP == "" {
		directives = []string{"default-src 'none'", "style-src 'unsafe-inline'"}
	}
	directives = append(directives,
		"script-src 'nonce-"+nonce+"'",
		"connect-src 'self'",
	)
	return strings.Join(directives, "; ")
}

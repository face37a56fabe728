package patch

import (
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/HTMLReader/internal/domain/isolate"
	"github.com/GriffinCanCode/HTMLReader/internal/domain/policy"
)

// Report summarizes the patches applied to one boundary. It is filled in
// when the boundary finishes loading.
type Report struct {
	mu sync.Mutex

	applied    bool
	restored   int
	variables  int
	anchors    AnchorStats
	navigation bool
}

// Applied reports whether the load callback has run.
func (r *Report) Applied() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.applied
}

// Restored returns how many interaction properties were set.
func (r *Report) Restored() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.restored
}

// Variables returns how many custom properties were re-homed.
func (r *Report) Variables() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.variables
}

// Anchors returns the anchor rewrite counts.
func (r *Report) Anchors() AnchorStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.anchors
}

// Navigation reports whether fragment navigation was installed.
func (r *Report) Navigation() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.navigation
}

// Apply schedules the patches p enables to run when b finishes loading.
// Anchor rewriting only applies to frame boundaries; a shadow boundary
// shares its navigation context with the host page.
func Apply(b isolate.Boundary, p *policy.Policy, logger *zap.Logger) (*Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	report := &Report{}
	err := b.OnLoad(func(h *isolate.Handle) error {
		report.mu.Lock()
		defer report.mu.Unlock()

		if p.RestoreInteraction {
			report.restored = RestoreInteraction(h)
		}
		if p.RehomeVariables {
			vars := RehomeVariables(h)
			report.variables = vars.Len()
			for _, err := range vars.Skipped() {
				logger.Debug("Stylesheet not parsed, its :root variables stay in place", zap.Error(err))
			}
		}
		if p.RewriteAnchors && h.Strategy() == policy.StrategyFrame {
			report.anchors = RewriteAnchors(h)
		}
		if p.FixNavigation {
			InstallNavigation(h)
			report.navigation = true
		}
		report.applied = true

		logger.Debug("Patches applied",
			zap.String("mode", p.Mode.ID()),
			zap.String("strategy", h.Strategy().String()),
			zap.Int("restored", report.restored),
			zap.Int("variables", report.variables),
			zap.Int("retargeted", report.anchors.Retargeted),
			zap.Bool("navigation", report.navigation),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

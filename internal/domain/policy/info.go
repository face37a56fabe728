package policy

// Support grades a capability in the mode comparison table.
type Support string

const (
	SupportYes     Support = "Yes"
	SupportPartial Support = "Partial"
	SupportNo      Support = "No"
)

// Info summarizes a tier for settings screens and the modes command.
type Info struct {
	ID                string  `json:"id" yaml:"id"`
	Label             string  `json:"label" yaml:"label"`
	Images            Support `json:"images" yaml:"images"`
	Styles            Support `json:"styles" yaml:"styles"`
	Scripting         Support `json:"scripting" yaml:"scripting"`
	DeclarativeShadow Support `json:"declarativeShadowDom" yaml:"declarativeShadowDom"`
	ContentPolicy     Support `json:"csp" yaml:"csp"`
	Sanitization      Support `json:"sanitization" yaml:"sanitization"`
	Isolated          Support `json:"isolated" yaml:"isolated"`
	Strategy          string  `json:"strategy" yaml:"strategy"`
	Search            bool    `json:"search" yaml:"search"`
	Zoom              bool    `json:"zoom" yaml:"zoom"`
}

var infoGrades = map[Mode][7]Support{
	ModeText:           {SupportNo, SupportNo, SupportNo, SupportYes, SupportYes, SupportYes, SupportYes},
	ModeHighRestricted: {SupportYes, SupportPartial, SupportNo, SupportYes, SupportYes, SupportYes, SupportYes},
	ModeBalance:        {SupportYes, SupportYes, SupportNo, SupportYes, SupportYes, SupportYes, SupportYes},
	ModeLowRestricted:  {SupportYes, SupportYes, SupportPartial, SupportYes, SupportNo, SupportNo, SupportYes},
	ModeUnrestricted:   {SupportYes, SupportYes, SupportYes, SupportNo, SupportNo, SupportNo, SupportNo},
}

// Describe returns the comparison row for m.
func Describe(m Mode) Info {
	p := Lookup(m)
	g := infoGrades[p.Mode]
	return Info{
		ID:                p.Mode.ID(),
		Label:             p.Mode.Label(),
		Images:            g[0],
		Styles:            g[1],
		Scripting:         g[2],
		DeclarativeShadow: g[3],
		ContentPolicy:     g[4],
		Sanitization:      g[5],
		Isolated:          g[6],
		Strategy:          p.Strategy.String(),
		Search:            p.Search,
		Zoom:              p.Zoom,
	}
}

// DescribeAll returns the comparison table in tier order.
func DescribeAll() []Info {
	out := make([]Info, 0, len(Modes()))
	for _, m := range Modes() {
		out = append(out, Describe(m))
	}
	return out
}

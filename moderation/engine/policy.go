package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

type RiskLevel string

const (
	RiskClean     = RiskLevel("clean")
	RiskMild      = RiskLevel("mild")
	RiskModerate  = RiskLevel("moderate")
	RiskSevere    = RiskLevel("severe")
	RiskLockedOut = RiskLevel("locked_out")
)

// action reported for a locked-out user; never configured, never recorded
const ActionLocked = "locked"

type Thresholds struct {
	Mild     int `json:"mild"`
	Moderate int `json:"moderate"`
	Severe   int `json:"severe"`
}

type Actions struct {
	Clean    string `json:"clean"`
	Mild     string `json:"mild"`
	Moderate string `json:"moderate"`
	Severe   string `json:"severe"`
}

// Policy maps a final numeric score to a risk tier and a moderation action.
type Policy struct {
	Thresholds Thresholds `json:"severity_thresholds"`
	Actions    Actions    `json:"response_actions"`
}

func DefaultPolicy() Policy {
	return Policy{
		Thresholds: Thresholds{Mild: 1, Moderate: 3, Severe: 5},
		Actions: Actions{
			Clean:    "allow",
			Mild:     "warning",
			Moderate: "temporary_suspension",
			Severe:   "permanent_ban",
		},
	}
}

// Thresholds must be positive and strictly increasing; anything else is a
// deployment mistake we want at startup, not at request time.
func (p *Policy) Validate() error {
	t := p.Thresholds
	if t.Mild <= 0 {
		return fmt.Errorf("mild threshold must be positive, got %d", t.Mild)
	}
	if t.Moderate <= t.Mild {
		return fmt.Errorf("thresholds must be strictly increasing: moderate (%d) <= mild (%d)", t.Moderate, t.Mild)
	}
	if t.Severe <= t.Moderate {
		return fmt.Errorf("thresholds must be strictly increasing: severe (%d) <= moderate (%d)", t.Severe, t.Moderate)
	}
	return nil
}

// Classify checks thresholds from most severe down, so a score exactly equal
// to a threshold takes that tier.
func (p *Policy) Classify(score int) (RiskLevel, string) {
	switch {
	case score >= p.Thresholds.Severe:
		return RiskSevere, p.Actions.Severe
	case score >= p.Thresholds.Moderate:
		return RiskModerate, p.Actions.Moderate
	case score >= p.Thresholds.Mild:
		return RiskMild, p.Actions.Mild
	default:
		return RiskClean, p.Actions.Clean
	}
}

// PolicySource records where the active policy came from, so defaulting is
// observable instead of a silent catch-all.
type PolicySource struct {
	Path      string
	Defaulted bool
	Reason    string
}

// LoadPolicy reads a policy JSON file. A missing or unparseable file falls
// back to DefaultPolicy with the reason recorded in the returned source; a
// file that parses but fails validation is a hard error.
func LoadPolicy(path string) (Policy, PolicySource, error) {
	if path == "" {
		return DefaultPolicy(), PolicySource{Defaulted: true, Reason: "no policy file configured"}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return DefaultPolicy(), PolicySource{Path: path, Defaulted: true, Reason: err.Error()}, nil
	}
	defer func() { _ = f.Close() }()

	raw, err := io.ReadAll(f)
	if err != nil {
		return DefaultPolicy(), PolicySource{Path: path, Defaulted: true, Reason: err.Error()}, nil
	}

	pol := DefaultPolicy()
	if err := json.Unmarshal(raw, &pol); err != nil {
		return DefaultPolicy(), PolicySource{Path: path, Defaulted: true, Reason: err.Error()}, nil
	}

	// partial action config keeps the defaults for missing entries
	def := DefaultPolicy().Actions
	if pol.Actions.Clean == "" {
		pol.Actions.Clean = def.Clean
	}
	if pol.Actions.Mild == "" {
		pol.Actions.Mild = def.Mild
	}
	if pol.Actions.Moderate == "" {
		pol.Actions.Moderate = def.Moderate
	}
	if pol.Actions.Severe == "" {
		pol.Actions.Severe = def.Severe
	}

	if err := pol.Validate(); err != nil {
		return Policy{}, PolicySource{Path: path}, fmt.Errorf("invalid policy file %s: %w", path, err)
	}
	return pol, PolicySource{Path: path}, nil
}

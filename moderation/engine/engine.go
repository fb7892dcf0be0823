package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/parley-chat/guardian/moderation/escalation"
	"github.com/parley-chat/guardian/moderation/heuristics"
	"github.com/parley-chat/guardian/moderation/histstore"
	"github.com/parley-chat/guardian/moderation/lexicon"
	"github.com/parley-chat/guardian/moderation/signal"
)

// bonus added to the base score when the user is re-offending rapidly
const rapidBonus = 2

// Engine runs the full risk pipeline for a single message: lockout gate,
// lexicon and context scoring, offense history, escalation, optional external
// classifier blend, threshold classification, and the history write-back.
//
// All fields except Signal, Now and SignalTimeout are required. The Lexicon
// index is read-only and shared; the history store and escalator own all
// mutable state.
type Engine struct {
	Logger    *slog.Logger
	Lexicon   *lexicon.Index
	History   histstore.HistStore
	Escalator *escalation.Escalator
	Policy    Policy

	// optional external classifier; nil disables the ML blend
	Signal        signal.Client
	SignalTimeout time.Duration

	// injectable clock for tests; defaults to time.Now
	Now func() time.Time
}

type MatchedTerm struct {
	Term     string `json:"term"`
	Language string `json:"language"`
}

// Breakdown is the per-analysis accounting of every score component. It is
// returned for observability and never persisted.
type Breakdown struct {
	LexiconScore  int              `json:"lexicon_score"`
	ContextScore  int              `json:"context_score"`
	HistoryScore  int              `json:"history_score"`
	Rapid         bool             `json:"rapid"`
	RuleScore     float64          `json:"rule_score"`
	SignalBlended bool             `json:"signal_blended"`
	SignalScore   float64          `json:"signal_score"`
	Sentiment     signal.Sentiment `json:"sentiment,omitempty"`
}

type Outcome struct {
	RiskLevel    RiskLevel     `json:"risk_level"`
	Score        int           `json:"score"`
	Action       string        `json:"action"`
	MatchedTerms []MatchedTerm `json:"matched_terms"`
	Warning      string        `json:"warning,omitempty"`
	Breakdown    *Breakdown    `json:"breakdown,omitempty"`
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now().UTC()
}

// Analyze scores one message for one user. A locked-out user short-circuits
// with a terminal locked_out outcome and no record mutation; every other
// analysis ends by folding its final score into the user's offense record.
func (e *Engine) Analyze(ctx context.Context, text, userID string) (*Outcome, error) {
	start := time.Now()
	now := e.now()

	locked, err := e.History.IsLockedOut(ctx, userID, now)
	if err != nil {
		analysisErrorCount.Inc()
		return nil, fmt.Errorf("checking lockout: %w", err)
	}
	if locked {
		analysisCount.WithLabelValues(string(RiskLockedOut)).Inc()
		e.Logger.Info("message rejected, user locked out", "user", userID)
		return &Outcome{
			RiskLevel:    RiskLockedOut,
			Score:        0,
			Action:       ActionLocked,
			MatchedTerms: []MatchedTerm{},
		}, nil
	}

	matches := e.Lexicon.FindAll(text)
	keywordScore := lexicon.TotalSeverity(matches)
	contextScore := heuristics.ContextScore(text)

	histScore, rapid, err := e.History.HistoryScore(ctx, userID, now)
	if err != nil {
		analysisErrorCount.Inc()
		return nil, fmt.Errorf("reading offense history: %w", err)
	}

	base := keywordScore
	if rapid {
		base += rapidBonus
	}

	ruleScore := float64(base + contextScore + histScore)
	ruleScore = e.Escalator.TimeEscalate(ruleScore, now)
	ruleScore = e.Escalator.RepeatEscalate(userID, ruleScore, now)

	breakdown := &Breakdown{
		LexiconScore: keywordScore,
		ContextScore: contextScore,
		HistoryScore: histScore,
		Rapid:        rapid,
		RuleScore:    ruleScore,
	}

	// With a classifier configured, the rule score and the weighted category
	// score are combined on one scale: rules doubled, classifier scaled by 5,
	// then a sentiment nudge. Without one, the rule score stands alone; both
	// paths classify against the same thresholds.
	total := ruleScore
	if e.Signal != nil {
		asmt := e.assess(ctx, text)
		weighted := asmt.WeightedScore()
		total = ruleScore*2 + weighted*5
		if asmt.Sentiment == signal.SentimentNegative {
			total += 1
		} else if asmt.Sentiment == signal.SentimentPositive && keywordScore == 0 {
			total -= 1
		}
		breakdown.SignalBlended = true
		breakdown.SignalScore = weighted
		breakdown.Sentiment = asmt.Sentiment
	}

	final := int(math.Round(total))
	if final < 0 {
		final = 0
	}

	risk, action := e.Policy.Classify(final)

	if err := e.History.RecordOutcome(ctx, userID, final, risk == RiskSevere, now); err != nil {
		analysisErrorCount.Inc()
		return nil, fmt.Errorf("recording outcome: %w", err)
	}

	out := &Outcome{
		RiskLevel:    risk,
		Score:        final,
		Action:       action,
		MatchedTerms: matchedTerms(matches),
		Breakdown:    breakdown,
	}
	if risk != RiskClean {
		out.Warning = fmt.Sprintf("message flagged as %s risk", risk)
	}

	analysisCount.WithLabelValues(string(risk)).Inc()
	analysisDuration.Observe(time.Since(start).Seconds())
	e.Logger.Info("message analyzed",
		"user", userID,
		"risk", risk,
		"score", final,
		"action", action,
		"matches", len(matches),
		"rapid", rapid,
	)
	return out, nil
}

// assess calls the external classifier with a bounded timeout. Failures are
// logged and replaced with the neutral assessment; the classifier being down
// never fails an analysis. No history store locks are held here.
func (e *Engine) assess(ctx context.Context, text string) *signal.Assessment {
	timeout := e.SignalTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	sctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	asmt, err := e.Signal.Assess(sctx, text)
	if err != nil {
		signalFailCount.Inc()
		e.Logger.Warn("external classifier unavailable, using neutral signal", "err", err)
		return signal.Neutral()
	}
	return asmt
}

func matchedTerms(matches []lexicon.Match) []MatchedTerm {
	out := make([]MatchedTerm, len(matches))
	for i, m := range matches {
		out[i] = MatchedTerm{Term: m.Term, Language: m.Language}
	}
	return out
}

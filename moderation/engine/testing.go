package engine

import (
	"log/slog"
	"time"

	"github.com/parley-chat/guardian/moderation/escalation"
	"github.com/parley-chat/guardian/moderation/histstore"
	"github.com/parley-chat/guardian/moderation/lexicon"
)

// EngineTestFixture builds an engine over in-memory stores, the default
// lexicon and policy, no external classifier, and a noon clock (outside the
// late-night escalation window).
func EngineTestFixture() Engine {
	fixedNow := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	return Engine{
		Logger:    slog.Default(),
		Lexicon:   lexicon.NewIndex(lexicon.DefaultEntries()),
		History:   histstore.NewMemHistStore(),
		Escalator: escalation.NewEscalator(1000),
		Policy:    DefaultPolicy(),
		Now:       func() time.Time { return fixedNow },
	}
}

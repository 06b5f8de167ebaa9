package domain

import (
	"fmt"
	"time"
)

// TradeSide is one half of a completed trade: the roster that received the
// listed assets and the summed market value of those assets.
type TradeSide struct {
	RosterID int
	Team     string
	Assets   []string
	Value    float64
}

// Verdict is the fairness judgment for a trade. When Fair is true, Winner and
// Margin are zero values.
type Verdict struct {
	Fair   bool
	Winner string
	Margin float64
}

// String renders the verdict as boundary text.
func (v Verdict) String() string {
	if v.Fair {
		return "Fair trade"
	}
	return fmt.Sprintf("%s wins by %.0f", v.Winner, v.Margin)
}

// JudgeFairness compares the two sides of a trade against the configured
// fairness band. A value difference strictly inside the band is fair;
// otherwise the side with the larger total wins by the absolute difference.
func JudgeFairness(a, b TradeSide, band float64) Verdict {
	diff := a.Value - b.Value
	if diff < 0 {
		diff = -diff
	}
	if diff < band {
		return Verdict{Fair: true}
	}
	winner := a.Team
	if b.Value > a.Value {
		winner = b.Team
	}
	return Verdict{Winner: winner, Margin: diff}
}

// TradeEvent is the structured record handed to the notification boundary for
// a newly detected trade. Events are ephemeral: only the transaction id is
// retained afterwards, in the watcher's announced set.
type TradeEvent struct {
	TransactionID string
	Week          int
	SideA         TradeSide
	SideB         TradeSide
	Verdict       Verdict
	DetectedAt    time.Time
}

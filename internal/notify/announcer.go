package notify

import (
	"context"
	"fmt"
	"strings"

	"traderaven/internal/domain"
)

// TradeAnnouncer formats trade events into boundary text and dispatches them
// through a Notifier. Delivery is best effort; the caller decides whether a
// failed hand-off is retried.
type TradeAnnouncer struct {
	notifier *Notifier
}

// NewTradeAnnouncer creates a TradeAnnouncer.
func NewTradeAnnouncer(notifier *Notifier) *TradeAnnouncer {
	return &TradeAnnouncer{notifier: notifier}
}

// Announce sends the trade event as a trade_completed notification.
func (a *TradeAnnouncer) Announce(ctx context.Context, event domain.TradeEvent) error {
	title := fmt.Sprintf("New trade completed (Week %d)", event.Week)
	return a.notifier.Notify(ctx, EventTradeCompleted, title, FormatTradeEvent(event))
}

// FormatTradeEvent renders the boundary text for a trade event.
func FormatTradeEvent(event domain.TradeEvent) string {
	var b strings.Builder
	writeSide(&b, event.SideA)
	writeSide(&b, event.SideB)
	fmt.Fprintf(&b, "Value: %s %.0f — %s %.0f\n",
		event.SideA.Team, event.SideA.Value,
		event.SideB.Team, event.SideB.Value,
	)
	b.WriteString(event.Verdict.String())
	return b.String()
}

func writeSide(b *strings.Builder, side domain.TradeSide) {
	assets := "None"
	if len(side.Assets) > 0 {
		assets = strings.Join(side.Assets, ", ")
	}
	fmt.Fprintf(b, "%s gets: %s\n", side.Team, assets)
}

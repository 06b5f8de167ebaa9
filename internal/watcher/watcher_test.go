package watcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"traderaven/internal/domain"
	"traderaven/internal/platform/sleeper"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeFeed struct {
	txns         []sleeper.Transaction
	txnErr       error
	directory    map[string]string
	dirErr       error
	dirFetches   int
	weeksQueried []int
}

func (f *fakeFeed) Transactions(_ context.Context, week int) ([]sleeper.Transaction, error) {
	f.weeksQueried = append(f.weeksQueried, week)
	return f.txns, f.txnErr
}

func (f *fakeFeed) PlayerDirectory(context.Context) (map[string]string, error) {
	f.dirFetches++
	return f.directory, f.dirErr
}

type fakeResolver struct {
	values map[string]float64
}

func (r *fakeResolver) Resolve(_ context.Context, name string) (float64, string) {
	if v, ok := r.values[name]; ok {
		return v, name
	}
	return 0, ""
}

type fixedWeek int

func (w fixedWeek) CurrentWeek() int { return int(w) }

type fakeTeams map[int]string

func (t fakeTeams) TeamName(id int) string {
	if name, ok := t[id]; ok {
		return name
	}
	return "Team ?"
}

type fakeAnnouncer struct {
	events []domain.TradeEvent
	err    error
}

func (a *fakeAnnouncer) Announce(_ context.Context, event domain.TradeEvent) error {
	if a.err != nil {
		return a.err
	}
	a.events = append(a.events, event)
	return nil
}

type fakeCache struct {
	directory map[string]string
	getErr    error
	setErr    error
	sets      int
}

func (c *fakeCache) Get(context.Context) (map[string]string, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	if c.directory == nil {
		return nil, domain.ErrNotFound
	}
	return c.directory, nil
}

func (c *fakeCache) Set(_ context.Context, directory map[string]string) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.directory = directory
	c.sets++
	return nil
}

func completedTrade(id string, adds map[string]int, rosters ...int) sleeper.Transaction {
	return sleeper.Transaction{
		TransactionID: id,
		Type:          "trade",
		Status:        "complete",
		Adds:          adds,
		RosterIDs:     rosters,
	}
}

func newTestWatcher(feed *fakeFeed, cache domain.DirectoryCache, announcer *fakeAnnouncer) *Watcher {
	resolver := &fakeResolver{values: map[string]float64{
		"Justin Jefferson": 2000,
		"Bijan Robinson":   500,
	}}
	teams := fakeTeams{1: "Gridiron Gang", 2: "Waiver Wires"}
	return New(feed, cache, resolver, fixedWeek(5), teams, announcer, 200, discardLogger())
}

func TestPoll_AnnouncesCompletedTrade(t *testing.T) {
	feed := &fakeFeed{
		txns: []sleeper.Transaction{
			completedTrade("tx1", map[string]int{"p1": 1, "p2": 2}, 1, 2),
		},
		directory: map[string]string{"p1": "Bijan Robinson", "p2": "Justin Jefferson"},
	}
	announcer := &fakeAnnouncer{}
	w := newTestWatcher(feed, nil, announcer)

	if err := w.Poll(context.Background()); err != nil {
		t.Fatalf("Poll: %v", err)
	}

	if len(announcer.events) != 1 {
		t.Fatalf("announced %d events, want 1", len(announcer.events))
	}
	event := announcer.events[0]
	if event.TransactionID != "tx1" || event.Week != 5 {
		t.Errorf("event identity = (%q, %d)", event.TransactionID, event.Week)
	}
	if event.SideA.Team != "Gridiron Gang" || event.SideA.Value != 500 {
		t.Errorf("side A = %+v", event.SideA)
	}
	if event.SideB.Team != "Waiver Wires" || event.SideB.Value != 2000 {
		t.Errorf("side B = %+v", event.SideB)
	}
	if event.Verdict.Fair {
		t.Error("expected unfair verdict")
	}
	if event.Verdict.Winner != "Waiver Wires" || event.Verdict.Margin != 1500 {
		t.Errorf("verdict = %+v, want Waiver Wires by 1500", event.Verdict)
	}
	if !w.Known("tx1") {
		t.Error("announced trade not recorded as known")
	}
}

func TestPoll_SecondCycleIsIdempotent(t *testing.T) {
	feed := &fakeFeed{
		txns: []sleeper.Transaction{
			completedTrade("tx1", map[string]int{"p1": 1, "p2": 2}, 1, 2),
		},
		directory: map[string]string{"p1": "Bijan Robinson", "p2": "Justin Jefferson"},
	}
	announcer := &fakeAnnouncer{}
	w := newTestWatcher(feed, nil, announcer)

	for i := 0; i < 3; i++ {
		if err := w.Poll(context.Background()); err != nil {
			t.Fatalf("Poll %d: %v", i, err)
		}
	}

	if len(announcer.events) != 1 {
		t.Errorf("announced %d events across repeated polls, want 1", len(announcer.events))
	}
	if w.KnownCount() != 1 {
		t.Errorf("KnownCount = %d, want 1", w.KnownCount())
	}
}

func TestPoll_SkipsNonTradesAndPendingTrades(t *testing.T) {
	feed := &fakeFeed{
		txns: []sleeper.Transaction{
			{TransactionID: "w1", Type: "waiver", Status: "complete", RosterIDs: []int{1, 2}},
			{TransactionID: "t-pending", Type: "trade", Status: "pending", RosterIDs: []int{1, 2}},
		},
		directory: map[string]string{},
	}
	announcer := &fakeAnnouncer{}
	w := newTestWatcher(feed, nil, announcer)

	if err := w.Poll(context.Background()); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if len(announcer.events) != 0 {
		t.Errorf("announced %d events, want 0", len(announcer.events))
	}
	if w.KnownCount() != 0 {
		t.Errorf("KnownCount = %d, want 0", w.KnownCount())
	}
}

func TestPoll_AnnounceFailureRetriesNextCycle(t *testing.T) {
	feed := &fakeFeed{
		txns: []sleeper.Transaction{
			completedTrade("tx1", map[string]int{"p1": 1, "p2": 2}, 1, 2),
		},
		directory: map[string]string{"p1": "Bijan Robinson", "p2": "Justin Jefferson"},
	}
	announcer := &fakeAnnouncer{err: errors.New("webhook down")}
	w := newTestWatcher(feed, nil, announcer)

	if err := w.Poll(context.Background()); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if w.Known("tx1") {
		t.Fatal("failed announce must not record the trade")
	}

	// Delivery recovers; the same trade goes out on the next cycle.
	announcer.err = nil
	if err := w.Poll(context.Background()); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if len(announcer.events) != 1 || !w.Known("tx1") {
		t.Errorf("trade not retried after announce failure: events=%d known=%v",
			len(announcer.events), w.Known("tx1"))
	}
}

func TestPoll_SingleRosterTradeSkippedOthersProcessed(t *testing.T) {
	feed := &fakeFeed{
		txns: []sleeper.Transaction{
			completedTrade("bad", map[string]int{"p1": 1}, 1),
			completedTrade("good", map[string]int{"p1": 1, "p2": 2}, 1, 2),
		},
		directory: map[string]string{"p1": "Bijan Robinson", "p2": "Justin Jefferson"},
	}
	announcer := &fakeAnnouncer{}
	w := newTestWatcher(feed, nil, announcer)

	if err := w.Poll(context.Background()); err != nil {
		t.Fatalf("Poll: %v", err)
	}

	if len(announcer.events) != 1 || announcer.events[0].TransactionID != "good" {
		t.Errorf("expected only the two-roster trade, got %+v", announcer.events)
	}
	if w.Known("bad") {
		t.Error("malformed trade must not enter the known set")
	}
}

func TestPoll_ThreeRosterTradeTruncatedToFirstTwo(t *testing.T) {
	feed := &fakeFeed{
		txns: []sleeper.Transaction{
			completedTrade("tx3", map[string]int{"p1": 1, "p2": 2, "p3": 3}, 1, 2, 3),
		},
		directory: map[string]string{"p1": "Bijan Robinson", "p2": "Justin Jefferson", "p3": "Someone Else"},
	}
	announcer := &fakeAnnouncer{}
	w := newTestWatcher(feed, nil, announcer)

	if err := w.Poll(context.Background()); err != nil {
		t.Fatalf("Poll: %v", err)
	}

	if len(announcer.events) != 1 {
		t.Fatalf("announced %d events, want 1", len(announcer.events))
	}
	event := announcer.events[0]
	if event.SideA.RosterID != 1 || event.SideB.RosterID != 2 {
		t.Errorf("sides = (%d, %d), want first two rosters", event.SideA.RosterID, event.SideB.RosterID)
	}
}

func TestPoll_UnknownPlayerIDFallsBackToRawID(t *testing.T) {
	feed := &fakeFeed{
		txns: []sleeper.Transaction{
			completedTrade("tx1", map[string]int{"9999": 1, "p2": 2}, 1, 2),
		},
		directory: map[string]string{"p2": "Justin Jefferson"},
	}
	announcer := &fakeAnnouncer{}
	w := newTestWatcher(feed, nil, announcer)

	if err := w.Poll(context.Background()); err != nil {
		t.Fatalf("Poll: %v", err)
	}

	event := announcer.events[0]
	if len(event.SideA.Assets) != 1 || event.SideA.Assets[0] != "9999" {
		t.Errorf("side A assets = %v, want raw id fallback", event.SideA.Assets)
	}
	if event.SideA.Value != 0 {
		t.Errorf("unresolvable asset should contribute 0, got %g", event.SideA.Value)
	}
}

func TestPoll_FeedFailureAbortsCycle(t *testing.T) {
	feed := &fakeFeed{txnErr: errors.New("api down")}
	w := newTestWatcher(feed, nil, &fakeAnnouncer{})

	err := w.Poll(context.Background())
	if err == nil || !strings.Contains(err.Error(), "fetch transactions") {
		t.Errorf("expected transactions fetch error, got %v", err)
	}
}

func TestPoll_DirectoryCacheHitSkipsLiveFetch(t *testing.T) {
	feed := &fakeFeed{
		txns:      []sleeper.Transaction{},
		directory: map[string]string{"p1": "Bijan Robinson"},
	}
	cache := &fakeCache{directory: map[string]string{"p1": "Bijan Robinson"}}
	w := newTestWatcher(feed, cache, &fakeAnnouncer{})

	if err := w.Poll(context.Background()); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if feed.dirFetches != 0 {
		t.Errorf("live directory fetched %d times despite cache hit", feed.dirFetches)
	}
}

func TestPoll_DirectoryCacheMissFetchesAndWritesBack(t *testing.T) {
	feed := &fakeFeed{
		txns:      []sleeper.Transaction{},
		directory: map[string]string{"p1": "Bijan Robinson"},
	}
	cache := &fakeCache{}
	w := newTestWatcher(feed, cache, &fakeAnnouncer{})

	if err := w.Poll(context.Background()); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if feed.dirFetches != 1 {
		t.Errorf("live fetches = %d, want 1", feed.dirFetches)
	}
	if cache.sets != 1 {
		t.Errorf("cache writes = %d, want 1", cache.sets)
	}
}

func TestPoll_CacheErrorsDegradeToLiveFetch(t *testing.T) {
	feed := &fakeFeed{
		txns:      []sleeper.Transaction{},
		directory: map[string]string{"p1": "Bijan Robinson"},
	}
	cache := &fakeCache{getErr: errors.New("redis down"), setErr: errors.New("redis down")}
	w := newTestWatcher(feed, cache, &fakeAnnouncer{})

	if err := w.Poll(context.Background()); err != nil {
		t.Fatalf("cache failure must not fail the cycle: %v", err)
	}
	if feed.dirFetches != 1 {
		t.Errorf("live fetches = %d, want 1", feed.dirFetches)
	}
}

// blockingAnnouncer parks inside Announce until released, so a test can hold
// one cycle open while issuing another.
type blockingAnnouncer struct {
	entered chan struct{}
	release chan struct{}

	mu     sync.Mutex
	events []domain.TradeEvent
}

func (a *blockingAnnouncer) Announce(_ context.Context, event domain.TradeEvent) error {
	a.entered <- struct{}{}
	<-a.release
	a.mu.Lock()
	a.events = append(a.events, event)
	a.mu.Unlock()
	return nil
}

func (a *blockingAnnouncer) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.events)
}

func TestPoll_OverlappingCycleRejected(t *testing.T) {
	feed := &fakeFeed{
		txns: []sleeper.Transaction{
			completedTrade("tx1", map[string]int{"p1": 1, "p2": 2}, 1, 2),
		},
		directory: map[string]string{"p1": "Bijan Robinson", "p2": "Justin Jefferson"},
	}
	announcer := &blockingAnnouncer{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	resolver := &fakeResolver{values: map[string]float64{
		"Justin Jefferson": 2000,
		"Bijan Robinson":   500,
	}}
	w := New(feed, nil, resolver, fixedWeek(5), fakeTeams{}, announcer, 200, discardLogger())

	done := make(chan error, 1)
	go func() { done <- w.Poll(context.Background()) }()

	// The first cycle is now parked inside the announce step, before the id
	// is recorded as known.
	<-announcer.entered

	if err := w.Poll(context.Background()); !errors.Is(err, ErrPollInProgress) {
		t.Fatalf("overlapping poll returned %v, want ErrPollInProgress", err)
	}

	close(announcer.release)
	if err := <-done; err != nil {
		t.Fatalf("first poll: %v", err)
	}

	if got := announcer.count(); got != 1 {
		t.Errorf("tx1 announced %d times across overlapping cycles, want 1", got)
	}
	if w.KnownCount() != 1 {
		t.Errorf("KnownCount = %d, want 1", w.KnownCount())
	}
}

func TestPoll_QueriesCurrentWeek(t *testing.T) {
	feed := &fakeFeed{directory: map[string]string{}}
	w := newTestWatcher(feed, nil, &fakeAnnouncer{})

	if err := w.Poll(context.Background()); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if len(feed.weeksQueried) != 1 || feed.weeksQueried[0] != 5 {
		t.Errorf("weeks queried = %v, want [5]", feed.weeksQueried)
	}
}

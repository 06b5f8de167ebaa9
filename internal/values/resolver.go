package values

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Diagnostics is the optional store-side substring search consulted on a full
// resolution miss. Results are logged only; they never change the outcome.
type Diagnostics interface {
	FindLike(ctx context.Context, pattern string) ([]string, error)
}

// Resolver maps an arbitrary input name to a canonical table key and its
// value: trim, manual override, exact match, then best fuzzy match at or
// above the cutoff. An unmatched name resolves to (0, "") by policy rather
// than failing the caller's computation.
type Resolver struct {
	table     *Table
	overrides map[string]string
	cutoff    float64
	diag      Diagnostics
	logger    *slog.Logger
}

// NewResolver creates a Resolver over the given table. overrides maps alias
// forms to canonical names and is never mutated. diag may be nil.
func NewResolver(table *Table, overrides map[string]string, cutoff float64, diag Diagnostics, logger *slog.Logger) *Resolver {
	return &Resolver{
		table:     table,
		overrides: overrides,
		cutoff:    cutoff,
		diag:      diag,
		logger:    logger.With(slog.String("component", "resolver")),
	}
}

// Resolve returns the market value and canonical name for input. Given an
// unchanged table it is a pure function of its input.
func (r *Resolver) Resolve(ctx context.Context, input string) (float64, string) {
	name := strings.TrimSpace(input)

	if canonical, ok := r.overrides[name]; ok {
		name = canonical
	}

	if v, ok := r.table.Get(name); ok {
		return v, name
	}

	if best, ok := r.closestMatch(name); ok {
		v, _ := r.table.Get(best)
		r.logger.DebugContext(ctx, "fuzzy match",
			slog.String("input", input),
			slog.String("matched", best),
		)
		return v, best
	}

	r.logMissDiagnostics(ctx, name)
	return 0, ""
}

// closestMatch scans every table key and returns the single best match whose
// similarity ratio is at or above the cutoff. Keys are scanned in sorted
// order and only a strictly better score replaces the running best, so ties
// break deterministically.
func (r *Resolver) closestMatch(name string) (string, bool) {
	target := splitChars(name)
	m := difflib.NewMatcher(nil, target)

	best := ""
	bestScore := 0.0
	for _, candidate := range r.table.Names() {
		m.SetSeq1(splitChars(candidate))
		// Cheap upper bounds first; Ratio is quadratic in the worst case.
		if m.RealQuickRatio() < r.cutoff || m.QuickRatio() < r.cutoff {
			continue
		}
		if score := m.Ratio(); score >= r.cutoff && score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	return best, best != ""
}

// logMissDiagnostics surfaces near-miss store contents for a name that failed
// every resolution step. Read-only; errors are deliberately ignored.
func (r *Resolver) logMissDiagnostics(ctx context.Context, name string) {
	if r.diag == nil {
		return
	}
	similar, err := r.diag.FindLike(ctx, name)
	if err != nil || len(similar) == 0 {
		r.logger.DebugContext(ctx, "no match for player name", slog.String("input", name))
		return
	}
	r.logger.DebugContext(ctx, "no match for player name",
		slog.String("input", name),
		slog.Any("similar_stored_names", similar),
	)
}

func splitChars(s string) []string {
	return strings.Split(s, "")
}

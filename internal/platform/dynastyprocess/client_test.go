package dynastyprocess

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"traderaven/internal/domain"
)

func TestParseCSV_LocatesColumnsByHeader(t *testing.T) {
	csv := `player,pos,team,value_1qb,value_2qb
Justin Jefferson,WR,MIN,9500,9600
Bijan Robinson,RB,ATL,8200,8100
`
	values, err := parseCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}
	if len(values) != 2 {
		t.Fatalf("got %d rows, want 2", len(values))
	}
	if values["Justin Jefferson"] != 9500 {
		t.Errorf("Jefferson = %g, want value_1qb column", values["Justin Jefferson"])
	}
}

func TestParseCSV_ColumnOrderDoesNotMatter(t *testing.T) {
	csv := `value_1qb,player
9500,Justin Jefferson
`
	values, err := parseCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}
	if values["Justin Jefferson"] != 9500 {
		t.Errorf("values = %v", values)
	}
}

func TestParseCSV_SkipsBadRowsKeepsRest(t *testing.T) {
	csv := `player,value_1qb
Justin Jefferson,9500
,1234
Bad Value,not-a-number
Bijan Robinson,8200
`
	values, err := parseCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}
	if len(values) != 2 {
		t.Errorf("got %d rows, want 2 (bad rows skipped): %v", len(values), values)
	}
}

func TestParseCSV_MissingColumnsFails(t *testing.T) {
	csv := `name,value
Justin Jefferson,9500
`
	if _, err := parseCSV(strings.NewReader(csv)); err == nil {
		t.Fatal("expected error for missing player/value_1qb columns")
	}
}

func TestParseCSV_ZeroValidRowsIsEmptyDataset(t *testing.T) {
	csv := `player,value_1qb
,1
Bad,xyz
`
	_, err := parseCSV(strings.NewReader(csv))
	if !errors.Is(err, domain.ErrEmptyDataset) {
		t.Fatalf("expected ErrEmptyDataset, got %v", err)
	}
}

func TestFetchValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("player,value_1qb\nJustin Jefferson,9500\n"))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)
	values, err := c.FetchValues(context.Background())
	if err != nil {
		t.Fatalf("FetchValues: %v", err)
	}
	if values["Justin Jefferson"] != 9500 {
		t.Errorf("values = %v", values)
	}
}

func TestFetchValues_Non2xxFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)
	if _, err := c.FetchValues(context.Background()); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

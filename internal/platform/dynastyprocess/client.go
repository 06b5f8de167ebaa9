// Package dynastyprocess fetches the bulk player-value dataset published as a
// CSV by the DynastyProcess data project. Values are ingested verbatim; this
// client makes no attempt at a valuation model of its own.
package dynastyprocess

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"traderaven/internal/domain"
)

// Client downloads and parses the player-value CSV.
type Client struct {
	sourceURL  string
	httpClient *http.Client
}

// NewClient creates a client for the given CSV URL.
func NewClient(sourceURL string) *Client {
	return &Client{
		sourceURL: sourceURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SourceLabel identifies this value source on the control surface.
func (c *Client) SourceLabel() string {
	return "DynastyProcess CSV"
}

// FetchValues downloads the CSV and returns a player-name to value map built
// from the "player" and "value_1qb" columns. Rows with a missing name or an
// unparseable value are skipped; a dataset that yields zero rows is an error
// so callers never replace a good table with an empty one.
func (c *Client) FetchValues(ctx context.Context) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dynastyprocess: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dynastyprocess: fetch values: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("dynastyprocess: unexpected status %d", resp.StatusCode)
	}

	values, err := parseCSV(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("dynastyprocess: parse values: %w", err)
	}
	return values, nil
}

// parseCSV reads the header row to locate the player and value_1qb columns,
// then collects one (name, value) pair per valid row.
func parseCSV(r io.Reader) (map[string]float64, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	nameCol, valueCol := -1, -1
	for i, col := range header {
		switch col {
		case "player":
			nameCol = i
		case "value_1qb":
			valueCol = i
		}
	}
	if nameCol < 0 || valueCol < 0 {
		return nil, fmt.Errorf("missing player/value_1qb columns in header %v", header)
	}

	values := make(map[string]float64)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Skip malformed rows, keep the rest of the batch.
			continue
		}
		if nameCol >= len(record) || valueCol >= len(record) {
			continue
		}
		name := record[nameCol]
		if name == "" {
			continue
		}
		value, err := strconv.ParseFloat(record[valueCol], 64)
		if err != nil {
			continue
		}
		values[name] = value
	}

	if len(values) == 0 {
		return nil, domain.ErrEmptyDataset
	}
	return values, nil
}

package stac

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/c360studio/geocrosswalk/jsondoc"
	"github.com/c360studio/geocrosswalk/spatial"
	"github.com/c360studio/geocrosswalk/temporal"
)

// ErrNoItems is returned when a search yields no dated items.
var ErrNoItems = errors.New("search returned no dated items")

// Query is a catalog item search.
type Query struct {
	Collections []string
	// BBox is [west, south, east, north].
	BBox []float64
	// Datetime is a "start/end" range; either bound may be "..".
	Datetime string
	Limit    int
}

// SearchClient runs item searches against a remote catalog and returns the
// raw item documents.
type SearchClient interface {
	Search(ctx context.Context, q Query) ([][]byte, error)
}

// FixtureClient answers searches from an in-memory list of items.
type FixtureClient struct {
	Items [][]byte
}

// Search implements SearchClient.
func (c *FixtureClient) Search(ctx context.Context, q Query) ([][]byte, error) {
	var out [][]byte
	for i, raw := range c.Items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := jsondoc.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("fixture item %d: %w", i, err)
		}
		if !matches(doc, q) {
			continue
		}
		out = append(out, raw)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func matches(doc jsondoc.Value, q Query) bool {
	if len(q.Collections) > 0 && !slices.Contains(q.Collections, doc.Get("collection").Str()) {
		return false
	}
	if len(q.BBox) > 0 {
		want, ok := spatial.FromBBox(q.BBox, spatial.WSEN).Get()
		have, hasBox := spatial.FromBBox(doc.Get("bbox").Floats(), spatial.WSEN).Get()
		if ok && (!hasBox || have.West > want.East || have.East < want.West ||
			have.South > want.North || have.North < want.South) {
			return false
		}
	}
	if q.Datetime != "" {
		when, ok := temporal.Parse(itemDatetime(doc)).Get()
		if !ok {
			return false
		}
		// Bounds are read separately so an open ".." start still filters.
		lo, hi, _ := strings.Cut(q.Datetime, "/")
		if start, ok := temporal.Parse(lo).Get(); ok && when.Time.Before(start.Time) {
			return false
		}
		if end, ok := temporal.Parse(hi).Get(); ok && when.Time.After(end.Time) {
			return false
		}
	}
	return true
}

func itemDatetime(doc jsondoc.Value) string {
	return doc.Get("properties").First("datetime", "start_datetime").Str()
}

// SelectMonthly keeps the first item of each calendar month, in month
// order. Items without a parsable datetime are dropped.
func SelectMonthly(items [][]byte) ([][]byte, error) {
	byMonth := make(map[string][]byte)
	var months []string
	for i, raw := range items {
		doc, err := jsondoc.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		ts, ok := temporal.Parse(itemDatetime(doc)).Get()
		if !ok {
			continue
		}
		month := ts.Time.UTC().Format("2006-01")
		if _, seen := byMonth[month]; seen {
			continue
		}
		byMonth[month] = raw
		months = append(months, month)
	}
	sort.Strings(months)
	out := make([][]byte, len(months))
	for i, m := range months {
		out[i] = byMonth[m]
	}
	return out, nil
}

type featureCollection struct {
	Type               string            `json:"type"`
	TemporalResolution string            `json:"geocr:temporalResolution,omitempty"`
	Features           []json.RawMessage `json:"features"`
}

// CollectTimeSeries searches the catalog, keeps one item per month and
// wraps the result in an item collection the time series adapter reads.
func CollectTimeSeries(ctx context.Context, client SearchClient, q Query) ([]byte, error) {
	items, err := client.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}
	monthly, err := SelectMonthly(items)
	if err != nil {
		return nil, fmt.Errorf("select monthly items: %w", err)
	}
	if len(monthly) == 0 {
		return nil, ErrNoItems
	}
	fc := featureCollection{Type: "FeatureCollection", TemporalResolution: "1 month"}
	for _, raw := range monthly {
		fc.Features = append(fc.Features, json.RawMessage(raw))
	}
	return json.Marshal(fc)
}

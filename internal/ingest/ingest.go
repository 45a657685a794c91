package ingest

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Field names expected on each uploaded record.
const (
	fieldAlbum    = "album"
	fieldYear     = "year"
	fieldPosition = "US_peak_chart_post"
)

// noChartSentinel is the conventional "did not chart" placeholder.
const noChartSentinel = "-"

// MalformedPayloadError indicates the raw payload could not be decoded or
// parsed into a record collection. Stage is "decode" or "parse".
type MalformedPayloadError struct {
	Stage string
	Err   error
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("malformed payload (%s): %v", e.Stage, e.Err)
}

func (e *MalformedPayloadError) Unwrap() error { return e.Err }

// Record is one album row after normalization. Position is nil when the
// record did not chart (sentinel, absent, or non-numeric input). YearOK is
// false when the year field was absent or not integer-like; such records
// survive ingestion and fail later in year-dependent derivations.
type Record struct {
	Album    string
	Year     int
	YearOK   bool
	Position *float64
}

// Charted reports whether the record has a normalized chart position.
func (r Record) Charted() bool { return r.Position != nil }

// Table is an ordered album collection. Input order is preserved end to end;
// every derivation that filters the table keeps relative order.
type Table []Record

// Charting returns the subset of records with a chart position, in table
// order.
func (t Table) Charting() Table {
	out := make(Table, 0, len(t))
	for _, r := range t {
		if r.Charted() {
			out = append(out, r)
		}
	}
	return out
}

// Decode strips the data-URI style envelope ("<meta>,<base64-body>") and
// returns the decoded document bytes.
func Decode(payload []byte) ([]byte, error) {
	_, body, found := bytes.Cut(payload, []byte{','})
	if !found {
		return nil, &MalformedPayloadError{Stage: "decode", Err: fmt.Errorf("missing envelope separator ','")}
	}
	doc, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(body)))
	if err != nil {
		return nil, &MalformedPayloadError{Stage: "decode", Err: fmt.Errorf("base64 body: %w", err)}
	}
	return doc, nil
}

// Parse reads a JSON array of flat objects and normalizes each element into
// a Record. The top-level value must be an array and every element an
// object; anything else is a MalformedPayloadError.
func Parse(doc []byte) (Table, error) {
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, &MalformedPayloadError{Stage: "parse", Err: fmt.Errorf("expected a JSON array of objects: %w", err)}
	}
	if dec.More() {
		return nil, &MalformedPayloadError{Stage: "parse", Err: fmt.Errorf("trailing data after record collection")}
	}

	table := make(Table, 0, len(raw))
	for i, m := range raw {
		if m == nil {
			return nil, &MalformedPayloadError{Stage: "parse", Err: fmt.Errorf("record %d: null is not an object", i)}
		}
		rec := Record{}
		if v, ok := m[fieldAlbum]; ok {
			rec.Album = coerceLabel(v)
		}
		rec.Year, rec.YearOK = coerceYear(m[fieldYear])
		rec.Position = coercePosition(m[fieldPosition])
		table = append(table, rec)
	}
	return table, nil
}

// Ingest decodes the enveloped payload and parses the record collection.
func Ingest(payload []byte) (Table, error) {
	doc, err := Decode(payload)
	if err != nil {
		return nil, err
	}
	return Parse(doc)
}

// coercePosition normalizes the peak chart position. The "-" sentinel,
// null/absent values, and anything that does not parse as a number all mean
// "did not chart" and map to nil. Coercion failure is policy here, never an
// error.
func coercePosition(v any) *float64 {
	switch x := v.(type) {
	case nil:
		return nil
	case json.Number:
		f, err := x.Float64()
		if err != nil || math.IsNaN(f) {
			return nil
		}
		return &f
	case float64:
		if math.IsNaN(x) {
			return nil
		}
		return &x
	case int:
		f := float64(x)
		return &f
	case string:
		s := strings.TrimSpace(x)
		if s == "" || s == noChartSentinel {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// coerceYear accepts ints, integral floats, and numeric-looking strings.
// Non-integer-like values are flagged rather than rejected; the aggregator
// reports them when a derivation needs the year.
func coerceYear(v any) (int, bool) {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return int(n), true
		}
		if f, err := x.Float64(); err == nil {
			return intFromFloat(f)
		}
		return 0, false
	case float64:
		return intFromFloat(x)
	case int:
		return x, true
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return int(n), true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return intFromFloat(f)
		}
		return 0, false
	default:
		return 0, false
	}
}

func intFromFloat(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func coerceLabel(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", x)
	}
}

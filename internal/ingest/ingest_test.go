package ingest_test

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/KaramelBytes/chartloom-cli/internal/ingest"
)

func envelope(doc string) []byte {
	return []byte("data:application/json;base64," + base64.StdEncoding.EncodeToString([]byte(doc)))
}

func TestDecodeStripsEnvelope(t *testing.T) {
	doc, err := ingest.Decode(envelope(`[{"album":"A"}]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(doc) != `[{"album":"A"}]` {
		t.Fatalf("unexpected decoded doc: %q", doc)
	}
}

func TestDecodeMissingSeparator(t *testing.T) {
	_, err := ingest.Decode([]byte("no-comma-here"))
	var mp *ingest.MalformedPayloadError
	if !errors.As(err, &mp) {
		t.Fatalf("expected MalformedPayloadError, got %v", err)
	}
	if mp.Stage != "decode" {
		t.Fatalf("expected decode stage, got %q", mp.Stage)
	}
}

func TestDecodeBadBase64(t *testing.T) {
	_, err := ingest.Decode([]byte("data:application/json;base64,@@@not-base64@@@"))
	var mp *ingest.MalformedPayloadError
	if !errors.As(err, &mp) {
		t.Fatalf("expected MalformedPayloadError, got %v", err)
	}
}

func TestParsePreservesOrder(t *testing.T) {
	doc := `[
		{"album":"First","year":1999,"US_peak_chart_post":12},
		{"album":"Second","year":1997,"US_peak_chart_post":"-"},
		{"album":"Third","year":2001,"US_peak_chart_post":"4"}
	]`
	table, err := ingest.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(table) != 3 {
		t.Fatalf("expected 3 records, got %d", len(table))
	}
	for i, want := range []string{"First", "Second", "Third"} {
		if table[i].Album != want {
			t.Fatalf("record %d: expected album %q, got %q", i, want, table[i].Album)
		}
	}
	charting := table.Charting()
	if len(charting) != 2 || charting[0].Album != "First" || charting[1].Album != "Third" {
		t.Fatalf("charting subset lost relative order: %+v", charting)
	}
}

func TestParseRejectsNonArray(t *testing.T) {
	for _, doc := range []string{`{"album":"A"}`, `"just a string"`, `42`, `not json at all`, `[1,2,3]`} {
		_, err := ingest.Parse([]byte(doc))
		var mp *ingest.MalformedPayloadError
		if !errors.As(err, &mp) {
			t.Fatalf("doc %q: expected MalformedPayloadError, got %v", doc, err)
		}
		if mp.Stage != "parse" {
			t.Fatalf("doc %q: expected parse stage, got %q", doc, mp.Stage)
		}
	}
}

// Coercion law: sentinel, absent, null, and non-numeric values normalize to
// missing; numeric values and numeric-looking strings normalize to their
// parsed number.
func TestPositionCoercion(t *testing.T) {
	doc := `[
		{"album":"num","year":2000,"US_peak_chart_post":3},
		{"album":"float","year":2000,"US_peak_chart_post":7.5},
		{"album":"numstr","year":2000,"US_peak_chart_post":"41"},
		{"album":"sentinel","year":2000,"US_peak_chart_post":"-"},
		{"album":"absent","year":2000},
		{"album":"null","year":2000,"US_peak_chart_post":null},
		{"album":"junk","year":2000,"US_peak_chart_post":"n/a"},
		{"album":"empty","year":2000,"US_peak_chart_post":""}
	]`
	table, err := ingest.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	wantNum := map[string]float64{"num": 3, "float": 7.5, "numstr": 41}
	for _, r := range table {
		if want, ok := wantNum[r.Album]; ok {
			if r.Position == nil || *r.Position != want {
				t.Fatalf("%s: expected position %v, got %v", r.Album, want, r.Position)
			}
			continue
		}
		if r.Position != nil {
			t.Fatalf("%s: expected missing position, got %v", r.Album, *r.Position)
		}
	}
}

func TestYearCoercion(t *testing.T) {
	doc := `[
		{"album":"int","year":1994,"US_peak_chart_post":1},
		{"album":"str","year":"1995","US_peak_chart_post":1},
		{"album":"float","year":1996.0,"US_peak_chart_post":1},
		{"album":"bad","year":"nineteen","US_peak_chart_post":1},
		{"album":"none","US_peak_chart_post":1}
	]`
	table, err := ingest.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	wantYear := map[string]int{"int": 1994, "str": 1995, "float": 1996}
	for _, r := range table {
		if want, ok := wantYear[r.Album]; ok {
			if !r.YearOK || r.Year != want {
				t.Fatalf("%s: expected year %d, got %d (ok=%t)", r.Album, want, r.Year, r.YearOK)
			}
			continue
		}
		if r.YearOK {
			t.Fatalf("%s: expected invalid year, got %d", r.Album, r.Year)
		}
	}
}

func TestIngestEndToEnd(t *testing.T) {
	table, err := ingest.Ingest(envelope(`[{"album":"A","year":2000,"US_peak_chart_post":"3"}]`))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(table) != 1 || table[0].Album != "A" || table[0].Year != 2000 {
		t.Fatalf("unexpected table: %+v", table)
	}
	if table[0].Position == nil || *table[0].Position != 3 {
		t.Fatalf("expected position 3, got %v", table[0].Position)
	}
}

func TestIngestEmptyCollection(t *testing.T) {
	table, err := ingest.Ingest(envelope(`[]`))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(table) != 0 {
		t.Fatalf("expected empty table, got %d records", len(table))
	}
}

package pipeline_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/KaramelBytes/chartloom-cli/internal/pipeline"
)

func envelope(doc string) []byte {
	return []byte("data:application/json;base64," + base64.StdEncoding.EncodeToString([]byte(doc)))
}

const scenarioDoc = `[
	{"album":"A","year":2000,"US_peak_chart_post":"3"},
	{"album":"B","year":2000,"US_peak_chart_post":"-"},
	{"album":"C","year":2001,"US_peak_chart_post":"7"}
]`

func TestRunScenario(t *testing.T) {
	res := pipeline.Run(envelope(scenarioDoc))
	if !res.OK() {
		t.Fatalf("run failed: %s", res.Error)
	}
	v := res.Views
	if len(v.Line) != 2 || v.Line[0].Album != "A" || v.Line[1].Album != "C" {
		t.Fatalf("unexpected line view: %+v", v.Line)
	}
	if len(v.Releases) != 2 || v.Releases[0].Year != 2000 || v.Releases[0].Count != 2 ||
		v.Releases[1].Year != 2001 || v.Releases[1].Count != 1 {
		t.Fatalf("unexpected histogram: %+v", v.Releases)
	}
	if len(v.Tiers) != 3 {
		t.Fatalf("unexpected tiers: %+v", v.Tiers)
	}
}

// Running the pipeline twice on the same payload must serialize to identical
// bytes.
func TestRunIdempotent(t *testing.T) {
	payload := envelope(scenarioDoc)
	first, err := json.Marshal(pipeline.Run(payload))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := json.Marshal(pipeline.Run(payload))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("results differ:\n%s\n%s", first, second)
	}
}

func TestRunMalformedPayload(t *testing.T) {
	for _, payload := range [][]byte{
		[]byte("no-envelope"),
		envelope(`{"not":"an array"}`),
		envelope(`[{"album":"A"`),
	} {
		res := pipeline.Run(payload)
		if res.Error == "" {
			t.Fatalf("payload %q: expected error", payload)
		}
		assertEmptyViews(t, res)
	}
}

func TestRunInvalidYear(t *testing.T) {
	res := pipeline.Run(envelope(`[{"album":"A","year":"unknown","US_peak_chart_post":1}]`))
	if res.Error == "" {
		t.Fatal("expected error for non-orderable year")
	}
	assertEmptyViews(t, res)
}

func TestRunEmptyCollection(t *testing.T) {
	res := pipeline.Run(envelope(`[]`))
	if res.Error != "" {
		t.Fatalf("empty collection is success, got error: %s", res.Error)
	}
	assertEmptyViews(t, res)
}

func TestRunRecordsSkipsEnvelope(t *testing.T) {
	res := pipeline.RunRecords([]byte(scenarioDoc))
	if !res.OK() {
		t.Fatalf("run failed: %s", res.Error)
	}
	if len(res.Views.Scatter) != 2 {
		t.Fatalf("unexpected scatter: %+v", res.Views.Scatter)
	}
}

// Empty views must serialize as arrays so the rendering side always sees the
// same shape.
func TestFailureShapeStable(t *testing.T) {
	b, err := json.Marshal(pipeline.Run([]byte("garbage")))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, frag := range []string{`"line":[]`, `"releases":[]`, `"scatter":[]`, `"tiers":[]`, `"years":[]`} {
		if !bytes.Contains(b, []byte(frag)) {
			t.Fatalf("serialized failure missing %s: %s", frag, b)
		}
	}
}

func assertEmptyViews(t *testing.T, res pipeline.Result) {
	t.Helper()
	v := res.Views
	if len(v.Line) != 0 || len(v.Releases) != 0 || len(v.Scatter) != 0 ||
		len(v.Heat.Years) != 0 || len(v.Tiers) != 0 {
		t.Fatalf("expected five empty views, got %+v", v)
	}
}

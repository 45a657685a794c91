// Package pipeline is the boundary between the data transformation and its
// callers. Run never returns a Go error: every failure is converted into the
// fixed Result shape so the rendering side always receives five views plus
// an error string.
package pipeline

import (
	"github.com/KaramelBytes/chartloom-cli/internal/ingest"
	"github.com/KaramelBytes/chartloom-cli/internal/views"
)

// Result is the output contract. On failure Views holds five empty views
// and Error is non-empty; on success Error is empty. There is no partial
// population.
type Result struct {
	Views views.Bundle `json:"views"`
	Error string       `json:"error"`
}

// OK reports whether the run succeeded.
func (r Result) OK() bool { return r.Error == "" }

// Run ingests an enveloped payload and builds the five views. Stateless and
// synchronous; concurrent calls on independent payloads are fully
// independent.
func Run(payload []byte) Result {
	table, err := ingest.Ingest(payload)
	if err != nil {
		return fail(err)
	}
	return build(table)
}

// RunRecords runs the same contract on an already-decoded JSON document,
// skipping the envelope.
func RunRecords(doc []byte) Result {
	table, err := ingest.Parse(doc)
	if err != nil {
		return fail(err)
	}
	return build(table)
}

func build(table ingest.Table) Result {
	b, err := views.Build(table)
	if err != nil {
		return fail(err)
	}
	return Result{Views: b}
}

func fail(err error) Result {
	return Result{Views: views.Empty(), Error: err.Error()}
}

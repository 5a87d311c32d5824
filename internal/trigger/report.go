package trigger

import (
	"encoding/json"
	"errors"

	"github.com/specialistvlad/pagegridgo/internal/model"
	"github.com/specialistvlad/pagegridgo/internal/value"
)

// Result is the outcome of one trigger in a batch. Exactly one of Result and
// Err is meaningful.
type Result struct {
	Trigger model.Trigger
	Result  value.Value
	Err     error
}

func (r Result) OK() bool { return r.Err == nil }

// MarshalJSON renders the error as its message.
func (r Result) MarshalJSON() ([]byte, error) {
	out := struct {
		Trigger model.Trigger `json:"trigger"`
		Success bool          `json:"success"`
		Result  value.Value   `json:"result,omitzero"`
		Error   string        `json:"error,omitempty"`
	}{Trigger: r.Trigger, Success: r.OK(), Result: r.Result}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

// Report is the per-batch execution report.
type Report struct {
	BatchID string   `json:"batchId"`
	Results []Result `json:"results"`
	// Continuation names the workflow class run after the batch, if any.
	Continuation        string   `json:"continuation,omitempty"`
	ContinuationResults []Result `json:"continuationResults,omitempty"`
}

// Failed returns the failed entries of the batch and its continuation.
func (r *Report) Failed() []Result {
	var failed []Result
	for _, res := range append(append([]Result{}, r.Results...), r.ContinuationResults...) {
		if !res.OK() {
			failed = append(failed, res)
		}
	}
	return failed
}

// OK reports whether every trigger succeeded.
func (r *Report) OK() bool { return len(r.Failed()) == 0 }

// Err joins the failures, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, res.Err)
	}
	return errors.Join(errs...)
}

package models

// BulkActionRequest selects the containers a batch action applies to.
// Selection is the union of IDs, Names (case-insensitive) and, when
// IncludeAll is set, every currently listed container. An empty
// selection yields zero targets, not an error.
type BulkActionRequest struct {
	IDs        []string `json:"ids,omitempty"`
	Names      []string `json:"names,omitempty"`
	IncludeAll bool     `json:"includeAll,omitempty"`
}

// ActionFailure records one target whose action failed.
type ActionFailure struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

// BulkActionResult is the outcome of a batch action. Succeeded and
// Failed are ordered by completion and partition the attempted target
// set: len(Succeeded)+len(Failed) == Total.
//
// Degraded is set when the inventory listing itself failed and the
// action ran against an empty inventory. Callers need this to tell
// "the host has no containers" apart from "the daemon was unreachable".
type BulkActionResult struct {
	OperationID string          `json:"operationId"`
	Action      string          `json:"action"`
	Total       int             `json:"total"`
	Succeeded   []string        `json:"succeeded"`
	Failed      []ActionFailure `json:"failed"`
	Degraded    bool            `json:"degraded,omitempty"`
}

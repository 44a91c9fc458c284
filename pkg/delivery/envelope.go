package delivery

import "time"

// Result is one slot of the results sequence: a singleton mapping of part
// name to its value or error payload.
type Result map[string]any

// Meta describes the window a response covers.
type Meta struct {
	TotalParts       int       `json:"total_parts"`
	CurrentChunkSize int       `json:"current_chunk_size"`
	HasMore          bool      `json:"has_more"`
	Timestamp        time.Time `json:"timestamp"`
}

// Envelope is the cursor-flow response. Cursor is nil exactly when no part
// remains after the current window.
type Envelope struct {
	Results []Result `json:"results"`
	Cursor  *string  `json:"cursor"`
	Meta    Meta     `json:"meta"`
}

// KeyedEnvelope is the key-based access response.
type KeyedEnvelope struct {
	Results       map[string]any `json:"results"`
	RequestedKeys []string       `json:"requested_keys"`
	Timestamp     time.Time      `json:"timestamp"`
}

// Error payload classifications attached to individual part slots.
const (
	errTypeLoading  = "loading_error"
	errTypeTimeout  = "timeout_error"
	errTypeNotFound = "not_found"
)

func errorPayload(message, errType string) map[string]any {
	return map[string]any{
		"error": message,
		"type":  errType,
	}
}

package serve

import (
	"encoding/json"

	"github.com/praetorian-inc/urlspan/pkg/scanner"
	"github.com/praetorian-inc/urlspan/pkg/types"
)

// Request represents an incoming NDJSON request
type Request struct {
	Type    string          `json:"type"` // "extract" | "scan" | "scan_batch" | "findings" | "close"
	Payload json.RawMessage `json:"payload"`
}

// ExtractPayload is the payload for "extract" requests
type ExtractPayload struct {
	Inputs []string `json:"inputs"`
}

// ScanPayload is the payload for "scan" requests
type ScanPayload struct {
	Content string `json:"content"`
	Source  string `json:"source"`
}

// ScanBatchPayload is the payload for "scan_batch" requests
type ScanBatchPayload struct {
	Items []scanner.ContentItem `json:"items"`
}

// Response represents an outgoing NDJSON response
type Response struct {
	Success bool            `json:"success"`
	Type    string          `json:"type"` // "ready" | request type | "error"
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ReadyData is the data field for "ready" responses
type ReadyData struct {
	Version string   `json:"version"`
	Schemes []string `json:"schemes"`
}

// ExtractResult is one entry of an "extract" response. Extraction is nil
// when the input holds no URL.
type ExtractResult struct {
	Input      string            `json:"input"`
	Extraction *types.Extraction `json:"extraction"`
}

// FindingData summarizes one distinct URL for "findings" responses.
type FindingData struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Host        string `json:"host"`
	Occurrences int    `json:"occurrences"`
}

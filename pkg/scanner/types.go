package scanner

import "github.com/praetorian-inc/urlspan/pkg/types"

// ContentItem represents a content item to scan
type ContentItem struct {
	Source   string            `json:"source"`   // e.g., "stdin", "notes.md", "page:3"
	Content  string            `json:"content"`  // the actual content to scan
	Metadata map[string]string `json:"metadata"` // optional metadata
}

// ScanResult represents scan results for a single item
type ScanResult struct {
	Source  string         `json:"source"`
	Matches []*types.Match `json:"matches"`
}

// BatchScanResult represents batch scan results
type BatchScanResult struct {
	Results []ScanResult `json:"results"`
	Total   int          `json:"total"`
}

package types

// Extraction is a confirmed URL found inside a single whitespace-free input.
type Extraction struct {
	Span   Span   `json:"span"`
	URL    string `json:"url"`
	Scheme string `json:"scheme"`
	Host   string `json:"host"`
}

package types

// Snippet holds the URL text and the lines around it.
type Snippet struct {
	Before   []byte `json:"before,omitempty"`
	Matching []byte `json:"matching"`
	After    []byte `json:"after,omitempty"`
}

// String returns the three parts joined back together.
func (s Snippet) String() string {
	return string(s.Before) + string(s.Matching) + string(s.After)
}

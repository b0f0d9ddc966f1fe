package matcher

import (
	"sync"

	"github.com/praetorian-inc/urlspan/pkg/types"
)

// Extractor finds the first URL in a whitespace-free string.
//
// Offsets are rune indices into the input. An Extractor is immutable and safe
// for concurrent use.
type Extractor struct {
	protocol  *ProtocolMatcher
	validator URLValidator
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithProtocolMatcher replaces the default http/https matcher.
func WithProtocolMatcher(p *ProtocolMatcher) ExtractorOption {
	return func(e *Extractor) {
		e.protocol = p
	}
}

// WithValidator replaces the default HostValidator.
func WithValidator(v URLValidator) ExtractorOption {
	return func(e *Extractor) {
		e.validator = v
	}
}

// NewExtractor creates an Extractor. Without options it matches http and
// https and requires a parseable URL with a non-empty host.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		protocol:  DefaultProtocolMatcher(),
		validator: HostValidator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultExtractor = sync.OnceValue(func() *Extractor {
	return NewExtractor()
})

// DefaultExtractor returns the shared Extractor used by ExtractURL.
func DefaultExtractor() *Extractor {
	return defaultExtractor()
}

// Protocol returns the matcher used to locate scheme prefixes.
func (e *Extractor) Protocol() *ProtocolMatcher {
	return e.protocol
}

// ExtractURL finds the first URL in input using the default Extractor.
// input[Start..End] (inclusive, in runes) is the URL.
func ExtractURL(input string) (types.Span, bool) {
	return DefaultExtractor().Extract(input)
}

// Extract returns the inclusive rune span of the first URL in input.
// Every failure (empty input, no protocol, rejected candidate) yields false.
func (e *Extractor) Extract(input string) (types.Span, bool) {
	res, ok := e.extract([]rune(input))
	if !ok {
		return types.Span{}, false
	}
	return res.Span, true
}

// ExtractResult is Extract plus the URL text and its parsed scheme and host.
func (e *Extractor) ExtractResult(input string) (*types.Extraction, bool) {
	return e.extract([]rune(input))
}

// ExtractRunes is ExtractResult over an already decoded rune slice.
func (e *Extractor) ExtractRunes(runes []rune) (*types.Extraction, bool) {
	return e.extract(runes)
}

func (e *Extractor) extract(runes []rune) (*types.Extraction, bool) {
	if len(runes) == 0 {
		return nil, false
	}

	start, ok := e.protocol.FindRunes(runes)
	if !ok {
		return nil, false
	}

	return e.extractAt(runes, start, ResolveBoundary(runes, start)-1)
}

// extractAt validates runes[start..end] as a URL. Offsets in the result are
// relative to runes.
func (e *Extractor) extractAt(runes []rune, start, end int) (*types.Extraction, bool) {
	if end < start {
		return nil, false
	}

	candidate := string(runes[start : end+1])
	u, ok := e.validator.Validate(candidate)
	if !ok {
		return nil, false
	}

	return &types.Extraction{
		Span:   types.Span{Start: start, End: end},
		URL:    candidate,
		Scheme: u.Scheme,
		Host:   u.Hostname(),
	}, true
}

package matcher

import (
	"bytes"

	"go.uber.org/zap"

	"github.com/praetorian-inc/urlspan/pkg/prefilter"
	"github.com/praetorian-inc/urlspan/pkg/types"
)

// Matcher scans content for URLs.
type Matcher interface {
	// Match scans content and returns every URL with its location.
	Match(content []byte) ([]*types.Match, error)

	// MatchWithBlobID scans content with a known BlobID.
	MatchWithBlobID(content []byte, blobID types.BlobID) ([]*types.Match, error)

	// Close releases resources.
	Close() error
}

// Config for matcher initialization.
type Config struct {
	// Extractor finds the URL inside each token (nil = DefaultExtractor).
	Extractor *Extractor

	// ContextLines is the number of lines captured around each URL.
	ContextLines int

	// Dedupe controls which repeated URLs in a blob are dropped.
	Dedupe DedupeMode

	// MaxMatchesPerBlob limits matches returned per blob (0 = unlimited)
	MaxMatchesPerBlob int

	// Logger receives debug output (nil = no logging).
	Logger *zap.Logger
}

// New creates a new Matcher with the given config.
func New(cfg Config) (Matcher, error) {
	return NewURLMatcher(cfg), nil
}

// URLMatcher applies an Extractor to every whitespace-delimited token of the
// scanned content. It is safe for concurrent use.
type URLMatcher struct {
	extractor    *Extractor
	prefilter    *prefilter.Prefilter
	contextLines int
	dedupe       DedupeMode
	maxMatches   int
	log          *zap.Logger
}

// NewURLMatcher creates a URLMatcher.
func NewURLMatcher(cfg Config) *URLMatcher {
	ex := cfg.Extractor
	if ex == nil {
		ex = DefaultExtractor()
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &URLMatcher{
		extractor:    ex,
		prefilter:    prefilter.New(ex.Protocol().Literals()),
		contextLines: cfg.ContextLines,
		dedupe:       cfg.Dedupe,
		maxMatches:   cfg.MaxMatchesPerBlob,
		log:          log,
	}
}

// Match scans content for URLs.
func (m *URLMatcher) Match(content []byte) ([]*types.Match, error) {
	return m.MatchWithBlobID(content, types.ComputeBlobID(content))
}

// MatchWithBlobID scans content with a known BlobID.
func (m *URLMatcher) MatchWithBlobID(content []byte, blobID types.BlobID) ([]*types.Match, error) {
	matches := make([]*types.Match, 0)
	if !m.prefilter.MayContain(content) {
		return matches, nil
	}

	dedup := NewDeduplicator(m.dedupe)
	sep := []byte("://")

	for _, tok := range Tokenize(content) {
		if !bytes.Contains(tok.Text, sep) {
			continue
		}
		for _, match := range m.matchToken(content, tok, blobID) {
			if dedup.IsDuplicate(match) {
				continue
			}
			dedup.Add(match)
			matches = append(matches, match)
			if m.maxMatches > 0 && len(matches) >= m.maxMatches {
				m.log.Debug("match limit reached",
					zap.String("blob", blobID.Hex()),
					zap.Int("limit", m.maxMatches))
				return matches, nil
			}
		}
	}

	m.log.Debug("scanned blob",
		zap.String("blob", blobID.Hex()),
		zap.Int("bytes", len(content)),
		zap.Int("matches", len(matches)))
	return matches, nil
}

// rejectBudget bounds the runes validated for rejected candidates in one
// token to a multiple of the token length, plus a floor for short tokens.
const (
	rejectBudgetFactor = 8
	rejectBudgetFloor  = 4096
)

// matchToken extracts every URL from one token. After a hit the search
// resumes right after the URL; after a rejected candidate it resumes one
// rune past the protocol literal that produced it.
func (m *URLMatcher) matchToken(content []byte, tok Token, blobID types.BlobID) []*types.Match {
	text := string(tok.Text)
	runes := []rune(text)
	offs := runeByteOffsets(text)

	var bounds *BoundaryIndex
	budget := rejectBudgetFactor*len(runes) + rejectBudgetFloor

	var out []*types.Match
	for pos := 0; pos < len(runes); {
		rel, ok := m.extractor.Protocol().FindRunes(runes[pos:])
		if !ok {
			break
		}
		start := pos + rel

		if bounds == nil {
			bounds = NewBoundaryIndex(runes)
		}
		end := bounds.Resolve(start) - 1

		res, ok := m.extractor.extractAt(runes, start, end)
		if !ok {
			m.log.Debug("rejected url candidate",
				zap.Int("offset", tok.Start+offs[start]))
			budget -= end - start + 1
			if budget <= 0 {
				m.log.Debug("giving up on token",
					zap.String("blob", blobID.Hex()),
					zap.Int("offset", tok.Start),
					zap.Int("runes", len(runes)))
				break
			}
			pos = start + 1
			continue
		}

		byteStart := tok.Start + offs[res.Span.Start]
		byteEnd := tok.Start + offs[res.Span.End+1]
		out = append(out, m.buildMatch(content, blobID, res, byteStart, byteEnd))
		pos = res.Span.End + 1
	}
	return out
}

func (m *URLMatcher) buildMatch(content []byte, blobID types.BlobID, res *types.Extraction, start, end int) *types.Match {
	var before, after []byte
	if m.contextLines > 0 {
		before, after = ExtractContext(content, start, end, m.contextLines)
	}

	match := &types.Match{
		BlobID:   blobID,
		URL:      res.URL,
		Scheme:   res.Scheme,
		Host:     res.Host,
		Location: types.NewLocation(content, start, end),
		Snippet: types.Snippet{
			Before:   before,
			Matching: bytes.Clone(content[start:end]),
			After:    after,
		},
	}
	match.StructuralID = match.ComputeStructuralID()
	match.FindingID = types.ComputeFindingID(match.URL)
	return match
}

// Close releases resources (no-op).
func (m *URLMatcher) Close() error {
	return nil
}

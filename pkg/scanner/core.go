package scanner

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/praetorian-inc/urlspan/pkg/matcher"
	"github.com/praetorian-inc/urlspan/pkg/store"
	"github.com/praetorian-inc/urlspan/pkg/types"
)

// Core wraps the matcher and an in-memory store so repeated scans accumulate
// findings.
type Core struct {
	matcher matcher.Matcher
	store   store.Store
	log     *zap.Logger
}

// NewCore creates a Core from a matcher configuration.
func NewCore(cfg matcher.Config) (*Core, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	m, err := matcher.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating matcher: %w", err)
	}

	s, err := store.New(store.Config{Path: ":memory:"})
	if err != nil {
		m.Close()
		return nil, fmt.Errorf("creating store: %w", err)
	}

	log.Debug("scanner core ready",
		zap.Int("context_lines", cfg.ContextLines),
		zap.Stringer("dedupe", cfg.Dedupe))

	return &Core{
		matcher: m,
		store:   s,
		log:     log,
	}, nil
}

// Scan scans a single content string
func (c *Core) Scan(content, source string) (*ScanResult, error) {
	matches, err := c.ScanBytes([]byte(content))
	if err != nil {
		return nil, err
	}
	return &ScanResult{
		Source:  source,
		Matches: matches,
	}, nil
}

// ScanBytes scans raw content and records its matches.
func (c *Core) ScanBytes(content []byte) ([]*types.Match, error) {
	blobID := types.ComputeBlobID(content)
	matches, err := c.matcher.MatchWithBlobID(content, blobID)
	if err != nil {
		return nil, err
	}
	if err := c.record(blobID, int64(len(content)), matches); err != nil {
		return nil, err
	}
	return matches, nil
}

// ScanBatch scans multiple content items
func (c *Core) ScanBatch(items []ContentItem) (*BatchScanResult, error) {
	var results []ScanResult
	total := 0

	for _, item := range items {
		res, err := c.Scan(item.Content, item.Source)
		if err != nil {
			// Skip items that fail to scan
			c.log.Debug("skipping item", zap.String("source", item.Source), zap.Error(err))
			continue
		}
		results = append(results, *res)
		total += len(res.Matches)
	}

	return &BatchScanResult{
		Results: results,
		Total:   total,
	}, nil
}

// Findings returns every distinct URL seen so far with its occurrences.
func (c *Core) Findings() ([]*types.Finding, error) {
	findings, err := c.store.GetFindings()
	if err != nil {
		return nil, fmt.Errorf("loading findings: %w", err)
	}
	for _, f := range findings {
		matches, err := c.store.GetMatchesByFinding(f.ID)
		if err != nil {
			return nil, fmt.Errorf("loading matches for %s: %w", f.URL, err)
		}
		f.Matches = matches
	}
	return findings, nil
}

func (c *Core) record(blobID types.BlobID, size int64, matches []*types.Match) error {
	if len(matches) == 0 {
		return nil
	}
	if err := c.store.AddBlob(blobID, size); err != nil {
		return fmt.Errorf("recording blob: %w", err)
	}
	for _, m := range matches {
		if err := c.store.AddMatch(m); err != nil {
			return fmt.Errorf("recording match: %w", err)
		}
		exists, err := c.store.FindingExists(m.FindingID)
		if err != nil {
			return fmt.Errorf("checking finding: %w", err)
		}
		if !exists {
			if err := c.store.AddFinding(types.NewFinding(m)); err != nil {
				return fmt.Errorf("recording finding: %w", err)
			}
		}
	}
	return nil
}

// Close releases scanner resources
func (c *Core) Close() error {
	var err error
	if c.matcher != nil {
		err = c.matcher.Close()
	}
	if c.store != nil {
		if cerr := c.store.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

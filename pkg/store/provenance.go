package store

import (
	"fmt"
	"strings"

	"github.com/praetorian-inc/urlspan/pkg/types"
)

// provenanceRow is the flattened form of a Provenance shared by both stores.
type provenanceRow struct {
	kind       string
	path       string
	repoPath   string
	commitHash string
	member     string
}

func toProvenanceRow(prov types.Provenance) (provenanceRow, error) {
	row := provenanceRow{kind: prov.Kind()}

	switch p := prov.(type) {
	case types.FileProvenance:
		row.path = p.FilePath
	case types.GitProvenance:
		row.repoPath = p.RepoPath
		row.path = p.BlobPath
		if p.Commit != nil {
			row.commitHash = p.Commit.CommitID
		}
	case types.ArchiveProvenance:
		row.path = p.ArchivePath
		row.member = p.MemberPath
	case types.StreamProvenance:
		row.path = p.Name
	default:
		return provenanceRow{}, fmt.Errorf("unknown provenance type: %T", prov)
	}
	return row, nil
}

func (r provenanceRow) provenance() (types.Provenance, error) {
	switch r.kind {
	case "file":
		return types.FileProvenance{FilePath: r.path}, nil
	case "git":
		p := types.GitProvenance{RepoPath: r.repoPath, BlobPath: r.path}
		if r.commitHash != "" {
			p.Commit = &types.CommitMetadata{CommitID: r.commitHash}
		}
		return p, nil
	case "archive":
		return types.ArchiveProvenance{ArchivePath: r.path, MemberPath: r.member}, nil
	case "stream":
		return types.StreamProvenance{Name: r.path}, nil
	default:
		return nil, fmt.Errorf("unknown provenance kind: %q", r.kind)
	}
}

// provenanceKey identifies a provenance for deduplication. Commit metadata
// other than the hash does not participate.
func provenanceKey(prov types.Provenance) string {
	row, err := toProvenanceRow(prov)
	if err != nil {
		return fmt.Sprintf("%T:%s", prov, prov.Path())
	}
	return strings.Join([]string{row.kind, row.path, row.repoPath, row.commitHash, row.member}, "\x00")
}

package sarif

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/praetorian-inc/urlspan/pkg/types"
)

// SARIF 2.1.0 constants
const (
	SchemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"
	Version   = "2.1.0"
	ToolName  = "urlspan"
)

// ToolVersion is reported in the driver block; the CLI overrides it at startup.
var ToolVersion = "dev"

// Report is the top-level SARIF report structure
type Report struct {
	Schema  string `json:"$schema"`
	Version string `json:"version"`
	Runs    []Run  `json:"runs"`
}

// Run represents a single invocation of the tool
type Run struct {
	Tool    Tool     `json:"tool"`
	Results []Result `json:"results"`
}

// Tool describes the analysis tool
type Tool struct {
	Driver Driver `json:"driver"`
}

// Driver contains tool metadata
type Driver struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Rules   []Rule `json:"rules,omitempty"`
}

// Rule describes what a result means
type Rule struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	ShortDescription ShortDescription `json:"shortDescription"`
}

// ShortDescription contains rule description text
type ShortDescription struct {
	Text string `json:"text"`
}

// Result represents a single URL occurrence
type Result struct {
	RuleID              string            `json:"ruleId"`
	Level               string            `json:"level"`
	Message             Message           `json:"message"`
	Locations           []Location        `json:"locations"`
	PartialFingerprints map[string]string `json:"partialFingerprints,omitempty"`
}

// Message contains the result message
type Message struct {
	Text string `json:"text"`
}

// Location describes where a result was found
type Location struct {
	PhysicalLocation PhysicalLocation `json:"physicalLocation"`
}

// PhysicalLocation specifies file location
type PhysicalLocation struct {
	ArtifactLocation ArtifactLocation `json:"artifactLocation"`
	Region           Region           `json:"region"`
}

// ArtifactLocation identifies the file
type ArtifactLocation struct {
	URI string `json:"uri"`
}

// Region specifies the line/column range and byte range
type Region struct {
	StartLine   int      `json:"startLine"`
	StartColumn int      `json:"startColumn"`
	EndLine     int      `json:"endLine"`
	EndColumn   int      `json:"endColumn"`
	ByteOffset  int64    `json:"byteOffset"`
	ByteLength  int64    `json:"byteLength"`
	Snippet     *Snippet `json:"snippet,omitempty"`
}

// Snippet contains the matched text
type Snippet struct {
	Text string `json:"text"`
}

// NewReport creates a SARIF report whose driver declares the URL rule.
func NewReport() *Report {
	return &Report{
		Schema:  SchemaURI,
		Version: Version,
		Runs: []Run{
			{
				Tool: Tool{
					Driver: Driver{
						Name:    ToolName,
						Version: ToolVersion,
						Rules: []Rule{{
							ID:   types.MatchKind,
							Name: "URL",
							ShortDescription: ShortDescription{
								Text: "http or https URL delimited by balanced brackets",
							},
						}},
					},
				},
				Results: []Result{},
			},
		},
	}
}

// AddResult adds one URL occurrence to the report
func (r *Report) AddResult(match *types.Match, filePath string) {
	// SARIF end columns are exclusive; ours point at the last byte.
	region := Region{
		StartLine:   match.Location.Source.Start.Line,
		StartColumn: match.Location.Source.Start.Column,
		EndLine:     match.Location.Source.End.Line,
		EndColumn:   match.Location.Source.End.Column + 1,
		ByteOffset:  match.Location.Offset.Start,
		ByteLength:  match.Location.Offset.Len(),
	}

	if len(match.Snippet.Matching) > 0 {
		region.Snippet = &Snippet{
			Text: string(match.Snippet.Matching),
		}
	}

	result := Result{
		RuleID: types.MatchKind,
		Level:  "note",
		Message: Message{
			Text: match.URL,
		},
		Locations: []Location{
			{
				PhysicalLocation: PhysicalLocation{
					ArtifactLocation: ArtifactLocation{
						URI: formatFileURI(filePath),
					},
					Region: region,
				},
			},
		},
	}
	if match.FindingID != "" {
		result.PartialFingerprints = map[string]string{"urlFinding/v1": match.FindingID}
	}

	r.Runs[0].Results = append(r.Runs[0].Results, result)
}

// ToJSON serializes the report to JSON bytes
func (r *Report) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// formatFileURI converts a file path to SARIF URI format
// Absolute paths get file:// prefix, relative paths stay as-is
func formatFileURI(path string) string {
	if filepath.IsAbs(path) {
		// Normalize path separators for URI format
		path = filepath.ToSlash(path)
		// Ensure path starts with /
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		return "file://" + path
	}
	// Relative paths stay as-is
	return filepath.ToSlash(path)
}

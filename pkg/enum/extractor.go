package enum

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// ExtractedContent represents text extracted from a document.
type ExtractedContent struct {
	Name    string // member the text came from (e.g., "word/document.xml", "page/2")
	Content []byte // extracted text content
}

// extractors maps normalized extensions to their text extractor.
var extractors = map[string]func([]byte) ([]ExtractedContent, error){
	".xlsx": extractXLSX,
	".docx": extractDOCX,
	".pdf":  extractPDF,
	".html": extractHTML,
}

// ExtractText extracts text from supported documents (xlsx, docx, pdf, html).
func ExtractText(path string, content []byte) ([]ExtractedContent, error) {
	ext := normalizeExtension(getExtension(path))
	extract, ok := extractors[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
	return extract(content)
}

// getExtension returns the lowercased extension including the dot.
func getExtension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// normalizeExtension folds aliases onto one extractor key.
func normalizeExtension(ext string) string {
	if ext == ".htm" || ext == ".xhtml" {
		return ".html"
	}
	return ext
}

// isExtractable reports whether ExtractText supports ext.
func isExtractable(ext string) bool {
	_, ok := extractors[normalizeExtension(ext)]
	return ok
}

// extractXLSX extracts text from Excel files (xlsx format).
func extractXLSX(content []byte) ([]ExtractedContent, error) {
	return extractZipXML(content, "xlsx", func(name string) bool {
		if name == "xl/sharedStrings.xml" {
			return true
		}
		return strings.HasPrefix(name, "xl/worksheets/sheet") && strings.HasSuffix(name, ".xml")
	})
}

// extractDOCX extracts text from Word documents (docx format).
func extractDOCX(content []byte) ([]ExtractedContent, error) {
	return extractZipXML(content, "docx", func(name string) bool {
		return name == "word/document.xml" ||
			name == "word/_rels/document.xml.rels" ||
			strings.HasPrefix(name, "word/footnotes")
	})
}

// extractZipXML collects XML text from every zip member accepted by want.
// Relationship files carry hyperlink targets as attributes, so attribute
// values that look like URLs are kept too.
func extractZipXML(content []byte, kind string, want func(name string) bool) ([]ExtractedContent, error) {
	zipReader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s as zip: %w", kind, err)
	}

	var results []ExtractedContent
	for _, file := range zipReader.File {
		if !want(file.Name) {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}

		if text := extractXMLText(data); len(text) > 0 {
			results = append(results, ExtractedContent{
				Name:    file.Name,
				Content: []byte(text),
			})
		}
	}
	return results, nil
}

// extractPDF extracts text from PDF files using ledongthuc/pdf, one entry per page.
func extractPDF(content []byte) ([]ExtractedContent, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	var results []ExtractedContent
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// Continue on error to extract what we can
			continue
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}

		results = append(results, ExtractedContent{
			Name:    fmt.Sprintf("page/%d", pageNum),
			Content: []byte(pageText),
		})
	}
	return results, nil
}

// extractXMLText extracts text nodes and URL-valued attributes from XML data.
func extractXMLText(data []byte) string {
	var text strings.Builder
	add := func(s string) {
		if text.Len() > 0 {
			text.WriteString(" ")
		}
		text.WriteString(s)
	}

	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := token.(type) {
		case xml.StartElement:
			for _, attr := range t.Attr {
				if strings.Contains(attr.Value, "://") {
					add(cleanText(attr.Value))
				}
			}
		case xml.CharData:
			if content := cleanText(string(t)); content != "" {
				add(content)
			}
		}
	}

	return text.String()
}

// cleanText removes extra whitespace and non-printable characters.
func cleanText(s string) string {
	var result strings.Builder
	lastSpace := false

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastSpace {
				result.WriteRune(' ')
				lastSpace = true
			}
		} else if unicode.IsPrint(r) {
			result.WriteRune(r)
			lastSpace = false
		}
	}

	return strings.TrimSpace(result.String())
}

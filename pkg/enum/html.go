package enum

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// urlAttributes are the HTML attributes whose values are link targets.
var urlAttributes = map[string]bool{
	"href":   true,
	"src":    true,
	"action": true,
	"cite":   true,
	"poster": true,
}

// extractHTML returns visible text and link targets from an HTML document.
// Text nodes and attribute values go to separate members so a URL in an
// attribute is never glued to the surrounding markup.
func extractHTML(content []byte) ([]ExtractedContent, error) {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var text, links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			for _, attr := range n.Attr {
				if urlAttributes[attr.Key] {
					if v := strings.TrimSpace(attr.Val); v != "" {
						links = append(links, v)
					}
				}
			}
			switch n.Data {
			case "script", "style":
				return
			}
		case html.TextNode:
			if t := cleanText(n.Data); t != "" {
				text = append(text, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	var results []ExtractedContent
	if len(text) > 0 {
		results = append(results, ExtractedContent{Name: "text", Content: []byte(strings.Join(text, "\n"))})
	}
	if len(links) > 0 {
		results = append(results, ExtractedContent{Name: "links", Content: []byte(strings.Join(links, "\n"))})
	}
	return results, nil
}

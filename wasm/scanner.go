//go:build wasm

package main

import (
	"encoding/json"
	"sync"
	"syscall/js"

	"github.com/praetorian-inc/urlspan/pkg/matcher"
	"github.com/praetorian-inc/urlspan/pkg/scanner"
)

var (
	scanners   = make(map[int]*scanner.Core)
	scannersMu sync.RWMutex
	nextID     int
)

// scannerOptions is the JSON accepted by UrlspanNewScanner.
type scannerOptions struct {
	ContextLines int      `json:"contextLines"`
	Dedupe       string   `json:"dedupe"`
	Schemes      []string `json:"schemes"`
}

func errorResult(msg string) map[string]interface{} {
	return map[string]interface{}{"error": msg}
}

// extract finds the first URL in a whitespace-free input.
// JS: UrlspanExtract(input) -> {start, end, url, scheme, host} or null
func extract(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("input argument required")
	}

	res, ok := matcher.DefaultExtractor().ExtractResult(args[0].String())
	if !ok {
		return nil
	}
	return map[string]interface{}{
		"start":  res.Span.Start,
		"end":    res.Span.End,
		"url":    res.URL,
		"scheme": res.Scheme,
		"host":   res.Host,
	}
}

// newScanner creates a scanner from an optional options JSON string.
// JS: UrlspanNewScanner(optionsJSON?) -> {handle} or {error}
func newScanner(this js.Value, args []js.Value) interface{} {
	opts := scannerOptions{ContextLines: 2}
	if len(args) > 0 && args[0].Type() == js.TypeString && args[0].String() != "" {
		if err := json.Unmarshal([]byte(args[0].String()), &opts); err != nil {
			return errorResult("failed to parse options JSON: " + err.Error())
		}
	}

	dedupe, err := matcher.ParseDedupeMode(opts.Dedupe)
	if err != nil {
		return errorResult(err.Error())
	}

	var extractor *matcher.Extractor
	if len(opts.Schemes) > 0 {
		p, err := matcher.NewProtocolMatcher(opts.Schemes...)
		if err != nil {
			return errorResult("invalid schemes: " + err.Error())
		}
		extractor = matcher.NewExtractor(matcher.WithProtocolMatcher(p))
	}

	core, err := scanner.NewCore(matcher.Config{
		Extractor:    extractor,
		ContextLines: opts.ContextLines,
		Dedupe:       dedupe,
	})
	if err != nil {
		return errorResult("failed to create scanner: " + err.Error())
	}

	scannersMu.Lock()
	id := nextID
	nextID++
	scanners[id] = core
	scannersMu.Unlock()

	return map[string]interface{}{"handle": id}
}

func lookup(handle int) (*scanner.Core, bool) {
	scannersMu.RLock()
	defer scannersMu.RUnlock()
	core, ok := scanners[handle]
	return core, ok
}

func toJSON(v any) interface{} {
	b, err := json.Marshal(v)
	if err != nil {
		return errorResult("failed to marshal results: " + err.Error())
	}
	return string(b)
}

// scan scans a single content string.
// JS: UrlspanScan(handle, content, source) -> JSON results or {error}
func scan(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("handle and content arguments required")
	}

	core, ok := lookup(args[0].Int())
	if !ok {
		return errorResult("invalid scanner handle")
	}
	source := ""
	if len(args) > 2 {
		source = args[2].String()
	}

	result, err := core.Scan(args[1].String(), source)
	if err != nil {
		return errorResult("scan failed: " + err.Error())
	}
	return toJSON(result)
}

// scanBatch scans multiple content items.
// JS: UrlspanScanBatch(handle, itemsJSON) -> JSON results or {error}
func scanBatch(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("handle and itemsJSON arguments required")
	}

	core, ok := lookup(args[0].Int())
	if !ok {
		return errorResult("invalid scanner handle")
	}

	var items []scanner.ContentItem
	if err := json.Unmarshal([]byte(args[1].String()), &items); err != nil {
		return errorResult("failed to parse items JSON: " + err.Error())
	}

	batchResult, err := core.ScanBatch(items)
	if err != nil {
		return errorResult("batch scan failed: " + err.Error())
	}
	return toJSON(batchResult)
}

// findings returns every distinct URL the scanner has seen.
// JS: UrlspanFindings(handle) -> JSON findings or {error}
func findings(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("handle argument required")
	}

	core, ok := lookup(args[0].Int())
	if !ok {
		return errorResult("invalid scanner handle")
	}

	all, err := core.Findings()
	if err != nil {
		return errorResult("loading findings: " + err.Error())
	}
	return toJSON(all)
}

// closeScanner closes a scanner and releases resources.
// JS: UrlspanCloseScanner(handle)
func closeScanner(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("handle argument required")
	}

	handle := args[0].Int()

	scannersMu.Lock()
	core, ok := scanners[handle]
	if ok {
		delete(scanners, handle)
	}
	scannersMu.Unlock()

	if !ok {
		return errorResult("invalid scanner handle")
	}

	core.Close()
	return nil
}

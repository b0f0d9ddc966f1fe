//go:build wasm

package main

import (
	"encoding/json"
	"syscall/js"
	"testing"

	"github.com/praetorian-inc/urlspan/pkg/scanner"
	"github.com/praetorian-inc/urlspan/pkg/types"
)

func mustHandle(t *testing.T, optionsJSON string) int {
	t.Helper()
	result := newScanner(js.Value{}, []js.Value{js.ValueOf(optionsJSON)})

	resultMap, ok := result.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected map result, got %T", result)
	}
	if errMsg, hasError := resultMap["error"]; hasError {
		t.Fatalf("Failed to create scanner: %v", errMsg)
	}
	return resultMap["handle"].(int)
}

func TestExtract(t *testing.T) {
	result := extract(js.Value{}, []js.Value{js.ValueOf("(https://en.wikipedia.org/wiki/Foo_(bar))")})

	m, ok := result.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected map result, got %T", result)
	}
	if m["start"] != 1 || m["end"] != 39 {
		t.Errorf("Expected span [1, 39], got [%v, %v]", m["start"], m["end"])
	}
	if m["url"] != "https://en.wikipedia.org/wiki/Foo_(bar)" {
		t.Errorf("Unexpected url %v", m["url"])
	}

	if res := extract(js.Value{}, []js.Value{js.ValueOf("no-url")}); res != nil {
		t.Errorf("Expected nil for input without URL, got %v", res)
	}
}

func TestScannerCreation(t *testing.T) {
	handle := mustHandle(t, "")
	closeScanner(js.Value{}, []js.Value{js.ValueOf(handle)})

	result := newScanner(js.Value{}, []js.Value{js.ValueOf(`{"dedupe":"host"}`)})
	if _, hasError := result.(map[string]interface{})["error"]; !hasError {
		t.Error("Expected error for unknown dedupe mode")
	}
}

func TestScanContent(t *testing.T) {
	handle := mustHandle(t, `{"contextLines":0}`)
	defer closeScanner(js.Value{}, []js.Value{js.ValueOf(handle)})

	resultStr := scan(js.Value{}, []js.Value{
		js.ValueOf(handle),
		js.ValueOf("see (https://a.io/x_(y)) and [http://b.io]"),
		js.ValueOf("test-source"),
	})

	jsonStr, ok := resultStr.(string)
	if !ok {
		t.Fatalf("Expected string result, got %T: %v", resultStr, resultStr)
	}

	var result scanner.ScanResult
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		t.Fatalf("Failed to parse result: %v", err)
	}
	if len(result.Matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(result.Matches))
	}
	if result.Matches[0].URL != "https://a.io/x_(y)" {
		t.Errorf("Unexpected first URL %q", result.Matches[0].URL)
	}
	if result.Source != "test-source" {
		t.Errorf("Expected source 'test-source', got %q", result.Source)
	}
}

func TestScanBatchAndFindings(t *testing.T) {
	handle := mustHandle(t, "")
	defer closeScanner(js.Value{}, []js.Value{js.ValueOf(handle)})

	items := []scanner.ContentItem{
		{Source: "page:1", Content: "<https://a.io>"},
		{Source: "page:2", Content: "nothing here"},
		{Source: "page:3", Content: "again https://a.io and {http://b.io}"},
	}
	itemsJSON, _ := json.Marshal(items)

	resultStr := scanBatch(js.Value{}, []js.Value{js.ValueOf(handle), js.ValueOf(string(itemsJSON))})
	var batch scanner.BatchScanResult
	if err := json.Unmarshal([]byte(resultStr.(string)), &batch); err != nil {
		t.Fatalf("Failed to parse result: %v", err)
	}
	if batch.Total != 3 {
		t.Errorf("Expected 3 total matches, got %d", batch.Total)
	}

	var all []types.Finding
	if err := json.Unmarshal([]byte(findings(js.Value{}, []js.Value{js.ValueOf(handle)}).(string)), &all); err != nil {
		t.Fatalf("Failed to parse findings: %v", err)
	}
	if len(all) != 2 || all[0].URL != "https://a.io" || len(all[0].Matches) != 2 {
		t.Errorf("Unexpected findings %+v", all)
	}
}

func TestInvalidHandle(t *testing.T) {
	result := scan(js.Value{}, []js.Value{js.ValueOf(9999), js.ValueOf("https://a.io")})
	if _, hasError := result.(map[string]interface{})["error"]; !hasError {
		t.Error("Expected error for invalid handle")
	}
}

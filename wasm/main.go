//go:build wasm

package main

import (
	"syscall/js"
)

func main() {
	js.Global().Set("UrlspanExtract", js.FuncOf(extract))
	js.Global().Set("UrlspanNewScanner", js.FuncOf(newScanner))
	js.Global().Set("UrlspanScan", js.FuncOf(scan))
	js.Global().Set("UrlspanScanBatch", js.FuncOf(scanBatch))
	js.Global().Set("UrlspanFindings", js.FuncOf(findings))
	js.Global().Set("UrlspanCloseScanner", js.FuncOf(closeScanner))

	// Keep WASM running
	<-make(chan struct{})
}

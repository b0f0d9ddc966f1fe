package enum

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/praetorian-inc/urlspan/pkg/types"
)

func TestReaderEnumerator(t *testing.T) {
	e := NewReaderEnumerator(strings.NewReader("see (https://a.io)"), "stdin", 0)

	var calls int
	err := e.Enumerate(context.Background(), func(content []byte, blobID types.BlobID, prov types.Provenance) error {
		calls++
		if string(content) != "see (https://a.io)" {
			t.Errorf("unexpected content %q", content)
		}
		if blobID != types.ComputeBlobID(content) {
			t.Error("blob ID mismatch")
		}
		if prov.Kind() != "stream" || prov.Path() != "stdin" {
			t.Errorf("unexpected provenance %s:%s", prov.Kind(), prov.Path())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("enumerate failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 callback, got %d", calls)
	}
}

func TestReaderEnumerator_MaxSize(t *testing.T) {
	e := NewReaderEnumerator(strings.NewReader("0123456789"), "stdin", 4)

	err := e.Enumerate(context.Background(), func(content []byte, blobID types.BlobID, prov types.Provenance) error {
		if string(content) != "0123" {
			t.Errorf("expected truncated content, got %q", content)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("enumerate failed: %v", err)
	}
}

func TestReaderEnumerator_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewReaderEnumerator(strings.NewReader("x"), "stdin", 0).Enumerate(ctx, func([]byte, types.BlobID, types.Provenance) error {
		t.Error("callback should not run")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

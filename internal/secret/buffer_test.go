package secret

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNewFromBytes(t *testing.T) {
	source := []byte("super-secret-master-key")
	original := append([]byte(nil), source...)

	buffer, err := NewFromBytes(source)
	if err != nil {
		t.Fatalf("NewFromBytes failed: %v", err)
	}
	defer buffer.Close()

	got, err := buffer.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	if !bytes.Equal(got, original) {
		t.Fatalf("expected %q, got %q", original, got)
	}
	if buffer.Len() != len(original) {
		t.Fatalf("expected length %d, got %d", len(original), buffer.Len())
	}

	for index, value := range source {
		if value != 0 {
			t.Fatalf("source byte %d was not zeroed: got %d", index, value)
		}
	}
}

func TestNewFromBytes_Empty(t *testing.T) {
	if _, err := NewFromBytes(nil); err == nil {
		t.Fatal("expected error for empty source")
	}
}

func TestClose_ZeroesAndRejectsReads(t *testing.T) {
	buffer, err := NewFromBytes([]byte("0123456789"))
	if err != nil {
		t.Fatalf("NewFromBytes failed: %v", err)
	}

	data, err := buffer.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	heapBacked := !buffer.Locked()

	if err := buffer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := buffer.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	// Unmapped memory must not be touched; only heap fallbacks can be inspected.
	if heapBacked {
		for index, value := range data {
			if value != 0 {
				t.Fatalf("byte %d not zeroed after Close: %d", index, value)
			}
		}
	}

	if _, err := buffer.Bytes(); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if buffer.Len() != 0 {
		t.Fatalf("expected zero length after Close, got %d", buffer.Len())
	}
}

func TestFormattingIsCensored(t *testing.T) {
	buffer, err := NewFromBytes([]byte("do-not-print-me"))
	if err != nil {
		t.Fatalf("NewFromBytes failed: %v", err)
	}
	defer buffer.Close()

	for _, s := range []string{fmt.Sprint(buffer), fmt.Sprintf("%#v", buffer), fmt.Sprintf("%v", buffer)} {
		if strings.Contains(s, "do-not-print-me") {
			t.Fatalf("buffer formatting leaked contents: %s", s)
		}
	}
}

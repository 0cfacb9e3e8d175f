package core

import (
	"errors"
	"fmt"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 1000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}
}

func TestSequentialDocumentID(t *testing.T) {
	if got := SequentialDocumentID(7).String(); got != "record_7" {
		t.Errorf("Expected record_7, got %s", got)
	}
}

func TestParseRunID(t *testing.T) {
	if _, err := ParseRunID("  "); err == nil {
		t.Error("Expected error for blank run ID")
	}
	id, err := ParseRunID("run-1")
	if err != nil || id.String() != "run-1" {
		t.Errorf("Unexpected parse result %q, %v", id, err)
	}
}

func TestErrorTaxonomy(t *testing.T) {
	dataErr := NewDataError("clean", "outliers", errors.New("boom"))
	if !IsDataError(dataErr) || !IsClientFault(dataErr) {
		t.Errorf("Expected data error to classify as client fault: %v", dataErr)
	}
	if got := dataErr.Error(); got != "data error: clean failed at outliers: boom" {
		t.Errorf("Unexpected message %q", got)
	}

	wrapped := fmt.Errorf("predict: %w", ErrNotTrained)
	if !IsStateError(wrapped) || IsClientFault(wrapped) {
		t.Errorf("Expected state error to be a server fault: %v", wrapped)
	}

	if !IsFormatError(NewFormatError("model file", errors.New("bad"))) {
		t.Error("Expected format error")
	}
	if !IsExternalServiceError(NewExternalServiceError("document store", errors.New("down"))) {
		t.Error("Expected external service error")
	}
	if !IsConfigurationError(NewConfigurationError("model_type", "unknown")) {
		t.Error("Expected configuration error")
	}
	if !errors.Is(NewColumnNotFoundError("x"), ErrData) {
		t.Error("Column not found should be a data error")
	}
}

func TestFileChecksum(t *testing.T) {
	a := NewFileChecksum([]byte("site,injuries\nA,1\n"))
	b := NewFileChecksum([]byte("site,injuries\nA,2\n"))
	if len(a.String()) != 64 {
		t.Errorf("Expected a hex sha256, got %q", a)
	}
	if a == b {
		t.Error("Different content produced the same checksum")
	}
	if !Hash(a).Equals(Hash(NewFileChecksum([]byte("site,injuries\nA,1\n")))) {
		t.Error("Equal content produced different checksums")
	}
}

package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	RunID      ID
	DocumentID ID
)

func (id RunID) String() string      { return ID(id).String() }
func (id DocumentID) String() string { return ID(id).String() }

// NewRunID identifies one full analytics run.
func NewRunID() RunID {
	return RunID(NewID())
}

// NewDocumentID returns a store-assigned document identifier.
func NewDocumentID() DocumentID {
	return DocumentID(uuid.NewString())
}

// SequentialDocumentID returns the positional id used by bulk uploads ("record_<i>").
func SequentialDocumentID(i int) DocumentID {
	return DocumentID(fmt.Sprintf("record_%d", i))
}

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	return RunID(s), nil
}

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
	// Falls back to v4 if v7 generation fails
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
	AssignmentID ID
	PayoutID     ID
)

// String conversions for domain IDs
func (id AssignmentID) String() string { return ID(id).String() }
func (id PayoutID) String() string     { return ID(id).String() }

// NewAssignmentID creates a fresh assignment identifier
func NewAssignmentID() AssignmentID { return AssignmentID(NewID()) }

// NewPayoutID creates a fresh payout identifier
func NewPayoutID() PayoutID { return PayoutID(NewID()) }

// ParseAssignmentID parses a string into AssignmentID
func ParseAssignmentID(s string) (AssignmentID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("assignment ID cannot be empty")
	}
	return AssignmentID(s), nil
}

// ParsePayoutID parses a string into PayoutID
func ParsePayoutID(s string) (PayoutID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("payout ID cannot be empty")
	}
	return PayoutID(s), nil
}

package errors

import (
	"strings"
	"unicode"
)

// MaxNodeIDLength bounds node identifiers accepted from user input.
const MaxNodeIDLength = 256

// ValidateNodeID validates a node identifier coming from user input.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters or null bytes
//   - No leading or trailing whitespace
//   - Maximum length of 256 bytes
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidNodeID, "node id cannot be empty")
	}

	if len(id) > MaxNodeIDLength {
		return New(ErrCodeInvalidNodeID, "node id too long (max %d characters)", MaxNodeIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNodeID, "node id contains invalid control characters")
		}
	}

	if strings.TrimSpace(id) != id {
		return New(ErrCodeInvalidNodeID, "node id %q has surrounding whitespace", id)
	}

	return nil
}

// ValidateLabel validates a display label. Labels may be empty.
func ValidateLabel(label string) error {
	if len(label) > 4*MaxNodeIDLength {
		return New(ErrCodeInvalidInput, "label too long (max %d characters)", 4*MaxNodeIDLength)
	}
	if strings.ContainsRune(label, '\x00') {
		return New(ErrCodeInvalidInput, "label contains a null byte")
	}
	return nil
}

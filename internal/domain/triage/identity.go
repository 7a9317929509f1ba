package triage

import (
	"fmt"
	"strings"
)

// IDLength is the number of digits in a national identity number.
const IDLength = 8

// ValidateID trims raw and checks it is exactly IDLength ASCII digits.
func ValidateID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if len(id) != IDLength {
		return "", fmt.Errorf("%w: must have exactly %d digits, got %q", ErrInvalidIdentity, IDLength, id)
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return "", fmt.Errorf("%w: must contain digits only, got %q", ErrInvalidIdentity, id)
		}
	}
	return id, nil
}

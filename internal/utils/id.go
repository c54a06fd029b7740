package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns prefix + "_" + 12 hex characters from a random UUID,
// e.g. "user_3f9c0a7b21de".
func NewID(prefix string) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "_" + hex[:12]
}

package util

import (
	"strings"
	"unicode"

	"go-file-tree/pkg/apierror"
)

// NormalizeName trims surrounding whitespace and otherwise keeps the name as
// given. Blank names and names containing C0/C1 control characters are
// rejected.
func NormalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", apierror.BadRequest("name is required")
	}

	if strings.IndexFunc(trimmed, unicode.IsControl) >= 0 {
		return "", apierror.BadRequest("name must not contain control characters")
	}

	return trimmed, nil
}

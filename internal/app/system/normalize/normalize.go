// Package normalize canonicalizes user-supplied identity fields before they
// are stored or compared.
package normalize

import (
	"strings"

	"github.com/koinonia-app/koinonia/internal/domain/models"
)

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name and collapses inner whitespace. Case is kept.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Role returns the stored form of a role ("member" -> "MEMBER").
func Role(s string) string {
	return models.CanonicalRole(s)
}

// Text trims free text such as prayer subjects and meeting titles.
func Text(s string) string {
	return strings.TrimSpace(s)
}

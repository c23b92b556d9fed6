// tag generates poketags and allows mocking
package tag

//go:generate mockgen -destination=mock/mock_generator.go -package=mocktag -source=tag.go

import (
	"strings"

	"github.com/google/uuid"
)

// Length of a generated poketag.
const Length = 6

// Generator is an interface for generating poketags
type Generator interface {
	New() string
}

// UUIDGenerator implements the Generator interface using Google's UUID package
type UUIDGenerator struct{}

// New generates a fresh lowercase hex poketag
func (g *UUIDGenerator) New() string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return id[:Length]
}

// NewUUIDGenerator creates a new UUIDGenerator
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Normalize lowercases a user-supplied tag for lookups; tags are stored
// lowercase and compared case-insensitively.
func Normalize(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

package errors

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// maxNodeIDLength bounds ids accepted from the outside world.
const maxNodeIDLength = 256

// nodeIDRegex matches the ids used by concept data files: lower-case words
// joined by underscores, digits and dashes allowed.
var nodeIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// ValidateNodeID validates a concept id received from a URL, a flag, or a
// data file. Ids end up in cache keys and file names, so anything that could
// traverse a path is rejected:
//   - No empty ids
//   - No control characters
//   - No path separators or ".."
//   - Maximum length of 256 characters
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "concept id cannot be empty")
	}
	if len(id) > maxNodeIDLength {
		return New(ErrCodeInvalidInput, "concept id too long (max %d characters)", maxNodeIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "concept id contains invalid control characters")
		}
	}
	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidInput, "concept id cannot contain path traversal sequences (..)")
	}
	if !nodeIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid concept id: %q", id)
	}
	return nil
}

// ValidateUserID validates a user-state id. User ids are random UUIDs.
func ValidateUserID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "user id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid user id: %q", id)
	}
	return nil
}

// ValidateDataFile validates the path of a concept data file and returns its
// format ("json" or "toml") derived from the extension.
func ValidateDataFile(path string) (string, error) {
	if path == "" {
		return "", New(ErrCodeInvalidPath, "path cannot be empty")
	}
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return "", New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", nil
	case ".toml":
		return "toml", nil
	default:
		return "", New(ErrCodeInvalidFormat, "unsupported data file %q (want .json or .toml)", filepath.Base(path))
	}
}

// ValidateURL validates a resource URL.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

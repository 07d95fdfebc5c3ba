package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// canonicalHashRegex matches a full sha256 hex digest.
var canonicalHashRegex = regexp.MustCompile(`^[0-9a-f]{64}$`)

// ValidateHash validates a canonical template hash as used in store lookups
// and API routes.
//
// Validation rules:
//   - Hash cannot be empty
//   - Exactly 64 characters
//   - Lowercase hexadecimal only
func ValidateHash(hash string) error {
	if hash == "" {
		return New(ErrCodeInvalidHash, "hash cannot be empty")
	}

	if len(hash) != 64 {
		return New(ErrCodeInvalidHash, "hash must be 64 characters, got %d", len(hash))
	}

	if !canonicalHashRegex.MatchString(hash) {
		return New(ErrCodeInvalidHash, "hash must be lowercase hexadecimal: %q", hash)
	}

	return nil
}

// ValidateOutputPath validates a user-supplied output file path.
// Paths may be absolute or relative; the checks reject only input that
// cannot name a file at all.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid characters")
		}
	}

	return nil
}

// ValidateJobID validates a job identifier. Job ids come from cluster
// scheduler environment variables or user flags and end up in batch
// metadata and export filenames, so path separators are rejected.
//
// Validation rules:
//   - Maximum length of 128 characters (empty means auto-generate)
//   - No control characters
//   - No path separators
func ValidateJobID(id string) error {
	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "job id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "job id contains invalid control characters")
		}
	}

	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidInput, "job id cannot contain path separators")
	}

	return nil
}

package core

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Limits on job specs and stored diagnostics.
const (
	// MaxJobNameLength matches the job service's name limit.
	MaxJobNameLength = 128

	// MaxErrorMessageLength is the maximum length for stored error messages.
	MaxErrorMessageLength = 4096
)

// validJobName matches alphanumeric, hyphens, underscores, and dots.
var validJobName = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_\-\.]*$`)

// Validate checks the spec at construction time. A spec that fails
// validation is never submitted.
func (s JobSpec) Validate() error {
	if s.Name == "" {
		return ErrMissingName
	}
	if len(s.Name) > MaxJobNameLength {
		return ErrNameTooLong
	}
	if !validJobName.MatchString(s.Name) {
		return ErrInvalidName
	}
	if s.JobQueue == "" {
		return ErrMissingQueue
	}
	if s.JobDefinition == "" {
		return ErrMissingDefinition
	}
	if s.Resources.VCPUs < 0 || s.Resources.MemoryMiB < 0 {
		return ErrInvalidResources
	}
	return nil
}

// SanitizeErrorMessage truncates and sanitizes error messages for storage.
func SanitizeErrorMessage(msg string) string {
	if msg == "" {
		return ""
	}

	var sanitized strings.Builder
	sanitized.Grow(len(msg))

	for _, r := range msg {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127) {
			sanitized.WriteRune(r)
		}
	}

	result := sanitized.String()

	if utf8.RuneCountInString(result) > MaxErrorMessageLength {
		runes := []rune(result)
		result = string(runes[:MaxErrorMessageLength-3]) + "..."
	}

	return result
}

package errors

import (
	"net/url"
	"strings"
	"unicode"
)

const (
	maxLabelLength = 256
	maxPathLength  = 500
)

// ValidateLabel checks a node label from a prerequisite payload. Labels are
// written verbatim into SVG, DOT and terminal rows, so they must be
// non-blank, at most 256 bytes and free of control characters.
func ValidateLabel(label string) error {
	return checkText(label, "node label", maxLabelLength, ErrCodeMalformedTree)
}

// ValidatePath checks a local payload path: non-empty, at most 500 bytes,
// no control characters.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	return checkText(path, "path", maxPathLength, ErrCodeInvalidPath)
}

// ValidateURL accepts absolute http and https URLs with a host.
func ValidateURL(rawURL string) error {
	if !IsURL(rawURL) {
		return New(ErrCodeInvalidInput, "payload URL must use http or https, got %q", rawURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "parse payload URL")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "payload URL %q has no host", rawURL)
	}
	return nil
}

// IsURL reports whether s names a remote payload rather than a file.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func checkText(s, what string, limit int, code Code) error {
	switch {
	case strings.TrimSpace(s) == "":
		return New(code, "%s cannot be blank", what)
	case len(s) > limit:
		return New(code, "%s too long (max %d bytes)", what, limit)
	case strings.IndexFunc(s, unicode.IsControl) >= 0:
		return New(code, "%s contains control characters", what)
	}
	return nil
}

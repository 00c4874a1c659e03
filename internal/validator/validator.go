// Package validator decides whether a candidate file is acceptable for
// upload given an accept-spec and a size limit. It performs no I/O.
package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/OpenNSW/aadhaar/internal/filedata"
)

const mebibyte = 1024 * 1024

// Kind classifies a rejection.
type Kind int

const (
	KindType Kind = iota + 1
	KindSize
)

// Error is a user-facing rejection reason.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

// Validate checks file against accept and maxBytes. It returns nil when the
// file is acceptable and a *Error otherwise. The type check runs first.
func Validate(file *filedata.File, accept string, maxBytes int64) error {
	if file == nil {
		return &Error{Kind: KindType, Reason: typeReason(accept)}
	}

	if !MatchesAccept(file.Name, file.Type, accept) {
		return &Error{Kind: KindType, Reason: typeReason(accept)}
	}

	if file.Size > maxBytes {
		return &Error{
			Kind:   KindSize,
			Reason: fmt.Sprintf("File size exceeds %.2f MB limit", float64(maxBytes)/mebibyte),
		}
	}

	return nil
}

// MatchesAccept reports whether a file with the given name and MIME type is
// allowed by any entry of the comma-separated accept-spec.
func MatchesAccept(name, mimeType, accept string) bool {
	lowerName := strings.ToLower(name)
	for _, entry := range strings.Split(accept, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.HasPrefix(entry, ".") {
			if strings.HasSuffix(lowerName, strings.ToLower(entry)) {
				return true
			}
			continue
		}
		if mimeType == entry || wildcardMatch(entry, mimeType) {
			return true
		}
	}
	return false
}

// wildcardMatch expands the first "*" to any run of characters and looks
// for the pattern anywhere in mimeType. Other characters match literally.
func wildcardMatch(pattern, mimeType string) bool {
	if mimeType == "" {
		return false
	}
	before, after, found := strings.Cut(pattern, "*")
	expr := regexp.QuoteMeta(before)
	if found {
		expr += ".*" + regexp.QuoteMeta(after)
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return false
	}
	return re.MatchString(mimeType)
}

func typeReason(accept string) string {
	return "Invalid file type. Please upload " + accept
}

// FormatSize renders a byte count the way the upload surface shows it.
func FormatSize(bytes int64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d B", bytes)
	case bytes < mebibyte:
		return fmt.Sprintf("%.2f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%.2f MB", float64(bytes)/mebibyte)
	}
}

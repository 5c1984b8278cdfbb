// Package validation checks the untrusted input that reaches the search
// service: query parameters from the HTTP API and MCP tools, corpus paths
// from the CLI and config, and file names taken from FTP listings.
package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

const (
	MaxFilenameLength = 255
	MaxPathLength     = 4096
)

var (
	ErrPathTraversal    = errors.New("path traversal detected")
	ErrInvalidFilename  = errors.New("invalid filename")
	ErrPathTooLong      = errors.New("path too long")
	ErrFilenameTooLong  = errors.New("filename too long")
	ErrInvalidCharacter = errors.New("invalid character")
	ErrEmptyPath        = errors.New("path cannot be empty")
)

func hasControl(s string) bool {
	return strings.ContainsFunc(s, unicode.IsControl)
}

// SanitizePath cleans a relative path so it can be joined under baseDir
// without escaping it. Absolute paths and any ".." element are rejected.
func SanitizePath(baseDir, userPath string) (string, error) {
	switch {
	case userPath == "":
		return "", ErrEmptyPath
	case len(userPath) > MaxPathLength:
		return "", ErrPathTooLong
	case filepath.IsAbs(userPath):
		return "", fmt.Errorf("%w: absolute path %q", ErrPathTraversal, userPath)
	}
	clean := filepath.Clean(userPath)
	if !filepath.IsLocal(clean) {
		return "", fmt.Errorf("%w: %q escapes %s", ErrPathTraversal, userPath, baseDir)
	}
	return clean, nil
}

// ValidatePath rejects empty or oversized corpus paths and ones carrying
// NUL or other control characters.
func ValidatePath(path string) error {
	switch {
	case path == "":
		return ErrEmptyPath
	case len(path) > MaxPathLength:
		return ErrPathTooLong
	case hasControl(path):
		return fmt.Errorf("%w in path %q", ErrInvalidCharacter, path)
	}
	return nil
}

// ValidateFilename accepts a single path element that is safe to create
// locally and to pass as an argument (no leading hyphen).
func ValidateFilename(name string) error {
	switch {
	case name == "":
		return ErrInvalidFilename
	case len(name) > MaxFilenameLength:
		return ErrFilenameTooLong
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q is reserved", ErrInvalidFilename, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q contains a separator", ErrInvalidFilename, name)
	case hasControl(name):
		return fmt.Errorf("%w: %q contains a control character", ErrInvalidFilename, name)
	case name[0] == '-':
		return fmt.Errorf("%w: %q starts with a hyphen", ErrInvalidFilename, name)
	}
	return nil
}

// SanitizeFilename turns a remote file name into a safe local one:
// separators become underscores, control characters and leading hyphens
// are dropped. The result still has to pass ValidateFilename.
func SanitizeFilename(name string) (string, error) {
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	name = strings.TrimLeft(name, "-")
	if err := ValidateFilename(name); err != nil {
		return "", err
	}
	return name, nil
}

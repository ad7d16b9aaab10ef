// Package input cleans text typed by users before it reaches dialog handlers.
package input

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxSize is 4KB, the size of a long chat message.
	DefaultMaxSize = 4096
	// EnvMaxSize overrides DefaultMaxSize.
	EnvMaxSize = "CHATDIALOG_MAX_INPUT_SIZE"
)

var (
	ErrTooLarge    = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8 = errors.New("input contains invalid UTF-8 sequences")
)

// Sanitizer enforces a size limit, validates UTF-8 and strips control characters
// other than newline, tab and carriage return.
type Sanitizer struct {
	MaxSize int
}

// NewSanitizer creates a sanitizer using EnvMaxSize, or DefaultMaxSize when unset.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{MaxSize: maxSizeFromEnv()}
}

// Sanitize returns the cleaned text.
func (s *Sanitizer) Sanitize(text string) (string, error) {
	// 1. Size limit. Rejected rather than truncated.
	limit := s.MaxSize
	if limit <= 0 {
		limit = DefaultMaxSize
	}
	if len(text) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrTooLarge, len(text), limit)
	}

	// 2. UTF-8
	if !utf8.ValidString(text) {
		return "", ErrInvalidUTF8
	}

	// 3. Control characters (ANSI escapes, NUL, BEL) corrupt terminals and logs.
	if strings.IndexFunc(text, unsafeControl) < 0 {
		return text, nil
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if !unsafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// Sanitize cleans text with the environment-configured limit.
func Sanitize(text string) (string, error) {
	return NewSanitizer().Sanitize(text)
}

func unsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}

func maxSizeFromEnv() int {
	if val := os.Getenv(EnvMaxSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxSize
}

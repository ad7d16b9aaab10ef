package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/chatdialog/pkg/domain"
	"github.com/aretw0/chatdialog/pkg/ports"
)

// Mask replaces values of sensitive keys.
const Mask = "***"

type piiMiddleware struct {
	ports.Storage
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks dialog data values whose keys match the patterns.
// Masking is applied to the persisted copy only; the live context keeps the real values for the current event.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.Storage) ports.Storage {
		return &piiMiddleware{Storage: next, patterns: patterns}
	}
}

func (m *piiMiddleware) SaveContext(ctx context.Context, chat domain.ChatKey, c *domain.Context) error {
	cloned := c.Clone()
	maskMap(cloned.DialogData, m.patterns)
	maskMap(cloned.StartData, m.patterns)
	return m.Storage.SaveContext(ctx, chat, cloned)
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		masked := false
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				masked = true
				break
			}
		}

		if subMap, ok := v.(map[string]any); ok && !masked {
			maskMap(subMap, patterns)
		}
	}
}

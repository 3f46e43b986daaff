// Package content cleans article bodies and derives plain-text previews.
package content

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"ArticleGate/internal/ports"
)

const defaultExcerptRunes = 280

// Policy sanitizes HTML with a UGC allow-list and extracts text excerpts.
type Policy struct {
	policy       *bluemonday.Policy
	excerptRunes int
}

var _ ports.ContentPolicy = (*Policy)(nil)

// NewPolicy builds a policy; excerptRunes defaults to 280.
func NewPolicy(excerptRunes int) *Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)

	if excerptRunes <= 0 {
		excerptRunes = defaultExcerptRunes
	}
	return &Policy{policy: p, excerptRunes: excerptRunes}
}

// Sanitize strips scripts, handlers and unsafe markup from content.
func (p *Policy) Sanitize(content string) string {
	return strings.TrimSpace(p.policy.Sanitize(content))
}

// Excerpt returns the leading text of content, cut on a word boundary.
func (p *Policy) Excerpt(content string) string {
	text := plainText(content)
	if utf8.RuneCountInString(text) <= p.excerptRunes {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:p.excerptRunes])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

func plainText(content string) string {
	if !strings.ContainsRune(content, '<') {
		return strings.Join(strings.Fields(content), " ")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return strings.Join(strings.Fields(content), " ")
	}
	doc.Find("script, style").Remove()

	parts := make([]string, 0)
	doc.Find("body").Contents().Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

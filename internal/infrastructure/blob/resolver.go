// Package blob maps article file references onto download URLs.
package blob

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"ArticleGate/internal/domain"
	"ArticleGate/internal/ports"
)

const articlesPrefix = "articles"

// URLResolver joins references under a public base URL.
type URLResolver struct {
	base *url.URL
}

var _ ports.BlobResolver = (*URLResolver)(nil)

// NewURLResolver parses the base URL; it must be absolute.
func NewURLResolver(baseURL string) (*URLResolver, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse blob base url: %w", err)
	}
	if !base.IsAbs() {
		return nil, fmt.Errorf("blob base url %q must be absolute", baseURL)
	}
	return &URLResolver{base: base}, nil
}

// Resolve returns absolute references unchanged and places relative ones
// under <base>/articles/.
func (r *URLResolver) Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", nil
	}

	parsed, err := url.Parse(ref)
	if err != nil {
		return "", domain.Validationf("invalid file reference %q", ref)
	}
	if parsed.IsAbs() {
		return parsed.String(), nil
	}

	clean := path.Clean("/" + parsed.Path)
	if clean == "/" {
		return "", domain.Validationf("invalid file reference %q", ref)
	}

	out := *r.base
	out.Path = path.Join("/", r.base.Path, articlesPrefix, clean)
	out.RawQuery = parsed.RawQuery
	return out.String(), nil
}

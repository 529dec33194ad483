// Package deeplink builds stable URLs that reopen a specific material or
// comment from notifications and search results. Pure data transformation;
// nothing here touches storage.
package deeplink

import (
	"fmt"
	"net/url"
	"strings"
)

// Builder renders application URLs against a configured public base.
type Builder struct {
	base string
}

// NewBuilder trims trailing slashes from the base URL once, up front.
func NewBuilder(baseURL string) *Builder {
	return &Builder{base: strings.TrimRight(baseURL, "/")}
}

// Material returns the canonical page URL for a material.
func (b *Builder) Material(materialID string) string {
	return fmt.Sprintf("%s/materials/%s", b.base, url.PathEscape(materialID))
}

// Comment returns a material URL anchored at a specific comment.
func (b *Builder) Comment(materialID, commentID string) string {
	return fmt.Sprintf("%s/materials/%s?comment=%s", b.base, url.PathEscape(materialID), url.QueryEscape(commentID))
}

// PendingQueue returns the lecturer review queue URL, optionally filtered to
// one subject code.
func (b *Builder) PendingQueue(subjectCode string) string {
	if subjectCode == "" {
		return fmt.Sprintf("%s/review/pending", b.base)
	}
	return fmt.Sprintf("%s/review/pending?subject=%s", b.base, url.QueryEscape(subjectCode))
}

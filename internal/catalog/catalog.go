// Package catalog keeps the derived product fields in step with the edited ones.
package catalog

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"bonneaffaire/internal/models"
)

var (
	unsafeChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace  = regexp.MustCompile(`\s+`)
	hyphens     = regexp.MustCompile(`-+`)
)

// Slugify turns a product name into a URL-safe slug: "Café Élégant" -> "cafe-elegant".
func Slugify(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(name))
	if err != nil {
		folded = strings.ToLower(name)
	}

	slug := unsafeChars.ReplaceAllString(folded, "")
	slug = whitespace.ReplaceAllString(strings.TrimSpace(slug), "-")
	slug = hyphens.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// NormalizeProduct tidies p before validation. nameChanged tells whether the
// name is new or was edited, which is when a missing slug gets derived.
func NormalizeProduct(p *models.Product, nameChanged bool) {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.Category = models.ProductCategory(strings.ToLower(strings.TrimSpace(string(p.Category))))

	if p.OldPrice != nil && *p.OldPrice <= p.Price {
		p.OldPrice = nil
	}

	if len(p.Images) > models.MaxProductImages {
		p.Images = p.Images[:models.MaxProductImages]
	}

	if p.Specifications.Dimensions.Unit == "" {
		p.Specifications.Dimensions.Unit = "cm"
	}

	tags := p.Tags[:0]
	for _, tag := range p.Tags {
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
			tags = append(tags, tag)
		}
	}
	p.Tags = tags

	if p.SEO.Slug != nil && *p.SEO.Slug == "" {
		p.SEO.Slug = nil
	}
	if nameChanged && p.SEO.Slug == nil {
		if slug := Slugify(p.Name); slug != "" {
			p.SEO.Slug = &slug
		}
	}
}

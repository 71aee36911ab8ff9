// Package validation holds the field rules shared by the mutation services.
// Rules append to a Problems list so one request reports every violation.
package validation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"crafthub/internal/models"
)

// Field limits, counted in characters.
const (
	TitleMinLen          = 3
	TitleMaxLen          = 200
	ContentMinLen        = 10
	ContentMaxLen        = 2000
	MaterialsMaxLen      = 300
	TimeToCompleteMaxLen = 50
	PriceRangeMaxLen     = 50
	CommentMaxLen        = 500
	ImageURLMaxLen       = 500
	AltTextMaxLen        = 200
	MaxImagesPerPost     = 10

	NameMaxLen           = 150
	BioMaxLen            = 500
	SpecializationMaxLen = 100
	LocationMaxLen       = 100
	WebsiteMaxLen        = 200
	AvatarMaxLen         = 500
)

// Problems accumulates human-readable rule violations.
type Problems []string

// Add records one violation.
func (p *Problems) Add(format string, args ...any) {
	*p = append(*p, fmt.Sprintf(format, args...))
}

// Err returns nil when nothing was recorded, otherwise a validation AppError
// listing every message.
func (p Problems) Err() error {
	if len(p) == 0 {
		return nil
	}
	return models.NewValidationError(p...)
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}

// MaxLen records a violation when value is longer than max characters.
func MaxLen(p *Problems, field, value string, max int) {
	if length(value) > max {
		p.Add("%s must be at most %d characters", field, max)
	}
}

// Title trims the title and checks its bounds. The trimmed value is returned.
func Title(p *Problems, title string) string {
	trimmed := strings.TrimSpace(title)
	if length(trimmed) < TitleMinLen {
		p.Add("title must be at least %d characters", TitleMinLen)
	}
	MaxLen(p, "title", trimmed, TitleMaxLen)
	return trimmed
}

// Content trims the post body and checks its bounds.
func Content(p *Problems, content string) string {
	trimmed := strings.TrimSpace(content)
	if length(trimmed) < ContentMinLen {
		p.Add("content must be at least %d characters", ContentMinLen)
	}
	MaxLen(p, "content", trimmed, ContentMaxLen)
	return trimmed
}

// PostDetails checks the optional free-text post attributes.
func PostDetails(p *Problems, materials, timeToComplete, priceRange string) {
	MaxLen(p, "materials_used", materials, MaterialsMaxLen)
	MaxLen(p, "time_to_complete", timeToComplete, TimeToCompleteMaxLen)
	MaxLen(p, "price_range", priceRange, PriceRangeMaxLen)
}

// CommentContent has no lower bound; only the maximum applies.
func CommentContent(p *Problems, content string) {
	MaxLen(p, "comment", content, CommentMaxLen)
}

// ImageRef checks one image reference at position i.
func ImageRef(p *Problems, i int, rawURL, altText string) {
	label := fmt.Sprintf("images[%d]", i)
	if strings.TrimSpace(rawURL) == "" {
		p.Add("%s.image_url is required", label)
	} else if !isHTTPURL(rawURL) {
		p.Add("%s.image_url must be an http(s) URL", label)
	}
	MaxLen(p, label+".image_url", rawURL, ImageURLMaxLen)
	MaxLen(p, label+".alt_text", altText, AltTextMaxLen)
}

// Website accepts an empty value or an http(s) URL.
func Website(p *Problems, raw string) {
	OptionalURL(p, "website", raw, WebsiteMaxLen)
}

// OptionalURL accepts an empty value or an http(s) URL of at most max characters.
func OptionalURL(p *Problems, field, raw string, max int) {
	if raw == "" {
		return
	}
	if !isHTTPURL(raw) {
		p.Add("%s must be an http(s) URL", field)
	}
	MaxLen(p, field, raw, max)
}

func isHTTPURL(raw string) bool {
	u, err := url.ParseRequestURI(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

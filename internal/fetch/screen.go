package fetch

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RejectReason identifies why content screening discarded a page.
type RejectReason string

const (
	RejectNonHTML     RejectReason = "non_html"
	RejectTooSmall    RejectReason = "too_small"
	RejectTooLarge    RejectReason = "too_large"
	RejectNoRelevance RejectReason = "no_relevance"
)

// defaultKeywords is the body-relevance filter: a fetched page must mention
// at least one culinary term (or carry recipe structured data) to be kept.
var defaultKeywords = regexp.MustCompile(
	`(?i)(recipe|ingredient|cooking|bake|baking|dish|food|cuisine|kitchen|meal|serving)`)

// Screener decides whether a fetched body is worth keeping.
//
// Design decision: Screening is separated from outcome classification
// because a screened-out page is still a successful fetch. Its links are
// still extracted and its visit is still recorded; only the body is
// dropped.
type Screener struct {
	minSize  int64
	maxSize  int64
	keywords *regexp.Regexp
}

// NewScreener returns a screener with the given body size bounds in bytes.
func NewScreener(minSize, maxSize int64) *Screener {
	return &Screener{
		minSize:  minSize,
		maxSize:  maxSize,
		keywords: defaultKeywords,
	}
}

// Decision is the result of screening one page.
type Decision struct {
	Keep         bool
	Reason       RejectReason
	RecipeSignal bool
}

// Screen applies the keep/discard rules to a fetched body. The utf8Body is
// the charset-decoded form used for text matching; rawLen is the length of
// the raw transferred body, which the size bounds apply to.
func (s *Screener) Screen(contentType string, rawLen int64, utf8Body []byte) Decision {
	if !IsHTMLContentType(contentType) {
		return Decision{Reason: RejectNonHTML}
	}
	if rawLen < s.minSize {
		return Decision{Reason: RejectTooSmall}
	}
	if rawLen > s.maxSize {
		return Decision{Reason: RejectTooLarge}
	}

	signal := hasRecipeStructuredData(utf8Body)
	if !signal && !s.keywords.Match(utf8Body) {
		return Decision{Reason: RejectNoRelevance}
	}

	return Decision{Keep: true, RecipeSignal: signal}
}

// IsHTMLContentType reports whether a Content-Type header denotes an HTML
// document. An empty header is treated as HTML: many small sites omit it,
// and the size and relevance screens still apply.
func IsHTMLContentType(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch mediaType {
	case "text/html", "application/xhtml+xml":
		return true
	default:
		return false
	}
}

// hasRecipeStructuredData reports whether the page embeds schema.org Recipe
// markup in a JSON-LD script block. This is the strongest available signal
// that a page is an actual recipe rather than an index or article.
func hasRecipeStructuredData(body []byte) bool {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return false
	}

	found := false
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := sel.Text()
		if strings.Contains(text, `"Recipe"`) || strings.Contains(text, `"@type": "Recipe"`) {
			found = true
			return false
		}
		return true
	})
	return found
}

// String implements fmt.Stringer for log output.
func (d Decision) String() string {
	if d.Keep {
		if d.RecipeSignal {
			return "keep (recipe structured data)"
		}
		return "keep"
	}
	return fmt.Sprintf("discard (%s)", d.Reason)
}

package classify

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Verdict is the classifier's decision for a candidate URL.
type Verdict int

const (
	// Accept means the URL matched a positive term and should be crawled.
	Accept Verdict = iota

	// Reject means the URL matched a negative term and must not enter the
	// frontier. Negative terms win over positive ones.
	Reject

	// Uncertain means no term matched. Uncertain URLs are still fetched,
	// but their pages only count as kept when content screening confirms
	// relevance.
	Uncertain
)

// String returns a readable verdict name.
func (v Verdict) String() string {
	switch v {
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	case Uncertain:
		return "uncertain"
	default:
		return fmt.Sprintf("unknown(%d)", int(v))
	}
}

// Default term lists used when the configuration supplies none.
// The positive list covers "recipe" in the languages most common among
// cooking sites; the negative list names page types that never hold recipes.
var (
	DefaultPositiveTerms = []string{
		"recipe", "recipes", "rezept", "recette", "ricetta", "receta",
		"cooking", "ingredient", "dish", "bake", "cuisine",
	}

	DefaultNegativeTerms = []string{
		"login", "signin", "signup", "register", "account", "cart",
		"checkout", "privacy", "terms", "imprint", "impressum",
		"newsletter", "logout", `\.pdf$`, `\.jpe?g$`, `\.png$`, `\.gif$`,
		`\.css$`, `\.js$`, `\.xml$`, `\.zip$`,
	}
)

// asciiFold decomposes characters and strips combining marks, approximating
// a transliteration to ASCII for the Latin scripts that dominate recipe URLs.
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Classifier matches cleaned URLs against compiled term lists.
// It is immutable after construction and safe for concurrent use.
type Classifier struct {
	positive []*regexp.Regexp
	negative []*regexp.Regexp
}

// New compiles a classifier from the given term lists. Empty lists fall back
// to the package defaults. Terms are compiled case-insensitively; a term
// that fails to compile aborts construction.
func New(positive, negative []string) (*Classifier, error) {
	if len(positive) == 0 {
		positive = DefaultPositiveTerms
	}
	if len(negative) == 0 {
		negative = DefaultNegativeTerms
	}

	c := &Classifier{
		positive: make([]*regexp.Regexp, 0, len(positive)),
		negative: make([]*regexp.Regexp, 0, len(negative)),
	}

	for _, term := range positive {
		re, err := regexp.Compile("(?i)" + term)
		if err != nil {
			return nil, fmt.Errorf("invalid positive term %q: %w", term, err)
		}
		c.positive = append(c.positive, re)
	}
	for _, term := range negative {
		re, err := regexp.Compile("(?i)" + term)
		if err != nil {
			return nil, fmt.Errorf("invalid negative term %q: %w", term, err)
		}
		c.negative = append(c.negative, re)
	}

	return c, nil
}

// Classify cleans the URL and returns the verdict.
// Negative terms are checked first so that a URL matching both lists
// (e.g. "/recipes/login") is rejected.
func (c *Classifier) Classify(rawURL string) Verdict {
	cleaned := CleanURL(rawURL)

	for _, re := range c.negative {
		if re.MatchString(cleaned) {
			return Reject
		}
	}
	for _, re := range c.positive {
		if re.MatchString(cleaned) {
			return Accept
		}
	}

	return Uncertain
}

// CleanURL normalizes a URL for term matching:
// percent-encoding is decoded repeatedly until the string is stable (some
// sites double-encode), the result is lowercased, and diacritics are folded
// to ASCII base characters.
func CleanURL(rawURL string) string {
	s := strings.TrimSpace(rawURL)

	// Decode until stable. Bounded to avoid pathological inputs looping;
	// three rounds resolves any double or triple encoding seen in practice.
	for i := 0; i < 3; i++ {
		decoded, err := url.QueryUnescape(s)
		if err != nil || decoded == s {
			break
		}
		s = decoded
	}

	s = strings.ToLower(s)

	if folded, _, err := transform.String(asciiFold, s); err == nil {
		s = folded
	}

	return s
}

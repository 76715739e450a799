package fetch

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/recipecrawl/recipecrawl/internal/frontier"
)

// ExtractLinks parses anchors from an HTML body, resolves them against the
// page's final (post-redirect) URL, and returns the absolute URLs whose
// registrable domain is within scope, in document order without duplicates.
//
// Design decision: We use golang.org/x/net/html rather than regex because it
// correctly handles the malformed HTML common on recipe sites, and dropping
// off-scope links here (before they reach the frontier) keeps the frontier's
// admission logic focused on policy rather than scope.
func ExtractLinks(body io.Reader, base *url.URL, scope map[string]struct{}) []string {
	doc, err := html.Parse(body)
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	links := make([]string, 0, 32)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := getAttr(n, "href"); href != "" {
				if resolved := resolveLink(base, href); resolved != "" {
					if inScope(resolved, scope) {
						if _, dup := seen[resolved]; !dup {
							seen[resolved] = struct{}{}
							links = append(links, resolved)
						}
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links
}

// resolveLink resolves an href against the base URL, dropping pseudo-links
// and non-HTTP schemes.
func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

// inScope reports whether the link's registrable domain is in the crawl's
// domain scope.
func inScope(link string, scope map[string]struct{}) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	_, ok := scope[frontier.RegistrableDomain(u.Host)]
	return ok
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// extractTitle returns the text of the first <title> element, if any.
func extractTitle(body io.Reader) string {
	doc, err := html.Parse(body)
	if err != nil {
		return ""
	}

	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				title = strings.TrimSpace(n.FirstChild.Data)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return title
}

package parser

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// linkRel is forced onto every rendered hyperlink
const linkRel = "noopener noreferrer"

// Sanitizer applies an allow-list HTML policy and then rewrites every link
// so it carries rel="noopener noreferrer"
type Sanitizer struct {
	policy   *bluemonday.Policy
	fallback *bluemonday.Policy
}

// NewSanitizer creates the sanitizer used for slide bodies and speaker notes
func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		policy:   createHTMLSanitizer(),
		fallback: bluemonday.StrictPolicy(),
	}
}

// createHTMLSanitizer creates a restrictive policy for rendered markdown
func createHTMLSanitizer() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	// Only http(s), mailto and relative URLs survive; javascript: never does
	p.AllowStandardURLs()
	p.AllowDataURIImages()

	// Allow basic text formatting
	p.AllowElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowElements("p", "br", "hr")
	p.AllowElements("strong", "b", "em", "i", "u", "s", "del", "mark", "sup", "sub")
	p.AllowElements("ul", "ol", "li")
	p.AllowAttrs("start").Matching(bluemonday.Integer).OnElements("ol")
	p.AllowElements("blockquote", "pre", "code")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[\w+#-]+$`)).OnElements("code")
	p.AllowAttrs("href", "title").OnElements("a")
	p.AllowAttrs("src", "alt", "title").OnElements("img")
	p.AllowElements("table", "thead", "tbody", "tr", "th", "td")
	p.AllowAttrs("align").Matching(regexp.MustCompile(`^(left|right|center)$`)).OnElements("th", "td")
	p.AllowElements("div", "span").AllowAttrs("class").OnElements("div", "span")

	// Task-list checkboxes rendered by goldmark
	p.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")

	// Heading anchors
	p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")

	return p
}

// Sanitize cleans raw HTML. The link rewrite is not optional: if it cannot
// run, all markup is stripped instead.
func (s *Sanitizer) Sanitize(raw string) string {
	clean := s.policy.Sanitize(raw)
	if !strings.Contains(clean, "<a") {
		return clean
	}

	out, err := forceLinkRel(clean)
	if err != nil {
		return s.fallback.Sanitize(raw)
	}
	return out
}

// forceLinkRel sets rel on every <a> element of an HTML fragment
func forceLinkRel(fragment string) (string, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		setLinkRel(n)
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func setLinkRel(n *html.Node) {
	if n.Type == html.ElementNode && n.DataAtom == atom.A {
		replaced := false
		for i := range n.Attr {
			if n.Attr[i].Namespace == "" && n.Attr[i].Key == "rel" {
				n.Attr[i].Val = linkRel
				replaced = true
			}
		}
		if !replaced {
			n.Attr = append(n.Attr, html.Attribute{Key: "rel", Val: linkRel})
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		setLinkRel(c)
	}
}

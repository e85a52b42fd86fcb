// Package page provides a read only view over a rendered document and its URL
package page

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/idna"
)

// ErrNoHostname returned when the page URL has no host
var ErrNoHostname = errors.New("page url has no hostname")

// Context of a page for an inspection pass. Accessors always read the
// current document so mutations applied to Doc are visible to later passes.
type Context struct {
	URL      *url.URL
	Hostname string // lower case ascii, like location.hostname
	Protocol string // scheme with trailing colon, like location.protocol
	Href     string
	Doc      *goquery.Document
}

// New page context for doc loaded from rawURL
func New(rawURL string, doc *goquery.Document) (*Context, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, errors.Wrap(err, "parsing page url")
	}

	if u.Hostname() == "" {
		return nil, ErrNoHostname
	}

	return &Context{
		URL:      u,
		Hostname: NormalizeHost(u.Hostname()),
		Protocol: strings.ToLower(u.Scheme) + ":",
		Href:     u.String(),
		Doc:      doc,
	}, nil
}

// Parse an html document from r
func Parse(rawURL string, r io.Reader) (*Context, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "parsing page html")
	}
	return New(rawURL, doc)
}

// ParseString parses an html document held in a string
func ParseString(rawURL, source string) (*Context, error) {
	return Parse(rawURL, strings.NewReader(source))
}

// NormalizeHost lower cases and converts a host to its ascii form
func NormalizeHost(host string) string {
	lowered := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(host), "."))
	if converted, err := idna.Lookup.ToASCII(lowered); err == nil && converted != "" {
		return converted
	}
	return lowered
}

// IsSecure returns true if the page was served over https
func (c *Context) IsSecure() bool {
	return c.Protocol == "https:"
}

// Forms in the document
func (c *Context) Forms() *goquery.Selection {
	return c.Doc.Find("form")
}

// Inputs in the document
func (c *Context) Inputs() *goquery.Selection {
	return c.Doc.Find("input")
}

// Anchors with an href attribute
func (c *Context) Anchors() *goquery.Selection {
	return c.Doc.Find("a[href]")
}

// IframeCount number of iframes in the document
func (c *Context) IframeCount() int {
	return c.Doc.Find("iframe").Length()
}

// PasswordInputs are inputs whose type is password, case insensitive
func (c *Context) PasswordInputs() *goquery.Selection {
	return c.Inputs().FilterFunction(func(_ int, s *goquery.Selection) bool {
		return InputType(s) == "password"
	})
}

// ResolveURL resolves ref against the document base, the same way the DOM
// computes href and action properties.
func (c *Context) ResolveURL(ref string) (*url.URL, error) {
	return c.base().Parse(strings.TrimSpace(ref))
}

func (c *Context) base() *url.URL {
	href, exists := c.Doc.Find("base[href]").First().Attr("href")
	if !exists {
		return c.URL
	}
	u, err := c.URL.Parse(strings.TrimSpace(href))
	if err != nil {
		return c.URL
	}
	return u
}

// FormAction returns the absolute submission target of form. A missing or
// empty action submits to the document itself.
func (c *Context) FormAction(form *goquery.Selection) string {
	action, _ := form.Attr("action")
	if strings.TrimSpace(action) == "" {
		return c.Href
	}
	u, err := c.ResolveURL(action)
	if err != nil {
		return action
	}
	return u.String()
}

// LinkHost returns the normalized host an anchor points to
func (c *Context) LinkHost(anchor *goquery.Selection) (string, error) {
	href, exists := anchor.Attr("href")
	if !exists {
		return "", errors.New("anchor has no href")
	}
	u, err := c.ResolveURL(href)
	if err != nil {
		return "", errors.Wrap(err, "resolving link")
	}
	return NormalizeHost(u.Hostname()), nil
}

var skipText = map[string]struct{}{
	"script":   {},
	"style":    {},
	"noscript": {},
	"template": {},
	"head":     {},
}

// blockText elements start and end a line in rendered text
var blockText = map[string]struct{}{
	"address": {}, "article": {}, "aside": {}, "blockquote": {}, "br": {},
	"dd": {}, "div": {}, "dl": {}, "dt": {}, "fieldset": {}, "figcaption": {},
	"figure": {}, "footer": {}, "form": {}, "h1": {}, "h2": {}, "h3": {},
	"h4": {}, "h5": {}, "h6": {}, "header": {}, "hr": {}, "li": {}, "main": {},
	"nav": {}, "ol": {}, "option": {}, "p": {}, "pre": {}, "section": {},
	"table": {}, "td": {}, "th": {}, "tr": {}, "ul": {},
}

// BodyText is the rendered text of the body, script and style contents
// excluded. Inline elements do not break words, Face<b>book</b> reads as
// Facebook. Whitespace is collapsed to single spaces.
func (c *Context) BodyText() string {
	body := c.Doc.Find("body")
	if body.Length() == 0 {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			return
		case html.CommentNode:
			return
		case html.ElementNode:
			if _, skip := skipText[n.Data]; skip {
				return
			}
		}

		_, block := blockText[n.Data]
		if block {
			sb.WriteByte('\n')
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
		if block {
			sb.WriteByte('\n')
		}
	}
	for _, n := range body.Nodes {
		walk(n)
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// InputType is the lower cased DOM type of a form control. Elements without
// a type property return an empty string.
func InputType(s *goquery.Selection) string {
	switch goquery.NodeName(s) {
	case "input":
		t, _ := s.Attr("type")
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			return "text"
		}
		return t
	case "textarea":
		return "textarea"
	case "fieldset":
		return "fieldset"
	case "output":
		return "output"
	case "select":
		if _, multiple := s.Attr("multiple"); multiple {
			return "select-multiple"
		}
		return "select-one"
	case "button":
		t, _ := s.Attr("type")
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "reset" || t == "button" {
			return t
		}
		return "submit"
	}
	return ""
}

// ForElement returns a context over the document el belongs to, keeping
// the page URL. c itself is returned when el is part of c's document.
func (c *Context) ForElement(el *goquery.Selection) *Context {
	if el == nil || el.Length() == 0 {
		return c
	}
	root := el.Get(0)
	for root.Parent != nil {
		root = root.Parent
	}
	if len(c.Doc.Nodes) > 0 && c.Doc.Nodes[0] == root {
		return c
	}

	rebased := *c
	rebased.Doc = goquery.NewDocumentFromNode(root)
	return &rebased
}

// EnclosingForm of an element, empty selection if there is none
func EnclosingForm(s *goquery.Selection) *goquery.Selection {
	return s.Closest("form")
}

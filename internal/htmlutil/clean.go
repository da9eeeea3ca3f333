package htmlutil

import (
	"strings"

	"github.com/k3a/html2text"
	"golang.org/x/net/html"
)

// StripText converts HTML to plain text using html2text. It is lossy about
// layout and is meant for pulling readable text out of arbitrary web pages.
func StripText(s string) string {
	return html2text.HTML2Text(s)
}

// BodyHTML returns the markup inside <body> after parsing and normalising s.
// Fragments without an explicit body are wrapped by the parser first.
func BodyHTML(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return ""
	}
	body := findBody(doc)
	if body == nil {
		return ""
	}
	var sb strings.Builder
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return ""
		}
	}
	return sb.String()
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

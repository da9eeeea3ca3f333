package htmlutil

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Rule describes how an element's rendered children are framed in plain text.
type Rule int

const (
	PassThrough    Rule = iota // children as-is
	WrapNewline                // "\n" + children + "\n"
	TrailingDouble             // children + "\n\n"
	TrailingSingle             // children + "\n"
	SingleBreak                // "\n", children ignored
	Separator                  // "\n---\n\n", children ignored
	ListItem                   // "- " + children + "\n"
)

func (r Rule) String() string {
	switch r {
	case WrapNewline:
		return "wrap_newline"
	case TrailingDouble:
		return "trailing_double"
	case TrailingSingle:
		return "trailing_single"
	case SingleBreak:
		return "single_break"
	case Separator:
		return "separator"
	case ListItem:
		return "list_item"
	default:
		return "pass_through"
	}
}

// Apply frames already rendered children according to the rule.
func (r Rule) Apply(children string) string {
	switch r {
	case WrapNewline:
		return "\n" + children + "\n"
	case TrailingDouble:
		return children + "\n\n"
	case TrailingSingle:
		return children + "\n"
	case SingleBreak:
		return "\n"
	case Separator:
		return "\n---\n\n"
	case ListItem:
		return "- " + children + "\n"
	default:
		return children
	}
}

// Lists get no per-item numbering; ol and ul render the same.
var rules = map[string]Rule{
	"h1":  WrapNewline,
	"h2":  WrapNewline,
	"h3":  WrapNewline,
	"h4":  WrapNewline,
	"h5":  WrapNewline,
	"h6":  WrapNewline,
	"p":   TrailingDouble,
	"br":  SingleBreak,
	"hr":  Separator,
	"li":  ListItem,
	"ul":  TrailingSingle,
	"ol":  TrailingSingle,
	"div": TrailingSingle,
}

// RuleFor returns the formatting rule for a lower-case tag name.
// Unknown tags pass through.
func RuleFor(tag string) Rule {
	if r, ok := rules[tag]; ok {
		return r
	}
	return PassThrough
}

var (
	excessNewlines = regexp.MustCompile(`\n{3,}`)
)

// ToText renders HTML into a readable plain-text approximation suitable for
// the clipboard. Malformed markup is normalised by the parser; empty input
// yields empty output.
func ToText(s string) string {
	if s == "" {
		return ""
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return ""
	}
	body := findBody(doc)
	if body == nil {
		return ""
	}

	var sb strings.Builder
	render(&sb, body)

	out := excessNewlines.ReplaceAllString(sb.String(), "\n\n")
	return strings.Trim(out, "\n")
}

func render(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
	case html.ElementNode:
		rule := RuleFor(n.Data)
		switch rule {
		case SingleBreak, Separator:
			sb.WriteString(rule.Apply(""))
			return
		}
		var children strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			render(&children, c)
		}
		sb.WriteString(rule.Apply(children.String()))
	}
}

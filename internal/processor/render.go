package processor

import (
	"html"
	"regexp"
	"strings"
)

var (
	boldRun = regexp.MustCompile(`\*\*(.+?)\*\*`)
	ruleRun = regexp.MustCompile(`^(-{3,}|\*{3,}|_{3,})$`)
)

// RenderHTML turns the formatter's markdown-ish output into an HTML document:
// "---" lines become <hr>, "#".."######" lines become headings, "- " and "* "
// lines become list items and blank lines end paragraphs. Consecutive lines
// inside a paragraph are joined with <br>. All text is escaped.
func RenderHTML(text string) string {
	var (
		sb   strings.Builder
		para []string
		list []string
	)
	flushPara := func() {
		if len(para) > 0 {
			sb.WriteString("<p>" + strings.Join(para, "<br>") + "</p>")
			para = nil
		}
	}
	flushList := func() {
		if len(list) > 0 {
			sb.WriteString("<ul>")
			for _, item := range list {
				sb.WriteString("<li>" + item + "</li>")
			}
			sb.WriteString("</ul>")
			list = nil
		}
	}

	sb.WriteString("<html><body>")
	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)

		switch {
		case line == "":
			flushPara()
			flushList()
		case ruleRun.MatchString(line):
			flushPara()
			flushList()
			sb.WriteString("<hr>")
		case headingLevel(line) > 0:
			flushPara()
			flushList()
			level := headingLevel(line)
			tag := "h" + string(rune('0'+level))
			sb.WriteString("<" + tag + ">" + inline(strings.TrimSpace(line[level:])) + "</" + tag + ">")
		case strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* "):
			flushPara()
			list = append(list, inline(strings.TrimSpace(line[2:])))
		default:
			flushList()
			para = append(para, inline(line))
		}
	}
	flushPara()
	flushList()
	sb.WriteString("</body></html>")
	return sb.String()
}

// headingLevel returns 1-6 for "# ".."###### " prefixes, otherwise 0.
func headingLevel(line string) int {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	if n == 0 || n > 6 || n >= len(line) || line[n] != ' ' {
		return 0
	}
	return n
}

func inline(s string) string {
	return boldRun.ReplaceAllString(html.EscapeString(s), "<strong>$1</strong>")
}

package parser

import (
	"regexp"
	"strings"
)

var (
	tagRegex = regexp.MustCompile(`<[^>]*>`)
	// \s plus the unicode spaces HTML mail is full of (nbsp, thin spaces, BOM)
	whitespaceRegex = regexp.MustCompile(`[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]+`)
)

// entities are decoded in this order, one pass each
var entities = [][2]string{
	{"&nbsp;", " "},
	{"&amp;", "&"},
	{"&lt;", "<"},
	{"&gt;", ">"},
}

// StripMarkup turns an HTML body into single-line text for regex extraction.
// Tags become spaces so adjacent cells do not run together. Entities are
// decoded after tag removal so an escaped &lt;b&gt; survives as text.
func StripMarkup(html string) string {
	if html == "" {
		return ""
	}

	text := tagRegex.ReplaceAllString(html, " ")
	for _, e := range entities {
		text = strings.ReplaceAll(text, e[0], e[1])
	}
	text = whitespaceRegex.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

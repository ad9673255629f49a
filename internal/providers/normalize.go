package providers

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

var descriptionPolicy = bluemonday.UGCPolicy()

// sanitizeDescription cleans a live provider description before it
// enters the envelope: invalid UTF-8 stripped, then unsafe HTML
// removed. Upstream synopses routinely carry markup.
func sanitizeDescription(s string) string {
	return descriptionPolicy.Sanitize(sanitizeUTF8(s))
}

// htmlToText flattens HTML to whitespace-normalized plain text. Used
// where a description feeds keyword scoring or an LLM prompt rather
// than a rendered view.
func htmlToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// sanitizeUTF8 removes invalid UTF-8 byte sequences.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "")
}

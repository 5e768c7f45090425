package parser

import (
	"regexp"
	"strings"
)

var (
	scriptStyleRe = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	blockBreakRe  = regexp.MustCompile(`(?i)<(?:br\s*/?|/p|/div|/tr|/li|/h[1-6]|/table)>`)
	tagRe         = regexp.MustCompile(`<[^>]*>`)
	spaceRunRe    = regexp.MustCompile(`[ \t]+`)
	blankLineRe   = regexp.MustCompile(`\n{3,}`)
)

// htmlEntities covers the entities that show up in stripped e-commerce
// email bodies; full entity decoding is the mail collaborator's job.
var htmlEntities = map[string]string{
	"&amp;":   "&",
	"&lt;":    "<",
	"&gt;":    ">",
	"&quot;":  "\"",
	"&#39;":   "'",
	"&apos;":  "'",
	"&nbsp;":  " ",
	"&pound;": "£",
	"&euro;":  "€",
}

// htmlToText converts an HTML body to plain text while keeping line
// structure, which the line-based description extractor depends on.
func htmlToText(html string) string {
	if html == "" {
		return ""
	}

	text := scriptStyleRe.ReplaceAllString(html, " ")
	text = blockBreakRe.ReplaceAllString(text, "\n")
	text = tagRe.ReplaceAllString(text, " ")

	for entity, replacement := range htmlEntities {
		text = strings.ReplaceAll(text, entity, replacement)
	}

	return cleanText(text)
}

// cleanText normalizes whitespace without flattening newlines
func cleanText(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = spaceRunRe.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = blankLineRe.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// flattenWhitespace collapses all whitespace runs to single spaces.
// Used where matching should not care about line breaks.
func flattenWhitespace(text string) string {
	return strings.TrimSpace(regexp.MustCompile(`\s+`).ReplaceAllString(text, " "))
}

package services

import "github.com/microcosm-cc/bluemonday"

// richTextPolicy ist die feste Allow-List für Rich-Text-Felder:
// Standard-Inline/Block-Tags plus h1-h6, img und span. Attribute werden bis auf
// style, href, src und alt verworfen; URL-Schemata sind auf http, https und
// data beschränkt. Nicht erlaubte Tags werden komplett verworfen, nicht escaped.
var richTextPolicy = buildRichTextPolicy()

func buildRichTextPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "br", "hr", "div", "span", "blockquote", "pre", "code",
		"b", "strong", "i", "em", "u", "s", "sub", "sup", "small",
		"ul", "ol", "li", "a", "img",
		"table", "thead", "tbody", "tr", "th", "td",
		"h1", "h2", "h3", "h4", "h5", "h6",
	)
	p.AllowAttrs("style").Globally()
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("src", "alt").OnElements("img")
	p.AllowURLSchemes("http", "https", "data")
	return p
}

// SanitizeRichText säubert einen Rich-Text-Wert vor der Persistierung.
func SanitizeRichText(html string) string {
	return richTextPolicy.Sanitize(html)
}

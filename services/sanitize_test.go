package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeRichTextKeepsAllowedMarkup(t *testing.T) {
	in := `<h2 style="color:red">Titel</h2><p>Ein <strong>wichtiger</strong> Absatz mit <a href="https://example.com">Link</a>.</p><ul><li>eins</li></ul>`
	out := SanitizeRichText(in)

	assert.Contains(t, out, "<h2")
	assert.Contains(t, out, `style="color:red"`)
	assert.Contains(t, out, "<strong>wichtiger</strong>")
	assert.Contains(t, out, `href="https://example.com"`)
	assert.Contains(t, out, "<li>eins</li>")
}

func TestSanitizeRichTextStripsScripts(t *testing.T) {
	out := SanitizeRichText(`<p>ok</p><script>alert("xss")</script>`)
	assert.Contains(t, out, "<p>ok</p>")
	assert.NotContains(t, out, "script")
	assert.NotContains(t, out, "alert")
}

func TestSanitizeRichTextStripsEventHandlers(t *testing.T) {
	out := SanitizeRichText(`<p onclick="steal()">hi</p><img src="https://example.com/a.png" onerror="steal()">`)
	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "onerror")
	assert.Contains(t, out, "hi")
	assert.Contains(t, out, `src="https://example.com/a.png"`)
}

func TestSanitizeRichTextStripsJavascriptURLs(t *testing.T) {
	out := SanitizeRichText(`<a href="javascript:alert(1)">klick</a>`)
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, "klick")
}

func TestSanitizeRichTextDropsUnknownTags(t *testing.T) {
	out := SanitizeRichText(`<iframe src="https://evil.example"></iframe><p>text</p>`)
	assert.NotContains(t, out, "iframe")
	assert.Contains(t, out, "<p>text</p>")
}

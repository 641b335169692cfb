package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!doctype html>
<html lang="en-US">
<head>
  <title> Getting Started </title>
  <meta name="description" content="How to install docgen">
  <meta property="og:title" content="Docgen Guide">
  <meta property="og:image" content="https://example.com/og.png">
  <meta name="twitter:card" content="summary">
  <style>body { color: red; }</style>
  <script>var tracking = true;</script>
</head>
<body>
  <h1>Install</h1>
  <p>Run   pip install docgen.</p>
  <noscript>Enable JavaScript</noscript>
</body>
</html>`

func TestParsePage(t *testing.T) {
	doc, err := parsePage([]byte(samplePage), "text/html; charset=utf-8", "https://example.com/start")
	require.NoError(t, err)

	assert.Equal(t, "Install Run pip install docgen.", doc.PageContent)
	assert.Equal(t, "https://example.com/start", doc.Metadata["url"])
	assert.Equal(t, "Getting Started", doc.Metadata["title"])
	assert.Equal(t, "How to install docgen", doc.Metadata["description"])
	assert.Equal(t, "en-US", doc.Metadata["language"])
	assert.Equal(t, "Docgen Guide", doc.Metadata["og:title"])
	assert.Equal(t, "https://example.com/og.png", doc.Metadata["og:image"])
	assert.Equal(t, "summary", doc.Metadata["twitter:card"])
	assert.NotContains(t, doc.PageContent, "tracking")
}

func TestParsePage_SniffsCharset(t *testing.T) {
	latin1 := []byte("<html><head><meta charset=\"iso-8859-1\"><title>Caf\xe9</title></head><body>cr\xe8me</body></html>")

	doc, err := parsePage(latin1, "text/html", "https://example.com/")
	require.NoError(t, err)
	assert.Equal(t, "Café", doc.Metadata["title"])
	assert.Equal(t, "crème", doc.PageContent)
}

func TestParsePage_MinimalMetadata(t *testing.T) {
	doc, err := parsePage([]byte("<p>hello</p>"), "", "https://example.com/x")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"url": "https://example.com/x"}, doc.Metadata)
	assert.Equal(t, "hello", doc.PageContent)
}

func TestBodyContentType(t *testing.T) {
	assert.Equal(t, "text/html; charset=utf-8", bodyContentType("text/html; charset=ISO-8859-1"))
	assert.Equal(t, "text/html", bodyContentType("text/html"))
	assert.True(t, isHTML(""))
	assert.True(t, isHTML("text/html; charset=utf-8"))
	assert.False(t, isHTML("application/pdf"))
}

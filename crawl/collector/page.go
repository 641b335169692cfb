package collector

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/poiesic/docgen/core"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// parsePage decodes an HTML page to UTF-8 and extracts its visible text and
// metadata.
func parsePage(data []byte, contentType, pageURL string) (core.RawDocument, error) {
	enc, _, _ := charset.DetermineEncoding(data, contentType)
	utf8data, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		if !utf8.Valid(data) {
			return core.RawDocument{}, err
		}
		utf8data = data
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(utf8data))
	if err != nil {
		return core.RawDocument{}, err
	}

	doc.Find("script,noscript,style").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	meta := map[string]any{
		core.FieldURL: pageURL,
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		meta[core.FieldTitle] = title
	}
	if desc := strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", "")); desc != "" {
		meta[core.FieldDescription] = desc
	}
	if lang := strings.TrimSpace(doc.Find("html").AttrOr("lang", "")); lang != "" {
		meta[core.FieldLanguage] = lang
	}
	for k, v := range extractMetaTags(doc.Selection, "property", "og:") {
		meta[k] = v
	}
	for k, v := range extractMetaTags(doc.Selection, "name", "twitter:") {
		meta[k] = v
	}

	text := strings.TrimSpace(whitespaceRe.ReplaceAllString(doc.Find("body").Text(), " "))
	return core.RawDocument{PageContent: text, Metadata: meta}, nil
}

// extractMetaTags collects meta tags whose attr starts with prefix, keyed by
// the full attribute value.
func extractMetaTags(doc *goquery.Selection, attr, prefix string) map[string]string {
	result := make(map[string]string)
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		name := s.AttrOr(attr, "")
		if !strings.HasPrefix(name, prefix) {
			return
		}
		if content := strings.TrimSpace(s.AttrOr("content", "")); content != "" {
			result[name] = content
		}
	})
	return result
}

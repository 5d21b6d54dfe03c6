package content

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Aman-CERP/docsearch/internal/entry"
)

// parseHTML builds an entry from an HTML page.
//
// Recognized markup:
//
//	<title>, falling back to the first <h1>
//	<meta name="keywords" content="a, b">
//	<meta name="docsearch:section" content="tutorial">
//	<meta name="docsearch:id" content="...">
//	<meta name="docsearch:path" content="/custom">
func parseHTML(rel string, data []byte) (entry.Entry, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return entry.Entry{}, err
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if title == "" {
		title = titleFromFile(rel)
	}

	return entry.Entry{
		ID:       meta(doc, "docsearch:id"),
		Title:    collapseSpace(title),
		Section:  sectionFor(meta(doc, "docsearch:section"), rel),
		Path:     pathFor(meta(doc, "docsearch:path"), rel),
		Keywords: mergeKeywords(splitList(meta(doc, "keywords"))),
	}, nil
}

func meta(doc *goquery.Document, name string) string {
	var content string
	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if n, _ := s.Attr("name"); strings.EqualFold(n, name) {
			content, _ = s.Attr("content")
			return false
		}
		return true
	})
	return strings.TrimSpace(content)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

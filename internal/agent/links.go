package agent

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// unsubscribeURLPattern matches bare URLs that carry an opt-out path
// segment or query parameter.
var unsubscribeURLPattern = regexp.MustCompile(`(?i)https?://[^\s"]*(?:unsubscribe|optout|preferences)[^\s"]*`)

// ExtractUnsubscribeLink scans an email body for an unsubscribe path. Plain
// URLs containing an opt-out marker win; failing that, anchor tags whose
// visible text mentions unsubscribing are checked. Returns "" when no link
// is found.
func ExtractUnsubscribeLink(body string) string {
	if link := unsubscribeURLPattern.FindString(body); link != "" {
		return link
	}
	return extractUnsubscribeAnchor(body)
}

// extractUnsubscribeAnchor parses the body as HTML and returns the href of
// the first anchor whose text contains "unsubscribe".
func extractUnsubscribeAnchor(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}

	var link string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(s.Text()), "unsubscribe") {
			return true
		}
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return true
		}
		link = href
		return false
	})
	return link
}

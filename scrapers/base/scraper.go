package base

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/raushankrgupta/product-page-extractor/models"
)

// ExtractPageData builds the page record from rendered HTML. title is what the
// browser reported; when empty the document's <title> is used. Links are the
// absolute http(s) targets of every <a href>, in document order, duplicates kept.
func ExtractPageData(finalURL, title, html string) (*models.PageData, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "base: parse document")
	}

	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if looksBlocked(title) {
		zap.L().Warn("page looks like a bot wall", zap.String("url", finalURL), zap.String("title", title))
	}

	body, err := doc.Find("body").First().Html()
	if err != nil {
		return nil, eris.Wrap(err, "base: render body")
	}

	return &models.PageData{
		URL:         finalURL,
		Title:       title,
		Links:       collectLinks(doc, documentBase(doc, finalURL)),
		BodyContent: body,
	}, nil
}

// documentBase is the URL relative links resolve against: <base href> when
// present, otherwise the page's own URL.
func documentBase(doc *goquery.Document, pageURL string) *url.URL {
	page, err := url.Parse(pageURL)
	if err != nil {
		page = &url.URL{}
	}
	href, ok := doc.Find("base[href]").First().Attr("href")
	if !ok {
		return page
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return page
	}
	return page.ResolveReference(ref)
}

func collectLinks(doc *goquery.Document, base *url.URL) []string {
	links := []string{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref).String()
		if strings.HasPrefix(abs, "http") {
			links = append(links, abs)
		}
	})
	return links
}

func looksBlocked(title string) bool {
	lower := strings.ToLower(title)
	return strings.Contains(lower, "robot check") ||
		strings.Contains(lower, "captcha") ||
		strings.Contains(lower, "access denied")
}

// acceptLanguage turns a locale such as en-US into an Accept-Language value
func acceptLanguage(locale string) string {
	if locale == "" {
		return ""
	}
	lang, _, found := strings.Cut(locale, "-")
	if !found || lang == "" {
		return locale
	}
	return locale + "," + lang + ";q=0.9"
}

// browserHeaders are sent with every navigation to look like a regular visit
func browserHeaders(locale string) http.Header {
	h := http.Header{}
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	h.Set("Upgrade-Insecure-Requests", "1")
	h.Set("Sec-Fetch-Dest", "document")
	h.Set("Sec-Fetch-Mode", "navigate")
	h.Set("Sec-Fetch-Site", "none")
	h.Set("Sec-Fetch-User", "?1")
	if al := acceptLanguage(locale); al != "" {
		h.Set("Accept-Language", al)
	}
	return h
}

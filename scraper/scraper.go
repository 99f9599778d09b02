// Package scraper fetches unit metadata from the university handbook site.
// One lookup is one independent HTTP GET plus a handful of tolerant selector
// extractions; there is no caching or retrying because lookups are
// human-driven, one per form field edit.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

var (
	codePattern   = regexp.MustCompile(`^[A-Za-z]{3,}[0-9]{3,}$`)
	levelPattern  = regexp.MustCompile(`^[A-Za-z]+([0-9])`)
	creditPattern = regexp.MustCompile(`(?i)(\d+)\s*points?`)

	creditLabel     = regexp.MustCompile(`(?i)^credit$`)
	contactLabel    = regexp.MustCompile(`(?i)^contact\s*hours$`)
	outcomesLabel   = regexp.MustCompile(`(?i)^outcomes$`)
	assessmentLabel = regexp.MustCompile(`(?i)^assessment$`)

	whitespaceRun = regexp.MustCompile(`\s+`)
)

// InvalidCodeError reports a unit code that does not match the required
// "three-or-more letters, three-or-more digits" pattern. No request is made
// for such codes.
type InvalidCodeError struct {
	Code string
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("invalid unit code: %s", e.Code)
}

// FetchError reports a network failure or non-2xx response from the handbook.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("handbook fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("handbook fetch %s: status %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }

// UnitMetadata is the flat record extracted from one handbook page. Fields
// whose labels are absent from the page are empty strings, not errors;
// OutlineLink always carries the lookup URL as a durable reference.
type UnitMetadata struct {
	Code         string `json:"code"`
	UnitLevel    string `json:"unitLevel"`
	UnitName     string `json:"unitName"`
	Outcomes     string `json:"outcomes"`
	Assessments  string `json:"assessments"`
	CreditPoints string `json:"creditPoints"`
	ContactHours string `json:"contactHours"`
	OutlineLink  string `json:"outlineLink"`
}

// Fetcher resolves unit codes against a fixed handbook endpoint.
type Fetcher struct {
	BaseURL string
	Client  *http.Client
}

func NewFetcher(baseURL string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
	}
}

// NormalizeCode validates and uppercases a unit code.
func NormalizeCode(code string) (string, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(code))
	if !codePattern.MatchString(trimmed) {
		return "", &InvalidCodeError{Code: trimmed}
	}
	return trimmed, nil
}

// UnitLevel returns the first digit after the letter prefix of a code, or ""
// when there is none ("CITS1401" → "1").
func UnitLevel(code string) string {
	m := levelPattern.FindStringSubmatch(code)
	if m == nil {
		return ""
	}
	return m[1]
}

// LookupURL builds the deterministic handbook URL for a normalized code.
func (f *Fetcher) LookupURL(code string) string {
	return f.BaseURL + "?code=" + url.QueryEscape(code)
}

// Fetch retrieves and parses the handbook page for the given unit code.
// Malformed codes are rejected before any request is issued.
func (f *Fetcher) Fetch(ctx context.Context, code string) (*UnitMetadata, error) {
	normalized, err := NormalizeCode(code)
	if err != nil {
		return nil, err
	}

	lookupURL := f.LookupURL(normalized)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil, &FetchError{URL: lookupURL, Err: err}
	}
	// Browser-like identification so basic bot filtering does not reject us.
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: lookupURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: lookupURL, StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: lookupURL, Err: err}
	}

	return parseUnitPage(doc, normalized, lookupURL), nil
}

func parseUnitPage(doc *goquery.Document, code, lookupURL string) *UnitMetadata {
	return &UnitMetadata{
		Code:         code,
		UnitLevel:    UnitLevel(code),
		UnitName:     extractTitle(doc),
		Outcomes:     ddAfterDt(doc, outcomesLabel),
		Assessments:  ddAfterDt(doc, assessmentLabel),
		CreditPoints: extractCreditPoints(doc),
		ContactHours: ddAfterDt(doc, contactLabel),
		OutlineLink:  lookupURL,
	}
}

// extractTitle prefers the page-title element, then the first heading, then
// the social-preview metadata tag. First non-empty result wins.
func extractTitle(doc *goquery.Document) string {
	if title := cleanText(doc.Find("#pagetitle").First().Text()); title != "" {
		return title
	}
	if title := cleanText(doc.Find("h1").First().Text()); title != "" {
		return title
	}
	content, _ := doc.Find(`meta[property="og:title"]`).Attr("content")
	return cleanText(content)
}

func extractCreditPoints(doc *goquery.Document) string {
	var points string
	doc.Find("dl dt").Each(func(_ int, dt *goquery.Selection) {
		if !creditLabel.MatchString(cleanText(dt.Text())) {
			return
		}
		ddText := cleanText(dt.Next().Filter("dd").Text())
		if m := creditPattern.FindStringSubmatch(ddText); m != nil {
			points = m[1]
		}
	})
	return points
}

// ddAfterDt returns the text of the <dd> that directly follows the <dt> whose
// label matches labelRe, with <br> runs turned into newlines. When a label
// repeats on the page the last occurrence wins.
func ddAfterDt(doc *goquery.Document, labelRe *regexp.Regexp) string {
	var value string
	doc.Find("dl dt").Each(func(_ int, dt *goquery.Selection) {
		if !labelRe.MatchString(cleanText(dt.Text())) {
			return
		}
		dd := dt.Next().Filter("dd")
		if dd.Length() > 0 {
			value = textWithBreaks(dd)
		}
	})
	return value
}

// cleanText trims, replaces non-breaking spaces and collapses whitespace runs.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// textWithBreaks renders a selection to text, converting <br> elements to
// newlines, collapsing whitespace within lines and dropping blank lines.
func textWithBreaks(sel *goquery.Selection) string {
	var b strings.Builder
	for _, node := range sel.Nodes {
		renderText(&b, node)
	}

	lines := strings.Split(b.String(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = cleanText(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func renderText(b *strings.Builder, n *html.Node) {
	switch {
	case n.Type == html.TextNode:
		b.WriteString(n.Data)
	case n.Type == html.ElementNode && n.Data == "br":
		b.WriteString("\n")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderText(b, c)
	}
}

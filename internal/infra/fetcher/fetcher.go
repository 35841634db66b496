package fetcher

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/bryanwahyu/policywatch/internal/domain/content"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 10 << 20

	// A stable browser identity plus a pinned Accept-Language keeps
	// vendors from serving a different language per request, which
	// would manufacture a full-document diff on every check.
	userAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	acceptLanguage = "en-US,en;q=0.9"
)

// Elements that never carry policy text.
const structuralNoise = "script, style, noscript, nav, footer, header, aside"

// Semantic containers tried in order before falling back to <body>.
var contentSelectors = []string{"main", "article", ".content", ".legal", ".terms"}

// Tracking artifacts keyed by id/class/src.
const trackingSelector = `[id*="tracking"], [id*="beacon"], [id*="pixel"], [class*="tracking"], [class*="beacon"], [class*="pixel"], [src*="tracking"], [src*="beacon"], [src*="pixel"]`

// Volatile substrings that churn on every fetch without any semantic
// change: session tokens, render timestamps, cache-busted URLs.
var (
	reUUID      = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
	reISOStamp  = regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:?\d{2})?`)
	reLongHex   = regexp.MustCompile(`\b[0-9a-fA-F]{20,}\b`)
	reQueryBlob = regexp.MustCompile(`\?(?:[\w%.~-]+=[\w%.~-]*&){2,}[\w%.~-]+=[\w%.~-]*`)
	reSpaces    = regexp.MustCompile(`\s+`)
)

var reEffectiveDate = regexp.MustCompile(`(?i)(?:effective|last\s+(?:updated|modified|revised))(?:\s+(?:date|on|as\s+of))?\s*:?\s*([A-Za-z]+\s+\d{1,2},?\s+\d{4}|\d{1,2}\s+[A-Za-z]+\s+\d{4}|\d{4}-\d{2}-\d{2})`)

// Client fetches a URL and normalizes it into comparison-ready text.
type Client struct {
	http *http.Client
}

func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{http: &http.Client{Timeout: timeout}}
}

// Fetch implements content.Fetcher.
func (c *Client) Fetch(ctx context.Context, url string) (content.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return content.Page{}, &content.FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", acceptLanguage)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.http.Do(req)
	if err != nil {
		return content.Page{}, &content.FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return content.Page{}, &content.FetchError{URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return content.Page{}, &content.FetchError{URL: url, Err: err}
	}

	html := string(body)
	text, err := Normalize(html)
	if err != nil {
		return content.Page{}, &content.FetchError{URL: url, Err: err}
	}

	return content.Page{
		Text:          text,
		HTML:          html,
		EffectiveDate: ExtractEffectiveDate(text),
	}, nil
}

// Normalize parses HTML, strips non-content and tracking elements,
// extracts the main text and scrubs volatile tokens from it.
func Normalize(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	doc.Find(structuralNoise).Remove()
	doc.Find(trackingSelector).Remove()

	// 1x1 images and zero-sized or hidden iframes are tracking beacons.
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		if s.AttrOr("width", "") == "1" && s.AttrOr("height", "") == "1" {
			s.Remove()
		}
	})
	doc.Find("iframe").Each(func(_ int, s *goquery.Selection) {
		w, h := s.AttrOr("width", ""), s.AttrOr("height", "")
		style := strings.ToLower(s.AttrOr("style", ""))
		if w == "0" || h == "0" || strings.Contains(style, "display:none") || strings.Contains(style, "display: none") {
			s.Remove()
		}
	})

	var text string
	for _, sel := range contentSelectors {
		if t := strings.TrimSpace(doc.Find(sel).First().Text()); t != "" {
			text = t
			break
		}
	}
	if text == "" {
		text = doc.Find("body").Text()
	}

	return scrubVolatile(text), nil
}

func scrubVolatile(text string) string {
	text = reUUID.ReplaceAllString(text, "")
	text = reISOStamp.ReplaceAllString(text, "")
	text = reLongHex.ReplaceAllString(text, "")
	text = reQueryBlob.ReplaceAllString(text, "")
	return strings.TrimSpace(reSpaces.ReplaceAllString(text, " "))
}

// ExtractEffectiveDate pulls a "last updated" / "effective" date string
// out of document text. Best effort: returns "" when nothing date-like
// follows such a marker. Used only as analyst context.
func ExtractEffectiveDate(text string) string {
	m := reEffectiveDate.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

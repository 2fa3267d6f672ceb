package browser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"github.com/GriffinCanCode/PeakOS/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PeakOS/backend/internal/infrastructure/resilience"
)

const (
	// MaxBlocks caps the text blocks kept per page.
	MaxBlocks = 40
	// MaxLinks caps the links kept per page.
	MaxLinks = 25

	DefaultTimeout     = 10 * time.Second
	DefaultUserAgent   = "PeakOS-Navigator/1.0"
	DefaultMaxFailures = 5

	maxRedirects = 10
)

var (
	ErrNoURL              = errors.New("no address given")
	ErrUnsupportedScheme  = errors.New("only http and https addresses are supported")
	ErrUnsupportedContent = errors.New("page is not HTML or text")
)

// StatusError reports a non-success HTTP response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d %s (url: %s)", e.Code, http.StatusText(e.Code), e.URL)
}

// Link is a followable anchor resolved against the page address.
type Link struct {
	Text string
	Href string
}

// Page is the readable form of a fetched document.
type Page struct {
	URL         string
	Title       string
	Description string
	Blocks      []string
	Links       []Link
	Status      int
	ContentType string
}

// Fetcher loads pages.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Page, error)
}

// HTTPFetcher fetches pages over HTTP.
type HTTPFetcher struct {
	client  *resty.Client
	breaker *resilience.Breaker
	log     *logging.Logger
}

// NewHTTPFetcher builds a fetcher from cfg. Consecutive server errors or
// transport failures reaching cfg.MaxFailures open the breaker.
func NewHTTPFetcher(cfg Config, log *logging.Logger) *HTTPFetcher {
	cfg = cfg.withDefaults()
	if log == nil {
		log = logging.NewNop()
	}
	log = log.Named("fetch")

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects)).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.5").
		SetHeader("Accept-Language", "en-US,en;q=0.9")

	breaker := resilience.New("browser", resilience.Settings{
		Threshold: int(cfg.MaxFailures),
		Cooldown:  30 * time.Second,
		OnTransition: func(tr resilience.Transition) {
			log.Warn("Circuit breaker state changed",
				zap.String("breaker", tr.Name),
				zap.Stringer("from", tr.From),
				zap.Stringer("to", tr.To))
		},
	})

	return &HTTPFetcher{client: client, breaker: breaker, log: log}
}

// Breaker exposes the breaker guarding fetches.
func (f *HTTPFetcher) Breaker() *resilience.Breaker {
	return f.breaker
}

// Fetch retrieves rawURL and extracts its readable content.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	resp, err := resilience.Call(f.breaker, func() (*resty.Response, error) {
		resp, err := f.client.R().SetContext(ctx).Get(rawURL)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return nil, &StatusError{Code: resp.StatusCode(), URL: rawURL}
		}
		return resp, nil
	})
	if err != nil {
		return Page{}, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return Page{}, &StatusError{Code: resp.StatusCode(), URL: rawURL}
	}

	final := rawURL
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		final = raw.Request.URL.String()
	}
	contentType := resp.Header().Get("Content-Type")

	f.log.Debug("Page fetched",
		zap.String("url", final),
		zap.Int("status", resp.StatusCode()),
		zap.Int("bytes", len(resp.Body())))

	page, err := Parse(resp.Body(), contentType, final)
	if err != nil {
		return Page{}, err
	}
	page.Status = resp.StatusCode()
	return page, nil
}

// Close releases idle connections.
func (f *HTTPFetcher) Close() error {
	f.client.GetClient().CloseIdleConnections()
	return nil
}

// Parse decodes body per contentType and reduces it to a Page rooted at
// pageURL. Plain text is split into paragraphs on blank lines.
func Parse(body []byte, contentType, pageURL string) (Page, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return Page{}, fmt.Errorf("invalid page address: %w", err)
	}

	mediaType := "text/html"
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			mediaType = mt
		}
	}

	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return Page{}, fmt.Errorf("failed to decode page: %w", err)
	}

	page := Page{URL: base.String(), ContentType: mediaType, Title: base.Host}
	switch mediaType {
	case "text/html", "application/xhtml+xml":
		doc, err := goquery.NewDocumentFromReader(r)
		if err != nil {
			return Page{}, fmt.Errorf("failed to parse HTML: %w", err)
		}
		extract(doc, base, &page)
	case "text/plain":
		text, err := io.ReadAll(r)
		if err != nil {
			return Page{}, fmt.Errorf("failed to read page: %w", err)
		}
		for _, para := range strings.Split(string(text), "\n\n") {
			if para = collapse(para); para != "" && len(page.Blocks) < MaxBlocks {
				page.Blocks = append(page.Blocks, para)
			}
		}
	default:
		return Page{}, fmt.Errorf("%w: %s", ErrUnsupportedContent, mediaType)
	}
	return page, nil
}

func extract(doc *goquery.Document, base *url.URL, page *Page) {
	doc.Find("script, style, noscript, template").Remove()

	if title := collapse(doc.Find("title").First().Text()); title != "" {
		page.Title = title
	}
	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		page.Description = collapse(desc)
	}

	doc.Find("h1, h2, h3, p, li, pre, blockquote").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if text := collapse(s.Text()); text != "" {
			page.Blocks = append(page.Blocks, text)
		}
		return len(page.Blocks) < MaxBlocks
	})

	seen := make(map[string]bool)
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		abs, ok := resolve(base, href)
		if !ok || seen[abs] {
			return true
		}
		seen[abs] = true

		text := collapse(s.Text())
		if text == "" {
			text = abs
		}
		page.Links = append(page.Links, Link{Text: text, Href: abs})
		return len(page.Links) < MaxLinks
	})
}

// resolve makes href absolute against base, rejecting fragments and
// non-web schemes.
func resolve(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	abs.Fragment = ""
	return abs.String(), true
}

// NormalizeURL turns user input into an absolute http(s) address. A bare host
// gets https.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrNoURL
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid address %q: %w", raw, err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid address %q: missing host", raw)
	}
	return u.String(), nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

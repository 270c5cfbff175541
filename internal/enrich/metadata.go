package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// maxPageBytes caps how much of a product page is parsed.
const maxPageBytes = 2 << 20

// ImageFetcher finds the representative image of a product page.
type ImageFetcher struct {
	client    *http.Client
	userAgent string
}

// NewImageFetcher returns a fetcher whose requests give up after timeout.
func NewImageFetcher(timeout time.Duration) *ImageFetcher {
	return &ImageFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
	}
}

// FetchImage downloads pageURL and returns its og:image, twitter:image or
// first <img>, resolved to an absolute URL. An empty string means none was found.
func (f *ImageFetcher) FetchImage(ctx context.Context, pageURL string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse page url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch %s: unexpected status %d", pageURL, resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", pageURL, err)
	}

	src := findImage(doc)
	if src == "" {
		return "", nil
	}
	ref, err := url.Parse(src)
	if err != nil {
		return "", nil
	}
	return base.ResolveReference(ref).String(), nil
}

func findImage(doc *html.Node) string {
	var og, twitter, firstImg string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				content := attr(n, "content")
				if og == "" && attr(n, "property") == "og:image" {
					og = content
				}
				if twitter == "" && attr(n, "name") == "twitter:image" {
					twitter = content
				}
			case "img":
				if firstImg == "" {
					firstImg = attr(n, "src")
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	for _, candidate := range []string{og, twitter, firstImg} {
		if c := strings.TrimSpace(candidate); c != "" {
			return c
		}
	}
	return ""
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

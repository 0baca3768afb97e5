// Package feed turns RSS/Atom announcement feeds into news records.
package feed

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"jobboard-engine/internal/config"
	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/ingest"
	"jobboard-engine/internal/news"
)

const summaryLen = 300

type Fetcher struct {
	src     config.FeedSource
	parser  *gofeed.Parser
	limiter *ingest.HostLimiter
}

func New(src config.FeedSource, limiter *ingest.HostLimiter) *Fetcher {
	p := gofeed.NewParser()
	p.UserAgent = "JobBoard/1.0 (+local)"
	return &Fetcher{src: src, parser: p, limiter: limiter}
}

func (f *Fetcher) Name() string { return "feed:" + f.src.Name }

func (f *Fetcher) Fetch(ctx context.Context) (ingest.Result, error) {
	res := ingest.Result{Source: f.Name()}
	if err := f.limiter.WaitURL(ctx, f.src.URL); err != nil {
		return res, err
	}
	parsed, err := f.parser.ParseURLWithContext(f.src.URL, ctx)
	if err != nil {
		return res, fmt.Errorf("fetching %s: %w", f.src.Name, err)
	}
	res.News = Items(parsed, f.src)
	return res, nil
}

// Items converts parsed feed entries. Entries without a link or title are
// skipped.
func Items(parsed *gofeed.Feed, src config.FeedSource) []domain.NewsItem {
	out := make([]domain.NewsItem, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		title := strings.TrimSpace(it.Title)
		link := strings.TrimSpace(it.Link)
		if title == "" && link == "" {
			continue
		}

		body := it.Description
		if body == "" {
			body = it.Content
		}

		typ := domain.NewsTypeLink
		if isVideo(link) {
			typ = domain.NewsTypeYouTube
		} else if v := EmbeddedVideo(body); v != "" {
			typ = domain.NewsTypeYouTube
			if link == "" {
				link = v
			}
		}

		out = append(out, domain.NewsItem{
			ID:        itemID(link, title),
			Title:     title,
			Link:      link,
			Type:      typ,
			IsPinned:  src.Pinned,
			UpdatedAt: stamp(it.UpdatedParsed),
			CreatedAt: stamp(it.PublishedParsed),
			Summary:   truncate(PlainText(body), summaryLen),
			Source:    src.Name,
		})
	}
	return out
}

func itemID(link, title string) string {
	key := link
	if key == "" {
		key = "title:" + title
	}
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", h[:16])
}

func stamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// PlainText strips markup and collapses whitespace.
func PlainText(html string) string {
	if !strings.Contains(html, "<") {
		return strings.Join(strings.Fields(html), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.Join(strings.Fields(html), " ")
	}
	doc.Find("script,style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// EmbeddedVideo returns the src of the first iframe pointing at a YouTube
// video, or "".
func EmbeddedVideo(html string) string {
	if !strings.Contains(html, "<iframe") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	var found string
	doc.Find("iframe[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		src = strings.TrimSpace(src)
		if strings.HasPrefix(src, "//") {
			src = "https:" + src
		}
		if isVideo(src) {
			found = src
			return false
		}
		return true
	})
	return found
}

// isVideo accepts only YouTube hosts; VideoID alone would take any ?v= link.
func isVideo(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host != "youtu.be" && !strings.Contains(host, "youtube") {
		return false
	}
	_, ok := news.VideoID(link)
	return ok
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// Package news collapses announcement records that point at the same video,
// link or title, keeping the freshest copy, and puts pinned items first.
package news

import (
	"cmp"
	"net/url"
	"strings"
	"time"

	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/group"
)

// VideoID extracts a YouTube video id from watch (?v=), short (youtu.be/)
// and embed (/embed/) links.
func VideoID(link string) (string, bool) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", false
	}
	if !strings.Contains(link, "://") {
		link = "https://" + link
	}
	u, err := url.Parse(link)
	if err != nil {
		return "", false
	}

	if v := u.Query().Get("v"); v != "" {
		return v, true
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	path := strings.Trim(u.Path, "/")
	if host == "youtu.be" {
		return firstSegment(path)
	}
	if i := strings.Index(u.Path, "/embed/"); i >= 0 {
		return firstSegment(u.Path[i+len("/embed/"):])
	}
	return "", false
}

func firstSegment(p string) (string, bool) {
	seg, _, _ := strings.Cut(p, "/")
	if seg == "" {
		return "", false
	}
	return seg, true
}

// IdentityKey derives the key under which two announcements count as the same.
func IdentityKey(it domain.NewsItem) string {
	if it.Type == domain.NewsTypeYouTube {
		if id, ok := VideoID(it.Link); ok {
			return "yt:" + id
		}
	}
	if it.Link != "" {
		l := strings.ToLower(strings.TrimSpace(it.Link))
		return "link:" + strings.TrimSuffix(l, "/")
	}
	return "title:" + strings.ToLower(strings.TrimSpace(it.Title))
}

var stampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

func parseStamp(s string) (time.Time, bool) {
	for _, layout := range stampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CompareFreshness orders the fresher item first. Stamps that parse are
// compared as instants and always rank ahead of stamps that do not; those
// are compared as plain strings. Keeping the two classes apart makes this a
// total order.
func CompareFreshness(a, b domain.NewsItem) int {
	as, bs := a.Freshness(), b.Freshness()
	at, aok := parseStamp(as)
	bt, bok := parseStamp(bs)
	switch {
	case aok && bok:
		return bt.Compare(at)
	case aok:
		return -1
	case bok:
		return 1
	default:
		return cmp.Compare(bs, as)
	}
}

// Dedupe returns one item per identity key, pinned items first. Items equally
// fresh as the winner are merged into it in input order, later non-empty
// fields taking precedence and the last one deciding IsPinned.
func Dedupe(items []domain.NewsItem) []domain.NewsItem {
	sel := group.Select(items, IdentityKey, CompareFreshness)

	out := make([]domain.NewsItem, 0, sel.Len())
	var rest []domain.NewsItem
	for _, w := range sel.Winners() {
		it := w.Record
		if w.Count > 1 {
			it = mergeTied(w)
		}
		if it.IsPinned {
			out = append(out, it)
		} else {
			rest = append(rest, it)
		}
	}
	return append(out, rest...)
}

func mergeTied(w group.Winner[domain.NewsItem]) domain.NewsItem {
	var out domain.NewsItem
	first := true
	for _, s := range w.Siblings {
		if CompareFreshness(s, w.Record) != 0 {
			continue
		}
		if first {
			out = s
			first = false
			continue
		}
		out = merge(out, s)
	}
	return out
}

func merge(dst, src domain.NewsItem) domain.NewsItem {
	set := func(d *string, s string) {
		if s != "" {
			*d = s
		}
	}
	set(&dst.ID, src.ID)
	set(&dst.Title, src.Title)
	set(&dst.Link, src.Link)
	set(&dst.Type, src.Type)
	set(&dst.UpdatedAt, src.UpdatedAt)
	set(&dst.CreatedAt, src.CreatedAt)
	set(&dst.Summary, src.Summary)
	set(&dst.Source, src.Source)
	dst.IsPinned = src.IsPinned
	return dst
}

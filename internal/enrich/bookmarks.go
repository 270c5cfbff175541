package enrich

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/sync/errgroup"

	"furniture-catalog/internal/budget"
)

// Bookmark is one link from a browser bookmark export.
type Bookmark struct {
	Title  string
	URL    string
	Folder string
}

// ParseBookmarks reads a Netscape bookmark file. Each link carries the name
// of its innermost folder; only http(s) links with a title are kept.
func ParseBookmarks(r io.Reader) ([]Bookmark, error) {
	z := html.NewTokenizer(r)

	var (
		out     []Bookmark
		folders []string
		pending string
		inH3    bool
		inA     bool
		text    strings.Builder
		href    string
	)
	current := func() string {
		if len(folders) == 0 {
			return ""
		}
		return folders[len(folders)-1]
	}

	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return out, nil
			}
			return out, z.Err()

		case html.StartTagToken:
			name, hasAttr := z.TagName()
			switch atom.Lookup(name) {
			case atom.H3:
				inH3 = true
				text.Reset()
			case atom.A:
				inA = true
				text.Reset()
				href = ""
				for hasAttr {
					var k, v []byte
					k, v, hasAttr = z.TagAttr()
					if strings.EqualFold(string(k), "href") {
						href = string(v)
					}
				}
			case atom.Dl:
				folders = append(folders, pending)
				pending = ""
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.H3:
				inH3 = false
				pending = strings.TrimSpace(text.String())
			case atom.A:
				inA = false
				title := strings.TrimSpace(text.String())
				if title != "" && strings.HasPrefix(href, "http") {
					out = append(out, Bookmark{Title: title, URL: href, Folder: current()})
				}
			case atom.Dl:
				if len(folders) > 0 {
					folders = folders[:len(folders)-1]
				}
			}

		case html.TextToken:
			if inH3 || inA {
				text.Write(z.Text())
			}
		}
	}
}

// FilterByFolder keeps bookmarks whose folder contains folder, ignoring case.
// When nothing matches, or folder is empty, all bookmarks are returned.
func FilterByFolder(bms []Bookmark, folder string) []Bookmark {
	folder = strings.ToLower(strings.TrimSpace(folder))
	if folder == "" {
		return bms
	}
	var out []Bookmark
	for _, b := range bms {
		if strings.Contains(strings.ToLower(b.Folder), folder) {
			out = append(out, b)
		}
	}
	if len(out) == 0 {
		return bms
	}
	return out
}

// ImportCandidates turns bookmarks into new catalog items. When fetcher is
// non-nil, product images are looked up concurrently, at most limit at a time;
// a failed lookup only leaves the image empty.
func ImportCandidates(ctx context.Context, bms []Bookmark, fetcher *ImageFetcher, limit int, log *slog.Logger) []budget.NewItem {
	if log == nil {
		log = slog.Default()
	}
	items := make([]budget.NewItem, len(bms))
	for i, b := range bms {
		category := b.Folder
		if category == "" {
			category = "Imported"
		}
		items[i] = budget.NewItem{
			Title:          b.Title,
			URL:            b.URL,
			Store:          StoreFromURL(b.URL),
			Category:       category,
			BookmarkFolder: b.Folder,
		}
	}
	if fetcher == nil {
		return items
	}

	if limit <= 0 {
		limit = 4
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range items {
		g.Go(func() error {
			img, err := fetcher.FetchImage(gctx, items[i].URL)
			if err != nil {
				log.DebugContext(gctx, "could not fetch image", "url", items[i].URL, "error", err)
				return nil
			}
			items[i].ImageURL = img
			return nil
		})
	}
	_ = g.Wait()
	return items
}

package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bookmarkExport = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><A HREF="https://news.example.com/" ADD_DATE="1">News</A>
    <DT><H3 ADD_DATE="2">9 - Bayview Furnishings</H3>
    <DL><p>
        <DT><A HREF="https://www.westelm.com/products/sofa" ADD_DATE="3">Harmony Sofa &amp; Ottoman</A>
        <DT><H3>Bedroom</H3>
        <DL><p>
            <DT><A HREF="https://www.ikea.com/us/en/p/malm">MALM Dresser</A>
            <DT><A HREF="javascript:void(0)">Bookmarklet</A>
        </DL><p>
        <DT><A HREF="https://www.wayfair.com/rug">  Jute Rug  </A>
    </DL><p>
    <DT><A HREF="https://example.com/untitled"></A>
</DL><p>
`

func TestParseBookmarks(t *testing.T) {
	bms, err := ParseBookmarks(strings.NewReader(bookmarkExport))
	require.NoError(t, err)

	want := []Bookmark{
		{Title: "News", URL: "https://news.example.com/", Folder: ""},
		{Title: "Harmony Sofa & Ottoman", URL: "https://www.westelm.com/products/sofa", Folder: "9 - Bayview Furnishings"},
		{Title: "MALM Dresser", URL: "https://www.ikea.com/us/en/p/malm", Folder: "Bedroom"},
		{Title: "Jute Rug", URL: "https://www.wayfair.com/rug", Folder: "9 - Bayview Furnishings"},
	}
	assert.Equal(t, want, bms)
}

func TestFilterByFolder(t *testing.T) {
	bms := []Bookmark{
		{Title: "a", Folder: "9 - Bayview Furnishings"},
		{Title: "b", Folder: "Bedroom"},
		{Title: "c", Folder: ""},
	}
	assert.Len(t, FilterByFolder(bms, ""), 3)
	assert.Equal(t, []Bookmark{bms[0]}, FilterByFolder(bms, "bayview"))
	assert.Len(t, FilterByFolder(bms, "garage"), 3, "no match falls back to everything")
}

func TestImportCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, `<html><head><meta property="og:image" content="/img%s.jpg"></head></html>`, r.URL.Path)
	}))
	defer srv.Close()

	bms := []Bookmark{
		{Title: "Sofa", URL: srv.URL + "/sofa", Folder: "Living"},
		{Title: "Gone", URL: srv.URL + "/missing"},
		{Title: "Lamp", URL: srv.URL + "/lamp", Folder: "Living"},
	}

	items := ImportCandidates(context.Background(), bms, NewImageFetcher(time.Second), 2, nil)
	require.Len(t, items, 3)

	assert.Equal(t, "Sofa", items[0].Title)
	assert.Equal(t, srv.URL+"/img/sofa.jpg", items[0].ImageURL)
	assert.Equal(t, "Living", items[0].Category)
	assert.Equal(t, "Living", items[0].BookmarkFolder)
	assert.Equal(t, "127.0.0.1", items[0].Store)

	assert.Empty(t, items[1].ImageURL)
	assert.Equal(t, "Imported", items[1].Category)

	assert.Equal(t, srv.URL+"/img/lamp.jpg", items[2].ImageURL)
}

func TestImportCandidates_NoFetcher(t *testing.T) {
	items := ImportCandidates(context.Background(),
		[]Bookmark{{Title: "Rug", URL: "https://www.wayfair.com/rug"}}, nil, 0, nil)
	require.Len(t, items, 1)
	assert.Equal(t, "wayfair.com", items[0].Store)
	assert.Empty(t, items[0].ImageURL)
}

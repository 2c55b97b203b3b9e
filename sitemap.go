package pubstatic

import (
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// WriteSitemap writes a sitemap listing the home page, the category index
// and every planned page. Post pages carry their date as lastmod.
func WriteSitemap(w io.Writer, base string, pages []Page, posts []PostNode) error {
	dates := make(map[string]string, len(posts))
	for _, p := range posts {
		if !p.Date.IsZero() {
			dates[p.Slug] = p.Date.Format("2006-01-02")
		}
	}
	urls := []sitemapURL{
		{Loc: BuildURL(base)},
		{Loc: BuildURL(base, "categories")},
	}
	for _, page := range pages {
		u := sitemapURL{Loc: BuildURL(base, page.Path)}
		if pc, ok := page.Context.(PostContext); ok {
			u.LastMod = dates[pc.Slug]
		}
		urls = append(urls, u)
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(sitemap)
}

// writeFeeds writes sitemap.xml and feed.xml into the output directory.
func (a *App) writeFeeds(pages []Page, posts []PostNode) error {
	out := a.Config.OutputDir
	if err := writeXMLFile(filepath.Join(out, "sitemap.xml"), func(w io.Writer) error {
		return WriteSitemap(w, a.Config.URL, pages, posts)
	}); err != nil {
		return err
	}
	return writeXMLFile(filepath.Join(out, "feed.xml"), func(w io.Writer) error {
		return WriteFeed(w, a.Config, posts)
	})
}

func writeXMLFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path"
	"sort"
	"time"

	"pagecrafter/internal/domain"
)

// BundleZIP packages a bundle as a static site: index.html, styles.css and
// script.js at the root and one directory per extra page.
func BundleZIP(title string, bundle domain.CodeBundle, modified time.Time) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	index, err := linkedPageHTML(title, bundle.HTML, "styles.css", "script.js")
	if err != nil {
		return nil, err
	}
	files := []zipEntry{
		{"index.html", index},
		{"styles.css", []byte(bundle.CSS)},
		{"script.js", []byte(bundle.JS)},
	}

	keys := make([]string, 0, len(bundle.Pages))
	for k := range bundle.Pages {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	used := map[string]bool{}
	for _, k := range keys {
		page := bundle.Pages[k]
		dir := Slug(k)
		for n := 2; used[dir]; n++ {
			dir = fmt.Sprintf("%s-%d", Slug(k), n)
		}
		used[dir] = true

		pageTitle := page.Title
		if pageTitle == "" {
			pageTitle = k
		}
		html, err := linkedPageHTML(pageTitle, page.HTML, "styles.css", "script.js")
		if err != nil {
			return nil, err
		}
		files = append(files,
			zipEntry{path.Join(dir, "index.html"), html},
			zipEntry{path.Join(dir, "styles.css"), []byte(page.CSS)},
			zipEntry{path.Join(dir, "script.js"), []byte(page.JS)},
		)
	}

	for _, f := range files {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: f.name, Method: zip.Deflate, Modified: modified})
		if err != nil {
			return nil, fmt.Errorf("export.BundleZIP: %w", err)
		}
		if _, err := w.Write(f.data); err != nil {
			return nil, fmt.Errorf("export.BundleZIP: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("export.BundleZIP: %w", err)
	}
	return buf.Bytes(), nil
}

type zipEntry struct {
	name string
	data []byte
}

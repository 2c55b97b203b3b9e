package pubstatic

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
)

// EmbeddedAssets contains static assets shipped with the generator:
// style.css, the default stylesheet linked by the bundled views.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS

// writeEmbeddedAssets copies the embedded assets into dir. Files from the
// site's static directory are copied afterwards and take precedence.
func writeEmbeddedAssets(dir string) error {
	return fs.WalkDir(EmbeddedAssets, "embedded", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := EmbeddedAssets.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel("embedded", filepath.FromSlash(path))
		if err != nil {
			return err
		}
		target := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
}

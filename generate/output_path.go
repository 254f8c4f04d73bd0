package generate

import (
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/gosimple/slug"

	"github.com/ByLCY/infobox/sink"
)

const defaultBaseName = "infobox"

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// outputFormat picks the encoding from destination extension, falling back to
// configured format when destination is absent, a directory or has no
// extension.
func outputFormat(dst, configured string) (imaging.Format, error) {
	if len(dst) == 0 || isDir(dst) || filepath.Ext(dst) == "" {
		return sink.ParseFormat(configured)
	}
	return sink.FormatFromPath(dst)
}

// buildOutputPath returns the file to write. Without explicit file name the
// name is derived from the rendered title: "<slug>_infobox.<ext>".
func buildOutputPath(dst, title string, format imaging.Format) string {
	name := buildDefaultFileName(title, format)
	switch {
	case len(dst) == 0:
		return name
	case isDir(dst):
		return filepath.Join(dst, name)
	case filepath.Ext(dst) == "":
		return dst + sink.Ext(format)
	default:
		return dst
	}
}

func buildDefaultFileName(title string, format imaging.Format) string {
	base := slug.Make(title)
	if len(base) == 0 {
		return defaultBaseName + sink.Ext(format)
	}
	return base + "_" + defaultBaseName + sink.Ext(format)
}

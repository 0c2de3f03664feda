package lib

import (
	"os"
	"path/filepath"
	"strings"
)

// SplitExts splits a path into a base and its trailing chain of alphabetic
// extensions. Numeric suffixes are not treated as extensions, so
// "dtm_r1.0.den.tif" splits into "dtm_r1.0" and ".den.tif".
func SplitExts(path string) (string, string) {
	base := path
	ext := ""
	for {
		e := filepath.Ext(base)
		if e == "" || !isAlphaExt(e) {
			return base, ext
		}
		base = strings.TrimSuffix(base, e)
		ext = e + ext
	}
}

func isAlphaExt(ext string) bool {
	if len(ext) < 2 {
		return false
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// Exists reports whether path exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ExistsAnyExt reports whether a file exists with the given path's final
// extension replaced by any other, e.g. "x.den.tif" matches "x.den.vrt".
// Overview or container versions of a product count as the product existing.
func ExistsAnyExt(path string) bool {
	if Exists(path) {
		return true
	}
	dir := filepath.Dir(path)
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if stem == "" {
		return false
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), stem+".") {
			return true
		}
	}
	return false
}

// PrettyPath returns path relative to the working directory when possible,
// for readable progress output
func PrettyPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

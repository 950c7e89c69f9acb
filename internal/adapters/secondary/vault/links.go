package vault

import (
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// URIPrefix is the route the presenter server serves vault files under
const URIPrefix = "/vault/"

// ResolveLink finds the file an embed refers to. An exact vault-relative
// path wins; otherwise the first file in lexical walk order whose name (or
// trailing path) matches is used. Names compare in Unicode NFC.
func (v *Vault) ResolveLink(linkpath string) (string, bool) {
	name := norm.NFC.String(strings.TrimPrefix(filepath.ToSlash(strings.TrimSpace(linkpath)), "/"))
	if name == "" {
		return "", false
	}

	if abs, err := v.abs(name); err == nil {
		if info, err := os.Stat(abs); err == nil && info.Mode().IsRegular() {
			if rel, ok := v.rel(abs); ok {
				return URI(rel), true
			}
		}
	}

	found := ""
	err := filepath.WalkDir(v.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable entries are skipped
			return nil
		}
		if d.IsDir() {
			if p != v.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, ok := v.rel(p)
		if !ok {
			return nil
		}
		candidate := norm.NFC.String(rel)
		if path.Base(candidate) == name || strings.HasSuffix(candidate, "/"+name) {
			found = rel
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		v.logger.Warn("walking vault failed", slog.String("link", name), slog.String("error", err.Error()))
	}

	if found == "" {
		v.logger.Debug("unresolved embed", slog.String("link", name))
		return "", false
	}
	return URI(found), true
}

// URI builds the server URI for a vault-relative path
func URI(rel string) string {
	segments := strings.Split(rel, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return URIPrefix + strings.Join(segments, "/")
}

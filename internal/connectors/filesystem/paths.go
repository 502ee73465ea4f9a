package filesystem

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// detectMIMEType returns the content type for a source file by extension.
func detectMIMEType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tf":
		return "text/x-terraform"
	case ".tfvars", ".hcl":
		return "text/x-hcl"
	case ".json":
		return "application/json"
	default:
		return "text/plain"
	}
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// relativeMatch reports whether path, relative to root, matches pattern.
// Matching is done on slash-separated paths on every platform.
func relativeMatch(root, path, pattern string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	ok, err := doublestar.Match(pattern, rel)
	if err != nil {
		return rel, false
	}
	return rel, ok
}

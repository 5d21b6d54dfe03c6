package content

import (
	"path"
	"strings"

	"github.com/Aman-CERP/docsearch/internal/entry"
)

// pathFor returns the navigation path for a file: its slash-separated
// relative path without extension, with a leading "/". Index files map to
// their directory. A non-empty override wins.
func pathFor(override, rel string) string {
	if override = strings.TrimSpace(override); override != "" {
		return override
	}
	p := strings.TrimSuffix(rel, path.Ext(rel))
	if path.Base(p) == "index" {
		p = path.Dir(p)
	}
	if p == "." {
		return "/"
	}
	return "/" + p
}

// sectionFor parses explicit, falling back to the first path segment
// ("tutorials/intro.md" is a tutorial).
func sectionFor(explicit, rel string) entry.Section {
	if s := entry.ParseSection(explicit); s.IsKnown() {
		return s
	}
	first, _, found := strings.Cut(rel, "/")
	if !found {
		return entry.SectionUnknown
	}
	if s := entry.ParseSection(first); s.IsKnown() {
		return s
	}
	return entry.ParseSection(strings.TrimSuffix(first, "s"))
}

// titleFromFile turns "getting-started.md" into "getting started".
func titleFromFile(rel string) string {
	base := path.Base(rel)
	base = strings.TrimSuffix(base, path.Ext(base))
	if base == "index" {
		if dir := path.Dir(rel); dir != "." {
			base = path.Base(dir)
		}
	}
	return strings.Join(strings.FieldsFunc(base, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	}), " ")
}

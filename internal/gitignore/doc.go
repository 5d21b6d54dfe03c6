// Package gitignore matches content paths against exclude patterns written
// in gitignore syntax (https://git-scm.com/docs/gitignore). The content
// loader feeds it the built-in excludes, content.exclude from the config
// and the lines of .docsearchignore.
//
// Supported syntax:
//   - "*", "?" and character classes within one path segment
//   - "**/" and a trailing "/**" across directories
//   - "/build" anchored to the root; a slash inside the pattern anchors too
//   - "drafts/" for directories only, including everything below them
//   - "!drafts/keep.md" re-including a path an earlier pattern excluded
//
// Usage:
//
//	m := gitignore.New("drafts/**", "!drafts/keep.md", "build/")
//	if err := m.AddFromFile(filepath.Join(dir, ".docsearchignore"), ""); err != nil && !errors.Is(err, fs.ErrNotExist) {
//		return err
//	}
//	m.Match("drafts/keep.md", false) // false
//	m.Match("notes/build", false)    // false, a file named build
//	m.Match("site/build", true)      // true
package gitignore

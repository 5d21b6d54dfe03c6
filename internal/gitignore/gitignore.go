package gitignore

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// Matcher holds compiled exclude rules. It is safe for concurrent use.
type Matcher struct {
	mu    sync.RWMutex
	rules []rule
}

// rule is one compiled pattern line.
type rule struct {
	re       *regexp.Regexp
	negate   bool   // leading "!"
	dirOnly  bool   // trailing "/"
	anchored bool   // leading "/" or a slash inside the pattern
	base     string // directory the pattern is relative to, "" for the root
}

// New returns a matcher holding patterns, in order.
func New(patterns ...string) *Matcher {
	m := &Matcher{}
	for _, p := range patterns {
		m.Add(p)
	}
	return m
}

// Add appends a pattern relative to the root. Blank lines and comments
// are ignored.
func (m *Matcher) Add(pattern string) {
	m.AddWithBase(pattern, "")
}

// AddWithBase appends a pattern that only applies below base, as a
// nested ignore file would.
func (m *Matcher) AddWithBase(pattern, base string) {
	r, ok := parseRule(pattern, base)
	if !ok {
		return
	}
	m.mu.Lock()
	m.rules = append(m.rules, r)
	m.mu.Unlock()
}

// AddFromFile appends every line of an ignore file. The error wraps
// fs.ErrNotExist when the file is missing.
func (m *Matcher) AddFromFile(file, base string) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("failed to open ignore file: %w", err)
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		m.AddWithBase(sc.Text(), base)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read ignore file %s: %w", file, err)
	}
	return nil
}

// Len returns the number of rules.
func (m *Matcher) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rules)
}

// Match reports whether p (relative, either separator) is excluded.
// Rules are applied in order and the last matching rule decides, so a
// later "!pattern" re-includes what an earlier one excluded.
func (m *Matcher) Match(p string, isDir bool) bool {
	p = path.Clean(filepath.ToSlash(p))

	m.mu.RLock()
	defer m.mu.RUnlock()

	excluded := false
	for _, r := range m.rules {
		if r.match(p, isDir) {
			excluded = !r.negate
		}
	}
	return excluded
}

func parseRule(line, base string) (rule, bool) {
	escapedSpace := strings.HasSuffix(line, `\ `)
	p := strings.TrimSpace(line)
	if p == "" || strings.HasPrefix(p, "#") {
		return rule{}, false
	}

	r := rule{base: strings.Trim(filepath.ToSlash(base), "/")}

	switch {
	case strings.HasPrefix(p, `\#`), strings.HasPrefix(p, `\!`):
		p = p[1:]
	case strings.HasPrefix(p, "!"):
		r.negate = true
		p = p[1:]
	}
	if escapedSpace && strings.HasSuffix(p, `\`) {
		p = strings.TrimSuffix(p, `\`) + " "
	}

	if strings.HasSuffix(p, "/") {
		r.dirOnly = true
		p = strings.TrimRight(p, "/")
	}
	if strings.HasPrefix(p, "/") {
		r.anchored = true
		p = strings.TrimLeft(p, "/")
	}
	// "guide/intro.md" is relative to the root, "**/intro.md" is not.
	if strings.Contains(p, "/") && !strings.HasPrefix(p, "**/") && !strings.HasPrefix(p, "*") {
		r.anchored = true
	}
	if p == "" {
		return rule{}, false
	}

	re, err := regexp.Compile("^" + translate(p) + "$")
	if err != nil {
		// A malformed character class falls back to a literal match.
		re = regexp.MustCompile("^" + regexp.QuoteMeta(p) + "$")
	}
	r.re = re
	return r, true
}

// match tests one rule. A directory rule also matches everything below a
// matching directory.
func (r rule) match(p string, isDir bool) bool {
	if r.base != "" {
		if p == r.base {
			p = path.Base(p)
		} else if rest, ok := strings.CutPrefix(p, r.base+"/"); ok {
			p = rest
		} else {
			return false
		}
	}

	parts := strings.Split(p, "/")
	last := len(parts) - 1

	if r.anchored {
		if r.re.MatchString(p) {
			return !r.dirOnly || isDir
		}
		if !r.dirOnly {
			return false
		}
		for i := 0; i < last; i++ {
			if r.re.MatchString(strings.Join(parts[:i+1], "/")) {
				return true
			}
		}
		return false
	}

	if r.dirOnly {
		for i, part := range parts {
			if r.re.MatchString(part) {
				return i < last || isDir
			}
		}
		return false
	}

	if r.re.MatchString(p) {
		return true
	}
	for _, part := range parts {
		if r.re.MatchString(part) {
			return true
		}
	}
	return false
}

// translate turns a glob into a regular expression body. "**/" spans any
// number of directories, "*" and "?" stay within one path segment.
func translate(glob string) string {
	var sb strings.Builder
	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch c {
		case '*':
			whole := strings.HasPrefix(glob[i:], "**") && (i == 0 || glob[i-1] == '/')
			switch {
			case whole && i+2 < len(glob) && glob[i+2] == '/':
				sb.WriteString("(?:.*/)?")
				i += 2
			case whole && i+2 == len(glob):
				sb.WriteString(".*")
				i++
			default:
				sb.WriteString("[^/]*")
			}
		case '?':
			sb.WriteString("[^/]")
		case '[':
			end := strings.IndexByte(glob[i+1:], ']')
			if end < 0 {
				sb.WriteString(`\[`)
				continue
			}
			class := glob[i+1 : i+1+end]
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			if class == "" || class == "^" {
				sb.WriteString(`\[`)
				continue
			}
			sb.WriteString("[" + strings.ReplaceAll(class, `\`, `\\`) + "]")
			i += end + 1
		case '\\':
			if i+1 < len(glob) {
				i++
				sb.WriteString(regexp.QuoteMeta(string(glob[i])))
			} else {
				sb.WriteString(`\\`)
			}
		default:
			sb.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	return sb.String()
}

package content

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/docsearch/internal/entry"
)

// Matches frontmatter: ---\n...\n---
var frontmatterPattern = regexp.MustCompile(`(?s)^---\r?\n(.*?)\r?\n---\r?\n*`)

// stringList decodes either a YAML sequence or a comma-separated scalar.
type stringList []string

func (l *stringList) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		*l = splitList(n.Value)
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := n.Decode(&items); err != nil {
			return err
		}
		*l = items
		return nil
	default:
		return fmt.Errorf("line %d: expected a list or a comma-separated string", n.Line)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

type frontmatter struct {
	ID       string     `yaml:"id"`
	Title    string     `yaml:"title"`
	Section  string     `yaml:"section"`
	Path     string     `yaml:"path"`
	Keywords stringList `yaml:"keywords"`
	Tags     stringList `yaml:"tags"`
	Draft    bool       `yaml:"draft"`
}

// parseMarkdown builds an entry from a markdown or MDX document.
// ok is false for drafts.
func parseMarkdown(rel string, data []byte) (e entry.Entry, ok bool, err error) {
	text := strings.TrimPrefix(string(data), "\ufeff")

	var fm frontmatter
	if m := frontmatterPattern.FindStringSubmatch(text); m != nil {
		if err := yaml.Unmarshal([]byte(m[1]), &fm); err != nil {
			return entry.Entry{}, false, fmt.Errorf("frontmatter: %w", err)
		}
		text = text[len(m[0]):]
	}
	if fm.Draft {
		return entry.Entry{}, false, nil
	}

	title := strings.TrimSpace(fm.Title)
	if title == "" {
		title = firstHeading(text)
	}
	if title == "" {
		title = titleFromFile(rel)
	}

	e = entry.Entry{
		ID:       strings.TrimSpace(fm.ID),
		Title:    title,
		Section:  sectionFor(fm.Section, rel),
		Path:     pathFor(fm.Path, rel),
		Keywords: mergeKeywords(fm.Keywords, fm.Tags),
	}
	return e, true, nil
}

// firstHeading returns the first level-one ATX heading outside code fences.
func firstHeading(text string) string {
	inFence := false
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "```") || strings.HasPrefix(line, "~~~") {
			inFence = !inFence
			continue
		}
		if !inFence && strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimRight(line[2:], "#"))
		}
	}
	return ""
}

func mergeKeywords(lists ...[]string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, l := range lists {
		for _, k := range l {
			k = strings.TrimSpace(k)
			if k == "" || seen[strings.ToLower(k)] {
				continue
			}
			seen[strings.ToLower(k)] = true
			out = append(out, k)
		}
	}
	return out
}

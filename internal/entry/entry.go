// Package entry defines documentation entries and the registry that holds them.
//
// A Registry is populated once, typically at startup, and is append-only:
// there is no removal or update. Refreshing content means building a new
// Registry (and a new index from it).
package entry

import (
	"slices"
	"strings"
)

// Section is the category an entry belongs to.
type Section string

// Known sections. The set is closed; anything else parses to SectionUnknown.
const (
	SectionTutorial Section = "tutorial"
	SectionNote     Section = "note"
	SectionExample  Section = "example"
	SectionGlossary Section = "glossary"
	SectionUnknown  Section = ""
)

// DefaultSectionPriority is the tie-break order used when none is configured.
var DefaultSectionPriority = []Section{
	SectionTutorial,
	SectionNote,
	SectionExample,
	SectionGlossary,
}

// ParseSection converts a string to a Section, case-insensitively.
// Unknown or empty values return SectionUnknown.
func ParseSection(s string) Section {
	switch Section(strings.ToLower(strings.TrimSpace(s))) {
	case SectionTutorial:
		return SectionTutorial
	case SectionNote:
		return SectionNote
	case SectionExample:
		return SectionExample
	case SectionGlossary:
		return SectionGlossary
	default:
		return SectionUnknown
	}
}

// ParseSections parses a list of section names, dropping unknown values and
// duplicates while keeping the first occurrence's position.
func ParseSections(names []string) []Section {
	out := make([]Section, 0, len(names))
	for _, n := range names {
		s := ParseSection(n)
		if s == SectionUnknown || slices.Contains(out, s) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// String returns the section name, or "other" for SectionUnknown.
func (s Section) String() string {
	if s == SectionUnknown {
		return "other"
	}
	return string(s)
}

// IsKnown reports whether s is one of the declared sections.
func (s Section) IsKnown() bool {
	return s != SectionUnknown
}

// Entry is one documentation unit.
type Entry struct {
	// ID is unique within a registry. Assigned at registration when empty.
	ID string `json:"id" yaml:"id"`

	// Title is displayed and is the highest-weight match field.
	Title string `json:"title" yaml:"title"`

	// Section groups entries for display and breaks ranking ties.
	Section Section `json:"section" yaml:"section"`

	// Path is the navigation target. It is never interpreted by search.
	Path string `json:"path" yaml:"path"`

	// Keywords are short tags or aliases, matched with lower weight than Title.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// Seq is the registration order, set by the registry.
	Seq int `json:"-" yaml:"-"`
}

// clone returns a copy that shares no slices with e.
func (e Entry) clone() Entry {
	e.Keywords = slices.Clone(e.Keywords)
	return e
}

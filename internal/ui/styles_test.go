package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aman-CERP/docsearch/internal/entry"
)

func TestGetStyles_WithNoColor(t *testing.T) {
	// When: getting styles with noColor=true
	styles := GetStyles(true)

	// Then: text renders without escape codes
	assert.Equal(t, "Counter", styles.Selected.Render("Counter"))
	assert.Equal(t, "tutorial", styles.Section.Render("tutorial"))
}

func TestGetStyles_WithColor(t *testing.T) {
	styles := GetStyles(false)

	// Exact ANSI codes depend on the terminal profile.
	assert.Contains(t, styles.Selected.Render("Counter"), "Counter")
	assert.Contains(t, styles.Panel.Render("body"), "body")
}

func TestSectionLabel(t *testing.T) {
	assert.Equal(t, "tutorial", SectionLabel(entry.SectionTutorial))
	assert.Equal(t, "other", SectionLabel(entry.SectionUnknown))
}

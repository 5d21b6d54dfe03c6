package content

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/docsearch/internal/entry"
	doerrors "github.com/Aman-CERP/docsearch/internal/errors"
)

// manifestFile is the on-disk shape of an entries manifest:
//
//	entries:
//	  - id: counter
//	    title: Counter
//	    section: tutorial
//	    path: /tutorial/counter
//	    keywords: [state, signal]
type manifestFile struct {
	Entries []manifestEntry `yaml:"entries"`
}

type manifestEntry struct {
	ID       string     `yaml:"id"`
	Title    string     `yaml:"title"`
	Section  string     `yaml:"section"`
	Path     string     `yaml:"path"`
	Keywords stringList `yaml:"keywords"`
}

// LoadManifest reads entries from a manifest file, in file order.
func LoadManifest(path string) ([]entry.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, doerrors.IOError(fmt.Sprintf("failed to read manifest %s", path), err).
			WithDetail("path", path)
	}

	var mf manifestFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, doerrors.New(doerrors.ErrCodeContentParse,
			fmt.Sprintf("failed to parse manifest %s", path), err).
			WithDetail("path", path)
	}

	entries := make([]entry.Entry, 0, len(mf.Entries))
	for i, me := range mf.Entries {
		if me.Title == "" {
			return nil, doerrors.New(doerrors.ErrCodeInvalidEntry,
				fmt.Sprintf("manifest %s: entry %d has no title", path, i+1), nil).
				WithDetail("path", path)
		}
		entries = append(entries, entry.Entry{
			ID:       me.ID,
			Title:    me.Title,
			Section:  entry.ParseSection(me.Section),
			Path:     me.Path,
			Keywords: me.Keywords,
		})
	}
	return entries, nil
}

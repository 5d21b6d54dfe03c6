// Package configs provides embedded configuration templates for docsearch.
//
// Templates are embedded at build time so `docsearch config init` works the
// same from a source build and a binary release.
//
// Template files:
//   - project-config.example.yaml: per-site settings (content, ranking)
//   - user-config.example.yaml: personal defaults (debounce, log level)
//
// Configuration hierarchy (see internal/config Load()):
//  1. Hardcoded defaults (internal/config NewConfig())
//  2. User config (~/.config/docsearch/config.yaml)
//  3. Project config (.docsearch.yaml)
//  4. Environment variables (DOCSEARCH_*)
package configs

import _ "embed"

// UserConfigTemplate is written by `docsearch config init --user`.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string

// ProjectConfigTemplate is written by `docsearch config init` as
// .docsearch.yaml in the project root.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string

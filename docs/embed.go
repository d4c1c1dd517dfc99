// Copyright © 2024 The Shelly authors

// Package docs embeds the lint reference for use by the CLI.
package docs

import _ "embed"

//go:embed lints.md
var LintGuide string

// Copyright © 2024 The Shelly authors

// Package cmd implements the shelly command line.
package cmd

// Copyright © 2024 The Shelly authors

// Package repl implements an interactive loop that shows how the analyzer
// tokenizes each line typed by the user.
package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"

	"github.com/luthersystems/shelly/analysis"
	"github.com/luthersystems/shelly/parser"
	"github.com/luthersystems/shelly/parser/semantic"
)

type config struct {
	stdin   io.ReadCloser
	stdout  io.Writer
	color   bool
	history string
}

func newConfig(opts ...Option) *config {
	cfg := &config{stdout: os.Stdout, history: historyPath()}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

type Option func(*config)

// WithStdin allows overriding the input to the REPL.
func WithStdin(stdin io.ReadCloser) Option {
	return func(c *config) {
		c.stdin = stdin
	}
}

// WithStdout allows overriding the output of the REPL.
func WithStdout(stdout io.Writer) Option {
	return func(c *config) {
		c.stdout = stdout
	}
}

// WithColor enables ANSI highlighting of tokens.
func WithColor(color bool) Option {
	return func(c *config) {
		c.color = color
	}
}

// WithHistoryFile sets the file line history is kept in.  An empty path
// disables history.
func WithHistoryFile(path string) Option {
	return func(c *config) {
		c.history = path
	}
}

// Run reads lines until EOF and prints each with its tokens marked.
func Run(prompt string, opts ...Option) error {
	cfg := newConfig(opts...)
	ensureHistoryFilePermissions(cfg.history)

	rlCfg := &readline.Config{
		Stdout:            cfg.stdout,
		Stderr:            cfg.stdout,
		Prompt:            prompt,
		HistoryFile:       cfg.history,
		HistorySearchFold: true,
		AutoComplete:      newCommandCompleter(analysis.DefaultBuiltins()),
	}
	if cfg.stdin != nil {
		rlCfg.Stdin = cfg.stdin
	}
	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return err
	}
	defer rl.Close() //nolint:errcheck // best-effort cleanup

	for {
		line, err := rl.ReadLine()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := Highlight(cfg.stdout, line, cfg.color); err != nil {
			return err
		}
	}
}

// Highlight tokenizes source and writes it to w with its tokens marked.
// Syntax errors are rendered as diagnostics instead.
func Highlight(w io.Writer, source string, color bool) error {
	source = parser.StripBOM(source)
	toks, err := parser.Tokenize(source)
	if err != nil {
		return renderError(w, source, err, color)
	}
	if err := semantic.Fprint(w, source, toks, color); err != nil {
		return err
	}
	if !strings.HasSuffix(source, "\n") {
		_, err = fmt.Fprintln(w)
	}
	return err
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".shelly_history")
}

// ensureHistoryFilePermissions creates the history file if needed and
// restricts it to the current user.
func ensureHistoryFilePermissions(path string) {
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o600) // #nosec G304 -- history path from the user's home
	if err != nil {
		return
	}
	_ = f.Close()
	_ = os.Chmod(path, 0o600)
}

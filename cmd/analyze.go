// Copyright © 2024 The Shelly authors

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/luthersystems/shelly/analysis"
	"github.com/luthersystems/shelly/config"
	"github.com/luthersystems/shelly/lint"
	"github.com/luthersystems/shelly/parser"
	"github.com/luthersystems/shelly/parser/semantic"
)

type analyzeOptions struct {
	json        bool
	debugParser bool
	allow       []string
	warn        []string
	deny        []string
	capLints    string
	exclude     []string
}

func newAnalyzeCommand() *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze [flags]",
		Short: "Run analysis (also the default when no command is given)",
		Long: `Analyze every .ps1 file under the directory and report functions and
classes that are not in scope, problems with imports, and the other lints.

Lint levels come from the [levels] table of shelly.toml in the analyzed
directory and can be overridden with -A/-W/-D:
  shelly analyze -A unused-imports -D indirect-imports

A finding is suppressed by a comment containing "allow" and the name of the
function or the lint on the same line:
  Invoke-Deploy # allow Invoke-Deploy

Available lints:
` + lint.AnalyzerDoc(),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.json, "json", false, "Output diagnostics as JSON.")
	f.BoolVar(&opts.debugParser, "debug-parser", false, "Print output of the parser (tastes best with `| less -R`)")
	addLintFlags(f, opts)
	return cmd
}

// addLintFlags registers the flags that select lint levels and files.
func addLintFlags(f *pflag.FlagSet, opts *analyzeOptions) {
	f.StringArrayVarP(&opts.allow, "allow", "A", nil, "Set the level of `LINT` to allow")
	f.StringArrayVarP(&opts.warn, "warn", "W", nil, "Set the level of `LINT` to warn")
	f.StringArrayVarP(&opts.deny, "deny", "D", nil, "Set the level of `LINT` to deny")
	f.StringVar(&opts.capLints, "cap-lints", "", "Highest `LEVEL` any lint is reported at")
	f.StringArrayVar(&opts.exclude, "exclude", nil, "Glob pattern of paths to skip, relative to the directory (may be repeated).")
}

// apply overrides the levels of cfg with the command line flags.
func (o *analyzeOptions) apply(cfg *lint.Config) error {
	if cfg.Levels == nil {
		cfg.Levels = make(map[string]lint.Level)
	}
	for _, set := range []struct {
		names []string
		level lint.Level
	}{
		{o.allow, lint.Allow},
		{o.warn, lint.Warn},
		{o.deny, lint.Deny},
	} {
		for _, name := range set.names {
			if _, ok := lint.Lookup(name); !ok {
				return fmt.Errorf("unknown lint: %q (see shelly show-lints)", name)
			}
			cfg.Levels[name] = set.level
		}
	}
	if o.capLints != "" {
		level, err := lint.ParseLevel(o.capLints)
		if err != nil {
			return fmt.Errorf("--cap-lints: %w", err)
		}
		cfg.Cap = level
	}
	return nil
}

// workspace is the configuration of one analysis run.
type workspace struct {
	dir      string
	analysis *analysis.Config
	linter   *lint.Linter
}

func loadWorkspace(dir string, opts *analyzeOptions, log logrus.FieldLogger) (*workspace, error) {
	file, err := config.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	lintConfig, err := file.LintConfig()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file.Path, err)
	}
	if err := opts.apply(lintConfig); err != nil {
		return nil, err
	}
	var exclude []string
	exclude = append(exclude, file.Exclude...)
	exclude = append(exclude, opts.exclude...)
	return &workspace{
		dir: dir,
		analysis: &analysis.Config{
			Extras:  file.ExtraCommands(),
			Exclude: exclude,
			Logger:  log,
		},
		linter: &lint.Linter{Analyzers: lint.DefaultAnalyzers(), Config: lintConfig},
	}, nil
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions) error {
	dir := viper.GetString("directory")
	log, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return usageError(err)
	}
	if !isRepositoryRoot(dir) {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: not a root of a repository")
	}

	ws, err := loadWorkspace(dir, opts, log)
	if err != nil {
		return usageError(err)
	}
	return ws.run(cmd.Context(), cmd.OutOrStdout(), opts)
}

// run analyzes the workspace once and reports the findings to w.
func (ws *workspace) run(ctx context.Context, w io.Writer, opts *analyzeOptions) error {
	res, err := analysis.Analyze(ctx, ws.dir, ws.analysis)
	if err != nil {
		return usageError(err)
	}
	if opts.debugParser {
		if err := printParserOutput(w, res.Project); err != nil {
			return err
		}
	}
	diags, err := ws.linter.Run(res)
	if err != nil {
		return err
	}
	return report(w, res.Project, diags, opts.json)
}

// report prints diagnostics and returns errFindings if any of them is
// denied.
func report(w io.Writer, project *analysis.Project, diags []lint.Diagnostic, asJSON bool) error {
	if asJSON {
		if err := lint.FormatJSON(w, diags); err != nil {
			return err
		}
	} else if err := renderLintDiagnostics(w, project, diags); err != nil {
		return err
	}
	if lint.HasDenied(diags) {
		return errFindings
	}
	return nil
}

// printParserOutput writes the token dump of every analyzed file.
func printParserOutput(w io.Writer, project *analysis.Project) error {
	color := colorMode().Enabled(fileOf(w))
	for _, path := range project.Paths() {
		f := project.Files[path]
		toks, err := parser.Tokenize(f.Source)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "=== %s\n", f.Name)
		if err := semantic.Fprint(w, f.Source, toks, color); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	return nil
}

func isRepositoryRoot(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// newLogger builds the logger shared by the analysis packages.  Logs go to
// w, never to stdout, so they do not mix with reports.
func newLogger(w io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return nil, fmt.Errorf("--log-level: %w", err)
	}
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    !colorMode().Enabled(fileOf(w)),
	})
	return log, nil
}

func fileOf(w io.Writer) *os.File {
	f, _ := w.(*os.File)
	return f
}

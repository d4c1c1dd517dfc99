// Copyright © 2024 The Shelly authors

package lint

import (
	"fmt"

	"github.com/luthersystems/shelly/analysis"
)

// AnalyzerSyntaxErrors reports files that could not be tokenized.
var AnalyzerSyntaxErrors = &Analyzer{
	Name:  "syntax-errors",
	Doc:   "Report files that could not be tokenized.\n\nA file with a syntax error is left out of the analysis, so its definitions are not visible to files importing it.",
	Level: Deny,
	Run: func(pass *Pass) error {
		EachProblem(pass, func(p *analysis.Problem) {
			d := at(p.Path, p.Span)
			d.Message = "Syntax error: " + p.Text
			pass.ReportWithNotes(d,
				fmt.Sprintf("Column %d", p.Span.Start.Col),
				"If this is valid PowerShell syntax, please file an issue")
		}, analysis.SyntaxError)
		return nil
	},
}

// AnalyzerNonexistingImports reports imports of files that do not exist.
var AnalyzerNonexistingImports = &Analyzer{
	Name:  "nonexisting-imports",
	Doc:   "Report imports of files that do not exist.\n\nAnalysis stops for a file with such an import.",
	Level: Deny,
	Run: func(pass *Pass) error {
		EachProblem(pass, func(p *analysis.Problem) {
			d := at(p.Path, p.Span)
			d.Message = "Invalid import"
			pass.ReportWithNotes(d, "File not found: "+pass.Result.Project.DisplayName(p.Target))
		}, analysis.MissingImport)
		return nil
	},
}

// AnalyzerUnrecognizedImports reports imports that cannot be resolved
// statically and files imported twice.
var AnalyzerUnrecognizedImports = &Analyzer{
	Name:  "unrecognized-imports",
	Doc:   "Report dot-imports in an unsupported form.\n\nOnly paths rooted at $PSScriptRoot and the $here\\$sut convention of test files are understood.  Importing the same file twice is reported as well.",
	Level: Warn,
	Run: func(pass *Pass) error {
		EachProblem(pass, func(p *analysis.Problem) {
			d := at(p.Path, p.Span)
			if p.Kind == analysis.DuplicateImport {
				d.Message = "Duplicate import"
				pass.ReportWithNotes(d, "Already imported: "+pass.Result.Project.DisplayName(p.Target))
				return
			}
			d.Message = "Unrecognized import statement"
			pass.ReportWithNotes(d, "Recognized imports are `$PSScriptRoot\\..` or `$here\\$sut`")
		}, analysis.UnrecognizedImport, analysis.DuplicateImport)
		return nil
	},
}

// AnalyzerUnknownFunctions reports commands that are not defined anywhere in
// scope.
var AnalyzerUnknownFunctions = &Analyzer{
	Name:  analysis.LintUnknownFunctions,
	Doc:   "Report commands that are neither defined in scope nor built in.\n\nExtra commands can be declared in the configuration file.",
	Level: Deny,
	Run: func(pass *Pass) error {
		EachFile(pass, func(fr *analysis.FileResult) {
			for _, u := range fr.Unknown {
				d := at(fr.File.Path, u.Span)
				d.Message = "Not in scope: " + u.Name
				pass.Report(d)
			}
		})
		return nil
	},
}

// AnalyzerIndirectImports reports commands visible only through an import
// of an import.
var AnalyzerIndirectImports = &Analyzer{
	Name:  analysis.LintIndirectImports,
	Doc:   "Report commands defined in files that are not imported directly.\n\nFiles without definitions of their own (import bags) may forward their imports without a suggestion to import the defining file.",
	Level: Warn,
	Run: func(pass *Pass) error {
		EachFile(pass, func(fr *analysis.FileResult) {
			for _, ind := range fr.Indirect {
				d := at(fr.File.Path, ind.Usage.Span)
				d.Message = "Indirectly imported: " + ind.Usage.Name
				notes := []string{"Import chain: " + displayChain(pass, ind.Chain)}
				if ind.Suggest != "" {
					notes = append(notes, "Consider importing "+displayPath(pass, ind.Suggest)+" directly")
				}
				pass.ReportWithNotes(d, notes...)
			}
		})
		return nil
	},
}

// AnalyzerInvalidLetterCasing reports usages spelled with different casing
// than their definitions.
var AnalyzerInvalidLetterCasing = &Analyzer{
	Name:  analysis.LintInvalidLetterCasing,
	Doc:   "Report usages whose letter casing differs from the definition.",
	Level: Warn,
	Run: func(pass *Pass) error {
		EachFile(pass, func(fr *analysis.FileResult) {
			for _, m := range fr.Casing {
				d := at(fr.File.Path, m.Usage.Span)
				d.Message = "Function name differs between usage and definition"
				pass.ReportWithNotes(d,
					"Check whether the letter casing is the same",
					fmt.Sprintf("Defined as %s in %s", m.Origin.Definition.Name, displayPath(pass, m.Origin.File)))
			}
		})
		return nil
	},
}

// AnalyzerUnusedImports reports imports none of whose definitions are used.
var AnalyzerUnusedImports = &Analyzer{
	Name:  "unused-imports",
	Doc:   "Report imports that provide nothing the file uses.\n\nImport bags are never checked.",
	Level: Warn,
	Run: func(pass *Pass) error {
		EachFile(pass, func(fr *analysis.FileResult) {
			for _, u := range fr.UnusedImports {
				d := at(fr.File.Path, u.Import.Span)
				d.Message = "Unused import"
				pass.ReportWithNotes(d, "Nothing defined in "+displayPath(pass, u.Path)+" is used")
			}
		})
		return nil
	},
}

// AnalyzerNoStrictMode reports entry point scripts that never enable strict
// mode.
var AnalyzerNoStrictMode = &Analyzer{
	Name:  "no-strict-mode",
	Doc:   "Report files not imported by any other file that do not enable strict mode.\n\nStrict mode is enabled when the file or anything it imports calls Set-StrictMode.",
	Level: Warn,
	Run: func(pass *Pass) error {
		EachFile(pass, func(fr *analysis.FileResult) {
			if fr.NoStrictMode {
				pass.Report(Diagnostic{Path: fr.File.Path, Message: "Strict mode not enabled for this file"})
			}
		})
		return nil
	},
}

// AnalyzerInvalidTestnameCharacters reports test names that cannot be used
// as file names.
var AnalyzerInvalidTestnameCharacters = &Analyzer{
	Name:  "invalid-testname-characters",
	Doc:   "Report test names with characters that are invalid in file names.\n\nOnly files that call Initialize-PesterLogger are checked, since the logger names its output files after the tests.",
	Level: Warn,
	Run: func(pass *Pass) error {
		EachFile(pass, func(fr *analysis.FileResult) {
			for _, tc := range fr.InvalidTestcases {
				d := at(fr.File.Path, tc.Span)
				d.Message = "Testname contains invalid characters"
				pass.ReportWithNotes(d, "These characters are invalid in a file name: "+charList(analysis.InvalidTestChars()))
			}
		})
		return nil
	},
}

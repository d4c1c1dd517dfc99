// Copyright © 2024 The Shelly authors

// Package analysis resolves the dot-imports of a project of PowerShell
// scripts and checks every command usage against the definitions visible in
// its file.
//
// Analysis runs in three steps.  LoadWorkspace parses every script under a
// root directory, ComputeScopes computes what each file can see through its
// imports and Resolve classifies each usage.  Analyze runs all three.
package analysis

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/luthersystems/shelly/analysis"

func tracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(tracerName)
}

// Config controls the behavior of the analyzer.
type Config struct {
	// Builtins are commands available without import.  When nil the
	// DefaultBuiltins are used.
	Builtins NameSet

	// Extras are project specific commands that are never reported as
	// unknown, such as commands provided by installed modules.
	Extras NameSet

	// Exclude holds glob patterns, matched against '/' separated paths
	// relative to the root, of files and directories to skip.
	Exclude []string

	// Overlay maps absolute file paths to contents that replace what is on
	// disk, e.g. unsaved editor buffers.
	Overlay map[string]string

	Logger logrus.FieldLogger
}

var (
	defaultBuiltinsOnce sync.Once
	defaultBuiltins     NameSet
)

func (cfg *Config) builtins() NameSet {
	if cfg.Builtins != nil {
		return cfg.Builtins
	}
	defaultBuiltinsOnce.Do(func() {
		defaultBuiltins = DefaultBuiltins()
	})
	return defaultBuiltins
}

func (cfg *Config) isKnownCommand(name string) bool {
	return cfg.builtins().Contains(name) || cfg.Extras.Contains(name)
}

func (cfg *Config) logger() logrus.FieldLogger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Analyze loads the project under root and resolves every usage in it.  A
// *CycleError is returned when the project's imports form a cycle.
func Analyze(ctx context.Context, root string, cfg *Config) (*Result, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	ctx, span := tracer().Start(ctx, "analysis.Analyze")
	defer span.End()
	span.SetAttributes(attribute.String("shelly.root", root))

	project, err := LoadWorkspace(ctx, root, cfg)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	scopes, err := ComputeScopes(ctx, project, cfg)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	res := Resolve(project, scopes, cfg)
	cfg.logger().WithFields(logrus.Fields{
		"root":     project.Root,
		"files":    len(project.Files),
		"problems": len(project.Problems),
	}).Debug("Analysis complete")
	return res, nil
}

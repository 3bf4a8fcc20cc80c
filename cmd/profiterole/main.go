// Package main is the entry point for the profiterole CLI tool.
// It parses command-line arguments, loads the settings file, and provisions
// an AWS profile for every SSO role the signed-in identity can assume.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"profiterole/pkg/appconfig"
	"profiterole/pkg/awssso"
	"profiterole/pkg/provision"
)

var version = "dev" // Overwritten during build

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// PARSE COMMAND LINE ARGS
	var opts appconfig.Options
	if err := opts.Parse(args); err != nil {
		fmt.Printf("Error parsing command line arguments: %v\n", err)
		return 1
	}

	slog.Debug("profiterole", "version", version)

	// LOAD SETTINGS
	slog.Info("Loading settings...", "path", opts.Config)
	settings, err := appconfig.LoadSettings(opts.Config)
	if err != nil {
		fmt.Printf("Error loading settings: %v\n", err)
		return 1
	}

	// RESOLVE AWS PATHS
	slog.Info("Resolving AWS paths...")
	paths, err := appconfig.ResolvePaths(settings)
	if err != nil {
		fmt.Printf("Error resolving AWS paths: %v\n", err)
		return 1
	}

	// BUILD SSO SERVICE CLIENT
	ctx := context.Background()
	api, err := awssso.NewAPI(ctx, settings.AWS.SSORegion)
	if err != nil {
		fmt.Printf("Error creating SSO client: %v\n", err)
		return 1
	}

	// PROVISION PROFILES
	p := provision.New(settings, paths, api, opts.Jobs, os.Stdout)
	p.Verify = opts.Verify
	if err := p.Run(ctx); err != nil {
		fmt.Printf("An error occurred: %v\n", err)
		return 1
	}

	return 0
}

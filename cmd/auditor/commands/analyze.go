/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: analyze.go
Description: Analyze command implementation for the Akaylee Auditor. Runs one
full analysis pass against an installed application and renders the report in
the requested format.
*/

package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/kleascm/akaylee-auditor/pkg/adb"
	"github.com/kleascm/akaylee-auditor/pkg/analyzer"
	"github.com/kleascm/akaylee-auditor/pkg/report"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunAnalyze executes one analysis pass
func RunAnalyze(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := BuildLogger()
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer logger.Close()

	packageName := viper.GetString("package")
	format := report.Format(viper.GetString("format"))
	switch format {
	case report.FormatJSON, report.FormatYAML, report.FormatMarkdown:
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}

	// Ctrl-C aborts acquisition; parsing of already fetched text is local
	// and fast, so it runs to completion.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := BuildRunner(logger)
	source := adb.NewSource(runner)
	a := analyzer.New(source, logger)

	result, err := a.Analyze(ctx, packageName)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	for _, f := range result.Findings {
		logger.LogFinding(packageName, string(f.Kind), string(f.Severity), f.Entity)
	}

	r := report.New(result, viper.GetBool("mantras"))
	if err := report.Write(r, format, viper.GetString("output")); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

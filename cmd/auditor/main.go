/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Main command-line interface for the Akaylee Auditor. Provides
commands for analyzing application security posture, enumerating devices and
packages, browsing device filesystems, filtering logs, and synthesizing exact
adb commands for discovered attack surfaces.
*/

package main

import (
	"fmt"
	"os"

	"github.com/kleascm/akaylee-auditor/cmd/auditor/commands"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Configuration
	configFile string
	logLevel   string

	// Device configuration
	adbPath string
	device  string

	// Logging configuration
	logDir      string
	logFormat   string
	logMaxFiles int
	logMaxSize  int64
	logCompress bool

	// Analyze configuration
	packageName  string
	outputFormat string
	outputPath   string
	withMantras  bool

	// Files configuration
	filesPath string
	withMagic bool
	readFile  bool

	// Logs configuration
	logsQuery string

	// Mantra configuration
	mantraActivity string
	mantraService  string
	mantraReceiver string
	mantraScheme   string
	mantraDomain   string
	mantraDebug    bool
)

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:   "akaylee-auditor",
		Short: "Akaylee Auditor - Android application security posture analyzer",
		Long: `Akaylee Auditor is a security analysis engine for Android applications.
It parses version-inconsistent device diagnostics into a unified model of
permissions, exported components, URI schemes, and app-link domains,
classifies the risks it finds, and synthesizes exact, copy-pasteable adb
commands to exercise every discovered surface.`,
		Version: "1.0.0",
	}

	// Add persistent flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&adbPath, "adb-path", "", "Path to the adb binary (auto-detected when empty)")
	rootCmd.PersistentFlags().StringVar(&device, "device", "", "Target device serial (adb -s)")

	// Add logging-specific flags
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "./logs", "Log output directory")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "custom", "Log format (text, json, custom)")
	rootCmd.PersistentFlags().IntVar(&logMaxFiles, "log-max-files", 10, "Maximum number of log files to keep")
	rootCmd.PersistentFlags().Int64Var(&logMaxSize, "log-max-size", 100*1024*1024, "Maximum log file size in bytes")
	rootCmd.PersistentFlags().BoolVar(&logCompress, "log-compress", false, "Compress rotated log files")

	// Bind flags to viper
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("adb_path", rootCmd.PersistentFlags().Lookup("adb-path"))
	viper.BindPFlag("device", rootCmd.PersistentFlags().Lookup("device"))
	viper.BindPFlag("log_dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("log_max_files", rootCmd.PersistentFlags().Lookup("log-max-files"))
	viper.BindPFlag("log_max_size", rootCmd.PersistentFlags().Lookup("log-max-size"))
	viper.BindPFlag("log_compress", rootCmd.PersistentFlags().Lookup("log-compress"))

	// Add analyze command
	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze the security posture of an installed application",
		Long: `Run a full analysis pass against one installed application. Acquires the
package dump, domain verification state, and intent resolver tables from the
device, builds a unified snapshot, classifies risks, and renders a report.`,
		RunE: commands.RunAnalyze,
	}

	analyzeCmd.Flags().StringVar(&packageName, "package", "", "Application package identifier (required)")
	analyzeCmd.Flags().StringVar(&outputFormat, "format", "json", "Report format (json, yaml, markdown)")
	analyzeCmd.Flags().StringVar(&outputPath, "output", "", "Report output path (stdout when empty)")
	analyzeCmd.Flags().BoolVar(&withMantras, "mantras", true, "Include synthesized adb commands in the report")

	analyzeCmd.MarkFlagRequired("package")

	viper.BindPFlag("package", analyzeCmd.Flags().Lookup("package"))
	viper.BindPFlag("format", analyzeCmd.Flags().Lookup("format"))
	viper.BindPFlag("output", analyzeCmd.Flags().Lookup("output"))
	viper.BindPFlag("mantras", analyzeCmd.Flags().Lookup("mantras"))

	rootCmd.AddCommand(analyzeCmd)

	// Add devices command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "devices",
		Short: "List devices visible to the adb server",
		RunE:  commands.RunDevices,
	})

	// Add packages command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "packages",
		Short: "List installed packages with install and update times",
		RunE:  commands.RunPackages,
	})

	// Add files command
	filesCmd := &cobra.Command{
		Use:   "files",
		Short: "Browse or read files on the device",
		Long: `List a device directory in long format with file type detection, or read
one file with printable string extraction and base64 content.`,
		RunE: commands.RunFiles,
	}

	filesCmd.Flags().StringVar(&filesPath, "path", "", "Device path to list or read (required)")
	filesCmd.Flags().BoolVar(&withMagic, "magic", true, "Enrich listings with file(1) descriptions")
	filesCmd.Flags().BoolVar(&readFile, "read", false, "Read the path as a file instead of listing it")

	filesCmd.MarkFlagRequired("path")

	viper.BindPFlag("files_path", filesCmd.Flags().Lookup("path"))
	viper.BindPFlag("files_magic", filesCmd.Flags().Lookup("magic"))
	viper.BindPFlag("files_read", filesCmd.Flags().Lookup("read"))

	rootCmd.AddCommand(filesCmd)

	// Add logs command
	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "Dump recent device logs filtered by a query",
		RunE:  commands.RunLogs,
	}

	logsCmd.Flags().StringVar(&logsQuery, "query", "", "Substring filter applied to log lines (required)")
	logsCmd.MarkFlagRequired("query")
	viper.BindPFlag("logs_query", logsCmd.Flags().Lookup("query"))

	rootCmd.AddCommand(logsCmd)

	// Add mantra command
	mantraCmd := &cobra.Command{
		Use:   "mantra",
		Short: "Synthesize the exact adb command for one entity",
		Long: `Render the adb invocation that exercises one entity: start an activity or
service, broadcast to a receiver, open a custom scheme or app-link domain,
or mark the application for debugging. Exactly one entity flag is required.`,
		RunE: commands.RunMantra,
	}

	mantraCmd.Flags().StringVar(&packageName, "package", "", "Application package identifier (required)")
	mantraCmd.Flags().StringVar(&mantraActivity, "activity", "", "Activity component to start")
	mantraCmd.Flags().StringVar(&mantraService, "service", "", "Service component to start")
	mantraCmd.Flags().StringVar(&mantraReceiver, "receiver", "", "Receiver component to broadcast to")
	mantraCmd.Flags().StringVar(&mantraScheme, "scheme", "", "Custom URI scheme to open")
	mantraCmd.Flags().StringVar(&mantraDomain, "domain", "", "App-link domain to open")
	mantraCmd.Flags().BoolVar(&mantraDebug, "set-debuggable", false, "Render the set-debug-app command")

	mantraCmd.MarkFlagRequired("package")

	viper.BindPFlag("package", mantraCmd.Flags().Lookup("package"))
	viper.BindPFlag("mantra_activity", mantraCmd.Flags().Lookup("activity"))
	viper.BindPFlag("mantra_service", mantraCmd.Flags().Lookup("service"))
	viper.BindPFlag("mantra_receiver", mantraCmd.Flags().Lookup("receiver"))
	viper.BindPFlag("mantra_scheme", mantraCmd.Flags().Lookup("scheme"))
	viper.BindPFlag("mantra_domain", mantraCmd.Flags().Lookup("domain"))
	viper.BindPFlag("mantra_set_debuggable", mantraCmd.Flags().Lookup("set-debuggable"))

	rootCmd.AddCommand(mantraCmd)

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: files.go
Description: Filesystem and log inspection commands for the Akaylee Auditor.
Browses device directories with type detection and magic enrichment, reads
remote files with string extraction, and filters recent device logs.
*/

package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/kleascm/akaylee-auditor/pkg/files"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunFiles lists a device directory or reads one file
func RunFiles(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := BuildLogger()
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer logger.Close()

	runner := BuildRunner(logger)
	inspector := files.NewInspector(runner)
	path := viper.GetString("files_path")

	if viper.GetBool("files_read") {
		content, err := inspector.Read(context.Background(), path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		fmt.Printf("Path: %s (%d bytes)\n\n", content.Path, content.Size)
		fmt.Println(content.Content)
		if len(content.Strings) > 0 {
			fmt.Printf("\n%d printable string(s) extracted\n", len(content.Strings))
		}
		return nil
	}

	entries, err := inspector.List(context.Background(), path, viper.GetBool("files_magic"))
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", path, err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tPERMS\tSIZE\tDATE\tNAME\tMAGIC")
	for _, e := range entries {
		magic := e.Magic
		if magic == "" {
			magic = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", e.Type, e.Perms, e.Size, e.Date, e.Name, magic)
	}
	return w.Flush()
}

// RunLogs dumps recent device logs filtered by the query
func RunLogs(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := BuildLogger()
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer logger.Close()

	runner := BuildRunner(logger)
	lines, err := runner.Logcat(context.Background(), viper.GetString("logs_query"))
	if err != nil {
		return fmt.Errorf("failed to read logs: %w", err)
	}

	if len(lines) == 0 {
		fmt.Println("No matching log entries.")
		return nil
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}

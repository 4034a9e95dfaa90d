/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: device.go
Description: Device and package enumeration commands for the Akaylee Auditor.
Lists connected devices and installed packages with install metadata.
*/

package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// RunDevices lists devices visible to the adb server
func RunDevices(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := BuildLogger()
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer logger.Close()

	runner := BuildRunner(logger)
	devices, err := runner.ListDevices(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list devices: %w", err)
	}

	if len(devices) == 0 {
		fmt.Println("No devices connected.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SERIAL\tSTATUS")
	for _, d := range devices {
		fmt.Fprintf(w, "%s\t%s\n", d.ID, d.Status)
	}
	return w.Flush()
}

// RunPackages lists installed packages with install and update times
func RunPackages(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := BuildLogger()
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer logger.Close()

	runner := BuildRunner(logger)
	packages, err := runner.ListPackages(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list packages: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PACKAGE\tINSTALLED\tUPDATED")
	for _, p := range packages {
		install := p.InstallTime
		if install == "" {
			install = "-"
		}
		update := p.UpdateTime
		if update == "" {
			update = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, install, update)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d package(s)\n", len(packages))
	return nil
}

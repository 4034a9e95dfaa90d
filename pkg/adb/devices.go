/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: devices.go
Description: Device and package enumeration over ADB. Lists connected devices
with their transport status, enumerates installed packages enriched with
install and update timestamps from the global package dump, and filters
recent device logs by a caller query.
*/

package adb

import (
	"context"
	"regexp"
	"strings"
)

// Device is one entry from the adb device list
type Device struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// PackageEntry is one installed package with its install metadata.
// Timestamps stay as the device-formatted strings; version skew makes their
// format unreliable to parse.
type PackageEntry struct {
	Name        string `json:"name"`
	InstallTime string `json:"install_time"`
	UpdateTime  string `json:"update_time"`
}

var (
	rePackageHeader   = regexp.MustCompile(`^Package \[(.*?)\]`)
	reInstallTimeTok  = regexp.MustCompile(`firstInstallTime=(.+)`)
	reUpdateTimeTok   = regexp.MustCompile(`lastUpdateTime=(.+)`)
	reTimeStampTok    = regexp.MustCompile(`timeStamp=(.+)`)
	rePackageListLine = regexp.MustCompile(`^package:(\S+)`)
)

// ParseDeviceList parses "adb devices" output. The banner line and empty
// lines are skipped; each remaining line is "serial<TAB>status".
func ParseDeviceList(output string) []Device {
	var devices []Device
	for i, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if i == 0 || line == "" {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) >= 2 {
			devices = append(devices, Device{ID: parts[0], Status: parts[1]})
		}
	}
	return devices
}

// ParsePackageList merges "pm list packages" output with timestamps scraped
// from a global package dump. Packages absent from the dump keep empty
// timestamps; a missing install time falls back to the record timeStamp.
func ParsePackageList(listOutput, dumpOutput string) []PackageEntry {
	type times struct {
		install   string
		update    string
		timestamp string
	}
	known := map[string]*times{}

	var current *times
	for _, line := range strings.Split(dumpOutput, "\n") {
		line = strings.TrimSpace(line)
		if m := rePackageHeader.FindStringSubmatch(line); m != nil {
			if t, ok := known[m[1]]; ok {
				current = t
			} else {
				current = &times{}
				known[m[1]] = current
			}
			continue
		}
		if current == nil {
			continue
		}
		if m := reInstallTimeTok.FindStringSubmatch(line); m != nil {
			current.install = strings.TrimSpace(m[1])
		} else if m := reUpdateTimeTok.FindStringSubmatch(line); m != nil {
			current.update = strings.TrimSpace(m[1])
		} else if m := reTimeStampTok.FindStringSubmatch(line); m != nil {
			current.timestamp = strings.TrimSpace(m[1])
		}
	}

	var entries []PackageEntry
	for _, line := range strings.Split(listOutput, "\n") {
		m := rePackageListLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		entry := PackageEntry{Name: m[1]}
		if t, ok := known[m[1]]; ok {
			entry.InstallTime = t.install
			if entry.InstallTime == "" {
				entry.InstallTime = t.timestamp
			}
			entry.UpdateTime = t.update
		}
		entries = append(entries, entry)
	}
	return entries
}

// ListDevices enumerates devices visible to the adb server
func (r *Runner) ListDevices(ctx context.Context) ([]Device, error) {
	out, err := r.Run(ctx, "devices")
	if err != nil {
		return nil, err
	}
	return ParseDeviceList(out), nil
}

// ListPackages enumerates installed packages with install metadata. The
// timestamp enrichment is best-effort: when the global dump fails, the plain
// package list is returned without times.
func (r *Runner) ListPackages(ctx context.Context) ([]PackageEntry, error) {
	listOut, err := r.Shell(ctx, "pm", "list", "packages")
	if err != nil {
		return nil, err
	}
	dumpOut, err := r.Shell(ctx, "dumpsys", "package")
	if err != nil {
		dumpOut = ""
	}
	return ParsePackageList(listOut, dumpOut), nil
}

// Logcat returns recent log lines containing query. Filtering happens here
// rather than in a device-side pipe so the query never reaches a shell.
func (r *Runner) Logcat(ctx context.Context, query string) ([]string, error) {
	out, err := r.Shell(ctx, "logcat", "-d")
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if query == "" || strings.Contains(line, query) {
			if strings.TrimSpace(line) != "" {
				lines = append(lines, line)
			}
		}
	}
	return lines, nil
}

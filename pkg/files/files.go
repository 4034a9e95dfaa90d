/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: files.go
Description: On-device filesystem inspection for the Akaylee Auditor. Parses
long-format directory listings with a date-anchored field split that survives
names containing spaces, enriches entries with file(1) magic descriptions,
and reads remote file content with printable-string extraction and base64
encoding for binary-safe transport.
*/

package files

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/kleascm/akaylee-auditor/pkg/adb"
)

var (
	// ErrPermissionDenied marks a path the shell user cannot read
	ErrPermissionDenied = errors.New("files: permission denied")
	// ErrNotFound marks a path that does not exist on the device
	ErrNotFound = errors.New("files: path not found")
)

// EntryType classifies a directory entry
type EntryType string

const (
	TypeFile EntryType = "file"
	TypeDir  EntryType = "dir"
	TypeLink EntryType = "link"
)

// Entry is one parsed directory entry
type Entry struct {
	Name  string    `json:"name"`
	Type  EntryType `json:"type"`
	Size  string    `json:"size"`
	Date  string    `json:"date"`
	Perms string    `json:"perms"`
	Magic string    `json:"magic,omitempty"`
	Raw   string    `json:"raw"`
}

// Content is the result of reading one remote file
type Content struct {
	Path    string   `json:"path"`
	Size    int      `json:"size"`
	Content string   `json:"content"`
	Strings []string `json:"strings"`
	Base64  string   `json:"base64"`
}

var reListDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseList parses "ls -l" output. Fields before the date token vary across
// Android versions, so the date is located first and the name is everything
// after date and time, which keeps names with spaces intact.
func ParseList(output string) []Entry {
	var entries []Entry
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "total ") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 7 {
			continue
		}

		dateIdx := -1
		for i, p := range parts {
			if reListDate.MatchString(p) {
				dateIdx = i
				break
			}
		}
		if dateIdx < 1 || dateIdx+2 > len(parts) {
			continue
		}

		perms := parts[0]
		typ := TypeFile
		if strings.HasPrefix(perms, "d") {
			typ = TypeDir
		} else if strings.HasPrefix(perms, "l") {
			typ = TypeLink
		}

		entries = append(entries, Entry{
			Name:  strings.Join(parts[dateIdx+2:], " "),
			Type:  typ,
			Size:  parts[dateIdx-1],
			Date:  parts[dateIdx] + " " + parts[dateIdx+1],
			Perms: perms,
			Raw:   line,
		})
	}
	return entries
}

// ParseMagicOutput parses "file *" output into a name to description map.
// Names come back with toybox decorations (leading ./, quoting) that are
// stripped so they match ls names.
func ParseMagicOutput(output string) map[string]string {
	magic := map[string]string{}
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		name, desc, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		name = strings.TrimPrefix(name, "./")
		name = strings.Trim(name, `'"`)
		desc = strings.TrimSpace(desc)
		if name != "" && desc != "" {
			magic[name] = desc
		}
	}
	return magic
}

// ExtractStrings pulls printable ASCII runs of at least minLength bytes out
// of arbitrary binary content
func ExtractStrings(data []byte, minLength int) []string {
	if minLength <= 0 {
		minLength = 4
	}
	var out []string
	var run []byte
	flush := func() {
		if len(run) >= minLength {
			out = append(out, string(run))
		}
		run = run[:0]
	}
	for _, b := range data {
		if b >= 0x20 && b < 0x7f {
			run = append(run, b)
		} else {
			flush()
		}
	}
	flush()
	return out
}

// Inspector browses and reads files on one device
type Inspector struct {
	runner *adb.Runner
}

// NewInspector creates a file inspector over the given runner
func NewInspector(runner *adb.Runner) *Inspector {
	return &Inspector{runner: runner}
}

// List enumerates path on the device. Directories sort before everything
// else, then by name. Magic enrichment is best-effort and only attaches to
// regular files.
func (in *Inspector) List(ctx context.Context, path string, withMagic bool) ([]Entry, error) {
	out, err := in.runner.Shell(ctx, "ls", "-l", path)
	if strings.Contains(out, "Permission denied") {
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
	}
	if strings.Contains(out, "No such file") {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, err
	}

	entries := ParseList(out)

	if withMagic {
		magicOut, magicErr := in.runner.Shell(ctx, magicCommand(path))
		if magicErr == nil {
			magic := ParseMagicOutput(magicOut)
			for i := range entries {
				if entries[i].Type == TypeFile {
					entries[i].Magic = magic[entries[i].Name]
				}
			}
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if (entries[i].Type == TypeDir) != (entries[j].Type == TypeDir) {
			return entries[i].Type == TypeDir
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// magicCommand renders the magic-enrichment command for path. The path is
// wrapped in single quotes with embedded quotes escaped, so shell
// metacharacters in directory names never expand on the device.
func magicCommand(path string) string {
	quoted := "'" + strings.ReplaceAll(path, "'", `'\''`) + "'"
	return fmt.Sprintf("cd %s && file *", quoted)
}

// Read pulls one remote file and returns its decoded text, printable
// strings, and a base64 copy of the raw bytes
func (in *Inspector) Read(ctx context.Context, path string) (*Content, error) {
	raw, err := in.runner.RunRaw(ctx, "shell", "cat", path)
	if err != nil {
		return nil, err
	}
	if strings.Contains(string(raw), "Permission denied") && len(raw) < 256 {
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
	}
	if strings.Contains(string(raw), "No such file") && len(raw) < 256 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	return &Content{
		Path:    path,
		Size:    len(raw),
		Content: strings.ToValidUTF8(string(raw), "�"),
		Strings: ExtractStrings(raw, 4),
		Base64:  base64.StdEncoding.EncodeToString(raw),
	}, nil
}

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: package_parser.go
Description: Parser for "dumpsys package <pkg>" diagnostic output. Extracts identity
and flag tokens (userId, versionName, versionCode, dataDir, install/update times,
debuggable), walks the permission sections (requested, install, runtime, declared)
through the section state machine, and collects declared content providers. Tolerant
of platform and vendor formatting drift; missing keys stay explicitly unknown.
*/

package dump

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	reVersionName = regexp.MustCompile(`\bversionName=(\S+)`)
	reVersionCode = regexp.MustCompile(`\bversionCode=(\d+)`)
	reUserID      = regexp.MustCompile(`\buserId=(\d+)`)
	reAppID       = regexp.MustCompile(`\bappId=(\d+)`)
	reDataDir     = regexp.MustCompile(`\bdataDir=(\S+)`)
	reFirstTime   = regexp.MustCompile(`\bfirstInstallTime=(.+)$`)
	reUpdateTime  = regexp.MustCompile(`\blastUpdateTime=(.+)$`)
	reTimeStamp   = regexp.MustCompile(`\btimeStamp=(.+)$`)
	rePkgFlags    = regexp.MustCompile(`\bpkgFlags=\[([^\]]*)\]`)
	reProvider    = regexp.MustCompile(`Provider\{[0-9a-f]+ (\S+)\}`)

	rePermEntry     = regexp.MustCompile(`^([A-Za-z][\w.\-]*)(?::\s*(.*))?$`)
	reGrantedEntry  = regexp.MustCompile(`^([\w.\-]+): granted=(true|false)`)
	reDeclaredEntry = regexp.MustCompile(`^([\w.\-]+): prot=([\w|]+)`)
)

// ParsePackageDump converts one raw "dumpsys package" block for appID into
// typed records. A block with no recognizable content fails with
// ErrMalformedInput; the caller degrades that category, never the analysis.
func ParsePackageDump(appID, text string) (*PackageDumpResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty package dump for %s", ErrMalformedInput, appID)
	}

	res := &PackageDumpResult{
		Package: PackageRecord{Package: appID},
	}
	providers := map[string]bool{}

	scanner := &sectionScanner{
		sections: []section{
			{
				header: regexp.MustCompile(`^requested permissions:$`),
				open: func(_ []string, _ lineInfo) entryFunc {
					return func(l lineInfo) bool {
						m := rePermEntry.FindStringSubmatch(l.Text)
						if m == nil || !strings.Contains(m[1], ".") {
							return false
						}
						res.Permissions = append(res.Permissions, PermissionRecord{
							Name:      m[1],
							Requested: true,
						})
						return true
					}
				},
			},
			{
				// install and runtime permission sections share one entry shape
				header: regexp.MustCompile(`^(install|runtime) permissions:$`),
				open: func(_ []string, _ lineInfo) entryFunc {
					return func(l lineInfo) bool {
						m := reGrantedEntry.FindStringSubmatch(l.Text)
						if m == nil {
							return false
						}
						res.Permissions = append(res.Permissions, PermissionRecord{
							Name:    m[1],
							Granted: Bool(m[2] == "true"),
						})
						return true
					}
				},
			},
			{
				header: regexp.MustCompile(`^declared permissions:$`),
				open: func(_ []string, _ lineInfo) entryFunc {
					return func(l lineInfo) bool {
						m := reDeclaredEntry.FindStringSubmatch(l.Text)
						if m == nil {
							return false
						}
						// prot can carry extra flags, e.g. "dangerous|appop"
						level := strings.SplitN(m[2], "|", 2)[0]
						res.Permissions = append(res.Permissions, PermissionRecord{
							Name:       m[1],
							Protection: Str(level),
						})
						return true
					}
				},
			},
			{
				header: regexp.MustCompile(`^(Registered ContentProviders:|ContentProvider Authorities:)$`),
				open: func(_ []string, _ lineInfo) entryFunc {
					return func(l lineInfo) bool {
						if m := reProvider.FindStringSubmatch(l.Text); m != nil {
							providers[m[1]] = true
							return true
						}
						// Authority header lines like "com.example.app/.Provider:"
						if strings.HasSuffix(l.Text, ":") && strings.Contains(l.Text, "/") {
							providers[strings.TrimSuffix(l.Text, ":")] = true
							return true
						}
						return false
					}
				},
			},
		},
		every: func(l lineInfo) {
			scanPackageTokens(&res.Package, l.Text)
			if m := reProvider.FindStringSubmatch(l.Text); m != nil {
				providers[m[1]] = true
			}
		},
	}

	res.Unparsed = scanner.Run(text)
	for _, l := range res.Unparsed {
		res.Warnings = append(res.Warnings, Warning{
			Kind:    WarnUnparsedLine,
			Source:  SourcePackageDump,
			Message: "unrecognized entry in permission/provider section",
			Line:    l,
		})
	}
	for name := range providers {
		res.Providers = append(res.Providers, name)
	}
	sort.Strings(res.Providers)

	return res, nil
}

// scanPackageTokens pulls key=value identity tokens from a single line.
// First occurrence wins so that the package's own block takes precedence
// over later blocks in a combined dump.
func scanPackageTokens(rec *PackageRecord, line string) {
	if !rec.VersionName.Set {
		if m := reVersionName.FindStringSubmatch(line); m != nil {
			rec.VersionName = Str(m[1])
		}
	}
	if !rec.VersionCode.Set {
		if m := reVersionCode.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseInt(m[1], 10, 64); err == nil {
				rec.VersionCode = Int(v)
			}
		}
	}
	if !rec.UID.Set {
		m := reUserID.FindStringSubmatch(line)
		if m == nil {
			m = reAppID.FindStringSubmatch(line)
		}
		if m != nil {
			if v, err := strconv.ParseInt(m[1], 10, 64); err == nil {
				rec.UID = Int(v)
			}
		}
	}
	if !rec.DataDir.Set {
		if m := reDataDir.FindStringSubmatch(line); m != nil {
			rec.DataDir = Str(m[1])
		}
	}
	if !rec.FirstInstallTime.Set {
		if m := reFirstTime.FindStringSubmatch(line); m != nil {
			rec.FirstInstallTime = Str(strings.TrimSpace(m[1]))
		} else if m := reTimeStamp.FindStringSubmatch(line); m != nil {
			rec.FirstInstallTime = Str(strings.TrimSpace(m[1]))
		}
	}
	if !rec.LastUpdateTime.Set {
		if m := reUpdateTime.FindStringSubmatch(line); m != nil {
			rec.LastUpdateTime = Str(strings.TrimSpace(m[1]))
		}
	}
	if m := rePkgFlags.FindStringSubmatch(line); m != nil {
		debuggable := false
		for _, f := range strings.Fields(m[1]) {
			if f == "DEBUGGABLE" {
				debuggable = true
			}
		}
		rec.Debuggable = Bool(debuggable)
	}
	if strings.Contains(line, "debuggable=true") {
		rec.Debuggable = Bool(true)
	}
}

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: types.go
Description: Core types for the diagnostic dump parsing engine. Defines source kinds,
optional value wrappers that distinguish "absent" from zero values, parser record
types for package dumps, intent resolver dumps, and app-link verification dumps,
and the warning taxonomy surfaced to callers instead of hard failures.
*/

package dump

import "errors"

// SourceKind identifies which diagnostic text block a raw dump came from
type SourceKind string

const (
	SourcePackageDump            SourceKind = "package-dump"
	SourceDomainVerificationDump SourceKind = "domain-verification-dump"
	SourceIntentDump             SourceKind = "intent-dump"
)

// ErrMalformedInput marks a dump block the parser could not interpret at all.
// It degrades one record category to "unavailable"; it never aborts an analysis.
var ErrMalformedInput = errors.New("dump: malformed diagnostic input")

// WarningKind classifies non-fatal parse conditions
type WarningKind string

const (
	WarnMalformedInput   WarningKind = "malformed-input"
	WarnIncompleteModel  WarningKind = "incomplete-model"
	WarnConflictingEntry WarningKind = "conflicting-entry"
	WarnUnparsedLine     WarningKind = "unparsed-line"
)

// Warning is a non-fatal parse condition reported alongside results.
// Warnings are diagnostics for the caller; they are never raised as errors.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Source  SourceKind  `json:"source"`
	Message string      `json:"message"`
	Line    string      `json:"line,omitempty"` // Offending raw line, if any
}

// OptString is a string token that distinguishes absent from empty.
// A missing key yields Set=false, never a silent "" default.
type OptString struct {
	Value string `json:"value"`
	Set   bool   `json:"set"`
}

// OptInt is an integer token that distinguishes absent from zero
type OptInt struct {
	Value int64 `json:"value"`
	Set   bool  `json:"set"`
}

// OptBool is a flag token that distinguishes absent from false
type OptBool struct {
	Value bool `json:"value"`
	Set   bool `json:"set"`
}

// Str wraps a present string value
func Str(v string) OptString { return OptString{Value: v, Set: true} }

// Int wraps a present integer value
func Int(v int64) OptInt { return OptInt{Value: v, Set: true} }

// Bool wraps a present flag value
func Bool(v bool) OptBool { return OptBool{Value: v, Set: true} }

// PackageRecord holds the identity and flag tokens extracted from a package dump
type PackageRecord struct {
	Package          string    `json:"package"`
	VersionName      OptString `json:"version_name"`
	VersionCode      OptInt    `json:"version_code"`
	UID              OptInt    `json:"uid"`
	DataDir          OptString `json:"data_dir"`
	FirstInstallTime OptString `json:"first_install_time"`
	LastUpdateTime   OptString `json:"last_update_time"`
	Debuggable       OptBool   `json:"debuggable"`
}

// PermissionRecord is one permission entry from a package dump section.
// The same permission may appear in several sections; the builder merges
// duplicates (OR on requested, last-seen-wins on granted).
type PermissionRecord struct {
	Name       string    `json:"name"`
	Requested  bool      `json:"requested"`
	Granted    OptBool   `json:"granted"`
	Protection OptString `json:"protection"` // From declared permissions, e.g. "dangerous"
}

// FilterRecord is one intent filter from an intent resolver dump.
// Component is a weak back-reference by name; "" means the filter appeared
// before any component header and belongs to the synthetic unknown component.
type FilterRecord struct {
	Component  string   `json:"component"`
	Actions    []string `json:"actions"`
	Categories []string `json:"categories"`
	Schemes    []string `json:"schemes"`
	Hosts      []string `json:"hosts"`
	Paths      []string `json:"paths"`
	AutoVerify bool     `json:"auto_verify"`
}

// ComponentRecord is one application component discovered in a dump
type ComponentRecord struct {
	Name             string         `json:"name"` // pkg/Class or pkg/.Suffix
	Kind             string         `json:"kind"` // activity, service, receiver, provider
	ExportedExplicit OptBool        `json:"exported_explicit"`
	Filters          []FilterRecord `json:"filters"`
}

// DomainRecord is one domain entry from an app-link verification dump.
// RawStatus preserves the exact status token for display; unrecognized
// tokens are never coerced to a verified state.
type DomainRecord struct {
	Domain    string `json:"domain"`
	RawStatus string `json:"raw_status"`
	Disabled  bool   `json:"disabled"` // Listed under the user "Disabled:" selection
}

// PackageDumpResult is the typed output of the package dump parser
type PackageDumpResult struct {
	Package     PackageRecord      `json:"package"`
	Permissions []PermissionRecord `json:"permissions"`
	Providers   []string           `json:"providers"`
	Unparsed    []string           `json:"unparsed"`
	Warnings    []Warning          `json:"warnings"`
}

// IntentDumpResult is the typed output of the intent resolver dump parser
type IntentDumpResult struct {
	Components []ComponentRecord `json:"components"`
	Unparsed   []string          `json:"unparsed"`
	Warnings   []Warning         `json:"warnings"`
}

// AppLinksResult is the typed output of the domain verification dump parser
type AppLinksResult struct {
	Domains  []DomainRecord `json:"domains"`
	Unparsed []string       `json:"unparsed"`
	Warnings []Warning      `json:"warnings"`
}

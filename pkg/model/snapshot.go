/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: snapshot.go
Description: Unified application model for the Akaylee Auditor. Defines the
immutable per-application snapshot assembled from all dump parsers: application
identity, permissions, components with their intent filters, custom URI schemes,
and app-link domains with their verification states. A fresh analysis always
produces a fresh snapshot; nothing here is mutated after construction.
*/

package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/kleascm/akaylee-auditor/pkg/dump"
)

// UnknownComponentName labels the synthetic component that owns intent
// filters discovered before any component header in a dump
const UnknownComponentName = "(unknown)"

// ComponentKind represents the type of an application component
type ComponentKind string

const (
	KindActivity ComponentKind = "activity"
	KindService  ComponentKind = "service"
	KindReceiver ComponentKind = "receiver"
	KindProvider ComponentKind = "provider"
	KindUnknown  ComponentKind = "unknown"
)

// ProtectionLevel represents a permission's declared protection level
type ProtectionLevel string

const (
	ProtectionNormal    ProtectionLevel = "normal"
	ProtectionDangerous ProtectionLevel = "dangerous"
	ProtectionSignature ProtectionLevel = "signature"
	ProtectionUnknown   ProtectionLevel = "unknown"
)

// VerificationState is the platform's recorded trust level for an app-link
// domain. The machine is finite and acyclic: Unknown is the initial state
// before any verification dump is parsed, and every successfully parsed
// status token moves the domain to a terminal state. There is no path back
// to Unknown once a dump has been parsed for that domain; an unrecognized
// token stays Unknown with the raw token preserved for display.
type VerificationState string

const (
	StateUnknown         VerificationState = "unknown"
	StateVerified        VerificationState = "verified"
	StateApprovedByUser  VerificationState = "approved-by-user"
	StateLegacyAlwaysAsk VerificationState = "legacy-always-ask" // Reported historically as "Legacy/1024"
	StateDisabled        VerificationState = "disabled"
	StateDenied          VerificationState = "denied"
)

// StateFromToken maps a parsed verification status token onto a state.
// Both numeric platform codes and symbolic names are accepted; anything
// unrecognized maps to Unknown rather than a guessed state.
func StateFromToken(token string) (VerificationState, bool) {
	tok := strings.ToLower(strings.TrimSpace(token))
	switch tok {
	case "1", "verified":
		return StateVerified, true
	case "2", "approved", "user_approved":
		return StateApprovedByUser, true
	case "3", "denied", "user_denied":
		return StateDenied, true
	case "1024", "legacy_failure", "legacy":
		return StateLegacyAlwaysAsk, true
	case "disabled":
		return StateDisabled, true
	case "0", "none", "no_response":
		// The platform has not attempted verification; not a terminal state.
		return StateUnknown, false
	}
	if _, err := strconv.Atoi(tok); err == nil {
		// A numeric code outside the known table is an unseen platform
		// constant; keep it Unknown and let the raw token surface.
		return StateUnknown, false
	}
	return StateUnknown, false
}

// Application holds the identity and flag tokens for one analyzed package.
// UID is immutable once assigned by the platform; unknown fields stay
// explicitly unset rather than defaulting to zero or false.
type Application struct {
	Package          string         `json:"package"`
	UID              dump.OptInt    `json:"uid"`
	Debuggable       dump.OptBool   `json:"debuggable"`
	VersionName      dump.OptString `json:"version_name"`
	VersionCode      dump.OptInt    `json:"version_code"`
	DataDir          dump.OptString `json:"data_dir"`
	FirstInstallTime dump.OptString `json:"first_install_time"`
	LastUpdateTime   dump.OptString `json:"last_update_time"`
}

// Permission is one merged permission entry for the application.
// The merge invariant holds after building: Granted implies Requested.
type Permission struct {
	Name       string          `json:"name"`
	Protection ProtectionLevel `json:"protection"`
	Requested  bool            `json:"requested"`
	Granted    bool            `json:"granted"`
}

// DataSpec is one scheme/host/path triple from an intent filter
type DataSpec struct {
	Scheme string `json:"scheme"`
	Host   string `json:"host,omitempty"`
	Path   string `json:"path,omitempty"`
}

// IntentFilter belongs to exactly one component; Component is a weak
// back-reference by name, not ownership.
type IntentFilter struct {
	Component  string     `json:"component"`
	Actions    []string   `json:"actions"`
	Categories []string   `json:"categories"`
	Data       []DataSpec `json:"data"`
	AutoVerify bool       `json:"auto_verify"`
}

// Component is one application component, exclusively owned by its snapshot
type Component struct {
	Name             string         `json:"name"`
	Kind             ComponentKind  `json:"kind"`
	Exported         bool           `json:"exported"`
	ExportedExplicit bool           `json:"exported_explicit"` // Exported came from an explicit attribute
	Filters          []IntentFilter `json:"filters"`
}

// Scheme is a custom URI scheme with the components that declare it
type Scheme struct {
	Scheme     string   `json:"scheme"`
	Components []string `json:"components"`
}

// AppLinkDomain is a hostname with its declared scheme and verification state
type AppLinkDomain struct {
	Domain    string            `json:"domain"`
	Scheme    string            `json:"scheme"`
	State     VerificationState `json:"state"`
	RawStatus string            `json:"raw_status,omitempty"` // Exact token from the dump
}

// Snapshot is the immutable result of one analysis pass over one application.
// AnalysisID is unique per analysis session; consumers swap whole snapshots
// atomically, never patching one in place.
type Snapshot struct {
	AnalysisID  string          `json:"analysis_id"`
	BuiltAt     time.Time       `json:"built_at"`
	Application Application     `json:"application"`
	Permissions []Permission    `json:"permissions"`
	Components  []Component     `json:"components"`
	Schemes     []Scheme        `json:"schemes"`
	Domains     []AppLinkDomain `json:"domains"`
}

// Component returns the named component, or nil if the snapshot has none
func (s *Snapshot) Component(name string) *Component {
	for i := range s.Components {
		if s.Components[i].Name == name {
			return &s.Components[i]
		}
	}
	return nil
}

// Permission returns the named permission, or nil if the snapshot has none
func (s *Snapshot) Permission(name string) *Permission {
	for i := range s.Permissions {
		if s.Permissions[i].Name == name {
			return &s.Permissions[i]
		}
	}
	return nil
}

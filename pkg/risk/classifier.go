/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: classifier.go
Description: Risk classifier for application snapshots. Applies fixed rule
tables to a snapshot and derives risk findings: debuggable builds, granted
dangerous permissions, exported component surfaces, and app-link domains
whose verification state is anything but verified. Findings are derived data,
recomputed on every analysis pass and never persisted apart from the snapshot
that produced them.
*/

package risk

import (
	"fmt"

	"github.com/kleascm/akaylee-auditor/pkg/model"
)

// Severity represents how urgent a finding is
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityInfo   Severity = "informational"
)

// Kind enumerates the finding categories
type Kind string

const (
	KindDebuggable          Kind = "debuggable"
	KindDangerousPermission Kind = "dangerous-permission"
	KindExportedComponent   Kind = "exported-component"
	KindDomainUnverified    Kind = "domain-unverified"
)

// Finding is one classified risk referencing an entity in the snapshot
type Finding struct {
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	Entity   string   `json:"entity"`           // Permission name, component name, or domain
	Detail   string   `json:"detail,omitempty"` // Sub-kind detail, e.g. the exact verification state
}

// dangerousPermissions is the built-in protection table for platform
// permissions whose level the dump did not declare. The platform marks
// these as requiring explicit user consent.
var dangerousPermissions = map[string]bool{
	"android.permission.ACCESS_BACKGROUND_LOCATION": true,
	"android.permission.ACCESS_COARSE_LOCATION":     true,
	"android.permission.ACCESS_FINE_LOCATION":       true,
	"android.permission.BODY_SENSORS":               true,
	"android.permission.CALL_PHONE":                 true,
	"android.permission.CAMERA":                     true,
	"android.permission.READ_CALENDAR":              true,
	"android.permission.READ_CALL_LOG":              true,
	"android.permission.READ_CONTACTS":              true,
	"android.permission.READ_EXTERNAL_STORAGE":      true,
	"android.permission.READ_PHONE_STATE":           true,
	"android.permission.READ_SMS":                   true,
	"android.permission.RECEIVE_SMS":                true,
	"android.permission.RECORD_AUDIO":               true,
	"android.permission.SEND_SMS":                   true,
	"android.permission.WRITE_CALENDAR":             true,
	"android.permission.WRITE_CALL_LOG":             true,
	"android.permission.WRITE_CONTACTS":             true,
	"android.permission.WRITE_EXTERNAL_STORAGE":     true,
}

// Classify derives findings from a snapshot via the fixed rule tables.
// It keeps no incremental state; callers re-run it whenever a new snapshot
// is built.
func Classify(snap *model.Snapshot) []Finding {
	var findings []Finding
	if snap == nil {
		return findings
	}

	if snap.Application.Debuggable.Set && snap.Application.Debuggable.Value {
		findings = append(findings, Finding{
			Kind:     KindDebuggable,
			Severity: SeverityHigh,
			Entity:   snap.Application.Package,
			Detail:   "application is built debuggable",
		})
	}

	for _, p := range snap.Permissions {
		if p.Granted && isDangerous(p) {
			findings = append(findings, Finding{
				Kind:     KindDangerousPermission,
				Severity: SeverityMedium,
				Entity:   p.Name,
				Detail:   "dangerous permission granted",
			})
		}
	}

	for _, c := range snap.Components {
		if !c.Exported {
			continue
		}
		// Filterless providers are exported via authorities, not intents;
		// they are reported through the provider-specific tooling instead.
		if c.Kind == model.KindProvider && len(c.Filters) == 0 {
			continue
		}
		findings = append(findings, Finding{
			Kind:     KindExportedComponent,
			Severity: SeverityInfo,
			Entity:   c.Name,
			Detail:   fmt.Sprintf("exported %s reachable by other applications", c.Kind),
		})
	}

	for _, d := range snap.Domains {
		if d.State == model.StateVerified {
			continue
		}
		detail := string(d.State)
		if d.RawStatus != "" && d.State == model.StateUnknown {
			detail = fmt.Sprintf("%s (status %q)", d.State, d.RawStatus)
		}
		findings = append(findings, Finding{
			Kind:     KindDomainUnverified,
			Severity: SeverityMedium,
			Entity:   d.Domain,
			Detail:   detail,
		})
	}

	return findings
}

// isDangerous reports whether a permission is dangerous, preferring the
// declared protection level and falling back to the built-in table
func isDangerous(p model.Permission) bool {
	switch p.Protection {
	case model.ProtectionDangerous:
		return true
	case model.ProtectionUnknown:
		return dangerousPermissions[p.Name]
	}
	return false
}

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: builder.go
Description: Unified model builder. Merges the typed records from the package
dump, intent resolver dump, and app-link verification dump parsers into one
immutable per-application snapshot: deduplicated permissions with the
granted-implies-requested invariant enforced, components with resolved exported
status, custom URI schemes, and app-link domains where the verification dump
is authoritative over intent-filter state. Missing sources degrade to empty
categories with an incomplete-model warning; a result is always produced.
*/

package model

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/akaylee-auditor/pkg/dump"
)

// BuildSnapshot assembles the application snapshot from all parser outputs
// of one analysis pass. Any of the three results may be nil, meaning that
// source was unavailable; the snapshot is still returned with explicit gaps.
func BuildSnapshot(appID string, pkg *dump.PackageDumpResult, intents *dump.IntentDumpResult, links *dump.AppLinksResult) (*Snapshot, []dump.Warning) {
	var warnings []dump.Warning

	snap := &Snapshot{
		AnalysisID:  uuid.NewString(),
		BuiltAt:     time.Now().UTC(),
		Application: Application{Package: appID},
	}

	if pkg != nil {
		warnings = append(warnings, pkg.Warnings...)
		snap.Application = applicationFromRecord(appID, pkg.Package)
		snap.Permissions, warnings = mergePermissions(pkg.Permissions, warnings)
	} else {
		warnings = append(warnings, dump.Warning{
			Kind:    dump.WarnIncompleteModel,
			Source:  dump.SourcePackageDump,
			Message: fmt.Sprintf("package dump unavailable for %s; identity and permission data degraded to unknown", appID),
		})
	}

	if intents != nil {
		warnings = append(warnings, intents.Warnings...)
		snap.Components = buildComponents(intents.Components, pkg)
	} else if pkg != nil {
		snap.Components = buildComponents(nil, pkg)
	}

	snap.Schemes = collectSchemes(snap.Components)
	snap.Domains = collectDomains(snap.Components, links)
	if links != nil {
		warnings = append(warnings, links.Warnings...)
	}

	sort.Slice(snap.Permissions, func(i, j int) bool { return snap.Permissions[i].Name < snap.Permissions[j].Name })
	sort.Slice(snap.Components, func(i, j int) bool { return snap.Components[i].Name < snap.Components[j].Name })
	sort.Slice(snap.Schemes, func(i, j int) bool { return snap.Schemes[i].Scheme < snap.Schemes[j].Scheme })
	sort.Slice(snap.Domains, func(i, j int) bool {
		if snap.Domains[i].Domain != snap.Domains[j].Domain {
			return snap.Domains[i].Domain < snap.Domains[j].Domain
		}
		return snap.Domains[i].Scheme < snap.Domains[j].Scheme
	})

	return snap, warnings
}

// applicationFromRecord converts the parsed identity tokens into the model
func applicationFromRecord(appID string, rec dump.PackageRecord) Application {
	return Application{
		Package:          appID,
		UID:              rec.UID,
		Debuggable:       rec.Debuggable,
		VersionName:      rec.VersionName,
		VersionCode:      rec.VersionCode,
		DataDir:          rec.DataDir,
		FirstInstallTime: rec.FirstInstallTime,
		LastUpdateTime:   rec.LastUpdateTime,
	}
}

// mergePermissions deduplicates permission records by name: logical OR on
// requested, last-seen-wins on granted with a conflict warning, and the
// granted-implies-requested invariant enforced with a warning rather than
// a silent drop.
func mergePermissions(records []dump.PermissionRecord, warnings []dump.Warning) ([]Permission, []dump.Warning) {
	type mergeState struct {
		perm       Permission
		grantedSet bool
	}
	index := map[string]*mergeState{}
	var order []string

	for _, rec := range records {
		st, ok := index[rec.Name]
		if !ok {
			st = &mergeState{perm: Permission{Name: rec.Name, Protection: ProtectionUnknown}}
			index[rec.Name] = st
			order = append(order, rec.Name)
		}
		st.perm.Requested = st.perm.Requested || rec.Requested
		if rec.Granted.Set {
			if st.grantedSet && st.perm.Granted != rec.Granted.Value {
				warnings = append(warnings, dump.Warning{
					Kind:    dump.WarnConflictingEntry,
					Source:  dump.SourcePackageDump,
					Message: fmt.Sprintf("conflicting granted state for %s; keeping last-seen value %t", rec.Name, rec.Granted.Value),
				})
			}
			st.perm.Granted = rec.Granted.Value
			st.grantedSet = true
		}
		if rec.Protection.Set {
			st.perm.Protection = normalizeProtection(rec.Protection.Value)
		}
	}

	perms := make([]Permission, 0, len(order))
	for _, name := range order {
		p := index[name].perm
		if p.Granted && !p.Requested {
			warnings = append(warnings, dump.Warning{
				Kind:    dump.WarnConflictingEntry,
				Source:  dump.SourcePackageDump,
				Message: fmt.Sprintf("permission %s granted but never requested; marking as requested", name),
			})
			p.Requested = true
		}
		perms = append(perms, p)
	}
	return perms, warnings
}

// normalizeProtection maps a dump protection token to a protection level.
// Levels outside the known set are preserved verbatim, not collapsed.
func normalizeProtection(raw string) ProtectionLevel {
	switch strings.ToLower(raw) {
	case "normal":
		return ProtectionNormal
	case "dangerous":
		return ProtectionDangerous
	case "signature":
		return ProtectionSignature
	case "":
		return ProtectionUnknown
	}
	return ProtectionLevel(strings.ToLower(raw))
}

// buildComponents converts component records into model components,
// deduplicating by name and resolving exported status: an explicit exported
// attribute wins; otherwise exported follows the platform default of
// "has at least one intent filter".
func buildComponents(records []dump.ComponentRecord, pkg *dump.PackageDumpResult) []Component {
	index := map[string]*Component{}
	var order []string

	add := func(name string, kind ComponentKind) *Component {
		if c, ok := index[name]; ok {
			if c.Kind == KindUnknown && kind != KindUnknown {
				c.Kind = kind
			}
			return c
		}
		c := &Component{Name: name, Kind: kind}
		index[name] = c
		order = append(order, name)
		return c
	}

	for _, rec := range records {
		name := rec.Name
		if name == "" {
			name = UnknownComponentName
		}
		c := add(name, componentKind(rec.Kind))
		for _, f := range rec.Filters {
			c.Filters = append(c.Filters, filterFromRecord(name, f))
		}
		if rec.ExportedExplicit.Set {
			c.Exported = rec.ExportedExplicit.Value
			c.ExportedExplicit = true
		}
	}

	// Providers from the package dump are components too, even when they
	// never appear in a resolver table.
	if pkg != nil {
		for _, p := range pkg.Providers {
			add(p, KindProvider)
		}
	}

	comps := make([]Component, 0, len(order))
	for _, name := range order {
		c := index[name]
		if !c.ExportedExplicit {
			c.Exported = len(c.Filters) > 0
		}
		comps = append(comps, *c)
	}
	return comps
}

// componentKind normalizes a dump kind token
func componentKind(kind string) ComponentKind {
	switch strings.ToLower(kind) {
	case "activity":
		return KindActivity
	case "service":
		return KindService
	case "receiver":
		return KindReceiver
	case "provider":
		return KindProvider
	}
	return KindUnknown
}

// filterFromRecord converts a filter record, zipping parallel scheme/host/path
// lists into data specs: schemes without hosts stand alone, hosts pair with
// their positional path when one exists.
func filterFromRecord(component string, rec dump.FilterRecord) IntentFilter {
	f := IntentFilter{
		Component:  component,
		Actions:    append([]string(nil), rec.Actions...),
		Categories: append([]string(nil), rec.Categories...),
		AutoVerify: rec.AutoVerify,
	}
	pathAt := func(i int) string {
		if i < len(rec.Paths) {
			return rec.Paths[i]
		}
		return ""
	}
	if len(rec.Schemes) == 0 {
		for i, h := range rec.Hosts {
			f.Data = append(f.Data, DataSpec{Host: h, Path: pathAt(i)})
		}
		return f
	}
	for _, s := range rec.Schemes {
		if len(rec.Hosts) == 0 {
			f.Data = append(f.Data, DataSpec{Scheme: s})
			continue
		}
		for i, h := range rec.Hosts {
			f.Data = append(f.Data, DataSpec{Scheme: s, Host: h, Path: pathAt(i)})
		}
	}
	return f
}

// collectSchemes gathers custom URI schemes from all filters, keyed by the
// literal scheme string (case-sensitive). Web schemes belong to the app-link
// domain model, not here.
func collectSchemes(components []Component) []Scheme {
	index := map[string]map[string]bool{}
	for _, c := range components {
		for _, f := range c.Filters {
			for _, d := range f.Data {
				if d.Scheme == "" || d.Scheme == "http" || d.Scheme == "https" {
					continue
				}
				if index[d.Scheme] == nil {
					index[d.Scheme] = map[string]bool{}
				}
				index[d.Scheme][c.Name] = true
			}
		}
	}

	schemes := make([]Scheme, 0, len(index))
	for s, owners := range index {
		var names []string
		for n := range owners {
			names = append(names, n)
		}
		sort.Strings(names)
		schemes = append(schemes, Scheme{Scheme: s, Components: names})
	}
	return schemes
}

// collectDomains groups app-link domains by domain+scheme pair. Domains seen
// in autoVerify web filters start Unknown; the verification dump, when
// available, is authoritative for their state.
func collectDomains(components []Component, links *dump.AppLinksResult) []AppLinkDomain {
	index := map[string]int{}
	var domains []AppLinkDomain

	add := func(domain, scheme string) int {
		key := domain + "\x00" + scheme
		if i, ok := index[key]; ok {
			return i
		}
		index[key] = len(domains)
		domains = append(domains, AppLinkDomain{Domain: domain, Scheme: scheme, State: StateUnknown})
		return len(domains) - 1
	}

	for _, c := range components {
		for _, f := range c.Filters {
			if !f.AutoVerify {
				continue
			}
			for _, d := range f.Data {
				if (d.Scheme == "http" || d.Scheme == "https") && d.Host != "" {
					add(d.Host, d.Scheme)
				}
			}
		}
	}

	if links != nil {
		for _, rec := range links.Domains {
			i := -1
			// Prefer the https grouping when the same domain was declared
			// for both web schemes.
			for _, scheme := range []string{"https", "http"} {
				if j, ok := index[rec.Domain+"\x00"+scheme]; ok {
					i = j
					break
				}
			}
			if i < 0 {
				i = add(rec.Domain, "https")
			}
			if rec.Disabled {
				domains[i].State = StateDisabled
				domains[i].RawStatus = rec.RawStatus
				continue
			}
			state, terminal := StateFromToken(rec.RawStatus)
			domains[i].RawStatus = rec.RawStatus
			if terminal {
				domains[i].State = state
			} else {
				domains[i].State = StateUnknown
			}
		}
	}

	return domains
}

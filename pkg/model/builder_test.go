/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: builder_test.go
Description: Tests for the unified snapshot builder. Covers permission merging
invariants, exported status resolution, scheme and domain collection, the
authoritative verification dump, and degradation when sources are missing.
*/

package model

import (
	"testing"

	"github.com/kleascm/akaylee-auditor/pkg/dump"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pkgResult(perms ...dump.PermissionRecord) *dump.PackageDumpResult {
	return &dump.PackageDumpResult{
		Package: dump.PackageRecord{
			Package:    "com.example.app",
			UID:        dump.Int(10123),
			Debuggable: dump.Bool(true),
		},
		Permissions: perms,
	}
}

func TestBuildSnapshotIdentity(t *testing.T) {
	snap, warnings := BuildSnapshot("com.example.app", pkgResult(), nil, nil)

	require.NotNil(t, snap)
	assert.NotEmpty(t, snap.AnalysisID)
	assert.Equal(t, "com.example.app", snap.Application.Package)
	require.True(t, snap.Application.UID.Set)
	assert.Equal(t, int64(10123), snap.Application.UID.Value)

	// Intent and link sources missing: only their warnings, never a failure.
	for _, w := range warnings {
		assert.NotEqual(t, dump.SourcePackageDump, w.Source)
	}
}

func TestBuildSnapshotFreshAnalysisID(t *testing.T) {
	a, _ := BuildSnapshot("com.example.app", pkgResult(), nil, nil)
	b, _ := BuildSnapshot("com.example.app", pkgResult(), nil, nil)
	assert.NotEqual(t, a.AnalysisID, b.AnalysisID)
}

func TestBuildSnapshotMissingPackageDump(t *testing.T) {
	snap, warnings := BuildSnapshot("com.example.app", nil, nil, nil)

	require.NotNil(t, snap)
	assert.Equal(t, "com.example.app", snap.Application.Package)
	assert.False(t, snap.Application.UID.Set)
	assert.False(t, snap.Application.Debuggable.Set)

	found := false
	for _, w := range warnings {
		if w.Kind == dump.WarnIncompleteModel && w.Source == dump.SourcePackageDump {
			found = true
		}
	}
	assert.True(t, found, "missing package dump must produce an incomplete-model warning")
}

func TestBuildSnapshotPermissionMerge(t *testing.T) {
	snap, _ := BuildSnapshot("com.example.app", pkgResult(
		dump.PermissionRecord{Name: "android.permission.CAMERA", Requested: true},
		dump.PermissionRecord{Name: "android.permission.CAMERA", Granted: dump.Bool(true)},
	), nil, nil)

	require.Len(t, snap.Permissions, 1)
	p := snap.Permissions[0]
	assert.True(t, p.Requested)
	assert.True(t, p.Granted)
	assert.Equal(t, ProtectionUnknown, p.Protection)
}

func TestBuildSnapshotGrantedConflictWarns(t *testing.T) {
	_, warnings := BuildSnapshot("com.example.app", pkgResult(
		dump.PermissionRecord{Name: "android.permission.CAMERA", Requested: true, Granted: dump.Bool(true)},
		dump.PermissionRecord{Name: "android.permission.CAMERA", Granted: dump.Bool(false)},
	), nil, nil)

	found := false
	for _, w := range warnings {
		if w.Kind == dump.WarnConflictingEntry {
			found = true
		}
	}
	assert.True(t, found)
}

func TestBuildSnapshotGrantedImpliesRequested(t *testing.T) {
	snap, warnings := BuildSnapshot("com.example.app", pkgResult(
		dump.PermissionRecord{Name: "android.permission.INTERNET", Granted: dump.Bool(true)},
	), nil, nil)

	require.Len(t, snap.Permissions, 1)
	assert.True(t, snap.Permissions[0].Requested, "granted must imply requested")

	found := false
	for _, w := range warnings {
		if w.Kind == dump.WarnConflictingEntry {
			found = true
		}
	}
	assert.True(t, found, "the repair must be reported, not silent")
}

func TestBuildSnapshotExportedResolution(t *testing.T) {
	intents := &dump.IntentDumpResult{
		Components: []dump.ComponentRecord{
			{
				Name: "com.example.app/.MainActivity",
				Kind: "activity",
				Filters: []dump.FilterRecord{
					{Component: "com.example.app/.MainActivity", Actions: []string{"android.intent.action.MAIN"}},
				},
			},
			{
				Name:             "com.example.app/.HiddenActivity",
				Kind:             "activity",
				ExportedExplicit: dump.Bool(false),
				Filters: []dump.FilterRecord{
					{Component: "com.example.app/.HiddenActivity", Actions: []string{"android.intent.action.VIEW"}},
				},
			},
			{Name: "com.example.app/.IdleService", Kind: "service"},
		},
	}

	snap, _ := BuildSnapshot("com.example.app", pkgResult(), intents, nil)

	main := snap.Component("com.example.app/.MainActivity")
	require.NotNil(t, main)
	assert.True(t, main.Exported, "a filter implies exported by platform default")
	assert.False(t, main.ExportedExplicit)

	hidden := snap.Component("com.example.app/.HiddenActivity")
	require.NotNil(t, hidden)
	assert.False(t, hidden.Exported, "an explicit attribute wins over the filter default")
	assert.True(t, hidden.ExportedExplicit)

	idle := snap.Component("com.example.app/.IdleService")
	require.NotNil(t, idle)
	assert.False(t, idle.Exported, "no filter and no attribute means not exported")
}

func TestBuildSnapshotProvidersBecomeComponents(t *testing.T) {
	pkg := pkgResult()
	pkg.Providers = []string{"com.example.app/.FileProvider"}

	snap, _ := BuildSnapshot("com.example.app", pkg, &dump.IntentDumpResult{}, nil)

	p := snap.Component("com.example.app/.FileProvider")
	require.NotNil(t, p)
	assert.Equal(t, KindProvider, p.Kind)
}

func TestBuildSnapshotCustomSchemes(t *testing.T) {
	intents := &dump.IntentDumpResult{
		Components: []dump.ComponentRecord{
			{
				Name: "com.example.app/.DeepLinkActivity",
				Kind: "activity",
				Filters: []dump.FilterRecord{
					{
						Component: "com.example.app/.DeepLinkActivity",
						Actions:   []string{"android.intent.action.VIEW"},
						Schemes:   []string{"fiado", "https"},
						Hosts:     []string{"example.com"},
					},
				},
			},
		},
	}

	snap, _ := BuildSnapshot("com.example.app", pkgResult(), intents, nil)

	// Web schemes belong to the domain model, not the custom scheme list.
	require.Len(t, snap.Schemes, 1)
	assert.Equal(t, "fiado", snap.Schemes[0].Scheme)
	assert.Equal(t, []string{"com.example.app/.DeepLinkActivity"}, snap.Schemes[0].Components)
}

func autoVerifyIntents() *dump.IntentDumpResult {
	return &dump.IntentDumpResult{
		Components: []dump.ComponentRecord{
			{
				Name: "com.example.app/.LinkActivity",
				Kind: "activity",
				Filters: []dump.FilterRecord{
					{
						Component:  "com.example.app/.LinkActivity",
						Actions:    []string{"android.intent.action.VIEW"},
						Schemes:    []string{"https"},
						Hosts:      []string{"example.com"},
						AutoVerify: true,
					},
				},
			},
		},
	}
}

func TestBuildSnapshotDomainsWithoutLinkDump(t *testing.T) {
	snap, _ := BuildSnapshot("com.example.app", pkgResult(), autoVerifyIntents(), nil)

	require.Len(t, snap.Domains, 1)
	assert.Equal(t, "example.com", snap.Domains[0].Domain)
	assert.Equal(t, StateUnknown, snap.Domains[0].State)
}

func TestBuildSnapshotLinkDumpAuthoritative(t *testing.T) {
	links := &dump.AppLinksResult{
		Domains: []dump.DomainRecord{
			{Domain: "example.com", RawStatus: "verified"},
			{Domain: "promo.example.com", RawStatus: "1024"},
		},
	}

	snap, _ := BuildSnapshot("com.example.app", pkgResult(), autoVerifyIntents(), links)

	byDomain := map[string]AppLinkDomain{}
	for _, d := range snap.Domains {
		byDomain[d.Domain] = d
	}

	assert.Equal(t, StateVerified, byDomain["example.com"].State)

	// Domains only present in the verification dump still appear.
	promo, ok := byDomain["promo.example.com"]
	require.True(t, ok)
	assert.Equal(t, StateLegacyAlwaysAsk, promo.State)
	assert.Equal(t, "1024", promo.RawStatus)
}

func TestBuildSnapshotDisabledDomain(t *testing.T) {
	links := &dump.AppLinksResult{
		Domains: []dump.DomainRecord{
			{Domain: "example.com", RawStatus: "verified", Disabled: true},
		},
	}

	snap, _ := BuildSnapshot("com.example.app", pkgResult(), autoVerifyIntents(), links)

	require.Len(t, snap.Domains, 1)
	assert.Equal(t, StateDisabled, snap.Domains[0].State)
}

func TestBuildSnapshotUnrecognizedStatusStaysUnknown(t *testing.T) {
	links := &dump.AppLinksResult{
		Domains: []dump.DomainRecord{
			{Domain: "example.com", RawStatus: "4096"},
		},
	}

	snap, _ := BuildSnapshot("com.example.app", pkgResult(), autoVerifyIntents(), links)

	require.Len(t, snap.Domains, 1)
	assert.Equal(t, StateUnknown, snap.Domains[0].State)
	assert.Equal(t, "4096", snap.Domains[0].RawStatus)
}

func TestBuildSnapshotDeterministicOrdering(t *testing.T) {
	pkg := pkgResult(
		dump.PermissionRecord{Name: "z.permission.LAST", Requested: true},
		dump.PermissionRecord{Name: "a.permission.FIRST", Requested: true},
	)

	snap, _ := BuildSnapshot("com.example.app", pkg, nil, nil)

	require.Len(t, snap.Permissions, 2)
	assert.Equal(t, "a.permission.FIRST", snap.Permissions[0].Name)
	assert.Equal(t, "z.permission.LAST", snap.Permissions[1].Name)
}

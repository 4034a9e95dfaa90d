/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: classifier_test.go
Description: Tests for the risk classifier. Covers debuggable detection,
dangerous permission rules with declared and built-in protection levels,
exported component findings, and domain verification severities.
*/

package risk

import (
	"testing"

	"github.com/kleascm/akaylee-auditor/pkg/dump"
	"github.com/kleascm/akaylee-auditor/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findByKind(findings []Finding, kind Kind) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

func TestClassifyNilSnapshot(t *testing.T) {
	assert.Empty(t, Classify(nil))
}

func TestClassifyDebuggable(t *testing.T) {
	snap := &model.Snapshot{
		Application: model.Application{
			Package:    "com.example.app",
			Debuggable: dump.Bool(true),
		},
	}

	findings := findByKind(Classify(snap), KindDebuggable)
	require.Len(t, findings, 1)
	assert.Equal(t, SeverityHigh, findings[0].Severity)
	assert.Equal(t, "com.example.app", findings[0].Entity)
}

func TestClassifyDebuggableUnknownIsNoFinding(t *testing.T) {
	// An absent flag is not evidence; only a definite true fires.
	snap := &model.Snapshot{
		Application: model.Application{Package: "com.example.app"},
	}
	assert.Empty(t, findByKind(Classify(snap), KindDebuggable))
}

func TestClassifyDangerousPermissionBuiltinTable(t *testing.T) {
	snap := &model.Snapshot{
		Permissions: []model.Permission{
			{Name: "android.permission.CAMERA", Protection: model.ProtectionUnknown, Requested: true, Granted: true},
			{Name: "android.permission.INTERNET", Protection: model.ProtectionUnknown, Requested: true, Granted: true},
		},
	}

	findings := findByKind(Classify(snap), KindDangerousPermission)
	require.Len(t, findings, 1)
	assert.Equal(t, "android.permission.CAMERA", findings[0].Entity)
	assert.Equal(t, SeverityMedium, findings[0].Severity)
}

func TestClassifyDangerousPermissionDeclaredLevelWins(t *testing.T) {
	snap := &model.Snapshot{
		Permissions: []model.Permission{
			// Declared normal overrides the built-in table.
			{Name: "android.permission.CAMERA", Protection: model.ProtectionNormal, Requested: true, Granted: true},
			// Declared dangerous fires even for unlisted names.
			{Name: "com.example.app.permission.SENSOR", Protection: model.ProtectionDangerous, Requested: true, Granted: true},
		},
	}

	findings := findByKind(Classify(snap), KindDangerousPermission)
	require.Len(t, findings, 1)
	assert.Equal(t, "com.example.app.permission.SENSOR", findings[0].Entity)
}

func TestClassifyDangerousRequiresGranted(t *testing.T) {
	snap := &model.Snapshot{
		Permissions: []model.Permission{
			{Name: "android.permission.CAMERA", Protection: model.ProtectionUnknown, Requested: true, Granted: false},
		},
	}
	assert.Empty(t, findByKind(Classify(snap), KindDangerousPermission))
}

func TestClassifyExportedComponents(t *testing.T) {
	snap := &model.Snapshot{
		Components: []model.Component{
			{Name: "com.example.app/.MainActivity", Kind: model.KindActivity, Exported: true},
			{Name: "com.example.app/.InnerService", Kind: model.KindService, Exported: false},
			// Filterless providers are excluded from the intent surface.
			{Name: "com.example.app/.FileProvider", Kind: model.KindProvider, Exported: true},
		},
	}

	findings := findByKind(Classify(snap), KindExportedComponent)
	require.Len(t, findings, 1)
	assert.Equal(t, "com.example.app/.MainActivity", findings[0].Entity)
	assert.Equal(t, SeverityInfo, findings[0].Severity)
}

func TestClassifyDomainStates(t *testing.T) {
	snap := &model.Snapshot{
		Domains: []model.AppLinkDomain{
			{Domain: "ok.example.com", Scheme: "https", State: model.StateVerified},
			{Domain: "legacy.example.com", Scheme: "https", State: model.StateLegacyAlwaysAsk},
			{Domain: "user.example.com", Scheme: "https", State: model.StateApprovedByUser},
			{Domain: "odd.example.com", Scheme: "https", State: model.StateUnknown, RawStatus: "4096"},
		},
	}

	findings := findByKind(Classify(snap), KindDomainUnverified)
	require.Len(t, findings, 3)

	byEntity := map[string]Finding{}
	for _, f := range findings {
		assert.Equal(t, SeverityMedium, f.Severity)
		byEntity[f.Entity] = f
	}

	assert.NotContains(t, byEntity, "ok.example.com")
	assert.Equal(t, "legacy-always-ask", byEntity["legacy.example.com"].Detail)
	assert.Equal(t, "approved-by-user", byEntity["user.example.com"].Detail)
	assert.Contains(t, byEntity["odd.example.com"].Detail, `"4096"`)
}

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: analyzer_test.go
Description: Tests for the analysis orchestrator. Covers the full pass over
fake raw sources, degradation when sources are unavailable or malformed,
argument validation, and the end-to-end scenario fixtures.
*/

package analyzer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/kleascm/akaylee-auditor/pkg/dump"
	"github.com/kleascm/akaylee-auditor/pkg/model"
	"github.com/kleascm/akaylee-auditor/pkg/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource serves canned text per source kind
type fakeSource struct {
	texts   map[dump.SourceKind]string
	errs    map[dump.SourceKind]error
	fetches int64
}

func (f *fakeSource) Fetch(ctx context.Context, appID string, kind dump.SourceKind) (string, bool, error) {
	atomic.AddInt64(&f.fetches, 1)
	if err, ok := f.errs[kind]; ok {
		return "", false, err
	}
	text, ok := f.texts[kind]
	if !ok {
		return "", false, nil
	}
	return text, true, nil
}

const fixturePackageDump = `Package [com.example.app]:
    userId=10123
    versionName=2.0
    versionCode=7
    pkgFlags=[ HAS_CODE DEBUGGABLE ]
    requested permissions:
      android.permission.CAMERA
      android.permission.INTERNET
    runtime permissions:
      android.permission.CAMERA: granted=true
`

const fixtureIntentDump = `Activity Resolver Table:
  Schemes:
      fiado:
        a1b2c3 com.example.app/.DeepLinkActivity filter 4f5e6d
          Action: "android.intent.action.VIEW"
          Category: "android.intent.category.BROWSABLE"
          Scheme: "fiado"
      https:
        a1b2c3 com.example.app/.LinkActivity filter 7a8b9c
          Action: "android.intent.action.VIEW"
          Scheme: "https"
          Authority: "example.com": -1
          AutoVerify=true
`

const fixtureAppLinks = `Domain verification state:
  example.com: 1024
`

func fullSource() *fakeSource {
	return &fakeSource{texts: map[dump.SourceKind]string{
		dump.SourcePackageDump:            fixturePackageDump,
		dump.SourceIntentDump:             fixtureIntentDump,
		dump.SourceDomainVerificationDump: fixtureAppLinks,
	}}
}

func TestAnalyzeFullPass(t *testing.T) {
	a := New(fullSource(), nil)

	result, err := a.Analyze(context.Background(), "com.example.app")
	require.NoError(t, err)
	require.NotNil(t, result.Snapshot)

	snap := result.Snapshot
	assert.Equal(t, "com.example.app", snap.Application.Package)
	require.True(t, snap.Application.Debuggable.Set)
	assert.True(t, snap.Application.Debuggable.Value)

	require.Len(t, snap.Schemes, 1)
	assert.Equal(t, "fiado", snap.Schemes[0].Scheme)

	require.Len(t, snap.Domains, 1)
	assert.Equal(t, "example.com", snap.Domains[0].Domain)
	assert.Equal(t, model.StateLegacyAlwaysAsk, snap.Domains[0].State)
}

func TestAnalyzeFindings(t *testing.T) {
	a := New(fullSource(), nil)

	result, err := a.Analyze(context.Background(), "com.example.app")
	require.NoError(t, err)

	kinds := map[risk.Kind]int{}
	for _, f := range result.Findings {
		kinds[f.Kind]++
	}

	assert.Equal(t, 1, kinds[risk.KindDebuggable])
	assert.Equal(t, 1, kinds[risk.KindDangerousPermission], "granted CAMERA must fire")
	assert.Equal(t, 1, kinds[risk.KindDomainUnverified], "legacy state is not verified")
	assert.GreaterOrEqual(t, kinds[risk.KindExportedComponent], 1)
}

func TestAnalyzeFetchesAllSources(t *testing.T) {
	src := fullSource()
	a := New(src, nil)

	_, err := a.Analyze(context.Background(), "com.example.app")
	require.NoError(t, err)
	assert.Equal(t, int64(3), atomic.LoadInt64(&src.fetches))
}

func TestAnalyzeUnavailablePackageDump(t *testing.T) {
	src := fullSource()
	delete(src.texts, dump.SourcePackageDump)
	a := New(src, nil)

	result, err := a.Analyze(context.Background(), "com.example.app")
	require.NoError(t, err, "a missing source degrades, it never fails the pass")

	assert.False(t, result.Snapshot.Application.UID.Set)

	found := false
	for _, w := range result.Warnings {
		if w.Kind == dump.WarnIncompleteModel && w.Source == dump.SourcePackageDump {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAnalyzeUnavailableSecondarySources(t *testing.T) {
	src := &fakeSource{texts: map[dump.SourceKind]string{
		dump.SourcePackageDump: fixturePackageDump,
	}}
	a := New(src, nil)

	result, err := a.Analyze(context.Background(), "com.example.app")
	require.NoError(t, err)

	sources := map[dump.SourceKind]bool{}
	for _, w := range result.Warnings {
		if w.Kind == dump.WarnIncompleteModel {
			sources[w.Source] = true
		}
	}
	assert.True(t, sources[dump.SourceIntentDump])
	assert.True(t, sources[dump.SourceDomainVerificationDump])
}

func TestAnalyzeMalformedSourceWarns(t *testing.T) {
	src := fullSource()
	src.texts[dump.SourceIntentDump] = "garbage with no resolver tables"
	a := New(src, nil)

	result, err := a.Analyze(context.Background(), "com.example.app")
	require.NoError(t, err)

	found := false
	for _, w := range result.Warnings {
		if w.Kind == dump.WarnMalformedInput && w.Source == dump.SourceIntentDump {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAnalyzeFetchErrorDegrades(t *testing.T) {
	src := fullSource()
	src.errs = map[dump.SourceKind]error{
		dump.SourceDomainVerificationDump: errors.New("device went away"),
	}
	a := New(src, nil)

	result, err := a.Analyze(context.Background(), "com.example.app")
	require.NoError(t, err)

	found := false
	for _, w := range result.Warnings {
		if w.Source == dump.SourceDomainVerificationDump && w.Kind == dump.WarnIncompleteModel {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAnalyzeEmptyAppID(t *testing.T) {
	a := New(fullSource(), nil)
	_, err := a.Analyze(context.Background(), "")
	require.Error(t, err)
}

func TestAnalyzeNilSource(t *testing.T) {
	a := New(nil, nil)
	_, err := a.Analyze(context.Background(), "com.example.app")
	require.Error(t, err)
}

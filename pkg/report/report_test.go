/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: report_test.go
Description: Tests for report generation. Covers mantra collection from
snapshots, all three output formats, and rejection of unknown formats.
*/

package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/kleascm/akaylee-auditor/pkg/analyzer"
	"github.com/kleascm/akaylee-auditor/pkg/dump"
	"github.com/kleascm/akaylee-auditor/pkg/model"
	"github.com/kleascm/akaylee-auditor/pkg/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleResult() *analyzer.Result {
	return &analyzer.Result{
		Snapshot: &model.Snapshot{
			AnalysisID: "0f47ac10-58cc-4372-a567-0e02b2c3d479",
			BuiltAt:    time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
			Application: model.Application{
				Package:     "com.example.app",
				Debuggable:  dump.Bool(true),
				VersionName: dump.Str("2.0"),
				VersionCode: dump.Int(7),
			},
			Components: []model.Component{
				{Name: "com.example.app/.MainActivity", Kind: model.KindActivity, Exported: true},
				{Name: "com.example.app/.FileProvider", Kind: model.KindProvider, Exported: true},
			},
			Schemes: []model.Scheme{
				{Scheme: "fiado", Components: []string{"com.example.app/.MainActivity"}},
			},
			Domains: []model.AppLinkDomain{
				{Domain: "example.com", Scheme: "https", State: model.StateLegacyAlwaysAsk, RawStatus: "1024"},
			},
		},
		Findings: []risk.Finding{
			{Kind: risk.KindDebuggable, Severity: risk.SeverityHigh, Entity: "com.example.app"},
		},
		Warnings: []dump.Warning{
			{Kind: dump.WarnUnparsedLine, Source: dump.SourceIntentDump, Message: "unrecognized entry"},
		},
	}
}

func TestNewReportMantras(t *testing.T) {
	r := New(sampleResult(), true)

	byEntity := map[string]string{}
	for _, m := range r.Mantras {
		byEntity[m.Entity] = m.Command
	}

	assert.Equal(t, "adb shell am start -n 'com.example.app/.MainActivity'",
		byEntity["com.example.app/.MainActivity"])
	assert.Equal(t, "adb shell am start -a android.intent.action.VIEW -d 'fiado://'",
		byEntity["fiado://"])
	assert.Equal(t, "adb shell am start -a android.intent.action.VIEW -d 'https://example.com/'",
		byEntity["example.com"])
	assert.Equal(t, "adb shell am set-debug-app -w 'com.example.app'",
		byEntity["set-debug-app"])

	// The provider is not addressable; it must simply be absent.
	assert.NotContains(t, byEntity, "com.example.app/.FileProvider")
}

func TestNewReportWithoutMantras(t *testing.T) {
	r := New(sampleResult(), false)
	assert.Empty(t, r.Mantras)
}

func TestGenerateJSON(t *testing.T) {
	data, err := Generate(New(sampleResult(), true), FormatJSON)
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "com.example.app", decoded.Package)
	assert.Equal(t, "0f47ac10-58cc-4372-a567-0e02b2c3d479", decoded.AnalysisID)
	require.Len(t, decoded.Findings, 1)
}

func TestGenerateYAML(t *testing.T) {
	data, err := Generate(New(sampleResult(), false), FormatYAML)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, "com.example.app", decoded["package"])
}

func TestGenerateMarkdown(t *testing.T) {
	data, err := Generate(New(sampleResult(), true), FormatMarkdown)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "# Security Audit: com.example.app")
	assert.Contains(t, text, "| high | debuggable |")
	assert.Contains(t, text, "`fiado://`")
	assert.Contains(t, text, "example.com: legacy-always-ask")
	assert.Contains(t, text, "adb shell am set-debug-app -w 'com.example.app'")
}

func TestGenerateUnknownFormat(t *testing.T) {
	_, err := Generate(New(sampleResult(), false), Format("pdf"))
	require.Error(t, err)
}

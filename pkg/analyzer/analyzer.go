/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: analyzer.go
Description: Analysis orchestrator. Issues the three raw text acquisitions
(package dump, domain verification dump, intent dump) concurrently against a
RawSource, joins all of them, runs the format parsers, builds the unified
snapshot, and classifies risks. Acquisition is the only cancellable stage;
once text is in hand, parsing runs to completion locally without retry.
Every call threads the application identifier explicitly; there is no
process-wide current selection.
*/

package analyzer

import (
	"context"
	"fmt"
	"sync"

	"github.com/kleascm/akaylee-auditor/pkg/dump"
	"github.com/kleascm/akaylee-auditor/pkg/logging"
	"github.com/kleascm/akaylee-auditor/pkg/model"
	"github.com/kleascm/akaylee-auditor/pkg/risk"
)

// RawSource supplies unparsed diagnostic text blocks per source kind for an
// application identifier. The core never issues device commands itself.
type RawSource interface {
	Fetch(ctx context.Context, appID string, kind dump.SourceKind) (text string, available bool, err error)
}

// Result is the complete output of one analysis pass
type Result struct {
	Snapshot *model.Snapshot `json:"snapshot"`
	Findings []risk.Finding  `json:"findings"`
	Warnings []dump.Warning  `json:"warnings"`
}

// Analyzer coordinates acquisition, parsing, model building, and risk
// classification for one application at a time. It holds no cross-snapshot
// state, so independent applications can be analyzed in parallel.
type Analyzer struct {
	source RawSource
	logger *logging.Logger
}

// New creates an analyzer over the given raw text source
func New(source RawSource, logger *logging.Logger) *Analyzer {
	return &Analyzer{source: source, logger: logger}
}

// fetched is one acquisition outcome, recorded before any parsing happens
type fetched struct {
	text      string
	available bool
	err       error
}

// Analyze runs one full analysis pass for appID and returns a fresh snapshot
// with its derived findings and accumulated parse warnings. Unavailable or
// malformed sources degrade their category with a warning; only a missing
// identifier or a nil source is an error.
func (a *Analyzer) Analyze(ctx context.Context, appID string) (*Result, error) {
	if appID == "" {
		return nil, fmt.Errorf("analyzer: empty application identifier")
	}
	if a.source == nil {
		return nil, fmt.Errorf("analyzer: no raw text source configured")
	}

	kinds := []dump.SourceKind{
		dump.SourcePackageDump,
		dump.SourceDomainVerificationDump,
		dump.SourceIntentDump,
	}

	// Acquisition is a join, not a race: all three fetches must land (or
	// declare themselves unavailable) before any model is built.
	acquired := make(map[dump.SourceKind]*fetched, len(kinds))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, kind := range kinds {
		wg.Add(1)
		go func(kind dump.SourceKind) {
			defer wg.Done()
			text, available, err := a.source.Fetch(ctx, appID, kind)
			mu.Lock()
			acquired[kind] = &fetched{text: text, available: available, err: err}
			mu.Unlock()
		}(kind)
	}
	wg.Wait()

	var warnings []dump.Warning

	pkgRes := parseSource(appID, dump.SourcePackageDump, acquired, &warnings, func(text string) (any, error) {
		return dump.ParsePackageDump(appID, text)
	})
	linkRes := parseSource(appID, dump.SourceDomainVerificationDump, acquired, &warnings, func(text string) (any, error) {
		return dump.ParseAppLinks(appID, text)
	})
	intentRes := parseSource(appID, dump.SourceIntentDump, acquired, &warnings, func(text string) (any, error) {
		return dump.ParseIntentDump(appID, text)
	})

	var pkgDump *dump.PackageDumpResult
	if pkgRes != nil {
		pkgDump = pkgRes.(*dump.PackageDumpResult)
	}
	var links *dump.AppLinksResult
	if linkRes != nil {
		links = linkRes.(*dump.AppLinksResult)
	}
	var intents *dump.IntentDumpResult
	if intentRes != nil {
		intents = intentRes.(*dump.IntentDumpResult)
	}

	snap, buildWarnings := model.BuildSnapshot(appID, pkgDump, intents, links)
	warnings = append(warnings, buildWarnings...)
	findings := risk.Classify(snap)

	if a.logger != nil {
		a.logger.LogAnalysis(appID, snap.AnalysisID, len(findings), len(warnings))
		for _, w := range warnings {
			a.logger.LogParseWarning(appID, string(w.Source), w.Message)
		}
	}

	return &Result{Snapshot: snap, Findings: findings, Warnings: warnings}, nil
}

// parseSource parses one acquired block, converting unavailability and
// malformed input into warnings instead of failures. Returns nil when the
// category degraded.
func parseSource(appID string, kind dump.SourceKind, acquired map[dump.SourceKind]*fetched, warnings *[]dump.Warning, parse func(string) (any, error)) any {
	f := acquired[kind]
	if f == nil || !f.available || f.err != nil {
		// The package dump's incomplete-model warning is attached by the
		// builder, which owns that contract.
		if kind != dump.SourcePackageDump {
			msg := fmt.Sprintf("%s unavailable for %s", kind, appID)
			if f != nil && f.err != nil {
				msg = fmt.Sprintf("%s unavailable for %s: %v", kind, appID, f.err)
			}
			*warnings = append(*warnings, dump.Warning{
				Kind:    dump.WarnIncompleteModel,
				Source:  kind,
				Message: msg,
			})
		}
		return nil
	}

	res, err := parse(f.text)
	if err != nil {
		*warnings = append(*warnings, dump.Warning{
			Kind:    dump.WarnMalformedInput,
			Source:  kind,
			Message: fmt.Sprintf("parse failed for %s: %v", appID, err),
		})
		return nil
	}
	return res
}

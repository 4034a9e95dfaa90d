/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: source.go
Description: Device-backed raw text source. Maps each diagnostic source kind
to the adb invocation that produces it and reports per-source availability so
the analysis core can degrade gracefully when a device withholds a dump.
*/

package adb

import (
	"context"
	"fmt"
	"strings"

	"github.com/kleascm/akaylee-auditor/pkg/dump"
)

// Source fetches raw diagnostic text blocks from a live device. It
// implements the analyzer's RawSource contract.
type Source struct {
	runner *Runner
}

// NewSource wraps a runner as a raw text source
func NewSource(runner *Runner) *Source {
	return &Source{runner: runner}
}

// Fetch acquires the unparsed text for one source kind. A command failure or
// empty output marks the source unavailable rather than erroring the pass;
// an unknown kind is a caller bug and errors outright.
func (s *Source) Fetch(ctx context.Context, appID string, kind dump.SourceKind) (string, bool, error) {
	var args []string
	switch kind {
	case dump.SourcePackageDump:
		args = []string{"dumpsys", "package", appID}
	case dump.SourceDomainVerificationDump:
		args = []string{"pm", "get-app-links", "--user", "0", appID}
	case dump.SourceIntentDump:
		// The per-package dump carries the resolver tables already filtered
		// to this application, so both text categories come from the same
		// invocation but are parsed independently.
		args = []string{"dumpsys", "package", appID}
	default:
		return "", false, fmt.Errorf("adb: unknown source kind %q", kind)
	}

	out, err := s.runner.Shell(ctx, args...)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, err
		}
		return "", false, nil
	}
	if strings.TrimSpace(out) == "" {
		return "", false, nil
	}
	return out, true, nil
}

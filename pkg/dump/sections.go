/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: sections.go
Description: Line-oriented section state machine shared by all dump parsers.
Walks a raw diagnostic text block through Seeking-Section / In-Section / Done
states, driven by a table of (header pattern, entry handler) pairs. Unrecognized
headers are skipped for forward compatibility; entry lines no handler accepts
are recorded as unparsed instead of dropped.
*/

package dump

import (
	"regexp"
	"strings"
)

// scanState represents the state of the section scanner
type scanState int

const (
	stateSeeking   scanState = iota // Scanning for a recognized section header
	stateInSection                  // Accumulating entries under the current header
	stateDone                       // Input exhausted
)

// lineInfo is one raw line with its leading indentation measured.
// Tabs count as eight columns, matching how dumpsys aligns nested output.
type lineInfo struct {
	Raw    string
	Text   string // Raw with indentation trimmed
	Indent int
}

// entryFunc consumes one entry line inside a section.
// Returning false sends the line to the unparsed list.
type entryFunc func(l lineInfo) bool

// section pairs a header pattern with the handler that opens it.
// open receives the header submatches and returns the entry handler
// for the section body.
type section struct {
	header *regexp.Regexp
	open   func(m []string, header lineInfo) entryFunc
}

// sectionScanner drives the parse of one raw dump block.
// The every hook runs on every line regardless of state, which is how
// free-floating key=value tokens (userId=, versionName=) are captured.
type sectionScanner struct {
	sections []section
	every    func(l lineInfo)

	unparsed []string
}

// Run walks the text through the state machine and returns the lines that
// fell inside a recognized section but matched no entry pattern.
func (s *sectionScanner) Run(text string) []string {
	state := stateSeeking
	var entry entryFunc
	baseline := 0

	for _, l := range splitLines(text) {
		if s.every != nil {
			s.every(l)
		}
		if l.Text == "" {
			continue
		}

		// A recognized header opens a new section from either state.
		if sec, m := s.matchHeader(l); sec != nil {
			entry = sec.open(m, l)
			baseline = l.Indent
			state = stateInSection
			continue
		}

		if state != stateInSection {
			continue
		}

		// Indentation back at or below the header closes the section.
		// The line was already rejected as a header, so it is plain
		// inter-section text and is skipped, not an error.
		if l.Indent <= baseline {
			state = stateSeeking
			entry = nil
			continue
		}

		if entry == nil || !entry(l) {
			s.unparsed = append(s.unparsed, l.Raw)
		}
	}

	return s.unparsed
}

// matchHeader returns the first section whose header pattern matches the line
func (s *sectionScanner) matchHeader(l lineInfo) (*section, []string) {
	for i := range s.sections {
		if m := s.sections[i].header.FindStringSubmatch(l.Text); m != nil {
			return &s.sections[i], m
		}
	}
	return nil, nil
}

// splitLines breaks raw text into lines with measured indentation
func splitLines(text string) []lineInfo {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]lineInfo, 0, len(raw))
	for _, r := range raw {
		indent := 0
	measure:
		for _, ch := range r {
			switch ch {
			case ' ':
				indent++
			case '\t':
				indent += 8
			default:
				break measure
			}
		}
		lines = append(lines, lineInfo{
			Raw:    r,
			Text:   strings.TrimSpace(r),
			Indent: indent,
		})
	}
	return lines
}

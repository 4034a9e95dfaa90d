/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: intent_parser.go
Description: Parser for intent resolver table diagnostic output. Walks the
Activity/Service/Receiver/Provider resolver tables, associates every intent
filter with the nearest preceding component header, and extracts actions,
categories, data schemes, authorities, and path patterns. Filters that appear
before any component header attach to a synthetic unknown component instead
of being discarded.
*/

package dump

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	reResolverTable = regexp.MustCompile(`^(Activity|Service|Receiver|Provider) Resolver Table:$`)
	reComponentLine = regexp.MustCompile(`^[0-9a-f]{6,8} (\S+/\S+?)(?: filter [0-9a-f]+.*)?$`)
	reActionLine    = regexp.MustCompile(`^Action: "([^"]*)"`)
	reCategoryLine  = regexp.MustCompile(`^Category: "([^"]*)"`)
	reSchemeLine    = regexp.MustCompile(`^Scheme: "([^"]*)"`)
	reAuthorityLine = regexp.MustCompile(`^Authority: "([^"]*)"`)
	rePathLine      = regexp.MustCompile(`^Path: "([^"]*)"`)
	reExportedTok   = regexp.MustCompile(`\bexported=(true|false)\b`)
	reAutoVerifyTok = regexp.MustCompile(`\bAutoVerify=(true|false)\b`)
)

// intentParseState tracks the component and filter a dump line attaches to
type intentParseState struct {
	res        *IntentDumpResult
	components map[string]*ComponentRecord
	order      []string // Component keys in first-seen order

	kind       string // Component kind implied by the current resolver table
	current    *ComponentRecord
	currentInd int // Indentation depth of the current component header
	filter     *FilterRecord
}

// ParseIntentDump converts one raw intent resolver block for appID into typed
// component and filter records. A block with no recognizable content fails
// with ErrMalformedInput; the caller degrades that category, not the analysis.
func ParseIntentDump(appID, text string) (*IntentDumpResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty intent dump for %s", ErrMalformedInput, appID)
	}

	st := &intentParseState{
		res:        &IntentDumpResult{},
		components: map[string]*ComponentRecord{},
	}

	scanner := &sectionScanner{
		sections: []section{
			{
				header: reResolverTable,
				open: func(m []string, _ lineInfo) entryFunc {
					st.kind = strings.ToLower(m[1])
					st.closeFilter()
					st.current = nil
					return st.entry
				},
			},
		},
	}

	st.res.Unparsed = scanner.Run(text)
	st.closeFilter()
	for _, key := range st.order {
		st.res.Components = append(st.res.Components, *st.components[key])
	}

	for _, l := range st.res.Unparsed {
		st.res.Warnings = append(st.res.Warnings, Warning{
			Kind:    WarnUnparsedLine,
			Source:  SourceIntentDump,
			Message: "unrecognized entry in resolver table",
			Line:    l,
		})
	}

	if len(st.res.Components) == 0 && len(st.res.Unparsed) == 0 {
		return nil, fmt.Errorf("%w: no resolver tables in intent dump for %s", ErrMalformedInput, appID)
	}
	return st.res, nil
}

// entry consumes one line inside a resolver table
func (st *intentParseState) entry(l lineInfo) bool {
	// Component header: "a1b2c3 com.example.app/.MainActivity filter 4f5e6d"
	if m := reComponentLine.FindStringSubmatch(l.Text); m != nil {
		st.closeFilter()
		st.current = st.component(m[1], st.kind)
		st.currentInd = l.Indent
		if em := reExportedTok.FindStringSubmatch(l.Text); em != nil {
			st.current.ExportedExplicit = Bool(em[1] == "true")
		}
		st.filter = &FilterRecord{Component: st.current.Name}
		return true
	}

	// Grouping labels ("Schemes:", "Non-Data Actions:", "fiado:") are
	// structural, not entries; skip them without warning.
	if strings.HasSuffix(l.Text, ":") && !strings.Contains(l.Text, "\"") {
		return true
	}

	// A line at or above the component header depth no longer belongs to
	// that component; subsequent filters attach to the synthetic unknown
	// component until the next header.
	if st.current != nil && l.Indent <= st.currentInd {
		st.closeFilter()
		st.current = nil
	}

	switch {
	case reActionLine.MatchString(l.Text):
		f := st.openFilter()
		f.Actions = append(f.Actions, reActionLine.FindStringSubmatch(l.Text)[1])
	case reCategoryLine.MatchString(l.Text):
		f := st.openFilter()
		f.Categories = append(f.Categories, reCategoryLine.FindStringSubmatch(l.Text)[1])
	case reSchemeLine.MatchString(l.Text):
		f := st.openFilter()
		f.Schemes = append(f.Schemes, reSchemeLine.FindStringSubmatch(l.Text)[1])
	case reAuthorityLine.MatchString(l.Text):
		f := st.openFilter()
		f.Hosts = append(f.Hosts, reAuthorityLine.FindStringSubmatch(l.Text)[1])
	case rePathLine.MatchString(l.Text):
		f := st.openFilter()
		f.Paths = append(f.Paths, rePathLine.FindStringSubmatch(l.Text)[1])
	case reAutoVerifyTok.MatchString(l.Text):
		f := st.openFilter()
		f.AutoVerify = reAutoVerifyTok.FindStringSubmatch(l.Text)[1] == "true"
	default:
		return false
	}
	return true
}

// component returns the record for name, creating it on first sight
func (st *intentParseState) component(name, kind string) *ComponentRecord {
	key := kind + "\x00" + name
	if c, ok := st.components[key]; ok {
		return c
	}
	c := &ComponentRecord{Name: name, Kind: kind}
	st.components[key] = c
	st.order = append(st.order, key)
	return c
}

// openFilter returns the filter under construction, creating a synthetic
// unattached one when no component header precedes the line.
func (st *intentParseState) openFilter() *FilterRecord {
	if st.filter == nil {
		st.filter = &FilterRecord{}
	}
	return st.filter
}

// closeFilter commits the filter under construction to its owning component
func (st *intentParseState) closeFilter() {
	if st.filter == nil {
		return
	}
	f := *st.filter
	st.filter = nil
	if len(f.Actions) == 0 && len(f.Categories) == 0 && len(f.Schemes) == 0 &&
		len(f.Hosts) == 0 && len(f.Paths) == 0 && !f.AutoVerify {
		return
	}
	key := ""
	if st.current != nil && f.Component == st.current.Name {
		key = st.current.Kind + "\x00" + st.current.Name
	} else if f.Component != "" {
		key = st.kind + "\x00" + f.Component
	}
	if key != "" {
		if c, ok := st.components[key]; ok {
			c.Filters = append(c.Filters, f)
			return
		}
	}
	// No owning component: park the filter on the synthetic unknown record.
	c := st.component("", "unknown")
	c.Filters = append(c.Filters, f)
}

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: applinks_parser.go
Description: Parser for "pm get-app-links" domain verification dump output.
Extracts per-domain verification status tokens from the "Domain verification
state:" section and user-disabled domains from the "Disabled:" selection
section. Status tokens are preserved verbatim; mapping them onto verification
states happens in the model layer, never here.
*/

package dump

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	reDomainState  = regexp.MustCompile(`^([\w.\-]+):\s+(\S.*)$`)
	reBareDomain   = regexp.MustCompile(`^[\w][\w.\-]*\.[\w]+$`)
	reHeaderStates = regexp.MustCompile(`^Domain verification state:$`)
	reHeaderSel    = regexp.MustCompile(`^(Disabled|Enabled):$`)
)

// ParseAppLinks converts one raw "pm get-app-links" block for appID into
// typed domain records. A block with no recognizable content fails with
// ErrMalformedInput; the caller degrades that category, not the analysis.
func ParseAppLinks(appID, text string) (*AppLinksResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty app-links dump for %s", ErrMalformedInput, appID)
	}

	res := &AppLinksResult{}
	index := map[string]int{}
	disabled := map[string]bool{}

	record := func(domain, status string) {
		if i, ok := index[domain]; ok {
			// Later state lines win; the platform prints the current state last.
			if status != "" {
				res.Domains[i].RawStatus = status
			}
			return
		}
		index[domain] = len(res.Domains)
		res.Domains = append(res.Domains, DomainRecord{Domain: domain, RawStatus: status})
	}

	scanner := &sectionScanner{
		sections: []section{
			{
				header: reHeaderStates,
				open: func(_ []string, _ lineInfo) entryFunc {
					return func(l lineInfo) bool {
						m := reDomainState.FindStringSubmatch(l.Text)
						if m == nil {
							return false
						}
						record(m[1], strings.TrimSpace(m[2]))
						return true
					}
				},
			},
			{
				header: reHeaderSel,
				open: func(m []string, _ lineInfo) entryFunc {
					isDisabled := m[1] == "Disabled"
					return func(l lineInfo) bool {
						if !reBareDomain.MatchString(l.Text) {
							return false
						}
						if isDisabled {
							disabled[l.Text] = true
						}
						return true
					}
				},
			},
		},
	}

	res.Unparsed = scanner.Run(text)
	for _, l := range res.Unparsed {
		res.Warnings = append(res.Warnings, Warning{
			Kind:    WarnUnparsedLine,
			Source:  SourceDomainVerificationDump,
			Message: "unrecognized entry in verification dump section",
			Line:    l,
		})
	}

	var disabledOrder []string
	for d := range disabled {
		disabledOrder = append(disabledOrder, d)
	}
	sort.Strings(disabledOrder)
	for _, d := range disabledOrder {
		record(d, "")
	}
	for i := range res.Domains {
		if disabled[res.Domains[i].Domain] {
			res.Domains[i].Disabled = true
		}
	}

	return res, nil
}

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: report.go
Description: Report generation for completed analysis passes. Builds a
serializable report from a snapshot with its findings and warnings, attaches
synthesized commands per finding, and renders JSON, YAML, or Markdown.
Generation is pure; writing is a separate step.
*/

package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kleascm/akaylee-auditor/pkg/analyzer"
	"github.com/kleascm/akaylee-auditor/pkg/dump"
	"github.com/kleascm/akaylee-auditor/pkg/mantra"
	"github.com/kleascm/akaylee-auditor/pkg/model"
	"github.com/kleascm/akaylee-auditor/pkg/risk"
)

// Format selects the rendered output format
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// Mantra pairs one addressable entity with its rendered command
type Mantra struct {
	Entity  string `json:"entity" yaml:"entity"`
	Command string `json:"command" yaml:"command"`
}

// Report is the serializable result of one analysis pass
type Report struct {
	GeneratedAt time.Time       `json:"generated_at" yaml:"generated_at"`
	Package     string          `json:"package" yaml:"package"`
	AnalysisID  string          `json:"analysis_id" yaml:"analysis_id"`
	Snapshot    *model.Snapshot `json:"snapshot" yaml:"snapshot"`
	Findings    []risk.Finding  `json:"findings" yaml:"findings"`
	Warnings    []dump.Warning  `json:"warnings" yaml:"warnings"`
	Mantras     []Mantra        `json:"mantras,omitempty" yaml:"mantras,omitempty"`
}

// New builds a report from one analysis result. When withMantras is set,
// every component, scheme, and domain in the snapshot gets its command
// rendered; entities that cannot be rendered are simply absent.
func New(result *analyzer.Result, withMantras bool) *Report {
	r := &Report{
		GeneratedAt: time.Now().UTC(),
		Package:     result.Snapshot.Application.Package,
		AnalysisID:  result.Snapshot.AnalysisID,
		Snapshot:    result.Snapshot,
		Findings:    result.Findings,
		Warnings:    result.Warnings,
	}
	if withMantras {
		r.Mantras = collectMantras(result.Snapshot)
	}
	return r
}

// collectMantras renders commands for every addressable snapshot entity
func collectMantras(snap *model.Snapshot) []Mantra {
	pkg := snap.Application.Package
	var out []Mantra

	add := func(entity string, ref mantra.EntityRef) {
		cmd, err := mantra.Synthesize(ref)
		if err != nil {
			return
		}
		out = append(out, Mantra{Entity: entity, Command: cmd})
	}

	for _, c := range snap.Components {
		add(c.Name, mantra.EntityRef{
			Kind:          mantra.EntityComponent,
			Package:       pkg,
			Component:     c.Name,
			ComponentKind: c.Kind,
		})
	}
	for _, s := range snap.Schemes {
		add(s.Scheme+"://", mantra.EntityRef{
			Kind:    mantra.EntityScheme,
			Package: pkg,
			Scheme:  s.Scheme,
		})
	}
	for _, d := range snap.Domains {
		add(d.Domain, mantra.EntityRef{
			Kind:    mantra.EntityDomain,
			Package: pkg,
			Domain:  d.Domain,
		})
	}
	if snap.Application.Debuggable.Set && snap.Application.Debuggable.Value {
		add("set-debug-app", mantra.EntityRef{
			Kind:    mantra.EntitySetDebuggable,
			Package: pkg,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Entity < out[j].Entity })
	return out
}

// Generate renders the report in the requested format
func Generate(r *Report, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(r, "", "  ")
	case FormatYAML:
		return yaml.Marshal(r)
	case FormatMarkdown:
		return []byte(renderMarkdown(r)), nil
	}
	return nil, fmt.Errorf("report: unsupported format %q", format)
}

// Write renders the report and writes it to path, or to stdout when path
// is empty
func Write(r *Report, format Format, path string) error {
	data, err := Generate(r, format)
	if err != nil {
		return err
	}
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// renderMarkdown renders a human-readable summary
func renderMarkdown(r *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Security Audit: %s\n\n", r.Package)
	fmt.Fprintf(&b, "- Analysis ID: `%s`\n", r.AnalysisID)
	fmt.Fprintf(&b, "- Generated: %s\n", r.GeneratedAt.Format(time.RFC3339))
	if app := r.Snapshot.Application; app.VersionName.Set {
		fmt.Fprintf(&b, "- Version: %s", app.VersionName.Value)
		if app.VersionCode.Set {
			fmt.Fprintf(&b, " (%d)", app.VersionCode.Value)
		}
		b.WriteString("\n")
	}
	if r.Snapshot.Application.Debuggable.Set {
		fmt.Fprintf(&b, "- Debuggable: %v\n", r.Snapshot.Application.Debuggable.Value)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Findings (%d)\n\n", len(r.Findings))
	if len(r.Findings) == 0 {
		b.WriteString("No findings.\n\n")
	} else {
		b.WriteString("| Severity | Kind | Entity | Detail |\n")
		b.WriteString("|----------|------|--------|--------|\n")
		for _, f := range r.Findings {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				f.Severity, f.Kind, mdEscape(f.Entity), mdEscape(f.Detail))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Components (%d)\n\n", len(r.Snapshot.Components))
	for _, c := range r.Snapshot.Components {
		exported := ""
		if c.Exported {
			exported = " (exported)"
		}
		fmt.Fprintf(&b, "- `%s` %s%s, %d filter(s)\n", c.Name, c.Kind, exported, len(c.Filters))
	}
	b.WriteString("\n")

	if len(r.Snapshot.Schemes) > 0 {
		fmt.Fprintf(&b, "## Custom Schemes (%d)\n\n", len(r.Snapshot.Schemes))
		for _, s := range r.Snapshot.Schemes {
			fmt.Fprintf(&b, "- `%s://` handled by %s\n", s.Scheme, strings.Join(s.Components, ", "))
		}
		b.WriteString("\n")
	}

	if len(r.Snapshot.Domains) > 0 {
		fmt.Fprintf(&b, "## App Link Domains (%d)\n\n", len(r.Snapshot.Domains))
		for _, d := range r.Snapshot.Domains {
			fmt.Fprintf(&b, "- %s: %s\n", d.Domain, d.State)
		}
		b.WriteString("\n")
	}

	if len(r.Mantras) > 0 {
		fmt.Fprintf(&b, "## Mantras (%d)\n\n", len(r.Mantras))
		for _, m := range r.Mantras {
			fmt.Fprintf(&b, "- %s\n\n  ```\n  %s\n  ```\n", mdEscape(m.Entity), m.Command)
		}
		b.WriteString("\n")
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintf(&b, "## Warnings (%d)\n\n", len(r.Warnings))
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- [%s] %s: %s\n", w.Kind, w.Source, mdEscape(w.Message))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// mdEscape neutralizes table-breaking characters in cell content
func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

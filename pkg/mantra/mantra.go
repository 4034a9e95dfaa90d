/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: mantra.go
Description: Command synthesizer for discovered entities. Renders exact,
copy-pasteable adb shell commands ("mantras") for components, custom URI
schemes, app-link domains, and the set-debuggable action. Pure and
deterministic: the same entity always renders the same byte-identical string,
every user-controlled token is shell-quoted, and entities missing required
fields fail with a typed error instead of a guessed placeholder.
*/

package mantra

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kleascm/akaylee-auditor/pkg/model"
)

// ErrUnsynthesizable marks an entity that lacks the fields required for
// command rendering. Callers treat it as "no command available".
var ErrUnsynthesizable = errors.New("mantra: entity cannot be rendered as a command")

// EntityKind selects which command shape Synthesize renders
type EntityKind string

const (
	EntityComponent     EntityKind = "component"
	EntityScheme        EntityKind = "scheme"
	EntityDomain        EntityKind = "domain"
	EntitySetDebuggable EntityKind = "set-debuggable"
)

// EntityRef addresses one entity in a snapshot. Package is always required;
// the remaining fields depend on Kind.
type EntityRef struct {
	Kind          EntityKind          `json:"kind"`
	Package       string              `json:"package"`
	Component     string              `json:"component,omitempty"`
	ComponentKind model.ComponentKind `json:"component_kind,omitempty"`
	Scheme        string              `json:"scheme,omitempty"`
	Domain        string              `json:"domain,omitempty"`
}

// Synthesize renders the exact adb invocation for ref. It is a pure function
// of its input: no side effects, no execution, no device access.
func Synthesize(ref EntityRef) (string, error) {
	if ref.Package == "" {
		return "", fmt.Errorf("%w: missing package", ErrUnsynthesizable)
	}

	switch ref.Kind {
	case EntityComponent:
		return synthesizeComponent(ref)
	case EntityScheme:
		if ref.Scheme == "" {
			return "", fmt.Errorf("%w: missing scheme", ErrUnsynthesizable)
		}
		return fmt.Sprintf("adb shell am start -a android.intent.action.VIEW -d %s",
			shellQuote(ref.Scheme+"://")), nil
	case EntityDomain:
		if ref.Domain == "" {
			return "", fmt.Errorf("%w: missing domain", ErrUnsynthesizable)
		}
		return fmt.Sprintf("adb shell am start -a android.intent.action.VIEW -d %s",
			shellQuote("https://"+ref.Domain+"/")), nil
	case EntitySetDebuggable:
		return fmt.Sprintf("adb shell am set-debug-app -w %s", shellQuote(ref.Package)), nil
	}
	return "", fmt.Errorf("%w: unknown entity kind %q", ErrUnsynthesizable, ref.Kind)
}

// synthesizeComponent renders the start command matching the component kind
func synthesizeComponent(ref EntityRef) (string, error) {
	if ref.Component == "" || ref.Component == model.UnknownComponentName {
		return "", fmt.Errorf("%w: missing component name", ErrUnsynthesizable)
	}
	target := componentTarget(ref.Package, ref.Component)

	switch ref.ComponentKind {
	case model.KindActivity, "":
		return fmt.Sprintf("adb shell am start -n %s", shellQuote(target)), nil
	case model.KindService:
		return fmt.Sprintf("adb shell am startservice -n %s", shellQuote(target)), nil
	case model.KindReceiver:
		return fmt.Sprintf("adb shell am broadcast -n %s", shellQuote(target)), nil
	}
	// Providers are addressed by authority, which a component name alone
	// does not carry.
	return "", fmt.Errorf("%w: %s components have no start command", ErrUnsynthesizable, ref.ComponentKind)
}

// componentTarget renders package/class addressing: names already carrying
// a slash are kept verbatim, relative suffixes and fully qualified classes
// are joined onto the package.
func componentTarget(pkg, component string) string {
	if strings.Contains(component, "/") {
		return component
	}
	return pkg + "/" + component
}

// shellQuote wraps a token in single quotes, escaping embedded quotes so
// the result survives a POSIX shell unchanged
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: mantra.go
Description: Mantra command implementation for the Akaylee Auditor. Renders
the exact adb invocation for one addressable entity without touching a device.
*/

package commands

import (
	"fmt"

	"github.com/kleascm/akaylee-auditor/pkg/mantra"
	"github.com/kleascm/akaylee-auditor/pkg/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunMantra renders the command for the selected entity
func RunMantra(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	pkg := viper.GetString("package")
	ref := mantra.EntityRef{Package: pkg}

	selected := 0
	if v := viper.GetString("mantra_activity"); v != "" {
		ref.Kind = mantra.EntityComponent
		ref.Component = v
		ref.ComponentKind = model.KindActivity
		selected++
	}
	if v := viper.GetString("mantra_service"); v != "" {
		ref.Kind = mantra.EntityComponent
		ref.Component = v
		ref.ComponentKind = model.KindService
		selected++
	}
	if v := viper.GetString("mantra_receiver"); v != "" {
		ref.Kind = mantra.EntityComponent
		ref.Component = v
		ref.ComponentKind = model.KindReceiver
		selected++
	}
	if v := viper.GetString("mantra_scheme"); v != "" {
		ref.Kind = mantra.EntityScheme
		ref.Scheme = v
		selected++
	}
	if v := viper.GetString("mantra_domain"); v != "" {
		ref.Kind = mantra.EntityDomain
		ref.Domain = v
		selected++
	}
	if viper.GetBool("mantra_set_debuggable") {
		ref.Kind = mantra.EntitySetDebuggable
		selected++
	}

	if selected != 1 {
		return fmt.Errorf("exactly one of --activity, --service, --receiver, --scheme, --domain, --set-debuggable is required")
	}

	command, err := mantra.Synthesize(ref)
	if err != nil {
		return fmt.Errorf("cannot synthesize command: %w", err)
	}

	fmt.Println(command)
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/notigate/notigate/internal/core"
	"github.com/notigate/notigate/internal/notify"
	"github.com/spf13/cobra"
)

const setupTimeout = 30 * time.Second

func setupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Interactively configure a notifier and print the config snippet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSetup(cmd.Context())
		},
	}
}

// runSetup walks the user through picking a notifier, filling in its
// module- and rule-level settings, and verifying the credentials. It
// prints a ready-to-paste YAML snippet on success.
func runSetup(ctx context.Context) error {
	mods := core.GetModulesByNamespace("notify")
	if len(mods) == 0 {
		return fmt.Errorf("no notifier modules compiled in")
	}

	options := make([]huh.Option[string], 0, len(mods))
	for _, mod := range mods {
		n, ok := mod.New().(notify.Notifier)
		if !ok {
			continue
		}
		options = append(options, huh.NewOption(n.Identity().Name, string(mod.ID)))
	}

	var moduleID string
	if err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Notifier").
			Options(options...).
			Value(&moduleID),
	)).Run(); err != nil {
		return err
	}

	info, ok := core.GetModule(moduleID)
	if !ok {
		return fmt.Errorf("unknown module %q", moduleID)
	}
	n := info.New().(notify.Notifier)
	if err := provisionNotifier(n); err != nil {
		return err
	}

	moduleSettings := notify.Settings{}
	if err := promptSchema(n.ModuleSchema(), moduleSettings); err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, "Verifying credentials...")
	vctx, cancel := context.WithTimeout(ctx, setupTimeout)
	defer cancel()
	if err := n.ValidateConfig(vctx, moduleSettings); err != nil {
		return fmt.Errorf("credential check failed: %w", err)
	}
	fmt.Fprintln(os.Stderr, "Credentials OK.")

	ruleSettings := notify.Settings{}
	if err := promptSchema(n.RuleSchema(), ruleSettings); err != nil {
		return err
	}

	var ruleName string
	sendTest := true
	if err := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Rule name").
			Placeholder("Billing").
			Validate(notEmpty).
			Value(&ruleName),
		huh.NewConfirm().
			Title("Send a test notification now?").
			Value(&sendTest),
	)).Run(); err != nil {
		return err
	}

	if sendTest {
		dctx, cancel := context.WithTimeout(ctx, setupTimeout)
		defer cancel()
		err := n.Deliver(dctx, notify.Notification{
			Title:   "notigate setup",
			Message: "This is a test notification.",
		}, moduleSettings, ruleSettings)
		if err != nil {
			return fmt.Errorf("test delivery failed: %w", err)
		}
		fmt.Fprintln(os.Stderr, "Test notification delivered.")
	}

	printSnippet(moduleID, ruleName, moduleSettings, ruleSettings)
	return nil
}

// promptSchema asks for a value for every field in the schema, in a
// stable order, storing the answers in dst.
func promptSchema(schema notify.Schema, dst notify.Settings) error {
	for _, key := range schema.Keys() {
		field := schema[key]
		var value string
		input := huh.NewInput().
			Title(field.Label).
			Description(field.Description).
			Value(&value)
		if field.Type == notify.FieldSecret {
			input = input.EchoMode(huh.EchoModePassword)
		}
		if field.Required || field.Type == notify.FieldSecret {
			input = input.Validate(notEmpty)
		}
		if err := huh.NewForm(huh.NewGroup(input)).Run(); err != nil {
			return err
		}
		dst[key] = value
	}
	return nil
}

func notEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("value is required")
	}
	return nil
}

// provisionNotifier runs the lifecycle hooks a freshly constructed module
// needs before use, with default configuration.
func provisionNotifier(n notify.Notifier) error {
	if p, ok := n.(core.Provisioner); ok {
		if err := p.Provision(nil); err != nil {
			return err
		}
	}
	if v, ok := n.(core.Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func printSnippet(moduleID, ruleName string, moduleSettings, ruleSettings notify.Settings) {
	fmt.Println("\nAdd this to your notigate.yaml:")
	fmt.Println()
	fmt.Println("modules:")
	fmt.Printf("  %s: {}\n", moduleID)
	fmt.Println("settings:")
	fmt.Printf("  %s:\n", moduleID)
	for _, key := range settingKeys(moduleSettings) {
		fmt.Printf("    %s: %q\n", key, moduleSettings[key])
	}
	fmt.Println("rules:")
	fmt.Printf("  %s:\n", ruleName)
	fmt.Printf("    notifier: %s\n", moduleID)
	fmt.Println("    settings:")
	for _, key := range settingKeys(ruleSettings) {
		fmt.Printf("      %s: %q\n", key, ruleSettings[key])
	}
}

func settingKeys(s notify.Settings) []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Package main is the entry point for the notigate CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/notigate/notigate/internal/core"
	"github.com/notigate/notigate/internal/notify"
	"github.com/notigate/notigate/pkg/app"
	"github.com/spf13/cobra"

	// Modules register themselves from init().
	_ "github.com/notigate/notigate/internal/gateway"
	_ "github.com/notigate/notigate/modules/notify/telegram"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "notigate",
		Short:         "A self-hosted notification gateway with pluggable notifiers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "Path to configuration file")
	root.PersistentFlags().String("data-dir", "", "Directory for persistent data")
	root.AddCommand(
		versionCmd(),
		serveCmd(),
		checkCmd(),
		sendCmd(),
		historyCmd(),
		setupCmd(),
		serviceCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and compiled notifier modules",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("notigate %s (commit: %s, built: %s)\n", version, commit, date)
			mods := core.GetModulesByNamespace("notify")
			if len(mods) == 0 {
				fmt.Println("\nNo compiled notifiers.")
				return
			}
			fmt.Println("\nCompiled notifiers:")
			for _, mod := range mods {
				fmt.Printf("  %s\n", mod.ID)
			}
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start notigate with all configured modules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Run()
		},
	}
}

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate configuration and notifier credentials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			skipRemote, _ := cmd.Flags().GetBool("local")
			failed := 0
			for _, mod := range core.GetModulesByNamespace("notify") {
				id := string(mod.ID)
				n, ok := a.Dispatcher.Notifier(id)
				if !ok {
					continue
				}
				if skipRemote {
					fmt.Printf("  %s: configured\n", id)
					continue
				}
				if err := n.ValidateConfig(cmd.Context(), a.Dispatcher.ModuleSettings(id)); err != nil {
					fmt.Printf("  %s: FAILED: %v\n", id, err)
					failed++
					continue
				}
				fmt.Printf("  %s: OK\n", id)
			}
			if failed > 0 {
				return fmt.Errorf("%d notifier(s) failed validation", failed)
			}
			fmt.Printf("Configuration OK (%d rules)\n", len(a.Dispatcher.Rules()))
			return nil
		},
	}
	cmd.Flags().Bool("local", false, "Skip remote credential checks")
	return cmd
}

func sendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <rule>",
		Short: "Send a notification through a configured rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			title, _ := cmd.Flags().GetString("title")
			message, _ := cmd.Flags().GetString("message")
			url, _ := cmd.Flags().GetString("url")

			err = a.Dispatcher.Dispatch(cmd.Context(), args[0], notify.Notification{
				Title:   title,
				Message: message,
				URL:     url,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Delivered through rule %q\n", args[0])
			return nil
		},
	}
	cmd.Flags().String("title", "Test notification", "Notification title")
	cmd.Flags().String("message", "Hello from notigate.", "Notification message")
	cmd.Flags().String("url", "", "Notification link")
	return cmd
}

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent delivery attempts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			limit, _ := cmd.Flags().GetInt("limit")
			attempts, err := a.History.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(attempts) == 0 {
				fmt.Println("No delivery attempts recorded.")
				return nil
			}
			for _, at := range attempts {
				status := "ok"
				if !at.OK {
					status = "FAILED: " + at.Error
				}
				fmt.Printf("%s  %-20s %-20s %6s  %s\n",
					at.Time.Format(time.RFC3339),
					at.Rule,
					at.Notifier,
					at.Duration.Round(time.Millisecond),
					status,
				)
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "Maximum number of attempts to show")
	return cmd
}

// buildApp wires an Application from the command's persistent flags.
func buildApp(cmd *cobra.Command) (*app.Application, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	if cfgPath == "" {
		resolved, err := app.ResolveConfigPath()
		if err != nil {
			return nil, err
		}
		cfgPath = resolved
	}
	dataDir, _ := cmd.Flags().GetString("data-dir")

	return app.Build(cmd.Context(), app.Params{
		ConfigPath: cfgPath,
		DataDir:    dataDir,
		LogLevel:   slog.LevelInfo,
	})
}

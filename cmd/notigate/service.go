package main

import (
	"fmt"

	"github.com/kardianos/service"
	"github.com/notigate/notigate/pkg/app"
	"github.com/spf13/cobra"
)

func serviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Run notigate as a system service",
	}
	cmd.AddCommand(
		serviceControlCmd("install", "Install the system service"),
		serviceControlCmd("uninstall", "Remove the system service"),
		serviceControlCmd("start", "Start the installed service"),
		serviceControlCmd("stop", "Stop the installed service"),
		serviceRunCmd(),
		serviceStatusCmd(),
	)
	return cmd
}

func serviceControlCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := newService(cmd, nil)
			if err != nil {
				return err
			}
			if err := service.Control(svc, action); err != nil {
				return err
			}
			fmt.Printf("Service %s: done\n", action)
			return nil
		},
	}
}

func serviceStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the installed service status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := newService(cmd, nil)
			if err != nil {
				return err
			}
			status, err := svc.Status()
			if err != nil {
				return err
			}
			switch status {
			case service.StatusRunning:
				fmt.Println("running")
			case service.StatusStopped:
				fmt.Println("stopped")
			default:
				fmt.Println("unknown")
			}
			return nil
		},
	}
}

func serviceRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run under the service manager (invoked by the service itself)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			prg := &program{cmd: cmd}
			svc, err := newService(cmd, prg)
			if err != nil {
				return err
			}
			return svc.Run()
		},
	}
}

func newService(cmd *cobra.Command, prg service.Interface) (service.Service, error) {
	arguments := []string{"service", "run"}
	if cfgPath, _ := cmd.Flags().GetString("config"); cfgPath != "" {
		arguments = append(arguments, "--config", cfgPath)
	}
	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		arguments = append(arguments, "--data-dir", dataDir)
	}
	return service.New(prg, &service.Config{
		Name:        "notigate",
		DisplayName: "notigate",
		Description: "Self-hosted notification gateway",
		Arguments:   arguments,
	})
}

// program adapts the application to the service manager interface. The
// service manager owns the process lifecycle, so Start must not block.
type program struct {
	cmd *cobra.Command
	a   *app.Application
}

func (p *program) Start(_ service.Service) error {
	a, err := buildApp(p.cmd)
	if err != nil {
		return err
	}
	p.a = a
	if err := a.Start(); err != nil {
		a.Close()
		return err
	}
	return nil
}

func (p *program) Stop(_ service.Service) error {
	if p.a == nil {
		return nil
	}
	p.a.Stop()
	p.a.Close()
	return nil
}

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-toolform/pkg/client"
	"github.com/goliatone/go-toolform/pkg/console"
)

func newServiceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Inspect and control the companion service",
	}

	actions := []struct {
		use, short string
		run        func(*console.Console, context.Context, console.State) (console.State, error)
	}{
		{"status", "Show the service status", (*console.Console).RefreshService},
		{"start", "Start the service", (*console.Console).StartService},
		{"stop", "Stop the service", (*console.Console).StopService},
	}
	for _, action := range actions {
		cmd.AddCommand(&cobra.Command{
			Use:   action.use,
			Short: action.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				con, err := a.console("")
				if err != nil {
					return err
				}
				state, err := action.run(con, cmd.Context(), console.State{})
				if err != nil {
					return failure("service "+action.use, err)
				}
				printStatus(a.out, state.Service)
				if notice := state.Notice; notice != nil {
					if notice.Level == console.NoticeError {
						return fmt.Errorf("service %s: %s", action.use, notice.Text)
					}
					fmt.Fprintln(a.out, notice.Text)
				}
				return nil
			},
		})
	}
	return cmd
}

func printStatus(out io.Writer, status *client.ServiceStatus) {
	if status == nil {
		return
	}
	line := status.Status
	if address := status.Address(); address != "" {
		line += " at " + address
	}
	if status.PID > 0 {
		line += fmt.Sprintf(" (pid %d)", status.PID)
	}
	fmt.Fprintln(out, line)
	if status.Error != "" {
		fmt.Fprintln(out, "error:", status.Error)
	}
}

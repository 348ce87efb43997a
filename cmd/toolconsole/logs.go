package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-toolform/pkg/client"
	"github.com/goliatone/go-toolform/pkg/console"
)

func newLogsCmd(a *app) *cobra.Command {
	var query client.LogQuery
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the backend log tail",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if query.Level != "" && !knownLevel(query.Level) {
				return fmt.Errorf("logs: unknown level %q (want one of %s)", query.Level, strings.Join(client.LogLevels, ", "))
			}
			con, err := a.console("")
			if err != nil {
				return err
			}
			state, err := con.Logs(cmd.Context(), console.State{}, query)
			if err != nil {
				return failure("logs", err)
			}
			_, err = fmt.Fprint(a.out, state.Logs.Data)
			return err
		},
	}
	cmd.Flags().StringVar(&query.Level, "level", client.DefaultLogLevel, "minimum level: "+strings.Join(client.LogLevels, ", "))
	cmd.Flags().IntVar(&query.Limit, "limit", client.DefaultLogLimit, "maximum number of lines")

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Truncate the backend log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			con, err := a.console("")
			if err != nil {
				return err
			}
			state, err := con.ClearLogs(cmd.Context(), console.State{})
			if err != nil {
				return failure("clear logs", err)
			}
			_, err = fmt.Fprintln(a.out, state.Notice.Text)
			return err
		},
	})
	return cmd
}

func knownLevel(level string) bool {
	for _, candidate := range client.LogLevels {
		if strings.EqualFold(candidate, level) {
			return true
		}
	}
	return false
}

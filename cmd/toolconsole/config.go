package main

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-toolform/pkg/console"
	"github.com/goliatone/go-toolform/pkg/result"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read or change the backend configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the backend configuration as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			con, err := a.console("")
			if err != nil {
				return err
			}
			state, err := con.LoadConfig(cmd.Context(), console.State{})
			if err != nil {
				return failure("config get", err)
			}
			text, err := result.Pretty(state.Config)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, text)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set key=value...",
		Short: "Change configuration fields",
		Long:  "Change configuration fields. Keys: " + strings.Join(console.ConfigKeys, ", ") + ".",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values := url.Values{}
			for _, pair := range args {
				key, value, ok := strings.Cut(pair, "=")
				if !ok {
					return fmt.Errorf("config set: %q must be key=value", pair)
				}
				if !slices.Contains(console.ConfigKeys, key) {
					return fmt.Errorf("config set: unknown key %q", key)
				}
				values.Set(key, value)
			}

			con, err := a.console("")
			if err != nil {
				return err
			}
			state, err := con.LoadConfig(cmd.Context(), console.State{})
			if err != nil {
				return failure("config set", err)
			}
			state, err = con.SaveConfig(cmd.Context(), state, console.ConfigFromValues(*state.Config, values))
			if err != nil {
				return failure("config set", err)
			}
			_, err = fmt.Fprintln(a.out, state.Notice.Text)
			return err
		},
	})
	return cmd
}

func newTestAPICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "test-api",
		Short: "Check the backend can reach the upstream system",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			con, err := a.console("")
			if err != nil {
				return err
			}
			state, err := con.TestAPI(cmd.Context(), console.State{})
			if err != nil {
				return failure("test-api", err)
			}
			if !state.LastTest.Success {
				return fmt.Errorf("test-api: %s", state.Notice.Text)
			}
			_, err = fmt.Fprintln(a.out, state.Notice.Text)
			return err
		},
	}
}

package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-toolform/internal/apidoc"
	"github.com/goliatone/go-toolform/pkg/client"
	"github.com/goliatone/go-toolform/pkg/console"
	"github.com/goliatone/go-toolform/pkg/model"
	"github.com/goliatone/go-toolform/pkg/orchestrator"
	"github.com/goliatone/go-toolform/pkg/params"
	"github.com/goliatone/go-toolform/pkg/render"
	"github.com/goliatone/go-toolform/pkg/renderers/tui"
)

func newToolsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List, inspect and run backend tools",
	}
	cmd.AddCommand(
		newToolsListCmd(a),
		newToolsShowCmd(a),
		newToolsFormCmd(a),
		newToolsRunCmd(a),
		newToolsDescribeCmd(a),
	)
	return cmd
}

func newToolsListCmd(a *app) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the tools the backend exposes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			con, err := a.console("")
			if err != nil {
				return err
			}
			state, err := con.LoadTools(cmd.Context(), console.State{})
			if err != nil {
				return failure("list tools", err)
			}
			state = con.FilterTools(state, filter)

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
			for _, tool := range state.VisibleTools() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", tool.ID, tool.DisplayName(), oneLine(tool.Description))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "case-insensitive filter on id, name and description")
	return cmd
}

func newToolsShowCmd(a *app) *cobra.Command {
	var preset string
	cmd := &cobra.Command{
		Use:   "show <tool-id>",
		Short: "Show a tool and its parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			con, err := a.console(preset)
			if err != nil {
				return err
			}
			state, err := con.SelectTool(cmd.Context(), console.State{}, args[0])
			if err != nil {
				return failure("show tool", err)
			}
			details := state.Selection.Details
			form := state.Selection.Form

			fmt.Fprintf(a.out, "ID:          %s\n", details.ID)
			fmt.Fprintf(a.out, "Name:        %s\n", form.Title)
			if details.Version != "" {
				fmt.Fprintf(a.out, "Version:     %s\n", details.Version)
			}
			if details.Description != "" {
				fmt.Fprintf(a.out, "Description: %s\n", oneLine(details.Description))
			}
			fmt.Fprintln(a.out)

			leaves := form.Leaves()
			if len(leaves) == 0 {
				fmt.Fprintln(a.out, render.TranslateWith(nil, con.Locale(), "form.no_parameters"))
				return nil
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PARAMETER\tWIDGET\tTYPE\tDEFAULT")
			for _, leaf := range leaves {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", leaf.Name, leaf.Widget, leaf.TypeTag, leafDefault(leaf))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&preset, "preset", "", "form preset file (JSON or YAML)")
	return cmd
}

func newToolsFormCmd(a *app) *cobra.Command {
	var (
		rendererName string
		output       string
		preset       string
	)
	cmd := &cobra.Command{
		Use:   "form <tool-id>",
		Short: "Render the parameter form of a tool",
		Long:  "Render the parameter form of a tool as HTML (vanilla) or walk it interactively and print the params (tui).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			con, err := a.console(preset)
			if err != nil {
				return err
			}
			opts := render.RenderOptions{}
			if rendererName != tui.Name {
				opts = a.theme()
			}
			out, err := con.Orchestrator().Generate(cmd.Context(), orchestrator.Request{
				ToolID:        args[0],
				Renderer:      rendererName,
				RenderOptions: opts,
			})
			if err != nil {
				return failure("render form", err)
			}
			if output != "" {
				if err := os.WriteFile(output, out, 0o644); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				fmt.Fprintf(a.out, "Form written to %s\n", output)
				return nil
			}
			_, err = fmt.Fprintln(a.out, string(out))
			return err
		},
	}
	cmd.Flags().StringVar(&rendererName, "renderer", "", "renderer: vanilla or tui (defaults to the configured renderer)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().StringVar(&preset, "preset", "", "form preset file (JSON or YAML)")
	return cmd
}

func newToolsRunCmd(a *app) *cobra.Command {
	var (
		paramFlags  []string
		interactive bool
		raw         bool
		preset      string
	)
	cmd := &cobra.Command{
		Use:   "run [tool-id]",
		Short: "Execute a tool",
		Long: "Execute a tool with its default parameters, overridden by --param name=value " +
			"(names as listed by tools show). With --interactive every parameter is prompted.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			con, err := a.console(preset)
			if err != nil {
				return err
			}

			state := console.State{}
			toolID := ""
			if len(args) == 1 {
				toolID = args[0]
			}
			if toolID == "" {
				if !interactive {
					return fmt.Errorf("run: tool id is required unless --interactive is set")
				}
				if state, err = con.LoadTools(ctx, state); err != nil {
					return failure("list tools", err)
				}
				if toolID, err = pickTool(cmd, a.promptDriver(), state.Tools); err != nil {
					return err
				}
			}

			if state, err = con.SelectTool(ctx, state, toolID); err != nil {
				return failure("run", err)
			}
			form := state.Selection.Form

			values := defaultValues(form)
			for _, pair := range paramFlags {
				name, value, ok := strings.Cut(pair, "=")
				if !ok {
					return fmt.Errorf("run: --param %q must be name=value", pair)
				}
				if _, known := form.Lookup(name); !known {
					return fmt.Errorf("run: unknown parameter %q (see tools show %s)", name, toolID)
				}
				values.Set(name, value)
			}

			if interactive {
				payload, collectErr := collect(ctx, a.promptDriver(), form, values, con.Locale())
				if collectErr != nil {
					return collectErr
				}
				state, err = con.ExecuteParams(ctx, state, payload)
			} else {
				state, err = con.Execute(ctx, state, params.FromForm(form, values))
			}
			if err != nil {
				return failure("run", err)
			}

			exec := state.LastExecution
			if raw {
				_, err = fmt.Fprintln(a.out, string(exec.Raw))
				return err
			}
			_, err = fmt.Fprintln(a.out, exec.Display.Text)
			return err
		},
	}
	cmd.Flags().StringArrayVarP(&paramFlags, "param", "p", nil, "parameter override as name=value (repeatable)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "prompt for every parameter")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the response body verbatim")
	cmd.Flags().StringVar(&preset, "preset", "", "form preset file (JSON or YAML)")
	return cmd
}

func newToolsDescribeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "describe [tool-id]",
		Short: "Print an OpenAPI document of the backend, with tool request schemas",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			con, err := a.console("")
			if err != nil {
				return err
			}
			state, err := con.LoadTools(cmd.Context(), console.State{})
			if err != nil {
				return failure("list tools", err)
			}
			tools := state.Tools
			if len(args) == 1 {
				tool, ok := state.Tool(args[0])
				if !ok {
					tool = client.Tool{ID: args[0]}
				}
				tools = []client.Tool{tool}
			}
			doc, err := con.Describe(cmd.Context(), tools)
			if err != nil {
				return err
			}
			data, err := apidoc.Marshal(doc)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, string(data))
			return err
		},
	}
}

func pickTool(cmd *cobra.Command, driver tui.PromptDriver, tools []client.Tool) (string, error) {
	if len(tools) == 0 {
		return "", fmt.Errorf("run: the backend lists no tools")
	}
	options := make([]string, len(tools))
	for i, tool := range tools {
		options[i] = tool.ID
		if tool.Name != "" && tool.Name != tool.ID {
			options[i] += " - " + tool.Name
		}
	}
	index, err := driver.Select(cmd.Context(), tui.SelectConfig{Message: "Tool", Options: options})
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(tools) {
		return "", fmt.Errorf("run: invalid tool selection %d", index)
	}
	return tools[index].ID, nil
}

// collect prompts for every parameter, prefilled from values.
func collect(ctx context.Context, driver tui.PromptDriver, form model.FormModel, values url.Values, locale string) (map[string]any, error) {
	prompts, err := tui.New(tui.WithPromptDriver(driver))
	if err != nil {
		return nil, err
	}
	prefill := make(map[string]string, len(values))
	for name := range values {
		prefill[name] = values.Get(name)
	}
	return prompts.Collect(ctx, form, render.RenderOptions{Values: prefill, Locale: locale})
}

// defaultValues returns the values the form submits untouched, keyed by
// input name.
func defaultValues(form model.FormModel) url.Values {
	values := url.Values{}
	for _, entry := range params.Defaults(form) {
		values.Set(entry.Name, entry.Raw)
	}
	return values
}

func leafDefault(field model.Field) string {
	if field.ValueKind == model.ValueKindBoolean {
		return fmt.Sprint(field.Checked)
	}
	if field.Value != "" {
		return field.Value
	}
	return field.Placeholder
}

func oneLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

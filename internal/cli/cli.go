// Package cli implements the filterbox command line tool.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	filterbox "github.com/goliatone/go-filterbox"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// Fixture is the JSON document both commands read.
type Fixture struct {
	FormData   filterbox.FormData   `json:"form_data"`
	Datasource filterbox.Datasource `json:"datasource"`
	Filters    map[string]any       `json:"filters"`
	Data       map[string]any       `json:"data"`
	Events     []Event              `json:"events"`
}

// Event is one step of a simulation: either a change or an apply.
type Event struct {
	Key   string `json:"key,omitempty"`
	Value any    `json:"value,omitempty"`
	Apply bool   `json:"apply,omitempty"`
}

// NewCLI builds the root command.
func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "filterbox",
		Short:         "Inspect filter box selections and choices",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	rootCmd.PersistentFlags().StringP("input", "i", "-", "Fixture JSON file, - for stdin")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log widget events to stderr")

	rootCmd.AddCommand(newPreviewCmd(), newSimulateCmd())
	return rootCmd
}

func newPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render the options shown for each filter field",
		Args:  cobra.NoArgs,
		RunE:  PreviewHandler,
	}
	cmd.Flags().String("mutator", "", "Expression rewriting each field's choices")
	cmd.Flags().String("engine", "expr", "Mutator engine: expr, cel or js")
	cmd.Flags().Bool("json", false, "Print the view as JSON")
	return cmd
}

func newSimulateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "simulate",
		Short: "Replay change and apply events and print host notifications",
		Args:  cobra.NoArgs,
		RunE:  SimulateHandler,
	}
}

// PreviewHandler prints the reconciled options of every field.
func PreviewHandler(cmd *cobra.Command, _ []string) error {
	fixture, err := readFixture(cmd)
	if err != nil {
		return err
	}
	props, err := filterbox.TransformProps(fixture.FormData, fixture.Datasource, fixture.Filters, fixture.Data)
	if err != nil {
		return err
	}

	opts := append(props.Options(), filterbox.WithLogger(commandLogger(cmd)))
	if expression, _ := cmd.Flags().GetString("mutator"); expression != "" {
		engine, _ := cmd.Flags().GetString("engine")
		evaluator, err := filterbox.NewEvaluator(engine, filterbox.NewProgramCache(), nil)
		if err != nil {
			return err
		}
		mutator, err := filterbox.NewChoiceMutator(expression, evaluator)
		if err != nil {
			return err
		}
		opts = append(opts, filterbox.WithChoiceMutator(mutator))
	}

	widget := filterbox.New(opts...)
	view := widget.View(cmd.Context(), props.Choices)

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	for _, field := range view.Fields {
		fmt.Fprintf(out, "%s (%s) selected: %s\n", field.Label, field.Key, field.Selected)
		renderOptions(out, field.Options)
		fmt.Fprintln(out)
	}
	if view.ShowApply {
		fmt.Fprintf(out, "apply button shown, enabled=%t\n", view.ApplyEnabled)
	}
	return nil
}

// SimulateHandler replays the fixture events against a widget and prints
// every notification the host would receive.
func SimulateHandler(cmd *cobra.Command, _ []string) error {
	fixture, err := readFixture(cmd)
	if err != nil {
		return err
	}
	props, err := filterbox.TransformProps(fixture.FormData, fixture.Datasource, fixture.Filters, nil)
	if err != nil {
		return err
	}

	var (
		data [][]string
		step int
	)
	notifier := filterbox.NotifierFunc(func(_ context.Context, n filterbox.Notification) error {
		data = append(data, []string{
			strconv.Itoa(step),
			n.Key,
			n.Value.String(),
			strconv.FormatBool(n.AppendToURL),
			strconv.FormatBool(n.Refresh),
		})
		return nil
	})

	opts := append(props.Options(),
		filterbox.WithNotifier(notifier),
		filterbox.WithLogger(commandLogger(cmd)),
	)
	widget := filterbox.New(opts...)

	for i, event := range fixture.Events {
		step = i + 1
		if event.Apply {
			widget.Apply(cmd.Context())
			continue
		}
		if event.Key == "" {
			return fmt.Errorf("event %d: key is required", step)
		}
		widget.ChangeFilter(cmd.Context(), event.Key, event.Value)
	}

	out := cmd.OutOrStdout()
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"STEP", "KEY", "VALUE", "APPEND TO URL", "REFRESH"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.AppendBulk(data)
	table.Render()

	fmt.Fprintf(out, "dirty=%t\n", widget.Dirty())
	return nil
}

func renderOptions(w io.Writer, options []filterbox.DisplayOption) {
	data := make([][]string, 0, len(options))
	for _, option := range options {
		synthetic := ""
		if option.Synthetic {
			synthetic = "*"
		}
		data = append(data, []string{option.Value, option.Label, strconv.Itoa(option.Percent) + "%", synthetic})
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"VALUE", "LABEL", "METRIC", "ORPHAN"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.AppendBulk(data)
	table.Render()
}

func readFixture(cmd *cobra.Command) (Fixture, error) {
	path, _ := cmd.Flags().GetString("input")
	var r io.Reader
	if path == "" || path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return Fixture{}, err
		}
		defer f.Close()
		r = f
	}

	var fixture Fixture
	if err := json.NewDecoder(r).Decode(&fixture); err != nil {
		return Fixture{}, fmt.Errorf("decode fixture: %w", err)
	}
	return fixture, nil
}

func commandLogger(cmd *cobra.Command) filterbox.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose {
		return nil
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug})
	return filterbox.SlogLogger(slog.New(handler))
}

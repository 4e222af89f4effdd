package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/clickshot/clickshot/internal/window"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List candidate windows",
	Long: `List all windows the resolver can target.

This command connects to the X11 server and prints every visible window
with its title, class, PID and geometry. Use any part of the title or
class as the --window query.`,
	Example: `  # List windows in table format (default)
  clickshot list

  # List windows in JSON format
  clickshot list --format json`,
	RunE: runList,
}

var listFormat string

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "output format (table or json)")
}

func runList(cmd *cobra.Command, args []string) error {
	resolver, err := window.NewResolver()
	if err != nil {
		return fmt.Errorf("failed to connect to X11: %w", err)
	}
	defer resolver.Close()

	windows, err := resolver.List()
	if err != nil {
		return fmt.Errorf("failed to list windows: %w", err)
	}

	switch listFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(windows)
	case "table":
		return printWindowTable(windows)
	default:
		return fmt.Errorf("unsupported format: %s (use 'table' or 'json')", listFormat)
	}
}

func printWindowTable(windows []*window.Handle) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "TITLE\tCLASS\tPID\tGEOMETRY")
	fmt.Fprintln(w, "-----\t-----\t---\t--------")

	for _, win := range windows {
		title := win.Title
		if len(title) > 48 {
			title = title[:46] + ".."
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%dx%d at (%d, %d)\n",
			title, win.Class, win.PID,
			win.Geometry.Width, win.Geometry.Height,
			win.Geometry.X, win.Geometry.Y)
	}

	return nil
}

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"visitor-registration/internal/visitors"

	"github.com/spf13/cobra"
)

var (
	purgeYes    bool
	exportExcel bool
)

var visitorCmd = &cobra.Command{
	Use:   "visitor",
	Short: "Manage visitors",
	Long:  `List visitors, check them out, export the log, and purge departed entries.`,
}

var visitorListCmd = &cobra.Command{
	Use:   "list [present|departed|all]",
	Short: "List visitors",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		filter := visitors.FilterPresent
		if len(args) > 0 {
			filter = visitors.ParseStatusFilter(args[0])
		}
		listVisitors(ctx, filter)
	},
}

var visitorCheckoutCmd = &cobra.Command{
	Use:   "checkout <id>",
	Short: "Check out a visitor by ID",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid visitor ID: %s\n", args[0])
			os.Exit(1)
		}

		done, err := engine.Checkout(ctx, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Checkout failed: %v\n", err)
			os.Exit(1)
		}
		if !done {
			fmt.Printf("Visitor %d is not present, nothing to do\n", id)
			return
		}
		fmt.Printf("Visitor %d checked out\n", id)
	},
}

var visitorExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the visitor log as CSV",
	Long:  `Export all visitors as CSV. With --excel the file is written as UTF-16 with tab separators for direct opening in Excel.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		records, err := engine.History(ctx, visitors.FilterAll)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list visitors: %v\n", err)
			os.Exit(1)
		}

		out := os.Stdout
		if len(args) > 0 {
			f, err := os.Create(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to create file: %v\n", err)
				os.Exit(1)
			}
			defer f.Close()
			out = f
		}

		if err := visitors.WriteCSV(out, records, exportExcel); err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			os.Exit(1)
		}
		if len(args) > 0 {
			fmt.Printf("Exported %d visitors to %s\n", len(records), args[0])
		}
	},
}

var visitorPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete all departed visitors",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		if !purgeYes {
			fmt.Print("Delete all departed visitors? This cannot be undone. [y/N] ")
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(answer)) != "y" {
				fmt.Println("Aborted")
				return
			}
		}

		deleted, err := engine.PurgeDeparted(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Purge failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Deleted %d departed visitors\n", deleted)
	},
}

func listVisitors(ctx context.Context, filter visitors.StatusFilter) {
	records, err := engine.History(ctx, filter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list visitors: %v\n", err)
		os.Exit(1)
	}

	if len(records) == 0 {
		fmt.Println("No visitors found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCOMPANY\tHOST\tCHECKED IN\tCHECKED OUT\tSTATUS")
	fmt.Fprintln(w, "--\t----\t-------\t----\t----------\t-----------\t------")

	for _, v := range records {
		checkedOut := "-"
		if v.CheckedOutAt != nil {
			checkedOut = v.CheckedOutAt.Local().Format(time.DateTime)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			v.ID, v.Name, v.Company, v.Host,
			v.CheckedInAt.Local().Format(time.DateTime),
			checkedOut, v.Status)
	}

	w.Flush()
	fmt.Printf("\nTotal: %d\n", len(records))
}

func init() {
	visitorPurgeCmd.Flags().BoolVar(&purgeYes, "yes", false, "skip the confirmation prompt")
	visitorExportCmd.Flags().BoolVar(&exportExcel, "excel", false, "write UTF-16 tab separated output for Excel")

	rootCmd.AddCommand(visitorCmd)
	visitorCmd.AddCommand(visitorListCmd)
	visitorCmd.AddCommand(visitorCheckoutCmd)
	visitorCmd.AddCommand(visitorExportCmd)
	visitorCmd.AddCommand(visitorPurgeCmd)
}

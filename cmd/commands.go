package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/adfharrison1/bookreport/pkg/api"
	"github.com/adfharrison1/bookreport/pkg/report"
	"github.com/adfharrison1/bookreport/pkg/seed"
	"github.com/adfharrison1/bookreport/pkg/server"
)

type rootFlags struct {
	configPath string
	only       []string
	list       bool
	readOnly   bool
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "bookreport",
		Short: "Run the bookstore report catalog against a document store",
		Long: `bookreport runs a fixed catalog of queries, updates, aggregations and
index operations against a bookstore collection and prints each result.

Settings come from .bookreport.yaml, .env files and BOOKREPORT_ environment
variables (for example BOOKREPORT_STORE_DRIVER=embedded).`,
		Example: `  bookreport                                  # Run the whole catalog
  bookreport --list                           # Show the catalog
  bookreport --only books-in-genre,top-author # Run selected operations
  bookreport --read-only                      # Skip updates, deletes and indexes
  bookreport seed                             # Load the sample books
  bookreport serve                            # Expose the catalog over HTTP`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.list {
				return listOperations(cmd, report.Catalog())
			}
			return runReports(cmd, flags)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to a config file (default .bookreport.yaml in the working or home directory)")
	cmd.Flags().StringSliceVar(&flags.only, "only", nil, "Comma separated operation names to run")
	cmd.Flags().BoolVar(&flags.list, "list", false, "List the catalog and exit")
	cmd.Flags().BoolVar(&flags.readOnly, "read-only", false, "Skip operations that modify the collection")

	cmd.AddCommand(newSeedCommand(flags), newServeCommand(flags))
	return cmd
}

func runReports(cmd *cobra.Command, flags *rootFlags) error {
	ops, err := report.Select(report.Catalog(), splitList(flags.only), flags.readOnly)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return err
	}

	a, err := setup(cmd.Context(), flags.configPath)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return err
	}
	defer a.close()

	runner := report.NewRunner(
		report.WithOperations(ops),
		report.WithRenderer(report.NewConsoleRenderer(cmd.OutOrStdout(), a.cfg.Report.Color)),
		report.WithLogger(a.logger),
	)
	if _, err := runner.Run(cmd.Context(), a.collection()); err != nil {
		if isInterrupt(err) {
			a.logger.Sugar().Warnf("Run interrupted")
		}
		return err
	}
	return nil
}

func listOperations(cmd *cobra.Command, ops []report.Operation) error {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Name", "Title", "Modifies"})
	for i, op := range ops {
		modifies := ""
		if op.Mutates {
			modifies = "yes"
		}
		t.AppendRow(table.Row{i + 1, op.Name, op.Title, modifies})
	}
	t.Render()
	return nil
}

func newSeedCommand(root *rootFlags) *cobra.Command {
	var appendDocs bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the sample bookstore inventory",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd.Context(), root.configPath)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}
			defer a.close()

			n, err := seed.Seed(cmd.Context(), a.collection(), seed.Options{Append: appendDocs})
			if err != nil {
				a.logger.Sugar().Errorf("Seeding failed: %v", err)
				return err
			}
			a.logger.Sugar().Infof("Inserted %d books into '%s'", n, a.cfg.Store.Collection)
			return nil
		},
	}
	cmd.Flags().BoolVar(&appendDocs, "append", false, "Keep existing documents instead of dropping the collection")
	return cmd
}

func newServeCommand(root *rootFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the report catalog over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd.Context(), root.configPath)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}
			defer a.close()

			if addr == "" {
				addr = a.cfg.HTTP.Addr
			}
			handler := api.NewHandler(a.store, a.cfg.Store.Collection, a.logger)
			srv := server.NewServer(handler, a.logger)
			if err := srv.ListenAndServe(cmd.Context(), addr); err != nil {
				a.logger.Sugar().Errorf("Server error: %v", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from http.addr)")
	return cmd
}

// Package main provides a command line front end for cable extraction.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/a3tai/mcp-cable-extractor/internal/config"
	"github.com/a3tai/mcp-cable-extractor/internal/export"
	"github.com/a3tai/mcp-cable-extractor/internal/logger"
	"github.com/a3tai/mcp-cable-extractor/internal/pdf"
	pdferrors "github.com/a3tai/mcp-cable-extractor/internal/pdf/errors"
)

type cli struct {
	out, errOut io.Writer

	pretty bool
	xlsx   string
	sheet  string
	jobs   int

	svc     *pdf.Service
	closeFn func()
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out, errOut: errOut}

	rootCmd := &cobra.Command{
		Use:   "cable-extract",
		Short: "Extract cable lists and cable labels from PDF files",
		Long: `cable-extract reads cable lists (Kabellisten) and cable labels on site
plans from PDF files and prints them as JSON. Results can be appended to an
Excel workbook with --xlsx.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.closeFn != nil {
				c.closeFn()
			}
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	flags := rootCmd.PersistentFlags()
	config.BindFlagSet(flags)
	flags.BoolVar(&c.pretty, "pretty", false, "Pretty-print JSON output")
	flags.StringVar(&c.xlsx, "xlsx", "", "Append the result to this Excel workbook")
	flags.StringVar(&c.sheet, "sheet", export.DefaultSheet, "Sheet name used with --xlsx")

	extractCmd := &cobra.Command{
		Use:   "extract <file.pdf>",
		Short: "Extract one PDF",
		Args:  cobra.ExactArgs(1),
		RunE:  c.runExtract,
	}

	batchCmd := &cobra.Command{
		Use:   "batch <file.pdf|directory>...",
		Short: "Extract several PDFs and combine the results",
		Args:  cobra.MinimumNArgs(1),
		RunE:  c.runBatch,
	}
	batchCmd.Flags().IntVarP(&c.jobs, "jobs", "j", pdf.DefaultBatchJobs, "Number of files extracted at once")

	rootCmd.AddCommand(extractCmd, batchCmd)
	return rootCmd
}

func (c *cli) setup(*cobra.Command, []string) error {
	cfg, err := config.LoadExtraction()
	if err != nil {
		return err
	}
	logger.Setup(cfg.LogLevel, c.errOut)

	c.svc, c.closeFn, err = pdf.NewFromConfig(cfg)
	return err
}

func (c *cli) runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if c.xlsx != "" {
		res, err := c.svc.CableExportXLSX(ctx, pdf.CableExportXLSXRequest{
			Path:   args[0],
			Output: c.xlsx,
			Sheet:  c.sheet,
		})
		if err != nil {
			return err
		}
		c.report(res.Report)
		return c.writeJSON(res.Extraction)
	}

	res, err := c.svc.CableExtractFile(ctx, pdf.CableExtractFileRequest{Path: args[0]})
	if err != nil {
		return err
	}
	return c.writeJSON(res)
}

func (c *cli) runBatch(cmd *cobra.Command, args []string) error {
	paths, err := c.svc.Search().ExpandPaths(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no PDF files found")
	}

	res, err := c.svc.CableExtractBatch(cmd.Context(), pdf.CableExtractBatchRequest{Paths: paths}, c.jobs)
	if err != nil {
		return err
	}
	for _, fe := range res.Errors {
		fmt.Fprintf(c.errOut, "%s: %s\n", fe.Path, fe.Error)
	}

	if c.xlsx != "" {
		if tab := res.TabularResult(); tab != nil {
			report, err := export.WriteResult(c.xlsx, c.sheet, tab)
			if err != nil {
				return fmt.Errorf("failed to export workbook: %w", err)
			}
			c.report(report)
		}
		if sch := res.SchematicResult(); sch != nil {
			report, err := export.WriteResult(c.xlsx, c.sheet, sch)
			if err != nil {
				return fmt.Errorf("failed to export workbook: %w", err)
			}
			c.report(report)
		}
	}
	return c.writeJSON(res)
}

func (c *cli) report(r *export.Report) {
	fmt.Fprintf(c.errOut, "wrote %d row(s) to %s (%s, from row %d)\n", r.RowsWritten, r.Path, r.Sheet, r.StartRow)
}

func (c *cli) writeJSON(v any) error {
	var (
		data []byte
		err  error
	)
	if c.pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	_, err = fmt.Fprintln(c.out, string(data))
	return err
}

// errorMessage is what the user sees for err
func errorMessage(err error) string {
	if errors.Is(err, pdferrors.ErrNoProcessableData) {
		return pdferrors.NoProcessableDataMessage
	}
	return err.Error()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", errorMessage(err))
		stop()
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/cardshelf/internal/app"
	"github.com/MrSnakeDoc/cardshelf/internal/auth"
	"github.com/MrSnakeDoc/cardshelf/internal/catalog"
	"github.com/MrSnakeDoc/cardshelf/internal/config"
	"github.com/MrSnakeDoc/cardshelf/internal/database"
	"github.com/MrSnakeDoc/cardshelf/internal/export"
	"github.com/MrSnakeDoc/cardshelf/internal/logger"
	"github.com/MrSnakeDoc/cardshelf/internal/store/sqldb"
)

var (
	exportOutput string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the visible cards as CSV or a text table",
	Long: `Write every visible card, in listing order.

CSV output goes to edutech_cards_YYYYMMDD.csv unless --output is given.
--format text prints aligned columns and defaults to stdout.
Use --output - to write to stdout. Local database access stands in for the
admin credential.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file, - for stdout")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "output format: csv or text")
}

// operator grants every operation to whoever can reach the database directly.
var operator = auth.AuthorizerFunc(func(context.Context, string, auth.Operation) bool { return true })

func runExport(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = loggerClient.Sync() }()

	if exportFormat != "csv" && exportFormat != "text" {
		return fmt.Errorf("unknown export format %q", exportFormat)
	}

	ctx := background(cmd)
	db, err := app.OpenDatabase(ctx, cfg, loggerClient)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	svc := catalog.New(sqldb.NewStore(db, loggerClient), operator, loggerClient, catalog.Options{})
	table, err := svc.ExportVisibleCards(ctx, "")
	if err != nil {
		return err
	}
	if table.Empty() {
		return errors.New("no cards to export")
	}

	path := exportOutput
	switch {
	case path != "":
	case exportFormat == "text":
		path = "-"
	default:
		path = export.Filename(time.Now())
	}
	if err := writeTable(cmd.OutOrStdout(), path, exportFormat, table); err != nil {
		return err
	}
	if path != "-" {
		loggerClient.Info("✅ cards exported",
			logger.String("file", path),
			logger.Int("rows", len(table.Rows)))
	}
	return nil
}

func writeTable(stdout io.Writer, path, format string, table export.Table) (err error) {
	write := table.WriteCSV
	if format == "text" {
		write = table.WriteText
	}
	if path == "-" {
		return write(stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Zachkp/folio/internal/portfolio"
	"github.com/Zachkp/folio/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the stored portfolio document as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.NewSQLiteStore(cfg.Database.Path, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		return exportData(cmd.Context(), db, cmd.OutOrStdout())
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the stored portfolio with a JSON document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		db, err := store.NewSQLiteStore(cfg.Database.Path, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		return importData(cmd.Context(), db, f, logger)
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the stored portfolio so the next start uses the defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.NewSQLiteStore(cfg.Database.Path, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Delete(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "portfolio data removed")
		return nil
	},
}

var errNoData = errors.New("no stored portfolio data")

func exportData(ctx context.Context, st store.Adapter, w io.Writer) error {
	d, ok := st.Load(ctx)
	if !ok {
		return errNoData
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d.Clone())
}

// importData loads the current portfolio and replaces it wholesale, so id
// counters never rewind below ids that were handed out before.
func importData(ctx context.Context, st store.Adapter, r io.Reader, log *zap.Logger) error {
	var d portfolio.Data
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return fmt.Errorf("decoding portfolio document: %w", err)
	}

	p, err := portfolio.Open(ctx, st, portfolio.WithLogger(log), portfolio.WithResetExperience(false))
	if err != nil {
		return err
	}
	if err := p.Replace(ctx, d); err != nil {
		return fmt.Errorf("saving imported portfolio: %w", err)
	}
	log.Info("portfolio imported",
		zap.Int("skills", len(d.Skills)),
		zap.Int("achievements", len(d.Achievements)),
		zap.Int("experience", len(d.Experience)))
	return nil
}

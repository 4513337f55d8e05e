package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/damon-houk/payment-query-service/internal/bootstrap"
	"github.com/damon-houk/payment-query-service/internal/config"
)

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed [file]",
		Short: "Load payment records into the configured store",
		Long: `Append payment records to the configured store.

The file holds a JSON array of payment records. Without a file the
bundled sample dataset is loaded.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSeed,
	}

	cmd.Flags().Bool("if-empty", false, "Only seed when the store holds no records")

	return cmd
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	source := config.SeedSample
	if len(args) == 1 {
		source = args[0]
	}

	store, err := bootstrap.OpenStore(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	if store.Writer == nil {
		return errors.New("the " + cfg.Store.Driver + " driver is read-only")
	}

	ifEmpty, _ := cmd.Flags().GetBool("if-empty")
	if ifEmpty {
		n, err := bootstrap.SeedIfEmpty(cmd.Context(), store, source)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d records into the %s store\n", n, cfg.Store.Driver)
		return nil
	}

	records, err := bootstrap.LoadSeed(source)
	if err != nil {
		return err
	}
	if err := store.Writer.Append(cmd.Context(), records...); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d records into the %s store\n", len(records), cfg.Store.Driver)
	return nil
}

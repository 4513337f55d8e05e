package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/damon-houk/payment-query-service/internal/bootstrap"
	"github.com/damon-houk/payment-query-service/internal/domain/query"
	"github.com/damon-houk/payment-query-service/internal/infrastructure/handler"
)

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query [query-string]",
		Short: "Run one payment query and print the page as JSON",
		Long: `Run one payment query against the configured store.

Parameters use the HTTP names and may be given as a query string,
as repeated --param flags, or both:

  paymentsctl query 'pageId=1&status=5'
  paymentsctl query -p pageId=2 -p merchantDocuments=A -p merchantDocuments=B`,
		Args: cobra.MaximumNArgs(1),
		RunE: runQuery,
	}

	cmd.Flags().StringArrayP("param", "p", nil, "Query parameter as name=value (repeatable)")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
	params, err := queryParams(cmd, args)
	if err != nil {
		return err
	}

	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	q, err := query.Parse(params, loc)
	if err != nil {
		return err
	}

	app, err := bootstrap.New(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	page, err := app.Service.ListPayments(cmd.Context(), q)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(handler.PaymentPageResponse{
		ActualPage:   page.ActualPage,
		Payments:     page.Items,
		TotalRecords: page.TotalRecords,
		PerPage:      page.PerPage,
		LastPage:     page.LastPage,
	})
}

func queryParams(cmd *cobra.Command, args []string) (url.Values, error) {
	params := url.Values{}
	if len(args) == 1 {
		parsed, err := url.ParseQuery(strings.TrimPrefix(args[0], "?"))
		if err != nil {
			return nil, fmt.Errorf("invalid query string: %w", err)
		}
		params = parsed
	}

	pairs, _ := cmd.Flags().GetStringArray("param")
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --param %q: want name=value", pair)
		}
		params.Add(name, value)
	}

	return params, nil
}

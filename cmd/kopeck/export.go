package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/kopeck/internal/cli"
	"github.com/Veraticus/kopeck/internal/common"
	"github.com/Veraticus/kopeck/internal/config"
	"github.com/Veraticus/kopeck/internal/ledger"
	"github.com/Veraticus/kopeck/internal/model"
	"github.com/Veraticus/kopeck/internal/sheets"
)

func exportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export reports to external services",
	}

	cmd.AddCommand(exportSheetsCmd(a))
	cmd.AddCommand(exportAuthCmd(a))

	return cmd
}

func exportSheetsCmd(a *app) *cobra.Command {
	var maxTransactions int

	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Write a period report to Google Sheets",
		Long: `Write balances, the period summary, top expense categories, budget
progress, and the period's transactions to a Google spreadsheet.

Credentials come from the sheets section of the config file or from
GOOGLE_SHEETS_* environment variables. Run 'kopeck export auth' once to
authorize OAuth access.`,
		Example: `  # Export the current month
  kopeck export sheets

  # Export a quarter
  kopeck export sheets --from-date 2024-01-01 --to-date 2024-03-31`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, end, err := reportWindow(cmd)
			if err != nil {
				return err
			}

			sheetsCfg, err := config.LoadSheetsConfig(a.v)
			if err != nil {
				return common.NewUserError(fmt.Sprintf("Google Sheets is not configured: %v", err), err)
			}

			ctx := cmd.Context()
			return a.withLedger(ctx, func(svc *ledger.Service) error {
				report, err := sheets.BuildReport(ctx, svc, start, end, a.cfg.TopLimit, maxTransactions)
				if err != nil {
					return err
				}

				writer, err := sheets.NewWriter(ctx, *sheetsCfg, slog.Default())
				if err != nil {
					return common.NewUserError("failed to connect to Google Sheets", err)
				}

				url, err := writer.Write(ctx, report)
				if err != nil {
					return fmt.Errorf("failed to write report: %w", err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %s – %s (%d transactions)",
					start.Format(model.DateLayout), end.Format(model.DateLayout), len(report.Transactions))))
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(url))
				return nil
			})
		},
	}

	addWindowFlags(cmd)
	cmd.Flags().IntVar(&maxTransactions, "max-transactions", sheets.DefaultMaxTransactions, "maximum transaction rows to export")

	return cmd
}

func exportAuthCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize Google Sheets access with OAuth",
		Long: `Open the Google consent flow and store the resulting token in
sheets.token_file. The browser redirects to a local callback server.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sheetsCfg, err := config.LoadSheetsConfig(a.v)
			if err != nil {
				return common.NewUserError(fmt.Sprintf("Google Sheets is not configured: %v", err), err)
			}
			if sheetsCfg.ClientID == "" || sheetsCfg.ClientSecret == "" {
				return common.NewUserError("sheets.client_id and sheets.client_secret are required for OAuth", nil)
			}

			out := cmd.OutOrStdout()
			_, err = sheets.AuthenticateOAuth2Interactive(cmd.Context(), sheets.OAuth2Config{
				ClientID:     sheetsCfg.ClientID,
				ClientSecret: sheetsCfg.ClientSecret,
				TokenFile:    sheetsCfg.TokenFile,
				CallbackAddr: addr,
				AuthURL: func(url string) {
					fmt.Fprintln(out, cli.FormatInfo("Open this URL to authorize kopeck:"))
					fmt.Fprintln(out, url)
				},
			})
			if err != nil {
				return fmt.Errorf("authorization failed: %w", err)
			}

			fmt.Fprintln(out, cli.FormatSuccess("Token saved to "+sheetsCfg.TokenFile))
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "callback-addr", sheets.DefaultCallbackAddr, "address of the local OAuth callback server")

	return cmd
}

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/kopeck/internal/cli"
	"github.com/Veraticus/kopeck/internal/ledger"
	"github.com/Veraticus/kopeck/internal/model"
)

func accountsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account"},
		Short:   "Manage accounts",
		Long: `Create, list, and (de)activate the places where your money lives.

Balances are always computed from transactions, so an account has no
opening balance; record one as income instead.`,
		Example: `  # Add a debit card
  kopeck accounts add "Карта" --type bank

  # Hide an old account from balances
  kopeck accounts deactivate 3`,
	}

	cmd.AddCommand(addAccountCmd(a))
	cmd.AddCommand(listAccountsCmd(a))
	cmd.AddCommand(setAccountActiveCmd(a, false))
	cmd.AddCommand(setAccountActiveCmd(a, true))

	return cmd
}

func addAccountCmd(a *app) *cobra.Command {
	var accountType string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd.Context(), func(svc *ledger.Service) error {
				account, err := svc.CreateAccount(cmd.Context(), args[0], model.AccountType(accountType))
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
					fmt.Sprintf("Account %s (#%d, %s)", account.Name, account.ID, account.Type)))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&accountType, "type", "t", string(model.AccountTypeBank), "account type (cash, bank, savings)")

	return cmd
}

func listAccountsCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLedger(cmd.Context(), func(svc *ledger.Service) error {
				list := svc.ListActiveAccounts
				if all {
					list = svc.ListAccounts
				}
				accounts, err := list(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(accounts) == 0 {
					fmt.Fprintln(out, cli.SubtitleStyle.Render("No accounts found."))
					return nil
				}

				table := cli.NewTable(out, "ID", "NAME", "TYPE", "ACTIVE")
				for _, acc := range accounts {
					table.Row(
						strconv.FormatInt(acc.ID, 10),
						acc.Name,
						string(acc.Type),
						strconv.FormatBool(acc.IsActive),
					)
				}
				return table.Flush()
			})
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "include inactive accounts")

	return cmd
}

func setAccountActiveCmd(a *app, active bool) *cobra.Command {
	use, short, verb := "deactivate <id>", "Hide an account from balances", "Deactivated"
	if active {
		use, short, verb = "activate <id>", "Restore a deactivated account", "Activated"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return a.withLedger(cmd.Context(), func(svc *ledger.Service) error {
				set := svc.DeactivateAccount
				if active {
					set = svc.ActivateAccount
				}
				found, err := set(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !found {
					return notFound("account", id)
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s account #%d", verb, id)))
				return nil
			})
		},
	}
}

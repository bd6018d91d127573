package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/kopeck/internal/cli"
	"github.com/Veraticus/kopeck/internal/ledger"
	"github.com/Veraticus/kopeck/internal/model"
	"github.com/Veraticus/kopeck/internal/service"
)

func txCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "Record and manage transactions",
		Long: `Record expenses, income, transfers, and savings flows, and edit or
delete them later.

Amounts are written in rubles with an optional kopeck part, e.g. "1 500,50".
Dates default to today.`,
		Example: `  # Lunch paid by card
  kopeck tx expense --account 2 --category 5 --amount 450 --note "Обед"

  # Move money to savings for a vacation
  kopeck tx savings --from 2 --to 3 --category 8 --amount "10 000"

  # Last month's food spending
  kopeck tx list --category 5 --from-date 2024-01-01 --to-date 2024-01-31`,
	}

	cmd.AddCommand(addFlowCmd(a, model.TransactionTypeExpense))
	cmd.AddCommand(addFlowCmd(a, model.TransactionTypeIncome))
	cmd.AddCommand(addTransferCmd(a))
	cmd.AddCommand(addSavingsCmd(a))
	cmd.AddCommand(editTxCmd(a))
	cmd.AddCommand(deleteTxCmd(a))
	cmd.AddCommand(listTxCmd(a))

	return cmd
}

func addFlowCmd(a *app, kind model.TransactionType) *cobra.Command {
	var accountID, categoryID int64
	var amountText, note string

	cmd := &cobra.Command{
		Use:   string(kind),
		Short: fmt.Sprintf("Record an %s", kind),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			amount, err := parseAmount(amountText)
			if err != nil {
				return err
			}
			date, err := parseDateFlag(cmd, "date")
			if err != nil {
				return err
			}

			return a.withLedger(cmd.Context(), func(svc *ledger.Service) error {
				add := svc.AddExpense
				if kind == model.TransactionTypeIncome {
					add = svc.AddIncome
				}
				txn, err := add(cmd.Context(), date, accountID, categoryID, amount, note)
				if err != nil {
					return err
				}
				return printRecorded(cmd, txn)
			})
		},
	}

	cmd.Flags().Int64Var(&accountID, "account", 0, "account id")
	cmd.Flags().Int64Var(&categoryID, "category", 0, "category id")
	cmd.Flags().StringVar(&amountText, "amount", "", "amount in rubles")
	cmd.Flags().StringVar(&note, "note", "", "free-form note")
	cmd.Flags().String("date", "", "date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func addTransferCmd(a *app) *cobra.Command {
	var fromID, toID int64
	var amountText, note string

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move money between accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			amount, err := parseAmount(amountText)
			if err != nil {
				return err
			}
			date, err := parseDateFlag(cmd, "date")
			if err != nil {
				return err
			}

			return a.withLedger(cmd.Context(), func(svc *ledger.Service) error {
				txn, err := svc.AddTransfer(cmd.Context(), date, fromID, toID, amount, note, optionalID(cmd, "category"))
				if err != nil {
					return err
				}
				return printRecorded(cmd, txn)
			})
		},
	}

	cmd.Flags().Int64Var(&fromID, "from", 0, "source account id")
	cmd.Flags().Int64Var(&toID, "to", 0, "destination account id")
	cmd.Flags().StringVar(&amountText, "amount", "", "amount in rubles")
	cmd.Flags().StringVar(&note, "note", "", "free-form note")
	cmd.Flags().String("date", "", "date (YYYY-MM-DD)")
	cmd.Flags().Int64("category", 0, "optional category id")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func addSavingsCmd(a *app) *cobra.Command {
	var fromID, toID, categoryID int64
	var amountText, note string

	cmd := &cobra.Command{
		Use:   "savings",
		Short: "Move money into savings toward a goal",
		Long: `Record a transfer tagged with a savings category. The two accounts must
differ and the category must be a savings category.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			amount, err := parseAmount(amountText)
			if err != nil {
				return err
			}
			date, err := parseDateFlag(cmd, "date")
			if err != nil {
				return err
			}

			return a.withLedger(cmd.Context(), func(svc *ledger.Service) error {
				txn, err := svc.AddSavingsFlow(cmd.Context(), date, fromID, toID, categoryID, amount, note)
				if err != nil {
					return err
				}
				return printRecorded(cmd, txn)
			})
		},
	}

	cmd.Flags().Int64Var(&fromID, "from", 0, "source account id")
	cmd.Flags().Int64Var(&toID, "to", 0, "savings account id")
	cmd.Flags().Int64Var(&categoryID, "category", 0, "savings category id")
	cmd.Flags().StringVar(&amountText, "amount", "", "amount in rubles")
	cmd.Flags().StringVar(&note, "note", "", "note (default: "+ledger.DefaultSavingsNote+")")
	cmd.Flags().String("date", "", "date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func editTxCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a transaction",
		Long: `Change the date, amount, note, accounts, or category of a transaction.
Only the flags you pass are changed. The transaction keeps its type.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return a.withLedger(cmd.Context(), func(svc *ledger.Service) error {
				current, err := svc.GetTransaction(cmd.Context(), id)
				if err != nil {
					return err
				}

				updated, err := applyEdits(cmd, *current)
				if err != nil {
					return err
				}

				txn, err := svc.EditTransaction(cmd.Context(), id, updated)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
					fmt.Sprintf("Updated %s #%d: %s", txn.Type(), txn.ID, cli.FormatAmount(txn.Amount))))
				return nil
			})
		},
	}

	cmd.Flags().String("date", "", "new date (YYYY-MM-DD)")
	cmd.Flags().String("amount", "", "new amount in rubles")
	cmd.Flags().String("note", "", "new note")
	cmd.Flags().Int64("account", 0, "new account id (expense, income)")
	cmd.Flags().Int64("category", 0, "new category id")
	cmd.Flags().Int64("from", 0, "new source account id (transfer)")
	cmd.Flags().Int64("to", 0, "new destination account id (transfer)")

	return cmd
}

// applyEdits overlays the flags that were set on txn.
func applyEdits(cmd *cobra.Command, txn model.Transaction) (model.Transaction, error) {
	flags := cmd.Flags()

	if flags.Changed("date") {
		date, err := parseDateFlag(cmd, "date")
		if err != nil {
			return txn, err
		}
		txn.OccurredAt = date
	}
	if flags.Changed("amount") {
		text, _ := flags.GetString("amount")
		amount, err := parseAmount(text)
		if err != nil {
			return txn, err
		}
		txn.Amount = amount
	}
	if flags.Changed("note") {
		txn.Note, _ = flags.GetString("note")
	}

	account := optionalID(cmd, "account")
	category := optionalID(cmd, "category")

	switch body := txn.Body.(type) {
	case model.Expense:
		if account != nil {
			body.AccountID = *account
		}
		if category != nil {
			body.CategoryID = *category
		}
		txn.Body = body
	case model.Income:
		if account != nil {
			body.AccountID = *account
		}
		if category != nil {
			body.CategoryID = *category
		}
		txn.Body = body
	case model.Transfer:
		if from := optionalID(cmd, "from"); from != nil {
			body.FromAccountID = *from
		}
		if to := optionalID(cmd, "to"); to != nil {
			body.ToAccountID = *to
		}
		if category != nil {
			body.CategoryID = category
			if *category == 0 {
				body.CategoryID = nil
			}
		}
		txn.Body = body
	}
	return txn, nil
}

func deleteTxCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return a.withLedger(cmd.Context(), func(svc *ledger.Service) error {
				deleted, err := svc.DeleteTransaction(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !deleted {
					return notFound("transaction", id)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted transaction #%d", id)))
				return nil
			})
		},
	}
}

func listTxCmd(a *app) *cobra.Command {
	var txType string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := service.TransactionFilter{
				AccountID:  optionalID(cmd, "account"),
				CategoryID: optionalID(cmd, "category"),
				Type:       model.TransactionType(txType),
				Limit:      limit,
			}
			if filter.Limit <= 0 {
				filter.Limit = a.cfg.ListLimit
			}
			if cmd.Flags().Changed("from-date") {
				start, err := parseDateFlag(cmd, "from-date")
				if err != nil {
					return err
				}
				filter.Start = &start
			}
			if cmd.Flags().Changed("to-date") {
				end, err := parseDateFlag(cmd, "to-date")
				if err != nil {
					return err
				}
				filter.End = &end
			}

			return a.withLedger(cmd.Context(), func(svc *ledger.Service) error {
				txns, err := svc.ListTransactions(cmd.Context(), filter)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(txns) == 0 {
					fmt.Fprintln(out, cli.SubtitleStyle.Render("No transactions found."))
					return nil
				}

				names, err := loadNames(cmd.Context(), svc)
				if err != nil {
					return err
				}

				table := cli.NewTable(out, "ID", "DATE", "TYPE", "AMOUNT", "ACCOUNT", "CATEGORY", "NOTE")
				for _, txn := range txns {
					account, category := describeBody(names, &txn)
					table.Row(
						strconv.FormatInt(txn.ID, 10),
						txn.OccurredAt.Format(model.DateLayout),
						string(txn.Type()),
						cli.FormatAmount(signedAmount(&txn)),
						account,
						category,
						txn.Note,
					)
				}
				return table.Flush()
			})
		},
	}

	cmd.Flags().String("from-date", "", "earliest date (YYYY-MM-DD)")
	cmd.Flags().String("to-date", "", "latest date (YYYY-MM-DD)")
	cmd.Flags().Int64("account", 0, "only transactions touching this account")
	cmd.Flags().Int64("category", 0, "only transactions in this category")
	cmd.Flags().StringVar(&txType, "type", "", "only this type (expense, income, transfer)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum rows (default from config)")

	return cmd
}

func printRecorded(cmd *cobra.Command, txn *model.Transaction) error {
	_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Recorded %s #%d: %s on %s",
		txn.Type(), txn.ID, cli.FormatAmount(txn.Amount), txn.OccurredAt.Format(model.DateLayout))))
	return err
}

// signedAmount shows expenses as negative.
func signedAmount(txn *model.Transaction) int64 {
	if txn.Type() == model.TransactionTypeExpense {
		return -txn.Amount
	}
	return txn.Amount
}

func describeBody(names *nameIndex, txn *model.Transaction) (account, category string) {
	switch body := txn.Body.(type) {
	case model.Expense:
		return names.account(body.AccountID), names.category(body.CategoryID)
	case model.Income:
		return names.account(body.AccountID), names.category(body.CategoryID)
	case model.Transfer:
		account = names.account(body.FromAccountID) + " → " + names.account(body.ToAccountID)
		if body.CategoryID != nil {
			category = names.category(*body.CategoryID)
		}
		return account, category
	}
	return "", ""
}

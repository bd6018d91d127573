package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/kopeck/internal/cli"
	"github.com/Veraticus/kopeck/internal/ledger"
	"github.com/Veraticus/kopeck/internal/model"
)

func categoriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "cat"},
		Short:   "Manage categories",
		Long: `Create and list income, expense, and savings categories.

Every category gets a unique slug derived from its name. Categories may be
nested under a parent of any kind.`,
		Example: `  # Add an expense category
  kopeck categories add "Продукты" --kind expense

  # Add a savings goal
  kopeck categories add "Отпуск" --kind savings`,
	}

	cmd.AddCommand(addCategoryCmd(a))
	cmd.AddCommand(listCategoriesCmd(a))

	return cmd
}

func addCategoryCmd(a *app) *cobra.Command {
	var kind, slug string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd.Context(), func(svc *ledger.Service) error {
				category, err := svc.CreateCategory(cmd.Context(), ledger.NewCategory{
					ParentID: optionalID(cmd, "parent"),
					Kind:     model.CategoryKind(kind),
					Name:     args[0],
					Slug:     slug,
				})
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
					fmt.Sprintf("Category %s (#%d, %s, %s)", category.Name, category.ID, category.Kind, category.Slug)))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", string(model.CategoryKindExpense), "category kind (income, expense, savings)")
	cmd.Flags().StringVar(&slug, "slug", "", "slug (derived from the name if omitted)")
	cmd.Flags().Int64("parent", 0, "parent category id")

	return cmd
}

func listCategoriesCmd(a *app) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLedger(cmd.Context(), func(svc *ledger.Service) error {
				var (
					categories []model.Category
					err        error
				)
				if kind == "" {
					categories, err = svc.ListCategories(cmd.Context())
				} else {
					categories, err = svc.ListCategoriesByKind(cmd.Context(), model.CategoryKind(kind))
				}
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(categories) == 0 {
					fmt.Fprintln(out, cli.SubtitleStyle.Render("No categories found."))
					return nil
				}

				table := cli.NewTable(out, "ID", "KIND", "SLUG", "NAME", "PARENT")
				for _, cat := range categories {
					parent := ""
					if cat.ParentID != nil {
						parent = strconv.FormatInt(*cat.ParentID, 10)
					}
					table.Row(strconv.FormatInt(cat.ID, 10), string(cat.Kind), cat.Slug, cat.Name, parent)
				}
				return table.Flush()
			})
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "only show categories of this kind")

	return cmd
}

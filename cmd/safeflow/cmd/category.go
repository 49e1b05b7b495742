package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/models"
)

var (
	categoryName string
	categoryType string
)

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage categories",
}

var categoryAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a category",
	Long: `Create a category for income or expense transactions.

Example:
  safeflow category add --name Groceries --type expense`,
	Run: runCategoryAdd,
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	Run:   runCategoryList,
}

func init() {
	categoryAddCmd.Flags().StringVar(&categoryName, "name", "", "Category name (required)")
	categoryAddCmd.Flags().StringVar(&categoryType, "type", string(models.TransactionExpense), "income or expense")
	categoryAddCmd.MarkFlagRequired("name")

	categoryCmd.AddCommand(categoryAddCmd, categoryListCmd)
}

func runCategoryAdd(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	category, err := a.svc.CreateCategory(ctx, categoryName, models.TransactionType(categoryType))
	exitOnError(err, "failed to create category")

	fmt.Printf("Created category %s (%s)\n", category.Name, category.ID)
}

func runCategoryList(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	categories, err := a.svc.ListCategories(ctx)
	exitOnError(err, "failed to list categories")

	for _, c := range categories {
		fmt.Printf("%-36s  %-24s  %s\n", c.ID, c.Name, c.Type)
	}
}

package cmd

import (
	"github.com/spf13/cobra"

	"agroledger/internal/ledger"
	"agroledger/pkg/models"
)

func (a *app) newProductCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Manage the product catalogue",
	}

	add := &cobra.Command{
		Use:     "add",
		Short:   "Add a product",
		Example: `  agroledger product add --name "Aliment Démarrage" --reference AL-DEM --unit Qt --price 8500 --stock 50`,
		Args:    cobra.NoArgs,
		RunE:    a.runProductAdd,
	}
	productFlags(add)
	add.Flags().String("id", "", "Product id (default: generated)")

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a product; only the given flags are updated",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runProductUpdate,
	}
	productFlags(update)

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a product from the catalogue (history keeps its name)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, func(svc *ledger.Service) (any, error) {
				return withReport(nil, svc.DeleteProduct(args[0])), nil
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.view(cmd, func(svc *ledger.Service) (any, error) {
				return svc.Snapshot().Products, nil
			})
		},
	}

	cmd.AddCommand(add, update, del, list)
	return cmd
}

func productFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "Product name")
	cmd.Flags().String("reference", "", "Short catalogue code")
	cmd.Flags().String("unit", "", "Unit of sale (Qt, Sac, Kg...)")
	cmd.Flags().String("price", "", "Default selling price")
	cmd.Flags().String("stock", "", "Stock on hand")
}

func (a *app) runProductAdd(cmd *cobra.Command, args []string) error {
	p := models.Product{ID: newID()}
	if id, _ := cmd.Flags().GetString("id"); id != "" {
		p.ID = id
	}
	if err := applyProductFlags(cmd, &p); err != nil {
		return err
	}
	if err := validate(p); err != nil {
		return err
	}

	return a.mutate(cmd, func(svc *ledger.Service) (any, error) {
		if err := svc.AddProduct(p); err != nil {
			return nil, err
		}
		return outcome{Record: p}, nil
	})
}

func (a *app) runProductUpdate(cmd *cobra.Command, args []string) error {
	return a.mutate(cmd, func(svc *ledger.Service) (any, error) {
		p, err := svc.Product(args[0])
		if err != nil {
			return nil, err
		}
		if err := applyProductFlags(cmd, &p); err != nil {
			return nil, err
		}
		if err := validate(p); err != nil {
			return nil, err
		}
		return withReport(p, svc.UpdateProduct(p)), nil
	})
}

// applyProductFlags copies the flags the user set onto p.
func applyProductFlags(cmd *cobra.Command, p *models.Product) error {
	flags := cmd.Flags()
	if flags.Changed("name") {
		p.Name, _ = flags.GetString("name")
	}
	if flags.Changed("reference") {
		p.Reference, _ = flags.GetString("reference")
	}
	if flags.Changed("unit") {
		p.Unit, _ = flags.GetString("unit")
	}
	if flags.Changed("price") {
		price, err := decimalFlag(cmd, "price")
		if err != nil {
			return err
		}
		p.Price = price
	}
	if flags.Changed("stock") {
		stock, err := decimalFlag(cmd, "stock")
		if err != nil {
			return err
		}
		p.Stock = stock
	}
	return nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"agroledger/internal/ledger"
	"agroledger/pkg/models"
)

func (a *app) newReturnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "return",
		Short: "Record goods returned by clients",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Put returned goods back in stock and refund them on the client's balance",
		Example: `  agroledger return add --client c1 --product 1 --quantity 2
  agroledger return add --client c1 --product 1 --quantity 2 --price 8000`,
		Args: cobra.NoArgs,
		RunE: a.runReturnAdd,
	}
	add.Flags().String("client", "", "Client id")
	add.Flags().String("product", "", "Product id")
	add.Flags().String("quantity", "", "Quantity returned")
	add.Flags().String("price", "", "Unit refund price (default: catalogue price)")
	addDateFlag(add)
	_ = add.MarkFlagRequired("client")
	_ = add.MarkFlagRequired("product")
	_ = add.MarkFlagRequired("quantity")

	cmd.AddCommand(add)
	return cmd
}

func (a *app) runReturnAdd(cmd *cobra.Command, args []string) error {
	clientID, _ := cmd.Flags().GetString("client")
	productID, _ := cmd.Flags().GetString("product")
	quantity, err := decimalFlag(cmd, "quantity")
	if err != nil {
		return err
	}
	price, err := decimalFlag(cmd, "price")
	if err != nil {
		return err
	}

	return a.mutate(cmd, func(svc *ledger.Service) (any, error) {
		client, err := svc.Client(clientID)
		if err != nil {
			return nil, fmt.Errorf("unknown client: %w", err)
		}
		product, err := svc.Product(productID)
		if err != nil {
			return nil, fmt.Errorf("unknown product: %w", err)
		}
		if !cmd.Flags().Changed("price") {
			price = product.Price
		}

		ret := models.NewProductReturn(newID(), dateFlag(cmd), client, product, quantity, price)
		if err := validate(ret); err != nil {
			return nil, err
		}
		return withReport(ret, svc.AddReturn(ret)), nil
	})
}

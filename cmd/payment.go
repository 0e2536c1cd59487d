package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"agroledger/internal/ledger"
	"agroledger/pkg/models"
)

func (a *app) newPaymentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payment",
		Short: "Record cash received from clients (versements)",
	}

	add := &cobra.Command{
		Use:     "add",
		Short:   "Record a payment from a client",
		Example: `  agroledger payment add --client c1 --amount 5000 --note "versement espèces"`,
		Args:    cobra.NoArgs,
		RunE:    a.runPaymentAdd,
	}
	add.Flags().String("client", "", "Client id")
	add.Flags().String("amount", "", "Amount received")
	add.Flags().String("note", "", "Free text")
	addDateFlag(add)
	_ = add.MarkFlagRequired("client")
	_ = add.MarkFlagRequired("amount")

	cmd.AddCommand(add)
	return cmd
}

func (a *app) runPaymentAdd(cmd *cobra.Command, args []string) error {
	clientID, _ := cmd.Flags().GetString("client")
	note, _ := cmd.Flags().GetString("note")
	amount, err := decimalFlag(cmd, "amount")
	if err != nil {
		return err
	}

	return a.mutate(cmd, func(svc *ledger.Service) (any, error) {
		client, err := svc.Client(clientID)
		if err != nil {
			return nil, fmt.Errorf("unknown client: %w", err)
		}
		payment := models.Payment{
			ID:         newID(),
			Date:       dateFlag(cmd),
			ClientID:   client.ID,
			ClientName: client.Name,
			Amount:     amount,
			Note:       note,
		}
		if err := validate(payment); err != nil {
			return nil, err
		}
		return withReport(payment, svc.AddPayment(payment)), nil
	})
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"agroledger/internal/ledger"
	"agroledger/pkg/models"
)

func (a *app) newInvoiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Create and follow up sales invoices",
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Record a sale",
		Long: `Record a sale to a client. Every --item takes its quantity out of stock
and the unpaid remainder is added to the client's balance. The unit price
defaults to the product's catalogue price.`,
		Example: `  # Two lines, 10000 paid at the counter
  agroledger invoice create --client c1 --item 1:5 --item p2:2.5:3100 --paid 10000

  # Walk-in sale, paid in full, goods already handed over
  agroledger invoice create --client 1 --item 1:1 --paid 8500 --status delivered`,
		Args: cobra.NoArgs,
		RunE: a.runInvoiceCreate,
	}
	create.Flags().String("client", models.WalkInClientID, "Client id")
	create.Flags().StringArray("item", nil, "Line as PRODUCT:QTY[:PRICE] (repeatable)")
	create.Flags().String("paid", "0", "Amount paid now")
	create.Flags().String("status", string(models.DeliveryPending), "Delivery status: pending or delivered")
	create.Flags().String("number", "", "Invoice number (default: next FAC-NNNNNN)")
	addDateFlag(create)
	_ = create.MarkFlagRequired("item")

	pay := &cobra.Command{
		Use:   "pay <id>",
		Short: "Set the total amount paid on an invoice",
		Long: `Set the total amount paid on an invoice. The difference with the
previous amount is moved off (or back onto) the client's balance.`,
		Args: cobra.ExactArgs(1),
		RunE: a.runInvoicePay,
	}
	pay.Flags().String("paid", "", "New total amount paid")
	_ = pay.MarkFlagRequired("paid")

	status := &cobra.Command{
		Use:   "status <id> <pending|delivered>",
		Short: "Change the delivery status of an invoice",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, func(svc *ledger.Service) (any, error) {
				if _, err := svc.Invoice(args[0]); err != nil {
					return nil, err
				}
				report, err := svc.SetInvoiceDeliveryStatus(args[0], models.DeliveryStatus(args[1]))
				if err != nil {
					return nil, err
				}
				inv, err := svc.Invoice(args[0])
				if err != nil {
					return nil, err
				}
				return withReport(inv, report), nil
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List invoices, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID, _ := cmd.Flags().GetString("client")
			pendingOnly, _ := cmd.Flags().GetBool("pending")
			return a.view(cmd, func(svc *ledger.Service) (any, error) {
				out := []models.Invoice{}
				for _, inv := range svc.Snapshot().Invoices {
					if clientID != "" && inv.ClientID != clientID {
						continue
					}
					if pendingOnly && inv.DeliveryStatus != models.DeliveryPending {
						continue
					}
					out = append(out, inv)
				}
				return out, nil
			})
		},
	}
	list.Flags().String("client", "", "Only invoices of this client")
	list.Flags().Bool("pending", false, "Only invoices awaiting delivery")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one invoice with the letterhead",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.view(cmd, func(svc *ledger.Service) (any, error) {
				inv, err := svc.Invoice(args[0])
				if err != nil {
					return nil, err
				}
				return struct {
					Company models.CompanyInfo `json:"company"`
					Invoice models.Invoice     `json:"invoice"`
				}{svc.Snapshot().CompanyInfo, inv}, nil
			})
		},
	}

	next := &cobra.Command{
		Use:   "next-number",
		Short: "Print the number the next invoice will receive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.view(cmd, func(svc *ledger.Service) (any, error) {
				return map[string]string{"number": svc.NextInvoiceNumber()}, nil
			})
		},
	}

	cmd.AddCommand(create, pay, status, list, show, next)
	return cmd
}

func (a *app) runInvoiceCreate(cmd *cobra.Command, args []string) error {
	clientID, _ := cmd.Flags().GetString("client")
	specs, _ := cmd.Flags().GetStringArray("item")
	status, _ := cmd.Flags().GetString("status")
	number, _ := cmd.Flags().GetString("number")
	paid, err := decimalFlag(cmd, "paid")
	if err != nil {
		return err
	}

	return a.mutate(cmd, func(svc *ledger.Service) (any, error) {
		client, err := svc.Client(clientID)
		if err != nil {
			return nil, fmt.Errorf("unknown client: %w", err)
		}
		items, err := buildLines(svc, specs)
		if err != nil {
			return nil, err
		}

		if number == "" {
			number = svc.NextInvoiceNumber()
		}
		inv := models.NewInvoice(newID(), number, dateFlag(cmd), client, items, paid, models.DeliveryStatus(status))
		if err := validate(inv); err != nil {
			return nil, err
		}

		stored, report := svc.CreateInvoice(inv)
		return withReport(stored, report), nil
	})
}

// buildLines resolves --item specs against the live catalogue. Prices
// default to the catalogue price of the product.
func buildLines(svc *ledger.Service, specs []string) ([]models.InvoiceItem, error) {
	items := make([]models.InvoiceItem, 0, len(specs))
	for _, spec := range specs {
		line, err := parseLineSpec(spec)
		if err != nil {
			return nil, err
		}
		p, err := svc.Product(line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("unknown product in %q: %w", spec, err)
		}
		price := p.Price
		if line.UnitPrice != nil {
			price = *line.UnitPrice
		}
		items = append(items, models.NewInvoiceItem(p, line.Quantity, price))
	}
	return items, nil
}

func (a *app) runInvoicePay(cmd *cobra.Command, args []string) error {
	paid, err := decimalFlag(cmd, "paid")
	if err != nil {
		return err
	}
	if paid.IsNegative() {
		return fmt.Errorf("--paid must not be negative")
	}

	return a.mutate(cmd, func(svc *ledger.Service) (any, error) {
		if _, err := svc.Invoice(args[0]); err != nil {
			return nil, err
		}
		report := svc.UpdateInvoicePayment(args[0], paid)
		inv, _ := svc.Invoice(args[0])
		return withReport(inv, report), nil
	})
}

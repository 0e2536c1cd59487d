package cmd

import (
	"github.com/spf13/cobra"

	"agroledger/internal/ledger"
	"agroledger/pkg/models"
)

func (a *app) newSupplierCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "supplier",
		Short: "Manage supplier accounts",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Add a supplier with a zero balance",
		Args:  cobra.NoArgs,
		RunE:  a.runSupplierAdd,
	}
	partyFlags(add)
	add.Flags().String("id", "", "Supplier id (default: generated)")

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a supplier's details; only the given flags are updated",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runSupplierUpdate,
	}
	partyFlags(update)
	update.Flags().String("debt", "", "Overwrite the running balance")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a supplier (its purchases are kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, func(svc *ledger.Service) (any, error) {
				return withReport(nil, svc.DeleteSupplier(args[0])), nil
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List suppliers with what is owed to them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.view(cmd, func(svc *ledger.Service) (any, error) {
				return svc.Snapshot().Suppliers, nil
			})
		},
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one supplier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.view(cmd, func(svc *ledger.Service) (any, error) {
				return svc.Supplier(args[0])
			})
		},
	}

	statement := &cobra.Command{
		Use:   "statement <id>",
		Short: "Account statement: purchases and payments over a period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			period := periodFlags(cmd)
			return a.view(cmd, func(svc *ledger.Service) (any, error) {
				return svc.SupplierStatement(args[0], period)
			})
		},
	}
	addPeriodFlags(statement)

	pay := &cobra.Command{
		Use:     "pay <id>",
		Short:   "Record a payment to a supplier",
		Example: `  agroledger supplier pay s1 --amount 30000 --note "chèque 0012"`,
		Args:    cobra.ExactArgs(1),
		RunE:    a.runSupplierPay,
	}
	pay.Flags().String("amount", "", "Amount paid")
	pay.Flags().String("note", "", "Free text")
	addDateFlag(pay)
	_ = pay.MarkFlagRequired("amount")

	cmd.AddCommand(add, update, del, list, show, statement, pay)
	return cmd
}

func (a *app) runSupplierAdd(cmd *cobra.Command, args []string) error {
	s := models.Supplier{ID: newID()}
	if id, _ := cmd.Flags().GetString("id"); id != "" {
		s.ID = id
	}
	if err := applySupplierFlags(cmd, &s); err != nil {
		return err
	}
	if err := validate(s); err != nil {
		return err
	}

	return a.mutate(cmd, func(svc *ledger.Service) (any, error) {
		if err := svc.AddSupplier(s); err != nil {
			return nil, err
		}
		return outcome{Record: s}, nil
	})
}

func (a *app) runSupplierUpdate(cmd *cobra.Command, args []string) error {
	return a.mutate(cmd, func(svc *ledger.Service) (any, error) {
		s, err := svc.Supplier(args[0])
		if err != nil {
			return nil, err
		}
		if err := applySupplierFlags(cmd, &s); err != nil {
			return nil, err
		}
		if err := validate(s); err != nil {
			return nil, err
		}
		return withReport(s, svc.UpdateSupplier(s)), nil
	})
}

func applySupplierFlags(cmd *cobra.Command, s *models.Supplier) error {
	setString(cmd, "name", &s.Name)
	setString(cmd, "phone", &s.Phone)
	setString(cmd, "address", &s.Address)
	setString(cmd, "nif", &s.NIF)
	setString(cmd, "nis", &s.NIS)
	if cmd.Flags().Changed("debt") {
		debt, err := decimalFlag(cmd, "debt")
		if err != nil {
			return err
		}
		s.TotalDebt = debt
	}
	return nil
}

func (a *app) runSupplierPay(cmd *cobra.Command, args []string) error {
	amount, err := decimalFlag(cmd, "amount")
	if err != nil {
		return err
	}
	note, _ := cmd.Flags().GetString("note")

	return a.mutate(cmd, func(svc *ledger.Service) (any, error) {
		s, err := svc.Supplier(args[0])
		if err != nil {
			return nil, err
		}
		payment := models.SupplierPayment{
			ID:           newID(),
			Date:         dateFlag(cmd),
			SupplierID:   s.ID,
			SupplierName: s.Name,
			Amount:       amount,
			Note:         note,
		}
		if err := validate(payment); err != nil {
			return nil, err
		}
		return withReport(payment, svc.AddSupplierPayment(payment)), nil
	})
}

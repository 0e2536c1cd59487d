package cmd

import (
	"github.com/spf13/cobra"

	"agroledger/internal/ledger"
	"agroledger/pkg/models"
)

func (a *app) newClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage client accounts",
	}

	add := &cobra.Command{
		Use:     "add",
		Short:   "Add a client with a zero balance",
		Example: `  agroledger client add --name "Ferme Ait Ali" --phone "0550 12 34 56" --address Amizour`,
		Args:    cobra.NoArgs,
		RunE:    a.runClientAdd,
	}
	partyFlags(add)
	add.Flags().String("carte-fellah", "", "Farmer subsidy card number")
	add.Flags().String("id", "", "Client id (default: generated)")

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a client's details; only the given flags are updated",
		Long: `Change a client's details. --debt overwrites the running balance and
should only be used to correct a drift reported by "agroledger reconcile".`,
		Args: cobra.ExactArgs(1),
		RunE: a.runClientUpdate,
	}
	partyFlags(update)
	update.Flags().String("carte-fellah", "", "Farmer subsidy card number")
	update.Flags().String("debt", "", "Overwrite the running balance")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a client (its documents are kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, func(svc *ledger.Service) (any, error) {
				report, err := svc.DeleteClient(args[0])
				if err != nil {
					return nil, err
				}
				return withReport(nil, report), nil
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List clients with their balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.view(cmd, func(svc *ledger.Service) (any, error) {
				return svc.Snapshot().Clients, nil
			})
		},
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.view(cmd, func(svc *ledger.Service) (any, error) {
				return svc.Client(args[0])
			})
		},
	}

	statement := &cobra.Command{
		Use:     "statement <id>",
		Short:   "Account statement: invoices, payments and returns over a period",
		Example: `  agroledger client statement c1 --from 2024-01-01 --to 2024-03-31`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			period := periodFlags(cmd)
			return a.view(cmd, func(svc *ledger.Service) (any, error) {
				return svc.ClientStatement(args[0], period)
			})
		},
	}
	addPeriodFlags(statement)

	cmd.AddCommand(add, update, del, list, show, statement)
	return cmd
}

func partyFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "Name")
	cmd.Flags().String("phone", "", "Phone number")
	cmd.Flags().String("address", "", "Address")
	cmd.Flags().String("nif", "", "Tax identification number (NIF)")
	cmd.Flags().String("nis", "", "Statistical identification number (NIS)")
}

func addPeriodFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "First day included, YYYY-MM-DD")
	cmd.Flags().String("to", "", "Last day included, YYYY-MM-DD")
}

func periodFlags(cmd *cobra.Command) ledger.Period {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	return ledger.Period{From: from, To: to}
}

func (a *app) runClientAdd(cmd *cobra.Command, args []string) error {
	c := models.Client{ID: newID()}
	if id, _ := cmd.Flags().GetString("id"); id != "" {
		c.ID = id
	}
	if err := applyClientFlags(cmd, &c); err != nil {
		return err
	}
	if err := validate(c); err != nil {
		return err
	}

	return a.mutate(cmd, func(svc *ledger.Service) (any, error) {
		if err := svc.AddClient(c); err != nil {
			return nil, err
		}
		return outcome{Record: c}, nil
	})
}

func (a *app) runClientUpdate(cmd *cobra.Command, args []string) error {
	return a.mutate(cmd, func(svc *ledger.Service) (any, error) {
		c, err := svc.Client(args[0])
		if err != nil {
			return nil, err
		}
		if err := applyClientFlags(cmd, &c); err != nil {
			return nil, err
		}
		if err := validate(c); err != nil {
			return nil, err
		}
		return withReport(c, svc.UpdateClient(c)), nil
	})
}

func applyClientFlags(cmd *cobra.Command, c *models.Client) error {
	setString(cmd, "name", &c.Name)
	setString(cmd, "phone", &c.Phone)
	setString(cmd, "address", &c.Address)
	setString(cmd, "nif", &c.NIF)
	setString(cmd, "nis", &c.NIS)
	setString(cmd, "carte-fellah", &c.CarteFellah)
	if cmd.Flags().Changed("debt") {
		debt, err := decimalFlag(cmd, "debt")
		if err != nil {
			return err
		}
		c.TotalDebt = debt
	}
	return nil
}

// setString copies a string flag onto dst when the user set it.
func setString(cmd *cobra.Command, name string, dst *string) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetString(name)
	}
}

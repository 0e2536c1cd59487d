package cmd

import (
	"github.com/spf13/cobra"

	"agroledger/internal/ledger"
)

func (a *app) newCompanyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "company",
		Short: "Business letterhead printed on documents",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the letterhead",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.view(cmd, func(svc *ledger.Service) (any, error) {
				return svc.Snapshot().CompanyInfo, nil
			})
		},
	}

	set := &cobra.Command{
		Use:     "set",
		Short:   "Change the letterhead; only the given flags are updated",
		Example: `  agroledger company set --nif 000123456789 --rc 06/00-1234567B22`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, func(svc *ledger.Service) (any, error) {
				info := svc.Snapshot().CompanyInfo
				setString(cmd, "name", &info.Name)
				setString(cmd, "address", &info.Address)
				setString(cmd, "phone", &info.Phone)
				setString(cmd, "nif", &info.NIF)
				setString(cmd, "nis", &info.NIS)
				setString(cmd, "rc", &info.RC)
				setString(cmd, "logo", &info.Logo)
				if err := validate(info); err != nil {
					return nil, err
				}
				svc.UpdateCompanyInfo(info)
				return info, nil
			})
		},
	}
	set.Flags().String("name", "", "Business name")
	set.Flags().String("address", "", "Address")
	set.Flags().String("phone", "", "Phone number")
	set.Flags().String("nif", "", "Tax identification number (NIF)")
	set.Flags().String("nis", "", "Statistical identification number (NIS)")
	set.Flags().String("rc", "", "Trade register number (RC)")
	set.Flags().String("logo", "", "Logo as a data URL")

	cmd.AddCommand(show, set)
	return cmd
}

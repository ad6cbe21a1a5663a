package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/anhofmann/dsar/internal/request"
)

var companyCmd = &cobra.Command{
	Use:   "company",
	Short: "Manage the companies requests are addressed to",
}

var companyAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a company",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")

		co := request.NewCompany(name, email, time.Now())
		co.Website, _ = cmd.Flags().GetString("website")
		co.DataProtectionOfficer, _ = cmd.Flags().GetString("dpo")
		co.Address, _ = cmd.Flags().GetString("address")
		co.Notes, _ = cmd.Flags().GetString("notes")

		if err := co.Validate(); err != nil {
			return err
		}
		if err := a.store.CreateCompany(cmd.Context(), co); err != nil {
			return fmt.Errorf("failed to add company: %w", err)
		}
		fmt.Printf("Company %q added (ID: %s)\n", co.Name, co.ID)
		return nil
	},
}

var companyUpdateCmd = &cobra.Command{
	Use:   "update <company-id>",
	Short: "Update a company's contact details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		co, err := a.store.GetCompany(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("name") {
			co.Name, _ = cmd.Flags().GetString("name")
		}
		if cmd.Flags().Changed("email") {
			co.Email, _ = cmd.Flags().GetString("email")
		}
		if cmd.Flags().Changed("website") {
			co.Website, _ = cmd.Flags().GetString("website")
		}
		if cmd.Flags().Changed("dpo") {
			co.DataProtectionOfficer, _ = cmd.Flags().GetString("dpo")
		}
		if cmd.Flags().Changed("address") {
			co.Address, _ = cmd.Flags().GetString("address")
		}
		if cmd.Flags().Changed("notes") {
			co.Notes, _ = cmd.Flags().GetString("notes")
		}
		co.UpdatedAt = time.Now().UTC()

		if err := co.Validate(); err != nil {
			return err
		}
		if err := a.store.UpdateCompany(cmd.Context(), co); err != nil {
			return fmt.Errorf("failed to update company: %w", err)
		}
		fmt.Printf("Company %q updated\n", co.Name)
		return nil
	},
}

var companyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all companies",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		companies, err := a.store.ListCompanies(cmd.Context())
		if err != nil {
			return err
		}
		if len(companies) == 0 {
			fmt.Println("No companies found.")
			return nil
		}

		fmt.Printf("%-36s  %-30s  %s\n", "ID", "NAME", "EMAIL")
		for _, co := range companies {
			fmt.Printf("%-36s  %-30s  %s\n", co.ID, co.Name, co.Email)
		}
		fmt.Printf("\nTotal: %d companies\n", len(companies))
		return nil
	},
}

func init() {
	companyAddCmd.Flags().String("name", "", "Company name (required)")
	companyAddCmd.Flags().String("email", "", "Contact email, ideally the data protection contact (required)")
	companyAddCmd.Flags().String("website", "", "Company website")
	companyAddCmd.Flags().String("dpo", "", "Data protection officer")
	companyAddCmd.Flags().String("address", "", "Postal address")
	companyAddCmd.Flags().String("notes", "", "Free-form notes")
	_ = companyAddCmd.MarkFlagRequired("name")
	_ = companyAddCmd.MarkFlagRequired("email")

	companyUpdateCmd.Flags().String("name", "", "Company name")
	companyUpdateCmd.Flags().String("email", "", "Contact email")
	companyUpdateCmd.Flags().String("website", "", "Company website")
	companyUpdateCmd.Flags().String("dpo", "", "Data protection officer")
	companyUpdateCmd.Flags().String("address", "", "Postal address")
	companyUpdateCmd.Flags().String("notes", "", "Free-form notes")

	companyCmd.AddCommand(companyAddCmd)
	companyCmd.AddCommand(companyUpdateCmd)
	companyCmd.AddCommand(companyListCmd)
}

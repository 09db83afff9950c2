package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/appealdesk/appealdesk/pkg/client"
)

func newAppealCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "appeal",
		Short: "Manage insurance appeals",
	}

	cmd.AddCommand(newAppealListCmd())
	cmd.AddCommand(newAppealCreateCmd())
	cmd.AddCommand(newAppealGetCmd())
	cmd.AddCommand(newAppealGenerateCmd())

	return cmd
}

func newAppealListCmd() *cobra.Command {
	var status string
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your appeals",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			opts := &client.AppealListOptions{
				Status: status,
			}
			opts.Page = page
			opts.PageSize = pageSize

			result, err := apiClient.Appeals().List(ctx, opts)
			if err != nil {
				return fmt.Errorf("failed to list appeals: %w", err)
			}

			format := getOutputFormat()
			if format != "table" {
				return printOutput(result)
			}

			t := NewTable("ID", "PAYER", "DENIAL CODE", "STATUS", "CREATED")
			for _, a := range result.Data {
				t.AddRow(
					truncate(a.ID, 12),
					truncate(a.Payer, 30),
					a.DenialCode,
					formatStatus(a.Status),
					a.CreatedAt.Format("2006-01-02"),
				)
			}
			t.Render()

			fmt.Printf("\nPage %d of %d (%d appeals)\n", result.Page, result.TotalPages, result.TotalItems)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status (draft, generated)")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "results per page")

	return cmd
}

func newAppealCreateCmd() *cobra.Command {
	var payer, denialCode string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new appeal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if payer == "" {
				payer = promptInput("Payer: ")
			}
			if denialCode == "" {
				denialCode = promptInput("Denial code: ")
			}

			ctx := context.Background()
			appeal, err := apiClient.Appeals().Create(ctx, client.CreateAppealRequest{
				Payer:      payer,
				DenialCode: denialCode,
			})
			if err != nil {
				return fmt.Errorf("failed to create appeal: %w", err)
			}

			format := getOutputFormat()
			if format != "table" {
				return printOutput(appeal)
			}

			fmt.Printf("Appeal created: %s\n", appeal.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&payer, "payer", "", "insurance payer name")
	cmd.Flags().StringVar(&denialCode, "denial-code", "", "denial code from the EOB")

	return cmd
}

func newAppealGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get appeal details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			appeal, err := apiClient.Appeals().Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get appeal: %w", err)
			}

			format := getOutputFormat()
			if format != "table" {
				return printOutput(appeal)
			}

			fmt.Printf("ID:          %s\n", appeal.ID)
			fmt.Printf("Payer:       %s\n", appeal.Payer)
			fmt.Printf("Denial code: %s\n", appeal.DenialCode)
			fmt.Printf("Status:      %s\n", formatStatus(appeal.Status))
			fmt.Printf("Created:     %s\n", appeal.CreatedAt.Format("2006-01-02 15:04:05"))
			if appeal.LetterText != "" {
				fmt.Printf("\n%s\n", appeal.LetterText)
			}
			return nil
		},
	}
}

func newAppealGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate <id>",
		Short: "Generate the appeal letter",
		Long: `Generate an appeal letter for a draft appeal. Generation counts
against your plan's quota. Re-running on an already generated appeal
returns the stored letter without consuming quota.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			appeal, err := apiClient.Appeals().GenerateLetter(ctx, args[0])
			if err != nil {
				if apiErr, ok := err.(*client.APIError); ok && apiErr.IsQuotaExceeded() {
					return fmt.Errorf("appeal quota exceeded. Upgrade your plan or contact support")
				}
				return fmt.Errorf("failed to generate letter: %w", err)
			}

			format := getOutputFormat()
			if format != "table" {
				return printOutput(appeal)
			}

			fmt.Println(appeal.LetterText)
			return nil
		},
	}
}

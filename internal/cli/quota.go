package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newQuotaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quota",
		Short: "Show appeal quota usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			quota, err := apiClient.Appeals().Quota(ctx)
			if err != nil {
				return fmt.Errorf("failed to get quota: %w", err)
			}

			format := getOutputFormat()
			if format != "table" {
				return printOutput(quota)
			}

			fmt.Println("Appeal Quota")
			fmt.Println(strings.Repeat("=", 30))

			if quota.Unlimited {
				fmt.Printf("  Used:      %d\n", quota.Used)
				fmt.Println("  Limit:     unlimited")
				return nil
			}

			fmt.Printf("  Used:      %d\n", quota.Used)
			fmt.Printf("  Limit:     %d\n", quota.Limit)
			fmt.Printf("  Remaining: %d\n", quota.Remaining)

			if quota.Remaining == 0 {
				fmt.Println("\nQuota exhausted. Upgrade your plan to generate more letters.")
			}
			return nil
		},
	}
}

package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/appealdesk/appealdesk/pkg/client"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Administer clinic profiles (admin only)",
	}

	cmd.AddCommand(newProfileListCmd())
	cmd.AddCommand(newProfileUpdateCmd())

	return cmd
}

func newProfileListCmd() *cobra.Command {
	var search, plan string
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clinic profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			opts := &client.ProfileListOptions{
				Search: search,
				Plan:   plan,
			}
			opts.Page = page
			opts.PageSize = pageSize

			result, err := apiClient.Profiles().List(ctx, opts)
			if err != nil {
				return fmt.Errorf("failed to list profiles: %w", err)
			}

			format := getOutputFormat()
			if format != "table" {
				return printOutput(result)
			}

			t := NewTable("ID", "EMAIL", "PLAN", "QUOTA", "TRIAL DAYS")
			for _, p := range result.Data {
				t.AddRow(
					strconv.FormatInt(p.ID, 10),
					truncate(p.Email, 40),
					p.Plan,
					formatQuota(p.AppealQuota),
					strconv.Itoa(p.TrialDaysLeft),
				)
			}
			t.Render()

			fmt.Printf("\nPage %d of %d (%d profiles)\n", result.Page, result.TotalPages, result.TotalItems)
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "search by email")
	cmd.Flags().StringVar(&plan, "plan", "", "filter by plan (starter, pro, enterprise)")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "results per page")

	return cmd
}

func newProfileUpdateCmd() *cobra.Command {
	var plan string
	var quota int64
	var unlimited bool

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a profile's plan or quota",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid profile ID: %s", args[0])
			}

			req := client.UpdateSubscriptionRequest{}
			if plan != "" {
				req.Plan = &plan
			}
			if cmd.Flags().Changed("quota") {
				req.AppealQuota = &quota
			}
			if unlimited {
				req.Unlimited = true
			}
			if req.Plan == nil && req.AppealQuota == nil && !req.Unlimited {
				return fmt.Errorf("nothing to update. Pass --plan, --quota, or --unlimited")
			}

			ctx := context.Background()
			profile, err := apiClient.Profiles().UpdateSubscription(ctx, id, req)
			if err != nil {
				return fmt.Errorf("failed to update profile: %w", err)
			}

			format := getOutputFormat()
			if format != "table" {
				return printOutput(profile)
			}

			fmt.Printf("Profile %d updated: plan=%s quota=%s\n", profile.ID, profile.Plan, formatQuota(profile.AppealQuota))
			return nil
		},
	}

	cmd.Flags().StringVar(&plan, "plan", "", "subscription plan (starter, pro, enterprise)")
	cmd.Flags().Int64Var(&quota, "quota", 0, "appeal quota limit")
	cmd.Flags().BoolVar(&unlimited, "unlimited", false, "remove the quota limit")

	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var createPRCmd = &cobra.Command{
	Use:   "create-pr",
	Short: "Create a PR's head index by cloning its base index and applying its diff",
	RunE: func(cmd *cobra.Command, args []string) error {
		pr, err := prRefFromFlags(cmd)
		if err != nil {
			return err
		}
		if pr.HeadBranch == "" {
			return fmt.Errorf("--head is required")
		}
		if err := newManager().CreateNewPrIndex(cmd.Context(), pr); err != nil {
			return fmt.Errorf("create pr index: %w", err)
		}
		fmt.Printf("created index for %s#%d (%s)\n", pr.RepoSlug, pr.Number, pr.HeadBranch)
		return nil
	},
}

var updatePRCmd = &cobra.Command{
	Use:   "update-pr",
	Short: "Apply a PR's latest diff to its head index",
	RunE: func(cmd *cobra.Command, args []string) error {
		pr, err := prRefFromFlags(cmd)
		if err != nil {
			return err
		}
		if pr.HeadBranch == "" {
			return fmt.Errorf("--head is required")
		}
		if err := newManager().UpdatePrIndex(cmd.Context(), pr); err != nil {
			return fmt.Errorf("update pr index: %w", err)
		}
		fmt.Printf("updated index for %s#%d (%s)\n", pr.RepoSlug, pr.Number, pr.HeadBranch)
		return nil
	},
}

var deletePRCmd = &cobra.Command{
	Use:   "delete-pr",
	Short: "Delete a PR's head index",
	RunE: func(cmd *cobra.Command, args []string) error {
		pr, err := prRefFromFlags(cmd)
		if err != nil {
			return err
		}
		if pr.HeadBranch == "" {
			return fmt.Errorf("--head is required")
		}
		if err := newManager().DeletePrIndex(cmd.Context(), pr); err != nil {
			return fmt.Errorf("delete pr index: %w", err)
		}
		fmt.Printf("deleted index for %s#%d (%s)\n", pr.RepoSlug, pr.Number, pr.HeadBranch)
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{createPRCmd, updatePRCmd, deletePRCmd} {
		addPRFlags(cmd)
		rootCmd.AddCommand(cmd)
	}
}

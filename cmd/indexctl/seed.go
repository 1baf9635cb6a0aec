package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var seedBaseCmd = &cobra.Command{
	Use:   "seed-base",
	Short: "Seed a repository's base branch index from scratch if it does not already exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		pr, err := prRefFromFlags(cmd)
		if err != nil {
			return err
		}

		manager := newManager()
		if err := manager.CreateBaseBranchIndex(cmd.Context(), pr); err != nil {
			return fmt.Errorf("seed base index: %w", err)
		}
		fmt.Printf("base index for %s@%s is up to date\n", pr.RepoSlug, pr.BaseBranch)
		return nil
	},
}

func init() {
	addPRFlags(seedBaseCmd)
	rootCmd.AddCommand(seedBaseCmd)
}

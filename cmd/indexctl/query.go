package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sevigo/rag-index-manager/internal/core"
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question against a PR's head index",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pr, err := prRefFromFlags(cmd)
		if err != nil {
			return err
		}
		if pr.HeadBranch == "" {
			return fmt.Errorf("--head is required")
		}
		question := strings.Join(args, " ")

		topK, _ := cmd.Flags().GetInt("top-k")
		resp, err := newManager().Query(cmd.Context(), pr, question, core.QueryParams{TopK: topK})
		if err != nil {
			return fmt.Errorf("query index: %w", err)
		}

		fmt.Println(resp.Response)
		for _, s := range resp.Sources {
			fmt.Printf("  source: %s\n", s)
		}
		return nil
	},
}

func init() {
	addPRFlags(queryCmd)
	queryCmd.Flags().Int("top-k", 0, "override the number of retrieved chunks (0 uses the server default)")
	rootCmd.AddCommand(queryCmd)
}

package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sevigo/rag-index-manager/internal/ragclient"
	"github.com/sevigo/rag-index-manager/internal/ragindex"
)

var statusCmd = &cobra.Command{
	Use:   "status <repo>",
	Short: "List known base/head indexes for a repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := args[0]
		prefix := ragindex.IndexName(repo, "")

		backend := ragclient.New(cfg.RagIndex.RagBackendBaseURL, nil)
		names, err := backend.ListIndexes(cmd.Context())
		if err != nil {
			color.Red("failed to list indexes: %v", err)
			return fmt.Errorf("list indexes: %w", err)
		}

		var matched []string
		for _, name := range names {
			if strings.HasPrefix(name, prefix) {
				matched = append(matched, name)
			}
		}

		if len(matched) == 0 {
			color.Yellow("no indexes found for %s", repo)
			return nil
		}
		for _, name := range matched {
			color.Green(name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

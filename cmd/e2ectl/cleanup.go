package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	cleanupEmails   []string
	cleanupTitle    string
	cleanupAuthor   string
	cleanupAllPosts bool
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove test data left behind by interrupted runs",
	Example: `  e2ectl cleanup --email ui_abc@example.com
  e2ectl cleanup --title "Hello world" --author ui_abc@example.com
  e2ectl cleanup --all-posts -e local`,
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().StringSliceVar(&cleanupEmails, "email", nil, "Delete users (and their content) by email")
	cleanupCmd.Flags().StringVar(&cleanupTitle, "title", "", "Delete posts with this title")
	cleanupCmd.Flags().StringVar(&cleanupAuthor, "author", "", "Author email the --title filter applies to")
	cleanupCmd.Flags().BoolVar(&cleanupAllPosts, "all-posts", false, "Delete every post (local environment only)")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	if len(cleanupEmails) == 0 && cleanupTitle == "" && !cleanupAllPosts {
		return fmt.Errorf("nothing to clean: pass --email, --title or --all-posts")
	}
	if cleanupTitle != "" && cleanupAuthor == "" {
		return fmt.Errorf("--title needs --author")
	}
	if cleanupAllPosts && cfg.Env != "local" {
		return fmt.Errorf("--all-posts is only allowed against the local environment")
	}

	services, db, err := openServices()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()

	if cleanupTitle != "" {
		n, err := services.Reconcile.DeletePostByTitleAndAuthor(ctx, cleanupTitle, cleanupAuthor)
		if err != nil {
			return err
		}
		log.Info().Str("title", cleanupTitle).Int64("deleted", n).Msg("Posts deleted")
	}

	for _, email := range cleanupEmails {
		n, err := services.Reconcile.DeleteUserByEmail(ctx, email)
		if err != nil {
			return err
		}
		log.Info().Str("email", email).Int64("deleted", n).Msg("User deleted")
	}

	if cleanupAllPosts {
		if err := services.Reconcile.ClearAllPosts(ctx, cfg.Poll.CleanupTimeout); err != nil {
			return err
		}
		log.Info().Msg("All posts deleted")
	}
	return nil
}

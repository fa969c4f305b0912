package main

import (
	"fmt"

	"github.com/nanoreddit-ui-autotests/internal/models"
	"github.com/spf13/cobra"
)

var (
	seedUsers   int
	seedPosts   int
	seedAdmin   bool
	seedBanned  bool
	seedComment bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create test users and posts through the API",
	Long: `Creates users through the public API, optionally with posts, a promoted
admin and a banned user, and prints their credentials. Useful for manual
exploratory testing against the same environment the suite uses.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVarP(&seedUsers, "users", "n", 1, "Number of users to register")
	seedCmd.Flags().IntVar(&seedPosts, "posts", 0, "Posts to publish per user")
	seedCmd.Flags().BoolVar(&seedComment, "with-comment", false, "Add a comment under every seeded post")
	seedCmd.Flags().BoolVar(&seedAdmin, "admin", false, "Also create an admin")
	seedCmd.Flags().BoolVar(&seedBanned, "banned", false, "Also create a banned user (implies --admin)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	if seedUsers < 0 || seedPosts < 0 {
		return fmt.Errorf("--users and --posts must not be negative")
	}

	services, db, err := openServices()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	users, err := services.Provision.CreateUsers(ctx, seedUsers)
	if err != nil {
		return err
	}
	for _, user := range users {
		fmt.Fprintf(out, "user\t%s\t%s\n", user.Email, user.Password)

		for i := 0; i < seedPosts; i++ {
			if seedComment {
				postID, text, err := services.Provision.CreatePostWithComment(ctx, user, nil, "")
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "post\t%s\tcomment\t%s\n", postID, text)
				continue
			}
			post, err := services.Provision.CreatePost(ctx, user, models.RandomPost())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "post\t%s\t%s\n", post.ID, post.Title)
		}
	}

	if seedAdmin || seedBanned {
		admin, err := services.Provision.CreateAdmin(ctx, nil)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "admin\t%s\t%s\n", admin.Email, admin.Password)

		if seedBanned {
			banned, err := services.Provision.CreateBannedUser(ctx, admin)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "banned\t%s\t%s\n", banned.Email, banned.Password)
		}
	}
	return nil
}

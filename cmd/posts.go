package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/kaboocam/kaboocam/internal/api"
	"github.com/kaboocam/kaboocam/internal/render"
)

func newPostsCmd(opts *options) *cobra.Command {
	var (
		popular    bool
		limit      int
		jsonOutput bool
	)
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List recent or popular posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openCLI()
			if err != nil {
				return err
			}
			defer s.Close()
			ctx, cancel := requestContext(cmd, s)
			defer cancel()

			q := api.PostQuery{Strategy: api.StrategyRecent}
			if popular {
				q.Strategy = api.StrategyPopular
			}
			page, err := s.deps.Client.ListPosts(ctx, q)
			if err != nil {
				return err
			}
			posts := page.Items
			if limit > 0 && len(posts) > limit {
				posts = posts[:limit]
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(posts)
			}
			if len(posts) == 0 {
				fmt.Fprintln(out, "No posts yet.")
				return nil
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("ID", "TITLE", "AUTHOR", "LIKES", "COMMENTS", "POSTED")
			now := time.Now()
			for _, p := range posts {
				author := ""
				if p.Author != nil {
					author = p.Author.Name
				}
				t.Row(
					string(p.PostID),
					render.Truncate(p.Title, 40),
					author,
					strconv.Itoa(p.Like.Count),
					strconv.Itoa(p.CommentCount),
					render.TimeAgo(p.CreatedAt.Time, now),
				)
			}
			fmt.Fprintln(out, t.Render())
			return nil
		},
	}
	cmd.Flags().BoolVar(&popular, "popular", false, "list by popularity instead of recency")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "show at most this many posts (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

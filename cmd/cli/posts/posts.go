package posts

import (
	"fmt"

	"github.com/inkwell/inkwell/cmd/cli/client"
	"github.com/inkwell/inkwell/cmd/cli/output"
	"github.com/inkwell/inkwell/internal/models"
	"github.com/spf13/cobra"
)

// InitPosts registers post commands on the root command.
func InitPosts(rootCmd *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Manage blog posts",
	}
	cmd.AddCommand(listCmd())
	cmd.AddCommand(getCmd())
	cmd.AddCommand(createCmd())
	cmd.AddCommand(updateCmd())
	cmd.AddCommand(deleteCmd())
	rootCmd.AddCommand(cmd)
}

func listCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts, optionally filtered by category",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/posts"
			if category != "" {
				path += "?cat=" + category
			}

			var posts []models.Post
			if err := client.DoJSON("GET", path, nil, &posts); err != nil {
				return fmt.Errorf("failed to fetch posts: %w", err)
			}

			rows := make([][]interface{}, 0, len(posts))
			for _, p := range posts {
				rows = append(rows, []interface{}{p.ID, p.Title, p.Category, p.UID, p.Date.Format("2006-01-02 15:04")})
			}
			output.RenderTable([]string{"ID", "Title", "Category", "Author", "Date"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Filter by category")
	return cmd
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var post models.Post
			if err := client.DoJSON("GET", "/api/posts/"+args[0], nil, &post); err != nil {
				return fmt.Errorf("failed to fetch post: %w", err)
			}

			fmt.Printf("#%d %s (%s) by %s\n\n%s\n\n%s\n", post.ID, post.Title, post.Category, post.Username, post.Description, post.Content)
			if post.Img != "" {
				fmt.Printf("\nImage: %s\n", post.Img)
			}
			return nil
		},
	}
}

func createCmd() *cobra.Command {
	var title, description, content, category, img string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post (requires login)",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{
				"title":       title,
				"description": description,
				"content":     content,
				"category":    category,
				"img":         img,
			}
			var out struct {
				Message string `json:"message"`
			}
			if err := client.DoJSON("POST", "/api/posts", payload, &out); err != nil {
				return fmt.Errorf("failed to create post: %w", err)
			}
			fmt.Println(out.Message)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Post title")
	cmd.Flags().StringVar(&description, "description", "", "Short description")
	cmd.Flags().StringVar(&content, "content", "", "Post body")
	cmd.Flags().StringVar(&category, "category", "", "Category")
	cmd.Flags().StringVar(&img, "img", "", "Image reference from 'inkwell upload'")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("description")
	cmd.MarkFlagRequired("content")
	cmd.MarkFlagRequired("category")

	return cmd
}

func updateCmd() *cobra.Command {
	var title, description, content, category, img string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a post you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{
				"title":       title,
				"description": description,
				"content":     content,
				"category":    category,
				"img":         img,
			}
			var out struct {
				Message string `json:"message"`
			}
			if err := client.DoJSON("PUT", "/api/posts/"+args[0], payload, &out); err != nil {
				return fmt.Errorf("failed to update post: %w", err)
			}
			fmt.Println(out.Message)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Post title")
	cmd.Flags().StringVar(&description, "description", "", "Short description")
	cmd.Flags().StringVar(&content, "content", "", "Post body")
	cmd.Flags().StringVar(&category, "category", "", "Category")
	cmd.Flags().StringVar(&img, "img", "", "Image reference")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("description")
	cmd.MarkFlagRequired("content")
	cmd.MarkFlagRequired("category")

	return cmd
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a post you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Message string `json:"message"`
			}
			if err := client.DoJSON("DELETE", "/api/posts/"+args[0], nil, &out); err != nil {
				return fmt.Errorf("failed to delete post: %w", err)
			}
			fmt.Println(out.Message)
			return nil
		},
	}
}

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/recipekeeper/internal/client/client"
	"github.com/dmitrijs2005/recipekeeper/internal/client/models"
	"github.com/spf13/cobra"
)

func newRecipesCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recipes",
		Aliases: []string{"r"},
		Short:   "Browse and manage recipes",
	}

	cmd.AddCommand(newRecipesListCmd(g))
	cmd.AddCommand(newRecipesShowCmd(g))
	cmd.AddCommand(newRecipesAddCmd(g))
	cmd.AddCommand(newRecipesEditCmd(g))
	cmd.AddCommand(newRecipesDeleteCmd(g))

	return cmd
}

func newRecipesListCmd(g *globalFlags) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all recipes",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.run(cmd, func(ctx context.Context, e *env) error {
				list, err := e.recipes.List(ctx)
				if err != nil {
					return describe(err)
				}
				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), list)
				}
				if len(list) == 0 {
					cmd.Println("No recipes yet.")
					return nil
				}
				return writeTable(cmd.OutOrStdout(), list)
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output recipes as JSON")

	return cmd
}

func newRecipesShowCmd(g *globalFlags) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, func(ctx context.Context, e *env) error {
				r, err := e.recipes.Get(ctx, args[0])
				if err != nil {
					return notFound(args[0], err)
				}
				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), r)
				}
				return writeDetail(cmd.OutOrStdout(), r)
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output the recipe as JSON")

	return cmd
}

func newRecipesAddCmd(g *globalFlags) *cobra.Command {
	var image string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a recipe interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.run(cmd, func(ctx context.Context, e *env) error {
				// Fail before prompting when there is no session.
				if _, err := e.auth.Session(ctx); err != nil {
					return describe(err)
				}

				var start models.RecipeInput
				if err := attachImage(ctx, cmd, e, image, &start); err != nil {
					return err
				}

				in, err := promptRecipe(cmd, e, start)
				if err != nil {
					return err
				}
				r, err := e.recipes.Create(ctx, in)
				if err != nil {
					return describe(err)
				}
				cmd.Printf("Recipe created with ID %s.\n", r.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&image, "image", "", "upload this image file and use it as the recipe image")

	return cmd
}

func newRecipesEditCmd(g *globalFlags) *cobra.Command {
	var image string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a recipe; empty answers keep the current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, func(ctx context.Context, e *env) error {
				cur, err := e.recipes.Get(ctx, args[0])
				if err != nil {
					return notFound(args[0], err)
				}

				start := models.RecipeInput{
					Name:            cur.Name,
					Description:     cur.Description,
					Ingredients:     cur.Ingredients,
					Instructions:    cur.Instructions,
					PrepTimeMinutes: cur.PrepTimeMinutes,
					Category:        cur.Category,
					ImageURL:        cur.ImageURL,
				}
				if err := attachImage(ctx, cmd, e, image, &start); err != nil {
					return err
				}

				in, err := promptRecipe(cmd, e, start)
				if err != nil {
					return err
				}

				err = e.recipes.Update(ctx, args[0], in)
				if errors.Is(err, client.ErrConflict) {
					return errors.New("the recipe was changed by someone else; run the edit again")
				}
				if err != nil {
					return notFound(args[0], err)
				}
				cmd.Printf("Recipe %s updated.\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&image, "image", "", "upload this image file and use it as the recipe image")

	return cmd
}

func newRecipesDeleteCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a recipe",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, func(ctx context.Context, e *env) error {
				if err := e.recipes.Delete(ctx, args[0]); err != nil {
					return notFound(args[0], err)
				}
				cmd.Printf("Recipe %s deleted.\n", args[0])
				return nil
			})
		},
	}
}

// promptRecipe asks for every field. Empty answers keep the values in cur.
func promptRecipe(cmd *cobra.Command, e *env, cur models.RecipeInput) (models.RecipeInput, error) {
	w := cmd.OutOrStdout()
	out := cur

	ask := func(prompt string, dst *string, multiline bool) error {
		if *dst != "" {
			prompt = fmt.Sprintf("%s [%s]", prompt, firstLine(*dst))
		}
		read := GetSimpleText
		if multiline {
			read = GetMultiline
		}
		v, err := read(e.in, prompt, w)
		if err != nil {
			return err
		}
		if v != "" {
			*dst = v
		}
		return nil
	}

	if err := ask("Name", &out.Name, false); err != nil {
		return out, err
	}
	if err := ask("Category", &out.Category, false); err != nil {
		return out, err
	}

	prompt := "Preparation time, minutes"
	if out.PrepTimeMinutes > 0 {
		prompt = fmt.Sprintf("%s [%d]", prompt, out.PrepTimeMinutes)
	}
	n, err := GetNumber(e.in, prompt, out.PrepTimeMinutes, w)
	if err != nil {
		return out, err
	}
	out.PrepTimeMinutes = n

	if err := ask("Description", &out.Description, false); err != nil {
		return out, err
	}
	if err := ask("Ingredients, one per line", &out.Ingredients, true); err != nil {
		return out, err
	}
	if err := ask("Instructions", &out.Instructions, true); err != nil {
		return out, err
	}
	if err := ask("Image URL", &out.ImageURL, false); err != nil {
		return out, err
	}
	return out, nil
}

// attachImage uploads the file at path, when given, and makes its URL the
// default answer of the image prompt.
func attachImage(ctx context.Context, cmd *cobra.Command, e *env, path string, in *models.RecipeInput) error {
	if path == "" {
		return nil
	}
	url, err := e.recipes.UploadImage(ctx, path)
	if err != nil {
		return describe(err)
	}
	cmd.Printf("Image uploaded to %s.\n", url)
	in.ImageURL = url
	return nil
}

func notFound(id string, err error) error {
	if errors.Is(err, client.ErrNotFound) {
		return fmt.Errorf("recipe %s not found", id)
	}
	return describe(err)
}

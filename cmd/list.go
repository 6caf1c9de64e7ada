package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grovetools/justrun/cli"
	"github.com/grovetools/justrun/pkg/params"
	"github.com/grovetools/justrun/pkg/recipe"
	"github.com/grovetools/justrun/tui/theme"
)

// listedRecipe is the --json shape of one recipe.
type listedRecipe struct {
	recipe.Recipe
	Signature string `json:"signature"`
}

// NewListCmd creates the `list` command.
func NewListCmd() *cobra.Command {
	var (
		all      bool
		patterns []string
		refresh  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recipes by group",
		Long: `List the recipes of the current workspace, grouped, with their parameters.
Required parameters carry a '*', variadic ones a leading '+'.

Examples:
  justrun list
  justrun list --all --match 'deploy*' --match '!deploy-legacy'
  justrun list --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd, appOptions{})
			if err != nil {
				return err
			}
			defer app.Close()

			var recipes []recipe.Recipe
			if all {
				recipes = app.Catalog.Recipes(cmd.Context(), refresh)
			} else {
				recipes = app.Catalog.PublicRecipes(cmd.Context(), refresh)
			}
			recipes, err = recipe.Match(recipes, patterns)
			if err != nil {
				return err
			}

			if cli.GetOptions(cmd).JSONOutput {
				return writeRecipesJSON(cmd.OutOrStdout(), recipes)
			}
			renderRecipes(cmd.OutOrStdout(), recipes)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include private recipes")
	cmd.Flags().StringArrayVarP(&patterns, "match", "m", nil, "Only show recipes matching a glob (prefix with ! to exclude)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Rediscover recipes instead of using the cache")
	return cmd
}

func writeRecipesJSON(w io.Writer, recipes []recipe.Recipe) error {
	listed := make([]listedRecipe, 0, len(recipes))
	for _, r := range recipes {
		listed = append(listed, listedRecipe{Recipe: r, Signature: params.DisplayString(r)})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(listed)
}

// renderRecipes prints recipes under their group headings. Ungrouped recipes
// come first without a heading.
func renderRecipes(w io.Writer, recipes []recipe.Recipe) {
	t := theme.DefaultTheme
	if len(recipes) == 0 {
		fmt.Fprintln(w, t.Muted.Render("No recipes found."))
		return
	}

	groups := recipe.GroupRecipes(recipes)
	for _, name := range recipe.SortedGroupNames(groups) {
		members := groups[name]
		if len(members) == 0 {
			continue
		}
		indent := ""
		if name != "" {
			fmt.Fprintln(w, t.Group.Render("["+name+"]"))
			indent = "  "
		}

		width := 0
		lines := make([]string, len(members))
		for i, r := range members {
			lines[i] = strings.TrimSpace(r.Name + " " + params.DisplayString(r))
			if len(lines[i]) > width {
				width = len(lines[i])
			}
		}
		for i, r := range members {
			line := indent + t.Recipe.Render(lines[i])
			if r.Doc != "" {
				line += strings.Repeat(" ", width-len(lines[i])) + "  " + t.Muted.Render("# "+r.Doc)
			}
			fmt.Fprintln(w, line)
		}
	}
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/recipekeeper/internal/client/models"
)

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeTable(w io.Writer, list []*models.Recipe) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPREP")
	_, _ = fmt.Fprintln(tw, "--\t----\t--------\t----")
	for _, r := range list {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Category, formatMinutes(r.PrepTimeMinutes))
	}
	return tw.Flush()
}

func writeDetail(w io.Writer, r *models.Recipe) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "ID:\t%s\n", r.ID)
	_, _ = fmt.Fprintf(tw, "Name:\t%s\n", r.Name)
	_, _ = fmt.Fprintf(tw, "Category:\t%s\n", r.Category)
	_, _ = fmt.Fprintf(tw, "Prep time:\t%s\n", formatMinutes(r.PrepTimeMinutes))
	_, _ = fmt.Fprintf(tw, "Image:\t%s\n", r.ImageURL)
	_, _ = fmt.Fprintf(tw, "Updated:\t%s\n", r.UpdatedDate.Local().Format("2006-01-02 15:04"))
	if err := tw.Flush(); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "\n%s\n", r.Description)
	_, _ = fmt.Fprintf(w, "\nIngredients:\n%s\n", indent(r.Ingredients))
	_, err := fmt.Fprintf(w, "\nInstructions:\n%s\n", indent(r.Instructions))
	return err
}

func formatMinutes(m int) string {
	if m < 60 {
		return fmt.Sprintf("%d min", m)
	}
	if m%60 == 0 {
		return fmt.Sprintf("%dh", m/60)
	}
	return fmt.Sprintf("%dh %dm", m/60, m%60)
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + "..."
	}
	return s
}

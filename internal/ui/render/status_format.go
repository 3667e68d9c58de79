package render

import (
	"strings"

	"github.com/kk-code-lab/millr/internal/pane"
)

// formatStatusText joins the title and status of the deepest listing.
func formatStatusText(summary pane.Summary) string {
	parts := make([]string, 0, 2)
	if summary.Title != "" {
		parts = append(parts, summary.Title)
	}
	if summary.Status != "" {
		parts = append(parts, summary.Status)
	}
	if len(parts) == 0 {
		return appTitle
	}
	return " " + strings.Join(parts, statusSep)
}

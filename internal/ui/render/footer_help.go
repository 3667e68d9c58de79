package render

import "strings"

// buildFooterHelpText returns the contextual footer hint string with leading/trailing padding.
func buildFooterHelpText(overlayOpen bool) string {
	parts := buildFooterHelpSegments(overlayOpen)
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, "  ") + " "
}

func buildFooterHelpSegments(overlayOpen bool) []string {
	if overlayOpen {
		return []string{"Space/Esc: close", "q: close"}
	}
	return []string{
		"←/→: navigate",
		"Space: preview",
		"↵: open",
		"?: help",
	}
}

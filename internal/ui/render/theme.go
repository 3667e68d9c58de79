package render

import "github.com/gdamore/tcell/v2"

// ColorTheme defines application colors.
type ColorTheme struct {
	Background    tcell.Color
	Foreground    tcell.Color
	HiddenFg      tcell.Color
	SelectionBg   tcell.Color
	SelectionFg   tcell.Color
	InactiveSelBg tcell.Color
	DirectoryFg   tcell.Color
	FileFg        tcell.Color
	ErrorFg       tcell.Color
	SeparatorFg   tcell.Color
	FooterBg      tcell.Color
	FooterFg      tcell.Color
	PreviewBg     tcell.Color
	PreviewFg     tcell.Color
	OverlayBg     tcell.Color
	OverlayFg     tcell.Color
	BorderFg      tcell.Color
}

// GetColorTheme returns the default color scheme.
func GetColorTheme() ColorTheme {
	return ColorTheme{
		Background:    tcell.ColorDefault,
		Foreground:    tcell.ColorDefault,
		HiddenFg:      tcell.ColorLightSlateGray,
		SelectionBg:   tcell.Color33,
		SelectionFg:   tcell.ColorWhite,
		InactiveSelBg: tcell.Color240, // selection in panes without focus
		DirectoryFg:   tcell.Color33,
		FileFg:        tcell.ColorDefault,
		ErrorFg:       tcell.ColorIndianRed,
		SeparatorFg:   tcell.Color238,
		FooterBg:      tcell.ColorDefault,
		FooterFg:      tcell.ColorDefault,
		PreviewBg:     tcell.ColorDefault,
		PreviewFg:     tcell.ColorDefault,
		OverlayBg:     tcell.Color235,
		OverlayFg:     tcell.Color252,
		BorderFg:      tcell.Color33,
	}
}

package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/piwi3910/TrayForge/internal/engine"
	"github.com/piwi3910/TrayForge/internal/generate"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleCached      = lipgloss.NewStyle().Foreground(colorGreen)

	styleTableHeader = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Padding(0, 1)
	styleTableCell   = lipgloss.NewStyle().Padding(0, 1)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func (c *CLI) println(s string) {
	fmt.Fprintln(c.out, s)
}

func (c *CLI) printSuccess(format string, args ...any) {
	c.println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func (c *CLI) printError(format string, args ...any) {
	c.println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func (c *CLI) printWarning(format string, args ...any) {
	c.println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func (c *CLI) printInfo(format string, args ...any) {
	c.println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func (c *CLI) printDetail(format string, args ...any) {
	c.println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

func (c *CLI) printFile(path string) {
	c.println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func (c *CLI) printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(14)
	c.println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func (c *CLI) printNextStep(description, cmd string) {
	c.println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func (c *CLI) printNewline() {
	fmt.Fprintln(c.out)
}

// =============================================================================
// Box Output
// =============================================================================

// printBoxSummary prints the size of a box, one table row per tray, and
// the box's warnings.
func (c *CLI) printBoxSummary(res *generate.BoxResult) {
	c.println(StyleTitle.Render(res.Box.Name))
	if arr := res.Arrangement; arr != nil {
		c.printKeyValue("Exterior", fmt.Sprintf("%.1f x %.1f x %.1f mm", arr.ExteriorWidth, arr.ExteriorDepth, arr.ExteriorHeight))
		c.printKeyValue("Interior", fmt.Sprintf("%.1f x %.1f mm", arr.InteriorWidth, arr.InteriorDepth))
	}
	if res.CacheHits > 0 {
		c.printKeyValue("Cache", styleCached.Render(fmt.Sprintf("%d hits", res.CacheHits)))
	}
	if len(res.Trays) > 0 {
		c.println(trayTable(res))
	}
	for _, w := range res.Warnings {
		c.printWarning("%s", w)
	}
}

func trayTable(res *generate.BoxResult) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(StyleDim).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleTableHeader
			}
			return styleTableCell
		}).
		Headers("Tray", "Name", "Size (mm)", "Spacer", "Refs")
	for _, tr := range res.Trays {
		var refs []string
		for _, p := range tr.Layout.Pockets {
			refs = append(refs, engine.RefCode(tr.Letter, p.Seq))
		}
		t.Row(
			tr.Letter,
			tr.Tray.Name,
			fmt.Sprintf("%.1f x %.1f x %.1f", tr.Placement.Width, tr.Placement.Depth, tr.Placement.Height),
			fmt.Sprintf("%.1f", tr.Spacer.Spacer),
			strings.Join(refs, " "),
		)
	}
	return t.Render()
}

package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sells-group/inspect-cli/internal/evaluate"
	"github.com/sells-group/inspect-cli/internal/model"
)

// Terminal palette.
var (
	colorPass  = lipgloss.Color("#2E7D32")
	colorFail  = lipgloss.Color("#C62828")
	colorMuted = lipgloss.Color("#78909C")
	colorTitle = lipgloss.Color("#1E88E5")

	titleStyle   = lipgloss.NewStyle().Foreground(colorTitle).Bold(true)
	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true).MarginTop(1)
	passStyle    = lipgloss.NewStyle().Foreground(colorPass).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(colorFail).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	bannerStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2)
	nameStyle    = lipgloss.NewStyle().Width(26)
)

// RenderTerminal renders an inspection with colors and a grade banner.
func RenderTerminal(insp model.Inspection) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Inspection: "+insp.Row.Label()) + "\n")
	if insp.Matches > 1 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%d rows matched %q, showing the first", insp.Matches, insp.Query)) + "\n")
	}

	banner := bannerStyle.BorderForeground(colorFail)
	label := failStyle.Render("NOT PASSING: " + insp.Grade.Value)
	if insp.Passing {
		banner = bannerStyle.BorderForeground(colorPass)
		label = passStyle.Render("PASSING: " + insp.Grade.Value)
	}
	b.WriteString(banner.Render(label+"\n"+mutedStyle.Render("source "+insp.Grade.SourceStrategy)) + "\n")

	if insp.Process != nil {
		b.WriteString(headingStyle.Render("Process parameter") + "\n")
		b.WriteString(terminalLine(*insp.Process) + "\n")
	}

	if len(insp.Failures) > 0 {
		b.WriteString(headingStyle.Render("Failures") + "\n")
		for _, f := range insp.Failures {
			b.WriteString(terminalLine(f) + "\n")
		}
	}

	for _, g := range insp.Groups {
		b.WriteString(headingStyle.Render(g.Group) + "\n")
		for _, v := range g.Verdicts {
			b.WriteString(terminalLine(v) + "\n")
		}
	}

	s := insp.Summary
	b.WriteString(headingStyle.Render("Summary") + "\n")
	fmt.Fprintf(&b, "in range %d/%d  out of range %d/%d  missing %d  compliance %.1f%%  ",
		s.InRange, s.Evaluated, s.OutOfRange, s.Evaluated, s.Missing, s.ComplianceRate)
	if s.Overall == model.OverallPass {
		b.WriteString(passStyle.Render(string(s.Overall)))
	} else {
		b.WriteString(failStyle.Render(string(s.Overall)))
	}
	b.WriteString("\n")
	return b.String()
}

func terminalLine(v model.ParameterVerdict) string {
	var status string
	switch v.Status {
	case model.StatusPass:
		status = passStyle.Render("PASS")
	case model.StatusFail:
		status = failStyle.Render("FAIL " + v.Direction())
	default:
		status = mutedStyle.Render("MISSING")
	}
	rng := mutedStyle.Render(fmt.Sprintf("[%s, %s]", evaluate.FormatNumber(v.Min), evaluate.FormatNumber(v.Max)))
	return fmt.Sprintf("  %s %s %s  %s", nameStyle.Render(v.Parameter), status, rng, v.Message)
}

package report

import (
	"fmt"
	"strings"

	"github.com/sells-group/inspect-cli/internal/evaluate"
	"github.com/sells-group/inspect-cli/internal/model"
)

// FormatText renders an inspection as a Markdown report.
func FormatText(insp model.Inspection) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Inspection Report: %s\n", insp.Row.Label())
	if insp.Query != "" {
		fmt.Fprintf(&b, "Query: %s (%s)\n", insp.Query, insp.Kind.Label())
	}
	if insp.Matches > 1 {
		fmt.Fprintf(&b, "Matches: %d (showing first)\n", insp.Matches)
	}
	b.WriteString("\n")

	b.WriteString("## Grade\n")
	verdict := "FAIL"
	if insp.Passing {
		verdict = "PASS"
	}
	fmt.Fprintf(&b, "- Grade: %s (%s)\n", insp.Grade.Value, verdict)
	fmt.Fprintf(&b, "- Source: %s\n", insp.Grade.SourceStrategy)
	for _, a := range insp.Grade.Attempts {
		fmt.Fprintf(&b, "  - %s: %s", a.Strategy, a.Outcome)
		if a.Detail != "" {
			fmt.Fprintf(&b, " (%s)", a.Detail)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if insp.Process != nil {
		b.WriteString("## Process Parameter\n")
		fmt.Fprintf(&b, "- %s\n\n", verdictLine(*insp.Process))
	}

	b.WriteString("## Summary\n")
	s := insp.Summary
	fmt.Fprintf(&b, "- Parameters in range: %d/%d\n", s.InRange, s.Evaluated)
	fmt.Fprintf(&b, "- Parameters out of range: %d/%d\n", s.OutOfRange, s.Evaluated)
	fmt.Fprintf(&b, "- Missing: %d\n", s.Missing)
	fmt.Fprintf(&b, "- Compliance: %.1f%%\n", s.ComplianceRate)
	fmt.Fprintf(&b, "- Overall: %s\n\n", s.Overall)

	if len(insp.Failures) > 0 {
		b.WriteString("## Failures\n")
		for _, f := range insp.Failures {
			fmt.Fprintf(&b, "- %s\n", verdictLine(f))
		}
		b.WriteString("\n")
	}

	for _, g := range insp.Groups {
		fmt.Fprintf(&b, "## %s\n", g.Group)
		for _, v := range g.Verdicts {
			fmt.Fprintf(&b, "- %s\n", verdictLine(v))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func verdictLine(v model.ParameterVerdict) string {
	status := strings.ToUpper(string(v.Status))
	if dir := v.Direction(); dir != "" {
		status += " (" + dir + ")"
	}
	return fmt.Sprintf("**%s** [%s, %s]: %s. %s",
		v.Parameter, evaluate.FormatNumber(v.Min), evaluate.FormatNumber(v.Max), status, v.Message)
}

// FormatComparison renders a comparison as a Markdown table, one row per
// parameter and one column per compared row.
func FormatComparison(res model.ComparisonResult) string {
	var b strings.Builder

	b.WriteString("| Parameter | Range |")
	for _, r := range res.Rows {
		fmt.Fprintf(&b, " %s |", r.Label())
	}
	b.WriteString("\n|---|---|")
	for range res.Rows {
		b.WriteString("---|")
	}
	b.WriteString("\n")

	for _, p := range res.Parameters {
		verdicts := res.PerParameter[p]
		rng := ""
		if len(verdicts) > 0 {
			rng = evaluate.FormatNumber(verdicts[0].Min) + " - " + evaluate.FormatNumber(verdicts[0].Max)
		}
		fmt.Fprintf(&b, "| %s | %s |", p, rng)
		for _, v := range verdicts {
			fmt.Fprintf(&b, " %s |", cellText(v))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func cellText(v model.ParameterVerdict) string {
	switch v.Status {
	case model.StatusMissing:
		return "n/a"
	case model.StatusFail:
		return fmt.Sprintf("%s ✗ %s", evaluate.FormatNumber(*v.Observed), v.Direction())
	default:
		return evaluate.FormatNumber(*v.Observed) + " ✓"
	}
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/sandeepkv93/estate-admin-backend/internal/health"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Faint(true)
	nameStyle  = lipgloss.NewStyle().Width(14)
)

type ciReport struct {
	Ready  bool                 `json:"ready"`
	Checks []health.CheckResult `json:"checks"`
	Error  string               `json:"error,omitempty"`
}

func printReport(w io.Writer, ci, ready bool, results []health.CheckResult, err error) {
	if ci {
		out := ciReport{Ready: ready && err == nil, Checks: results}
		if out.Checks == nil {
			out.Checks = []health.CheckResult{}
		}
		if err != nil {
			out.Error = err.Error()
		}
		_ = json.NewEncoder(w).Encode(out)
		return
	}

	_, _ = fmt.Fprintln(w, titleStyle.Render("estate-admin check"))
	for _, r := range results {
		status := okStyle.Render("ok")
		if !r.Healthy {
			status = failStyle.Render("fail")
		}
		line := fmt.Sprintf("  %s %s %s", nameStyle.Render(r.Name), status, mutedStyle.Render(fmt.Sprintf("%dms", r.DurationMS)))
		if r.Error != "" {
			line += " " + mutedStyle.Render(r.Error)
		}
		_, _ = fmt.Fprintln(w, line)
	}
	switch {
	case err != nil:
		_, _ = fmt.Fprintln(w, failStyle.Render("error: ")+err.Error())
	case ready:
		_, _ = fmt.Fprintln(w, okStyle.Render("ready"))
	default:
		_, _ = fmt.Fprintln(w, failStyle.Render("not ready"))
	}
}

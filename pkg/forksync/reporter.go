package forksync

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/mattsolo1/grove-core/tui/theme"
)

var (
	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("6")).
			Padding(0, 2)

	summaryStyle = theme.DefaultTheme.Box.Padding(0, 2)
)

// Reporter writes human-readable progress for the operator.
type Reporter struct {
	out io.Writer
}

// NewReporter returns a Reporter writing to out.
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// Writer returns the underlying writer, used for prompts.
func (r *Reporter) Writer() io.Writer {
	return r.out
}

// Banner prints the run header.
func (r *Reporter) Banner(project string, started time.Time) {
	body := fmt.Sprintf("%s sync\n%s", project, started.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(r.out, bannerStyle.Render(body))
}

// Section prints a heading for a group of checks.
func (r *Reporter) Section(title string) {
	fmt.Fprintln(r.out, "\n"+color.CyanString("%s", title))
}

// Running announces a command that is about to run.
func (r *Reporter) Running(description string) {
	fmt.Fprintf(r.out, "%s %s...\n", color.CyanString("→"), description)
}

func (r *Reporter) Success(format string, a ...any) {
	fmt.Fprintf(r.out, "%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, a...))
}

func (r *Reporter) Failure(format string, a ...any) {
	fmt.Fprintf(r.out, "%s %s\n", color.RedString("✗"), fmt.Sprintf(format, a...))
}

func (r *Reporter) Warning(format string, a ...any) {
	fmt.Fprintln(r.out, color.YellowString("⚠  "+format, a...))
}

func (r *Reporter) Info(format string, a ...any) {
	fmt.Fprintf(r.out, format+"\n", a...)
}

// Detail prints text indented under the previous line, one line at a time.
func (r *Reporter) Detail(label, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	prefix := "   "
	if label != "" {
		fmt.Fprintf(r.out, "%s%s:\n", prefix, label)
		prefix = "     "
	}
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintln(r.out, prefix+strings.TrimRight(line, "\r"))
	}
}

// Hints prints a list of suggestions.
func (r *Reporter) Hints(title string, hints []string) {
	if len(hints) == 0 {
		return
	}
	fmt.Fprintln(r.out, color.YellowString("%s", title))
	for _, h := range hints {
		fmt.Fprintf(r.out, "  • %s\n", h)
	}
}

// Summary prints the final report for a run.
func (r *Reporter) Summary(s *Summary) {
	var status string
	switch s.Status {
	case StatusSuccess:
		status = theme.DefaultTheme.Success.Render(s.Status.String())
	case StatusFailed, StatusInterrupted:
		status = theme.DefaultTheme.Error.Render(s.Describe())
	default:
		status = theme.DefaultTheme.Warning.Render(s.Describe())
	}

	lines := []string{
		fmt.Sprintf("Status:  %s", status),
		fmt.Sprintf("Steps:   %d/%d succeeded", s.Succeeded, s.Total),
		fmt.Sprintf("Elapsed: %s", s.Elapsed.Round(100*time.Millisecond)),
	}
	if s.Status == StatusSuccess {
		lines = append(lines, "Your fork is now up to date with upstream.")
	}
	fmt.Fprintln(r.out, "\n"+summaryStyle.Render(strings.Join(lines, "\n")))
}

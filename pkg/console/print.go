package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"src.kitcon.sh/pkg/buildinfo"
	"src.kitcon.sh/pkg/errutil"
)

const (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6B7280")
	colorGood    = lipgloss.Color("#10B981")
	colorError   = lipgloss.Color("#EF4444")
	colorWarning = lipgloss.Color("#F59E0B")
	colorStatus  = lipgloss.Color("#3B82F6")
)

var (
	statusStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorStatus)
	goodStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorGood)
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWarning)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)

	headerCellStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle       = lipgloss.NewStyle().Padding(0, 1)

	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 2)
)

func printPrefixed(w io.Writer, prefix string, format string, args ...any) {
	fmt.Fprintln(w, prefix+" "+fmt.Sprintf(format, args...))
}

func (d *Driver) printStatus(format string, args ...any) {
	printPrefixed(d.out, statusStyle.Render("[*]"), format, args...)
}

func (d *Driver) printGood(format string, args ...any) {
	printPrefixed(d.out, goodStyle.Render("[+]"), format, args...)
}

func (d *Driver) printWarning(format string, args ...any) {
	printPrefixed(d.out, warningStyle.Render("[!]"), format, args...)
}

func (d *Driver) printError(format string, args ...any) {
	printPrefixed(d.out, errorStyle.Render("[-]"), format, args...)
}

func (d *Driver) println(a ...any) { fmt.Fprintln(d.out, a...) }

// ShowFatal prints an error that stops the console, followed by each error in
// its chain of causes.
func ShowFatal(w io.Writer, err error) {
	printPrefixed(w, errorStyle.Render("[-]"), "fatal: %v", err)
	for _, cause := range errutil.Causes(err) {
		fmt.Fprintln(w, mutedStyle.Render("    caused by: "+cause.Error()))
	}
}

func (d *Driver) banner() string {
	fw := d.fw
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("kitcon " + buildinfo.FullVersion()))
	fmt.Fprintf(&sb, "\n%d modules - %d payloads - %d plugins",
		len(fw.Modules()), len(fw.Payloads()), len(fw.Plugins()))
	if rev := buildinfo.Revision(); rev != buildinfo.FullVersion() {
		sb.WriteString("\n" + mutedStyle.Render("revision "+rev))
	}
	return bannerStyle.Render(sb.String())
}

// Render a titled table with a header row. Columns are sized by display
// width, so wide and multibyte cells stay aligned.
func table(w io.Writer, title string, header []string, rows [][]string) {
	t := ltable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		Headers(header...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return headerCellStyle
			}
			return cellStyle
		})
	fmt.Fprintf(w, "\n%s\n%s\n\n", titleStyle.Render(title), mutedStyle.Render(strings.Repeat("=", lipgloss.Width(title))))
	fmt.Fprintln(w, t.String())
	fmt.Fprintln(w)
}

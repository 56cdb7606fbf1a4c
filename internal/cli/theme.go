package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

type theme struct {
	color          bool
	title          lipgloss.Style
	label          lipgloss.Style
	value          lipgloss.Style
	option         lipgloss.Style
	optionActive   lipgloss.Style
	index          lipgloss.Style
	muted          lipgloss.Style
	help           lipgloss.Style
	prefixActive   string
	prefixInactive string
}

func newTheme(color bool) theme {
	if !color {
		return theme{
			title:          lipgloss.NewStyle(),
			label:          lipgloss.NewStyle(),
			value:          lipgloss.NewStyle(),
			option:         lipgloss.NewStyle(),
			optionActive:   lipgloss.NewStyle(),
			index:          lipgloss.NewStyle(),
			muted:          lipgloss.NewStyle(),
			help:           lipgloss.NewStyle(),
			prefixActive:   ">",
			prefixInactive: " ",
		}
	}

	accent := lipgloss.Color("#dc244c")
	muted := lipgloss.Color("#9fb3c8")

	return theme{
		color:          true,
		title:          lipgloss.NewStyle().Foreground(accent).Bold(true),
		label:          lipgloss.NewStyle().Bold(true),
		value:          lipgloss.NewStyle().Foreground(accent),
		option:         lipgloss.NewStyle(),
		optionActive:   lipgloss.NewStyle().Foreground(lipgloss.Color("#0b1215")).Background(accent).Bold(true),
		index:          lipgloss.NewStyle().Foreground(muted),
		muted:          lipgloss.NewStyle().Foreground(muted).Faint(true),
		help:           lipgloss.NewStyle().Faint(true),
		prefixActive:   lipgloss.NewStyle().Foreground(accent).Render("❯"),
		prefixInactive: " ",
	}
}

func supportsColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	type fd interface {
		Fd() uintptr
	}
	f, ok := w.(fd)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func isTerminal(in io.Reader, out io.Writer) bool {
	type fd interface {
		Fd() uintptr
	}
	fin, okIn := in.(fd)
	fout, okOut := out.(fd)
	return okIn && okOut && term.IsTerminal(int(fin.Fd())) && term.IsTerminal(int(fout.Fd()))
}

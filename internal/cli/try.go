package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kaijietti/qdrant-web-ui/internal/editor"
)

const (
	defaultTryRequest = "POST collections/demo/points/visualize"
	maxListed         = 10
)

// ErrNotInteractive is returned when try runs without a terminal.
var ErrNotInteractive = errors.New("try needs an interactive terminal")

func runTry(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("try", flag.ContinueOnError)
	fs.SetOutput(stderr)
	request := fs.String("request", defaultTryRequest, "Request line of the block being edited")
	src := addSourceFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !isTerminal(stdin, stdout) {
		return ErrNotInteractive
	}

	store, err := src.store(fs)
	if err != nil {
		return err
	}
	provider, err := newCompleter(ctx, store)
	if err != nil {
		return err
	}

	model := newPlayModel(ctx, provider, strings.TrimSpace(*request), newTheme(supportsColor(stdout)))
	prog := tea.NewProgram(model, tea.WithInput(stdin), tea.WithOutput(stdout), tea.WithContext(ctx))
	_, err = prog.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// playModel edits one request body and shows live suggestions for the
// cursor at the end of the text.
type playModel struct {
	ctx      context.Context
	provider completer
	theme    theme
	request  string
	body     string

	suggestions []editor.Suggestion
	selected    int
	quitting    bool
}

func newPlayModel(ctx context.Context, provider completer, request string, t theme) *playModel {
	if request == "" {
		request = defaultTryRequest
	}
	m := &playModel{ctx: ctx, provider: provider, theme: t, request: request}
	m.refresh()
	return m
}

func (m *playModel) Init() tea.Cmd {
	return nil
}

func (m *playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyUp:
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case tea.KeyDown:
		if m.selected < len(m.suggestions)-1 && m.selected < maxListed-1 {
			m.selected++
		}
		return m, nil
	case tea.KeyTab:
		if len(m.suggestions) > 0 {
			m.body = acceptSuggestion(m.body, m.suggestions[m.selected].InsertText)
		}
	case tea.KeyEnter:
		m.body += "\n"
	case tea.KeySpace:
		m.body += " "
	case tea.KeyBackspace:
		if m.body != "" {
			_, size := utf8.DecodeLastRuneInString(m.body)
			m.body = m.body[:len(m.body)-size]
		}
	case tea.KeyRunes:
		m.body += string(key.Runes)
	default:
		return m, nil
	}
	m.refresh()
	return m, nil
}

func (m *playModel) refresh() {
	text := m.request + "\n" + m.body
	lines := strings.Split(text, "\n")
	cursor := editor.Cursor{
		Line:   len(lines),
		Column: editor.ColumnAfter(lines[len(lines)-1]),
	}
	block := &editor.CodeBlock{Text: text, StartLine: 1, OperationKey: m.request}
	m.suggestions = m.provider.ProvideCompletionItems(m.ctx, block, cursor).Suggestions
	m.selected = 0
}

func (m *playModel) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.theme.title.Render("filter-complete playground " + versionTag()))
	b.WriteString("\n\n")
	b.WriteString(m.theme.value.Render(m.request))
	b.WriteString("\n")
	b.WriteString(m.body)
	b.WriteString("▌\n\n")

	if len(m.suggestions) == 0 {
		b.WriteString(m.theme.muted.Render("no suggestions"))
		b.WriteString("\n")
	}
	for i, s := range m.suggestions {
		if i == maxListed {
			fmt.Fprintf(&b, "%s\n", m.theme.muted.Render(fmt.Sprintf("  … %d more", len(m.suggestions)-maxListed)))
			break
		}
		if i == m.selected {
			fmt.Fprintf(&b, "%s %s\n", m.theme.prefixActive, m.theme.optionActive.Render(s.Label))
			continue
		}
		fmt.Fprintf(&b, "%s %s\n", m.theme.prefixInactive, m.theme.option.Render(s.Label))
	}
	b.WriteString("\n")
	b.WriteString(m.theme.help.Render("tab accept • ↑/↓ select • enter newline • esc quit"))
	return b.String()
}

// acceptSuggestion replaces the token being typed at the end of body with
// the suggestion. Inside an open string the closing quote is added.
func acceptSuggestion(body, suggestion string) string {
	i := len(body)
	for i > 0 {
		r, size := utf8.DecodeLastRuneInString(body[:i])
		if !isWordRune(r) {
			break
		}
		i -= size
	}
	insideString := i > 0 && body[i-1] == '"'
	switch {
	case insideString && strings.HasPrefix(suggestion, `"`):
		return body[:i-1] + suggestion
	case insideString:
		return body[:i] + suggestion + `"`
	default:
		return body[:i] + suggestion
	}
}

func isWordRune(r rune) bool {
	return r == '_' || r == '-' || r == '.' ||
		(r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

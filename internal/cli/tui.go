package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ladderworks/ladderkit/pkg/editor"
	"github.com/ladderworks/ladderkit/pkg/errors"
	"github.com/ladderworks/ladderkit/pkg/ladder"
	"github.com/ladderworks/ladderkit/pkg/layout"
	"github.com/ladderworks/ladderkit/pkg/rung"
)

// Editor styles.
var (
	tuiCursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Reverse(true)
	tuiRungStyle    = lipgloss.NewStyle().Foreground(colorWhite)
	tuiNumberStyle  = lipgloss.NewStyle().Foreground(colorGray)
	tuiCommentStyle = lipgloss.NewStyle().Foreground(colorGreen).Italic(true)
	tuiStatusStyle  = lipgloss.NewStyle().Foreground(colorYellow)
	tuiDirtyStyle   = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
)

// editCommand creates the edit command for the interactive terminal editor.
func (c *CLI) editCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "edit [routine.json]",
		Short: "Edit a routine in an interactive terminal session",
		Long: `Edit a routine in an interactive terminal session.

Keys:
  ↑/k ↓/j    move between rungs
  ←/h →/l    move within a rung
  c / C      insert XIC / XIO contact at the cursor
  o          insert OTE coil at the cursor
  b          wrap the element at the cursor in a parallel branch
  x          delete the element at the cursor
  a          append a new empty rung
  d          delete the current rung
  u / r      undo / redo
  s          save
  q          quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return runEdit(args[0], cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "geometry config file (TOML)")

	return cmd
}

func runEdit(path string, cfg layout.Config) error {
	doc, err := ladder.ReadFile(path)
	if err != nil {
		return err
	}
	rt, err := doc.Routine()
	if err != nil {
		return err
	}
	ctrl, err := editor.NewController(rt, layout.NewEngine(cfg))
	if err != nil {
		return err
	}

	m := newEditorModel(path, doc, ctrl)
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(editorModel); ok && fm.fatal != nil {
		return fm.fatal
	}
	return nil
}

// editorModel is the bubbletea model for the interactive ladder editor.
type editorModel struct {
	path    string
	doc     *ladder.Document
	ctrl    *editor.Controller
	cursorR int // rung cursor
	cursorP int // sequence position cursor within the rung
	dirty   bool
	status  string
	fatal   error
}

func newEditorModel(path string, doc *ladder.Document, ctrl *editor.Controller) editorModel {
	return editorModel{path: path, doc: doc, ctrl: ctrl}
}

func (m editorModel) Init() tea.Cmd {
	return nil
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	ctx := context.Background()
	m.status = ""

	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "up", "k":
		if m.cursorR > 0 {
			m.cursorR--
			m.clampPosition()
		}
	case "down", "j":
		if m.cursorR < m.ctrl.Routine().Len()-1 {
			m.cursorR++
			m.clampPosition()
		}
	case "left", "h":
		if m.cursorP > 0 {
			m.cursorP--
		}
	case "right", "l":
		if r := m.currentRung(); r != nil && m.cursorP < r.Len() {
			m.cursorP++
		}

	case "c":
		m.apply(m.insert(ctx, rung.NewInstruction("XIC", "New")))
	case "C":
		m.apply(m.insert(ctx, rung.NewInstruction("XIO", "New")))
	case "o":
		m.apply(m.insert(ctx, rung.NewInstruction("OTE", "New")))

	case "b":
		m.apply(m.ctrl.InsertBranch(ctx, m.cursorR, m.cursorP, m.cursorP+1))

	case "x":
		m.apply(m.ctrl.RemoveInstruction(ctx, m.cursorR, m.cursorP))

	case "a":
		_, err := m.ctrl.AddRung(ctx, "")
		m.apply(err)
		if err == nil {
			m.cursorR = m.ctrl.Routine().Len() - 1
			m.cursorP = 0
		}

	case "d":
		m.apply(m.ctrl.RemoveRung(ctx, m.cursorR))
		if m.cursorR >= m.ctrl.Routine().Len() && m.cursorR > 0 {
			m.cursorR--
		}
		m.clampPosition()

	case "u":
		if m.ctrl.CanUndo() {
			m.apply(m.ctrl.Undo(ctx))
			m.clampCursor()
		} else {
			m.status = "nothing to undo"
		}
	case "r":
		if m.ctrl.CanRedo() {
			m.apply(m.ctrl.Redo(ctx))
			m.clampCursor()
		} else {
			m.status = "nothing to redo"
		}

	case "s":
		if err := m.save(); err != nil {
			m.status = errors.UserMessage(err)
		} else {
			m.dirty = false
			m.status = "saved " + m.path
		}
	}

	return m, nil
}

// apply records a mutation outcome: recoverable errors become status text,
// anything else aborts the session.
func (m *editorModel) apply(err error) {
	if err == nil {
		m.dirty = true
		m.clampPosition()
		return
	}
	switch errors.GetCode(err) {
	case errors.ErrCodePositionOutOfRange, errors.ErrCodeUnbalancedBranch,
		errors.ErrCodeInvalidInput, errors.ErrCodeInvalidInsertionPoint,
		errors.ErrCodeNoRungAtCoordinate:
		m.status = errors.UserMessage(err)
		return
	}
	m.fatal = err
}

func (m *editorModel) insert(ctx context.Context, ins rung.Instruction) error {
	return m.ctrl.InsertInstruction(ctx, m.cursorR, m.cursorP, ins)
}

// save rebuilds the rung documents from the live model, carrying over the
// original document's identity.
func (m *editorModel) save() error {
	doc := ladder.FromRoutine(m.ctrl.Routine())
	doc.ID = m.doc.ID
	doc.Name = m.doc.Name
	doc.Meta = m.doc.Meta
	return ladder.WriteFile(doc, m.path)
}

func (m *editorModel) currentRung() *rung.Rung {
	r, err := m.ctrl.Routine().Rung(m.cursorR)
	if err != nil {
		return nil
	}
	return r
}

func (m *editorModel) clampCursor() {
	if n := m.ctrl.Routine().Len(); m.cursorR >= n {
		m.cursorR = n - 1
	}
	if m.cursorR < 0 {
		m.cursorR = 0
	}
	m.clampPosition()
}

func (m *editorModel) clampPosition() {
	r := m.currentRung()
	if r == nil {
		m.cursorP = 0
		return
	}
	if m.cursorP > r.Len() {
		m.cursorP = r.Len()
	}
}

func (m editorModel) View() string {
	var b strings.Builder

	title := m.doc.Name
	if m.dirty {
		title += " " + tuiDirtyStyle.Render("[modified]")
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ rung  ←/→ position  c/C/o insert  b branch  x delete  u/r undo  s save  q quit"))
	b.WriteString("\n\n")

	rt := m.ctrl.Routine()
	if rt.Len() == 0 {
		b.WriteString(StyleDim.Render("  (empty routine — press 'a' to add a rung)"))
		b.WriteString("\n")
	}

	for i, r := range rt.Rungs() {
		if c := r.Comment(); c != "" {
			for _, line := range strings.Split(c, "\n") {
				b.WriteString("       " + tuiCommentStyle.Render("// "+line))
				b.WriteString("\n")
			}
		}
		b.WriteString(tuiNumberStyle.Render(fmt.Sprintf("%4d  ", i)))
		b.WriteString(m.renderRung(i, r))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(tuiStatusStyle.Render("  " + m.status))
		b.WriteString("\n")
	}

	return b.String()
}

// renderRung draws one rung as a token stream with the position cursor
// shown as an insertion caret.
func (m editorModel) renderRung(number int, r *rung.Rung) string {
	active := number == m.cursorR

	var tokens []string
	for _, el := range r.Sequence() {
		tokens = append(tokens, tokenText(el))
	}
	tokens = append(tokens, "⏚") // right rail anchor, also the end position

	var b strings.Builder
	b.WriteString(tuiRungStyle.Render("⊢ "))
	for pos, tok := range tokens {
		if pos > 0 {
			b.WriteString(tuiRungStyle.Render("─"))
		}
		if active && pos == m.cursorP {
			b.WriteString(tuiCursorStyle.Render(tok))
		} else {
			b.WriteString(tuiRungStyle.Render(tok))
		}
	}
	return b.String()
}

func tokenText(el rung.Element) string {
	switch el.Kind {
	case rung.KindBranchStart:
		return "["
	case rung.KindBranchNext:
		return ","
	case rung.KindBranchEnd:
		return "]"
	default:
		return el.Instruction.Text()
	}
}

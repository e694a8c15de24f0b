package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ckd-screening-server/internal/inference"
	"ckd-screening-server/internal/pipeline"
	"ckd-screening-server/internal/schema"
)

// importanceProvider is satisfied by artifact-backed classifiers that
// carry per-feature importances. The chart is only shown when the loaded
// model provides them.
type importanceProvider interface {
	Importances() []inference.Importance
}

// keyMap defines the dashboard key bindings.
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Predict key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "previous field"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "next field"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "decrease"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "increase"),
	),
	Predict: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "predict"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	labelStyle    = lipgloss.NewStyle().Width(36)
	valueStyle    = lipgloss.NewStyle().Bold(true)
	diseaseStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	normalStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	barStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	helpStyle     = lipgloss.NewStyle().Faint(true)
	footnoteStyle = lipgloss.NewStyle().Faint(true).Italic(true)
)

// outcome holds the rendered result of the last prediction.
type outcome struct {
	formatted pipeline.Formatted
	err       error
}

// Model is the bubbletea model for the interactive prediction dashboard.
// Widgets keep every value inside its clinical domain, so assembling a
// feature record from the current state cannot fail.
type Model struct {
	classifier inference.Classifier
	fields     []schema.Field
	values     []float64
	cursor     int
	last       *outcome
}

// New builds the dashboard over the classifier's schema, seeding every
// field with its default value.
func New(classifier inference.Classifier) Model {
	fields := classifier.Schema().Fields()
	values := make([]float64, len(fields))
	for i, f := range fields {
		values[i] = f.Default
	}
	return Model{
		classifier: classifier,
		fields:     fields,
		values:     values,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.fields)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Left):
			m.values[m.cursor] = adjust(m.fields[m.cursor], m.values[m.cursor], -1)
		case key.Matches(msg, keys.Right):
			m.values[m.cursor] = adjust(m.fields[m.cursor], m.values[m.cursor], +1)
		case key.Matches(msg, keys.Predict):
			m.last = m.predict()
		}
	}
	return m, nil
}

// adjust moves a field value one step in the given direction, staying
// inside the field's domain.
func adjust(f schema.Field, v float64, dir int) float64 {
	switch f.Kind {
	case schema.Binary:
		if dir > 0 {
			return 1
		}
		return 0
	case schema.Enum:
		idx := 0
		for i, a := range f.Allowed {
			if a == v {
				idx = i
				break
			}
		}
		idx += dir
		if idx < 0 {
			idx = 0
		}
		if idx > len(f.Allowed)-1 {
			idx = len(f.Allowed) - 1
		}
		return f.Allowed[idx]
	default:
		next := v + float64(dir)*f.Step
		if next < f.Min {
			next = f.Min
		}
		if next > f.Max {
			next = f.Max
		}
		return next
	}
}

func (m Model) predict() *outcome {
	input := make(map[string]float64, len(m.fields))
	for i, f := range m.fields {
		input[f.Name] = m.values[i]
	}
	rec, err := schema.FromValues(m.classifier.Schema(), input)
	if err != nil {
		return &outcome{err: err}
	}

	label, err := m.classifier.Predict(rec)
	if err != nil {
		return &outcome{err: err}
	}
	proba, err := m.classifier.PredictProba(rec)
	if err != nil {
		return &outcome{err: err}
	}
	formatted, err := pipeline.Format(m.classifier.Policy(), label, proba)
	if err != nil {
		return &outcome{err: err}
	}
	return &outcome{formatted: formatted}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Kidney Disease Prediction System"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("model %s · schema %s",
		m.classifier.ModelVersion(), m.classifier.Schema().Name)))
	b.WriteString("\n\n")

	for i, f := range m.fields {
		cursor := "  "
		line := fmt.Sprintf("%s %s", labelStyle.Render(fieldLabel(f)),
			valueStyle.Render(formatValue(f, m.values[i])))
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
			line = cursorStyle.Render(line)
		}
		b.WriteString(cursor + line + "\n")
	}

	if m.last != nil {
		b.WriteString("\n")
		b.WriteString(m.renderOutcome())
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ field · ←/→ adjust · enter predict · q quit"))
	b.WriteString("\n")
	b.WriteString(footnoteStyle.Render("Prediction tool only. Consult a nephrologist for final diagnosis."))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderOutcome() string {
	var b strings.Builder
	if m.last.err != nil {
		b.WriteString(diseaseStyle.Render("Prediction failed: " + m.last.err.Error()))
		b.WriteString("\n")
		return b.String()
	}

	f := m.last.formatted
	style := normalStyle
	if f.Result == pipeline.ResultDisease {
		style = diseaseStyle
	}
	b.WriteString("Diagnosis: " + style.Render(f.Result) + "\n")
	b.WriteString(fmt.Sprintf("Probability of Kidney Disease: %.2f%%\n", f.ProbCKD))
	b.WriteString(fmt.Sprintf("Probability of Normal: %.2f%%\n", f.ProbNormal))

	if provider, ok := m.classifier.(importanceProvider); ok {
		if chart := renderImportances(provider.Importances(), m.lookupLabel); chart != "" {
			b.WriteString("\nTop Features\n")
			b.WriteString(chart)
		}
	}
	return b.String()
}

func (m Model) lookupLabel(name string) string {
	for _, f := range m.fields {
		if f.Name == name {
			return fieldLabel(f)
		}
	}
	return name
}

// renderImportances draws a ranked horizontal bar chart of up to ten
// features, scaled to the largest importance.
func renderImportances(imps []inference.Importance, label func(string) string) string {
	if len(imps) == 0 {
		return ""
	}
	if len(imps) > 10 {
		imps = imps[:10]
	}
	maxVal := imps[0].Value
	if maxVal <= 0 {
		return ""
	}

	const barWidth = 30
	var b strings.Builder
	for _, imp := range imps {
		n := int(imp.Value / maxVal * barWidth)
		if n < 1 {
			n = 1
		}
		b.WriteString(fmt.Sprintf("%s %s %.3f\n",
			labelStyle.Render(label(imp.Feature)),
			barStyle.Render(strings.Repeat("█", n)),
			imp.Value))
	}
	return b.String()
}

func fieldLabel(f schema.Field) string {
	if f.Unit != "" {
		return fmt.Sprintf("%s (%s)", f.Label, f.Unit)
	}
	return f.Label
}

func formatValue(f schema.Field, v float64) string {
	switch {
	case f.Kind == schema.Enum:
		return fmt.Sprintf("%.3f", v)
	case f.Kind == schema.Binary || f.Kind == schema.Ordinal:
		return fmt.Sprintf("%d", int(v))
	case f.Step > 0 && f.Step < 1:
		return fmt.Sprintf("%.1f", v)
	default:
		return fmt.Sprintf("%g", v)
	}
}

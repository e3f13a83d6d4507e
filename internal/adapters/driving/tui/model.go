// Package tui provides an interactive terminal UI for searching the
// indexed corpus.
package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tanmayhire99/finrag/internal/core/domain"
	"github.com/tanmayhire99/finrag/internal/core/ports/driving"
)

// Model is the Bubble Tea model for the search UI.
type Model struct {
	retriever driving.Retriever
	opts      domain.SearchOptions

	input     textinput.Model
	viewport  viewport.Model
	results   []domain.SimilarityResult
	expanded  string
	status    string
	cursor    int
	ready     bool
	lastQuery string
}

// New creates a search UI over the retriever.
func New(retriever driving.Retriever, opts domain.SearchOptions) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	return Model{
		retriever: retriever,
		opts:      opts,
		input:     ti,
		viewport:  viewport.New(0, 0),
		status:    "Ready. Type to search the indexed documents.",
	}
}

// Init initialises the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + qh + 1 // header, status, query box, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			if query := strings.TrimSpace(m.input.Value()); query != "" {
				m.runSearch(query)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "down":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "up":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// runSearch executes one retrieval call and folds the outcome into the
// view state.
func (m *Model) runSearch(query string) {
	resp, err := m.retriever.Search(context.Background(), query, m.opts)
	if err != nil {
		m.status = "Error: " + err.Error()
		m.results = nil
		m.expanded = ""
		return
	}

	m.results = resp.Results
	m.cursor = 0
	m.lastQuery = query
	m.expanded = ""
	if resp.Processing.ExpandedQuery != query {
		m.expanded = resp.Processing.ExpandedQuery
	}
	m.status = fmt.Sprintf("%d results for %q", len(resp.Results), query)
	if resp.Processing.ExpansionCached {
		m.status += " (expansion cached)"
	}
}

// View renders the UI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("finrag - document search")
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderCurrentResult() string {
	if len(m.results) == 0 {
		return "No results yet."
	}

	r := m.results[m.cursor]
	title := fmt.Sprintf("Result %d/%d  %s (%d, %s)  similarity=%.3f",
		m.cursor+1, len(m.results), r.PDFName, r.Year, r.DocType, r.Similarity)
	if r.OCRProcessed {
		title += "  [ocr]"
	}
	body := highlightBestSentence(r.Content, m.lastQuery)
	return title + "\n\n" + body
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	wordRe         = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe     = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

// highlightBestSentence emphasises the sentence sharing the most words
// with the query.
func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{strings.TrimSpace(text)}
	}

	queryTokens := toTokenSet(query)
	if len(queryTokens) == 0 {
		return strings.Join(sentences, " ")
	}

	bestIdx, bestScore := 0, -1
	for i, s := range sentences {
		if score := tokenOverlapScore(queryTokens, s); score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	for i := range sentences {
		sentence := strings.TrimSpace(sentences[i])
		if i == bestIdx {
			sentences[i] = highlightStyle.Render(sentence)
		} else {
			sentences[i] = sentence
		}
	}
	return strings.Join(sentences, " ")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := wordRe.FindAllString(strings.ToLower(s), -1)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	seen := make(map[string]struct{})
	for _, t := range wordRe.FindAllString(strings.ToLower(sentence), -1) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

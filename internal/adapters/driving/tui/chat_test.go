package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epistle-labs/epistle/internal/core/domain"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	answer   string
	err      error
	gotQuery string
}

func (m *mockQueryService) Answer(_ context.Context, question string) (string, error) {
	m.gotQuery = question
	return m.answer, m.err
}

func (m *mockQueryService) Search(_ context.Context, _ string, _ int) ([]domain.ScoredDocument, error) {
	return nil, m.err
}

func (m *mockQueryService) History() []domain.Turn { return nil }

func (m *mockQueryService) DocumentCount(_ context.Context) (int, error) {
	return 0, m.err
}

func sized(t *testing.T, m Model) Model {
	t.Helper()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return updated.(Model)
}

func TestModel_QuitKeys(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
	}{
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}},
		{"ctrl+d", tea.KeyMsg{Type: tea.KeyCtrlD}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := sized(t, New(&mockQueryService{}, 0))

			_, cmd := m.Update(tt.msg)

			require.NotNil(t, cmd)
			assert.Equal(t, tea.Quit(), cmd())
		})
	}
}

func TestModel_QuitWords(t *testing.T) {
	for _, word := range []string{"quit", "exit", "q"} {
		t.Run(word, func(t *testing.T) {
			m := sized(t, New(&mockQueryService{}, 0))
			m.input.SetValue(word)

			_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

			require.NotNil(t, cmd)
			assert.Equal(t, tea.Quit(), cmd())
		})
	}
}

func TestModel_EnterAsksQuestion(t *testing.T) {
	svc := &mockQueryService{answer: "Three emails arrived."}
	m := sized(t, New(svc, 3))
	m.input.SetValue("How many emails?")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	assert.True(t, m.thinking)
	assert.Empty(t, m.input.Value())
	require.NotNil(t, cmd)

	// The batched command includes the Answer call; run it and feed
	// the resulting message back through Update.
	msg := collectAnswer(t, cmd)
	assert.Equal(t, "How many emails?", svc.gotQuery)

	updated, _ = m.Update(msg)
	m = updated.(Model)

	assert.False(t, m.thinking)
	assert.Contains(t, m.transcript, "How many emails?")
	assert.Contains(t, m.transcript, "Three emails arrived.")
}

func TestModel_EnterIgnoresEmptyInput(t *testing.T) {
	m := sized(t, New(&mockQueryService{}, 0))
	m.input.SetValue("   ")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	assert.False(t, m.thinking)
	assert.Nil(t, cmd)
}

func TestModel_AnswerErrorShownInTranscript(t *testing.T) {
	m := sized(t, New(&mockQueryService{}, 0))
	m.thinking = true

	updated, _ := m.Update(answerMsg{
		question: "anything",
		err:      errors.New("model unreachable"),
	})
	m = updated.(Model)

	assert.False(t, m.thinking)
	assert.Contains(t, m.transcript, "model unreachable")
}

func TestModel_ViewBeforeFirstResize(t *testing.T) {
	m := New(&mockQueryService{}, 0)

	assert.Equal(t, "Loading...", m.View())
}

func TestModel_ViewShowsDocumentCount(t *testing.T) {
	m := sized(t, New(&mockQueryService{}, 42))

	assert.Contains(t, m.View(), "42 emails indexed")
}

// collectAnswer runs cmd, flattening tea.Batch, and returns the
// answerMsg it produced.
func collectAnswer(t *testing.T, cmd tea.Cmd) answerMsg {
	t.Helper()

	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case answerMsg:
			return msg
		case tea.BatchMsg:
			queue = append(queue, msg...)
		}
	}

	t.Fatal("no answerMsg produced")
	return answerMsg{}
}

package cli

import (
	"context"

	"github.com/epistle-labs/epistle/internal/core/domain"
	"github.com/epistle-labs/epistle/internal/core/ports/driving"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	answer   string
	hits     []domain.ScoredDocument
	turns    []domain.Turn
	count    int
	err      error
	gotQuery string
	gotK     int
}

func (m *mockQueryService) Answer(_ context.Context, question string) (string, error) {
	m.gotQuery = question
	return m.answer, m.err
}

func (m *mockQueryService) Search(_ context.Context, query string, k int) ([]domain.ScoredDocument, error) {
	m.gotQuery = query
	m.gotK = k
	return m.hits, m.err
}

func (m *mockQueryService) History() []domain.Turn {
	return m.turns
}

func (m *mockQueryService) DocumentCount(_ context.Context) (int, error) {
	return m.count, m.err
}

// mockWorkflow is a mock implementation of driving.Workflow.
type mockWorkflow struct {
	result   *driving.RefreshResult
	err      error
	gotStart string
	gotEnd   string
}

func (m *mockWorkflow) Refresh(_ context.Context, startDate, endDate string) (*driving.RefreshResult, error) {
	m.gotStart = startDate
	m.gotEnd = endDate
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &driving.RefreshResult{}, nil
}

// setupTestServices injects mock services and cached settings so
// commands run without touching config files or the network. The
// returned cleanup restores the package state.
func setupTestServices() func() {
	settings := domain.DefaultSettings()
	settings.EmailID = "user@example.com"
	settings.AppPassword = "secret"

	loadedSettings = &settings
	queryService = &mockQueryService{answer: "mock answer"}
	workflowService = &mockWorkflow{result: &driving.RefreshResult{Fetched: 2, Indexed: 2}}

	return func() {
		loadedSettings = nil
		queryService = nil
		workflowService = nil
	}
}

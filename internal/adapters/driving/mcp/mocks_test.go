package mcp

import (
	"context"

	"github.com/epistle-labs/epistle/internal/core/domain"
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

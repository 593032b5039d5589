package prompt

import (
	"context"
	"errors"
)

// ErrNoAnswer is returned by MockConfirmer when its script is exhausted.
var ErrNoAnswer = errors.New("no scripted answer left")

// MockConfirmer replays scripted answers for testing.
type MockConfirmer struct {
	// Answers are consumed in order and interpreted with Parse
	Answers []string

	// Questions records every question that was asked
	Questions []string

	// Err, when set, is returned instead of consuming an answer
	Err error
}

// Confirm implements the Confirmer interface for testing.
func (m *MockConfirmer) Confirm(ctx context.Context, question string, defaultYes bool) (bool, error) {
	m.Questions = append(m.Questions, question)
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if m.Err != nil {
		return false, m.Err
	}
	if len(m.Answers) == 0 {
		return false, ErrNoAnswer
	}
	answer := m.Answers[0]
	m.Answers = m.Answers[1:]
	return Parse(answer, defaultYes), nil
}

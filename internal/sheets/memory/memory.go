package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"facturi/internal/sheets"
)

// Store keeps appended ledger rows in memory. It backs tests and local
// runs without Google credentials.
type Store struct {
	mu   sync.Mutex
	rows []sheets.LedgerRow
	fail bool
}

var _ sheets.LedgerAppender = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// FailAppends makes every Append return an error, for exercising the
// worker's error path.
func (s *Store) FailAppends(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = fail
}

func (s *Store) Append(_ context.Context, row sheets.LedgerRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return "", errors.New("append disabled")
	}
	s.rows = append(s.rows, row)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []sheets.LedgerRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sheets.LedgerRow(nil), s.rows...)
}

package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/jask/jaskcalc/internal/calc"
	"github.com/jask/jaskcalc/internal/database"
	"github.com/jask/jaskcalc/internal/database/repository"
)

// TapeService records the computations of the current session.
type TapeService struct {
	DB      *sql.DB
	Entries *repository.TapeRepo
}

// NewTapeService wires a service over db.
func NewTapeService(db *sql.DB) *TapeService {
	return &TapeService{DB: db, Entries: repository.NewTapeRepo(db)}
}

// Record stores c under seq. Callers assign seq in the order computations
// happened, since records may be written from concurrent commands.
func (s *TapeService) Record(ctx context.Context, seq int64, c calc.Computation) (repository.TapeEntry, error) {
	if s.Entries == nil {
		return repository.TapeEntry{}, fmt.Errorf("tape: repository not configured")
	}
	e := repository.TapeEntry{
		ID:        uuid.NewString(),
		Seq:       seq,
		Left:      calc.FormatNumber(c.Left),
		Operator:  c.Op.String(),
		Right:     calc.FormatNumber(c.Right),
		Result:    calc.FormatNumber(c.Result),
		CreatedAt: database.Now(),
	}
	if err := s.Entries.Insert(ctx, e); err != nil {
		return repository.TapeEntry{}, fmt.Errorf("record computation %d: %w", seq, err)
	}
	return e, nil
}

// Recent returns up to n entries, newest first.
func (s *TapeService) Recent(ctx context.Context, n int) ([]repository.TapeEntry, error) {
	if s.Entries == nil {
		return nil, fmt.Errorf("tape: repository not configured")
	}
	entries, err := s.Entries.Recent(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("list tape: %w", err)
	}
	return entries, nil
}

// Clear wipes the tape.
func (s *TapeService) Clear(ctx context.Context) error {
	if s.DB == nil || s.Entries == nil {
		return fmt.Errorf("tape: db not configured")
	}
	return database.WithTx(s.DB, func(tx *sql.Tx) error {
		if err := s.Entries.DeleteAll(ctx, tx); err != nil {
			return fmt.Errorf("clear tape: %w", err)
		}
		return nil
	})
}

// Describe renders e with f, for example "1,200 * 3 = 3,600".
func Describe(f calc.Formatter, e repository.TapeEntry) string {
	return fmt.Sprintf("%s %s %s = %s",
		f.FormatForDisplay(e.Left), e.Operator, f.FormatForDisplay(e.Right), f.FormatForDisplay(e.Result))
}

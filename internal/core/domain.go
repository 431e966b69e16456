package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	// Transaction is a single ledger entry. ID and Date are stamped at
	// creation time and never change afterwards.
	Transaction struct {
		ID          string          `json:"id"`
		Amount      float64         `json:"amount"`
		Category    string          `json:"category"`
		Type        TransactionType `json:"type"`
		Description string          `json:"description,omitempty"`
		Date        time.Time       `json:"date"`
	}

	// TransactionInput is what the form boundary validates before a
	// Transaction is constructed. The category stays a free string: any
	// non-empty value is accepted, not just the ones the category list shows.
	TransactionInput struct {
		Amount      float64
		Category    string
		Type        TransactionType
		Description string
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyCategory = errors.New("empty category")
	ErrInvalidType   = errors.New("invalid transaction type")
)

// IsValid reports whether t is one of the two known transaction types.
func (t TransactionType) IsValid() bool {
	switch t {
	case Income, Expense:
		return true
	}
	return false
}

func (in TransactionInput) Validate() error {
	if err := validAmount(in.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(in.Category) == "" {
		return ErrEmptyCategory
	}
	if !in.Type.IsValid() {
		return ErrInvalidType
	}
	return nil
}

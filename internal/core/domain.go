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

	// Transaction is a single income or expense record.
	Transaction struct {
		ID          int64           `json:"id"`
		Type        TransactionType `json:"type"`
		Amount      Money           `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description,omitempty"`
		Date        Date            `json:"date"`
		CreatedAt   time.Time       `json:"createdAt"`
		UpdatedAt   time.Time       `json:"updatedAt"`
	}

	// TransactionPatch carries a partial update. Nil fields are left untouched.
	TransactionPatch struct {
		Type        *TransactionType `json:"type"`
		Amount      *Money           `json:"amount"`
		Category    *string          `json:"category"`
		Description *string          `json:"description"`
		Date        *Date            `json:"date"`
	}
)

var (
	ErrNotFound      = errors.New("transaction not found")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
)

// ValidationError lists every violated field constraint of a payload.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// IsValid reports whether t is one of the two supported transaction types.
func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

// Validate checks every field constraint and returns a *ValidationError
// naming all violations, or nil when the transaction is well formed.
func (t Transaction) Validate() error {
	var fields []string

	if !t.Type.IsValid() {
		fields = append(fields, `type must be "income" or "expense"`)
	}
	if t.Amount.Cents <= 0 {
		fields = append(fields, "amount must be a positive number")
	}
	if strings.TrimSpace(t.Category) == "" {
		fields = append(fields, "category is required")
	}
	if len(t.Description) > 200 {
		fields = append(fields, "description too long (max 200 characters)")
	}
	if t.Date.IsZero() {
		fields = append(fields, "date is required")
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Validate applies the create-time rules to every field present in the patch.
func (p TransactionPatch) Validate() error {
	var fields []string

	if p.Type != nil && !p.Type.IsValid() {
		fields = append(fields, `type must be "income" or "expense"`)
	}
	if p.Amount != nil && p.Amount.Cents <= 0 {
		fields = append(fields, "amount must be a positive number")
	}
	if p.Category != nil && strings.TrimSpace(*p.Category) == "" {
		fields = append(fields, "category is required")
	}
	if p.Description != nil && len(*p.Description) > 200 {
		fields = append(fields, "description too long (max 200 characters)")
	}
	if p.Date != nil && p.Date.IsZero() {
		fields = append(fields, "date is required")
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// IsEmpty reports whether the patch carries no fields at all.
func (p TransactionPatch) IsEmpty() bool {
	return p.Type == nil && p.Amount == nil && p.Category == nil &&
		p.Description == nil && p.Date == nil
}

// ApplyTo merges the patch into t, field by field.
func (p TransactionPatch) ApplyTo(t *Transaction) {
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
}

package core

import (
	"errors"
	"strings"
	"testing"
)

func validTransaction() Transaction {
	return Transaction{
		Type:        Expense,
		Amount:      Money{Cents: 4200},
		Category:    "food",
		Description: "groceries",
		Date:        NewDate(2024, 3, 15),
	}
}

func TestTransactionValidate(t *testing.T) {
	if err := validTransaction().Validate(); err != nil {
		t.Fatalf("valid transaction rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Transaction)
		field  string
	}{
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, "type"},
		{"zero amount", func(tx *Transaction) { tx.Amount.Cents = 0 }, "amount"},
		{"negative amount", func(tx *Transaction) { tx.Amount.Cents = -100 }, "amount"},
		{"empty category", func(tx *Transaction) { tx.Category = "  " }, "category"},
		{"missing date", func(tx *Transaction) { tx.Date = Date{} }, "date"},
		{"long description", func(tx *Transaction) { tx.Description = strings.Repeat("x", 201) }, "description"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := validTransaction()
			tc.mutate(&tx)
			err := tx.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			found := false
			for _, f := range verr.Fields {
				if strings.Contains(f, tc.field) {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected a %q field error, got %v", tc.field, verr.Fields)
			}
		})
	}
}

func TestTransactionValidateListsAllViolations(t *testing.T) {
	tx := Transaction{} // everything missing
	err := tx.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(verr.Fields) != 4 {
		t.Fatalf("expected 4 field errors (type, amount, category, date), got %d: %v",
			len(verr.Fields), verr.Fields)
	}
}

func TestPatchValidateAndApply(t *testing.T) {
	income := Income
	amount := Money{Cents: 999}
	patch := TransactionPatch{Type: &income, Amount: &amount}
	if err := patch.Validate(); err != nil {
		t.Fatalf("valid patch rejected: %v", err)
	}

	tx := validTransaction()
	patch.ApplyTo(&tx)
	if tx.Type != Income || tx.Amount.Cents != 999 {
		t.Fatalf("patch not applied: %+v", tx)
	}
	if tx.Category != "food" || tx.Description != "groceries" {
		t.Fatalf("untouched fields changed: %+v", tx)
	}

	bad := Money{Cents: -1}
	if err := (TransactionPatch{Amount: &bad}).Validate(); err == nil {
		t.Fatal("expected error for non-positive amount in patch")
	}

	if !(TransactionPatch{}).IsEmpty() {
		t.Fatal("empty patch should report IsEmpty")
	}
	if (TransactionPatch{Type: &income}).IsEmpty() {
		t.Fatal("non-empty patch should not report IsEmpty")
	}
}

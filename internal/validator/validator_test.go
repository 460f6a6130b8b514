package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

type payload struct {
	Currency string `validate:"omitempty,iso4217"`
	Type     string `validate:"omitempty,entry_type"`
	Savings  string `validate:"omitempty,savings_txn_type"`
	Month    string `validate:"omitempty,year_month"`
	Decision string `validate:"omitempty,join_decision"`
	Status   string `validate:"omitempty,join_status"`
}

func newValidate() *validator.Validate {
	v := validator.New()
	RegisterOn(v)
	return v
}

func TestCustomTags(t *testing.T) {
	v := newValidate()

	tests := []struct {
		name    string
		in      payload
		wantErr bool
	}{
		{"empty", payload{}, false},
		{"currency_upper", payload{Currency: "EUR"}, false},
		{"currency_lower", payload{Currency: "usd"}, false},
		{"currency_unknown", payload{Currency: "ABC"}, true},
		{"currency_too_long", payload{Currency: "EURO"}, true},
		{"entry_type_mixed_case", payload{Type: "Expense"}, false},
		{"entry_type_bad", payload{Type: "TRANSFER"}, true},
		{"savings_deposit", payload{Savings: "deposit"}, false},
		{"savings_bad", payload{Savings: "REFUND"}, true},
		{"month_ok", payload{Month: "2024-03"}, false},
		{"month_bad", payload{Month: "2024-3"}, true},
		{"decision_ok", payload{Decision: "approved"}, false},
		{"decision_pending_rejected", payload{Decision: "PENDING"}, true},
		{"status_pending", payload{Status: "PENDING"}, false},
		{"status_bad", payload{Status: "DONE"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

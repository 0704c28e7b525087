package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

const maxDescriptionLen = 200

func init() {
	// Exported JSON carries amounts as bare numbers; stored history from
	// earlier releases was written that way and imports must round-trip.
	decimal.MarshalJSONWithoutQuotes = true
}

type (
	TransactionType string

	Frequency string

	// Category labels transactions of one type. Referenced by id from
	// transactions, templates and budgets; the reference is weak and
	// resolves to a fallback when dangling.
	Category struct {
		ID    string          `json:"id"`
		Name  string          `json:"name"`
		Type  TransactionType `json:"type"`
		Color string          `json:"color"`
	}

	// Transaction is a single dated income or expense record.
	Transaction struct {
		ID          string          `json:"id"`
		Amount      decimal.Decimal `json:"amount"`
		Type        TransactionType `json:"type"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Date        Date            `json:"date"`
		IsRecurring bool            `json:"isRecurring"`
		RecurringID string          `json:"recurringId,omitempty"`
	}

	// RecurringTransaction is a template the recurrence engine turns into
	// concrete transactions. LastGenerated is the materialization
	// checkpoint: instances up to it are considered already emitted.
	RecurringTransaction struct {
		ID            string          `json:"id"`
		Amount        decimal.Decimal `json:"amount"`
		Type          TransactionType `json:"type"`
		Category      string          `json:"category"`
		Description   string          `json:"description"`
		Frequency     Frequency       `json:"frequency"`
		StartDate     Date            `json:"startDate"`
		EndDate       Date            `json:"endDate,omitzero"`
		LastGenerated Date            `json:"lastGenerated,omitzero"`
		IsActive      bool            `json:"isActive"`
	}

	// Budget caps one category for one month. One budget per
	// (category, month) pair; callers must not create duplicates.
	Budget struct {
		ID             string          `json:"id"`
		Category       string          `json:"category"`
		Amount         decimal.Decimal `json:"amount"`
		Month          MonthKey        `json:"month"`
		AlertThreshold int             `json:"alertThreshold"`
	}

	// Settings is process-wide user configuration.
	Settings struct {
		Currency    string `json:"currency"`
		Theme       string `json:"theme"`
		DateFormat  string `json:"dateFormat"`
		DefaultView string `json:"defaultView"`
	}
)

// Valid reports whether t is one of the two known transaction types.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Valid reports whether f is one of the supported frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	default:
		return false
	}
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return invalidField("id", ErrEmptyCategory)
	}
	if strings.TrimSpace(c.Name) == "" {
		return invalidField("name", ErrEmptyDescription)
	}
	if !c.Type.Valid() {
		return invalidField("type", ErrInvalidType)
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.Amount.IsNegative() {
		return invalidField("amount", ErrInvalidAmount)
	}
	if !t.Type.Valid() {
		return invalidField("type", ErrInvalidType)
	}
	if strings.TrimSpace(t.Category) == "" {
		return invalidField("category", ErrEmptyCategory)
	}
	if strings.TrimSpace(t.Description) == "" {
		return invalidField("description", ErrEmptyDescription)
	}
	if len(t.Description) > maxDescriptionLen {
		return invalidField("description", ErrDescriptionTooLong)
	}
	if t.Date.IsZero() {
		return invalidField("date", ErrMissingDate)
	}
	return nil
}

func (r RecurringTransaction) Validate() error {
	if r.Amount.IsNegative() {
		return invalidField("amount", ErrInvalidAmount)
	}
	if !r.Type.Valid() {
		return invalidField("type", ErrInvalidType)
	}
	if strings.TrimSpace(r.Category) == "" {
		return invalidField("category", ErrEmptyCategory)
	}
	if strings.TrimSpace(r.Description) == "" {
		return invalidField("description", ErrEmptyDescription)
	}
	if len(r.Description) > maxDescriptionLen {
		return invalidField("description", ErrDescriptionTooLong)
	}
	if !r.Frequency.Valid() {
		return invalidField("frequency", ErrInvalidFrequency)
	}
	if r.StartDate.IsZero() {
		return invalidField("startDate", ErrMissingDate)
	}
	if !r.EndDate.IsZero() && r.EndDate.Before(r.StartDate) {
		return invalidField("endDate", ErrEndBeforeStart)
	}
	if !r.LastGenerated.IsZero() && r.LastGenerated.Before(r.StartDate) {
		return invalidField("lastGenerated", ErrCheckpointBeforeStart)
	}
	return nil
}

func (b Budget) Validate() error {
	if !b.Amount.IsPositive() {
		return invalidField("amount", ErrInvalidAmount)
	}
	if strings.TrimSpace(b.Category) == "" {
		return invalidField("category", ErrEmptyCategory)
	}
	if _, err := ParseMonthKey("month", string(b.Month)); err != nil {
		return err
	}
	if b.AlertThreshold < 1 || b.AlertThreshold > 100 {
		return invalidField("alertThreshold", ErrInvalidThreshold)
	}
	return nil
}

// DefaultSettings returns the configuration used before the user saves any.
func DefaultSettings() Settings {
	return Settings{
		Currency:    "USD",
		Theme:       "light",
		DateFormat:  FormatMonthFirst,
		DefaultView: "dashboard",
	}
}

package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CategoryType codes are persisted in categories.TypeId and mirrored in the
// categoryTypes lookup table.
const (
	TypeIncome CategoryType = iota + 1
	TypeExpense
	TypeCredit
	TypeSavings
)

// DateLayout is the on-disk and wire representation of a Date.
const DateLayout = "2006-01-02"

// MonthLayout formats the month key used to group budget items.
const MonthLayout = "2006/01"

type (
	CategoryType int

	Date struct {
		time.Time
	}

	Category struct {
		ID          int
		Description string
		Type        CategoryType
	}

	Expense struct {
		ID          int
		Date        Date
		CategoryID  int
		Amount      decimal.Decimal // positive = inflow, negative = outflow
		Description string
	}
)

// MaxDescriptionLength bounds an expense description, in characters.
const MaxDescriptionLength = 200

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidCategoryType = errors.New("invalid category type")
)

// CategoryTypes lists every type in code order.
func CategoryTypes() []CategoryType {
	return []CategoryType{TypeIncome, TypeExpense, TypeCredit, TypeSavings}
}

// String implements fmt.Stringer
func (t CategoryType) String() string {
	switch t {
	case TypeIncome:
		return "Income"
	case TypeExpense:
		return "Expense"
	case TypeCredit:
		return "Credit"
	case TypeSavings:
		return "Savings"
	default:
		return fmt.Sprintf("CategoryType(%d)", int(t))
	}
}

// IsValid returns true if the type is one of the four known codes
func (t CategoryType) IsValid() bool {
	return t >= TypeIncome && t <= TypeSavings
}

// ParseCategoryType accepts a type name (case-insensitive) or its numeric code.
func ParseCategoryType(s string) (CategoryType, error) {
	s = strings.TrimSpace(s)
	for _, t := range CategoryTypes() {
		if strings.EqualFold(s, t.String()) || s == fmt.Sprint(int(t)) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidCategoryType, s)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date in yyyy-MM-dd format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// String formats the date as yyyy-MM-dd.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MonthKey returns the "YYYY/MM" grouping key of the date.
func (d Date) MonthKey() string {
	return d.Format(MonthLayout)
}

// MonthBounds returns the first and last calendar day of the date's month.
func (d Date) MonthBounds() (Date, Date) {
	first := NewDate(d.Year(), int(d.Month()), 1)
	last := Date{Time: first.AddDate(0, 1, -1)}
	return first, last
}

// Before reports whether d is strictly before other, day precision.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// After reports whether d is strictly after other, day precision.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// MarshalText implements encoding.TextMarshaler
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// String returns the description, which is how categories are displayed.
func (c Category) String() string {
	return c.Description
}

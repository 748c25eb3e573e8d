package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDateMonthBounds(t *testing.T) {
	cases := []struct {
		d           Date
		first, last string
	}{
		{NewDate(2018, 1, 10), "2018-01-01", "2018-01-31"},
		{NewDate(2020, 2, 29), "2020-02-01", "2020-02-29"},
		{NewDate(2019, 2, 3), "2019-02-01", "2019-02-28"},
		{NewDate(2021, 4, 30), "2021-04-01", "2021-04-30"},
		{NewDate(2021, 12, 31), "2021-12-01", "2021-12-31"},
	}
	for _, tc := range cases {
		first, last := tc.d.MonthBounds()
		if first.String() != tc.first || last.String() != tc.last {
			t.Fatalf("%s: got %s..%s, want %s..%s", tc.d, first, last, tc.first, tc.last)
		}
	}
}

func TestDateMonthKeyAndParse(t *testing.T) {
	d, err := ParseDate("2019-01-10")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.MonthKey() != "2019/01" {
		t.Fatalf("month key = %q", d.MonthKey())
	}
	if _, err := ParseDate("10/01/2019"); err == nil {
		t.Fatalf("expected error for wrong layout")
	}

	var back Date
	text, _ := d.MarshalText()
	if err := back.UnmarshalText(text); err != nil || !back.Equal(d.Time) {
		t.Fatalf("text round trip: %v %v", back, err)
	}
}

func TestParseCategoryType(t *testing.T) {
	cases := []struct {
		in   string
		want CategoryType
		ok   bool
	}{
		{"Income", TypeIncome, true},
		{"expense", TypeExpense, true},
		{"3", TypeCredit, true},
		{" SAVINGS ", TypeSavings, true},
		{"5", 0, false},
		{"debit", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseCategoryType(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q: got %v err=%v", tc.in, got, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidCategoryType) {
			t.Fatalf("%q: expected ErrInvalidCategoryType, got %v", tc.in, err)
		}
	}
}

func TestPivotRecordLookup(t *testing.T) {
	r := PivotRecord{Month: TotalsMonth, Cells: []PivotCell{
		{Category: "Clothes", Subtotal: decimal.NewFromInt(25)},
	}}
	if v, ok := r.Lookup("Clothes"); !ok || !v.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("lookup Clothes = %v %v", v, ok)
	}
	if _, ok := r.Lookup("Rent"); ok {
		t.Fatalf("expected missing category")
	}
	if !r.IsTotals() {
		t.Fatalf("expected totals record")
	}
}

func TestPivotRecordCellTotal(t *testing.T) {
	r := PivotRecord{Month: TotalsMonth, Cells: []PivotCell{
		{Category: "Clothes", Subtotal: decimal.NewFromInt(25)},
		{Category: "Credit Card", Subtotal: decimal.RequireFromString("-25.50")},
	}}
	if got := FormatAmount(r.CellTotal()); got != "-0.50" {
		t.Fatalf("cell total = %s", got)
	}
	if got := FormatAmount(PivotRecord{}.CellTotal()); got != "0.00" {
		t.Fatalf("empty cell total = %s", got)
	}
}

func TestPersistenceWrapping(t *testing.T) {
	base := errors.New("disk I/O error")
	err := Persistence("list expenses", base)
	if !IsPersistence(err) || !errors.Is(err, base) {
		t.Fatalf("expected wrapped persistence error, got %v", err)
	}
	if again := Persistence("outer", err); again != err {
		t.Fatalf("expected no double wrapping")
	}
	if nf := Persistence("get", ErrNotFound); !errors.Is(nf, ErrNotFound) || IsPersistence(nf) {
		t.Fatalf("not found must pass through untouched: %v", nf)
	}
	if Persistence("noop", nil) != nil {
		t.Fatalf("nil must stay nil")
	}
}

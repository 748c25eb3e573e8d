package storage

import "github.com/shopspring/decimal"

type Category struct {
	ID          int64
	Description string
	TypeID      int64
}

type CategoryType struct {
	ID          int64
	Description string
}

type Expense struct {
	ID          int64
	Date        string
	Description string
	Amount      decimal.Decimal
	CategoryID  int64
}

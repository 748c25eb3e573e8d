package core

// DefaultCategories is the set written to a fresh budget file, in id order.
var DefaultCategories = []Category{
	{Description: "Utilities", Type: TypeExpense},
	{Description: "Rent", Type: TypeExpense},
	{Description: "Food", Type: TypeExpense},
	{Description: "Entertainment", Type: TypeExpense},
	{Description: "Education", Type: TypeExpense},
	{Description: "Miscellaneous", Type: TypeExpense},
	{Description: "Medical Expenses", Type: TypeExpense},
	{Description: "Vacation", Type: TypeExpense},
	{Description: "Credit Card", Type: TypeCredit},
	{Description: "Clothes", Type: TypeExpense},
	{Description: "Gifts", Type: TypeExpense},
	{Description: "Insurance", Type: TypeExpense},
	{Description: "Transportation", Type: TypeExpense},
	{Description: "Eating Out", Type: TypeExpense},
	{Description: "Savings", Type: TypeSavings},
	{Description: "Income", Type: TypeIncome},
}

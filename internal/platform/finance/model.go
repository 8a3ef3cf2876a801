package finance

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	maxCategoryLength    = 50
	maxDescriptionLength = 255
)

var currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)

// Kind separates the two sides of the ledger
type Kind string

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

// IsValid checks if the kind is valid
func (k Kind) IsValid() bool {
	return k == KindExpense || k == KindIncome
}

// Category names. The list is what the UI offers; any other non-empty
// category is accepted as well.
const (
	CategoryHousing    = "Housing"
	CategoryFood       = "Food"
	CategoryTransport  = "Transport"
	CategoryUtilities  = "Utilities"
	CategoryHealth     = "Health"
	CategoryLeisure    = "Leisure"
	CategoryShopping   = "Shopping"
	CategoryEducation  = "Education"
	CategoryInvestment = "Investment"
	CategorySalary     = "Salary"
	CategoryOther      = "Other"
)

// Categories returns the predefined categories
func Categories() []string {
	return []string{
		CategoryHousing, CategoryFood, CategoryTransport, CategoryUtilities, CategoryHealth,
		CategoryLeisure, CategoryShopping, CategoryEducation, CategoryInvestment, CategorySalary,
		CategoryOther,
	}
}

// Record is one expense or income
type Record struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Kind        Kind            `json:"kind" db:"-"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Currency    string          `json:"currency" db:"currency"`
	Category    string          `json:"category" db:"category"`
	Date        time.Time       `json:"date" db:"occurred_on"`
	Description string          `json:"description" db:"description"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// Validate checks amount, category, currency and description. Currency
// support against the rate table is checked by the service.
func (r *Record) Validate() error {
	if !r.Kind.IsValid() {
		return ErrInvalidKind
	}
	if !r.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if r.Category == "" {
		return ErrMissingCategory
	}
	if len(r.Category) > maxCategoryLength {
		return ErrCategoryTooLong
	}
	if !currencyRegex.MatchString(r.Currency) {
		return ErrInvalidCurrency
	}
	if len(r.Description) > maxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}

// RecordInput holds the user supplied fields of a record. Empty currency means
// the reporting currency; zero date means today.
type RecordInput struct {
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency,omitempty"`
	Category    string          `json:"category"`
	Date        time.Time       `json:"date,omitempty"`
	Description string          `json:"description,omitempty"`
}

// ListFilter narrows a record listing; zero fields match everything
type ListFilter struct {
	From     time.Time
	To       time.Time
	Category string
}

// AggregateFilter restricts an aggregation to one calendar year when Year is set
type AggregateFilter struct {
	Year int
}

// Bucket is a stored sum grouped by currency, category and month
type Bucket struct {
	Currency string
	Category string
	Month    int
	Total    decimal.Decimal
}

// Balance is income minus expense in one currency
type Balance struct {
	Currency         string          `json:"currency"`
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpense     decimal.Decimal `json:"total_expense"`
	Balance          decimal.Decimal `json:"balance"`
	FormattedIncome  string          `json:"formatted_income"`
	FormattedExpense string          `json:"formatted_expense"`
	FormattedBalance string          `json:"formatted_balance"`
}

// CategoryTotal is the expense total of one category
type CategoryTotal struct {
	Category  string          `json:"category"`
	Total     decimal.Decimal `json:"total"`
	Percent   decimal.Decimal `json:"percent"`
	Formatted string          `json:"formatted"`
}

// MonthTotal is one month of a yearly summary
type MonthTotal struct {
	Month     int             `json:"month"`
	Income    decimal.Decimal `json:"income"`
	Expense   decimal.Decimal `json:"expense"`
	Net       decimal.Decimal `json:"net"`
	Formatted string          `json:"formatted_net"`
}

// YearSummary is income and expense per month of a year
type YearSummary struct {
	Year         int             `json:"year"`
	Currency     string          `json:"currency"`
	Months       []MonthTotal    `json:"months"`
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Net          decimal.Decimal `json:"net"`
}

func normalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

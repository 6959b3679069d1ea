package valueobject

import (
	"fmt"
	"math"

	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

const DefaultCurrency = "USD"

type BudgetType string

const (
	BudgetTypeFixed  BudgetType = "fixed"
	BudgetTypeHourly BudgetType = "hourly"
)

func (t BudgetType) IsValid() bool {
	return t == BudgetTypeFixed || t == BudgetTypeHourly
}

type Budget struct {
	Amount float64
	Type   BudgetType
}

func NewBudget(amount float64, budgetType string) (Budget, error) {
	fields := map[string]string{}
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		fields["budget"] = "бюджет не может быть отрицательным"
	}
	t := BudgetType(budgetType)
	if !t.IsValid() {
		fields["budget_type"] = "тип бюджета должен быть fixed или hourly"
	}
	if len(fields) > 0 {
		return Budget{}, apperror.Validation(fields)
	}
	return Budget{Amount: RoundCents(amount), Type: t}, nil
}

func (b Budget) String() string {
	return fmt.Sprintf("%s %.2f (%s)", DefaultCurrency, b.Amount, b.Type)
}

// RoundCents округляет сумму до центов.
func RoundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// ToCents переводит сумму в минимальные единицы валюты.
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

package service

import (
	"checkout-service/internal/apperr"

	"github.com/shopspring/decimal"
)

// Prices and amounts are stored as NUMERIC(12,2)
const moneyScale = 2

var maxMoney = decimal.New(1, 10)

// checkMoney rejects values the money columns cannot hold exactly
func checkMoney(field string, value decimal.Decimal) error {
	switch {
	case !value.IsPositive():
		return apperr.Validation("%s must be greater than zero", field)
	case !value.Equal(value.Truncate(moneyScale)):
		return apperr.Validation("%s must have at most %d decimal places", field, moneyScale)
	case value.GreaterThanOrEqual(maxMoney):
		return apperr.Validation("%s must be less than %s", field, maxMoney.String())
	}
	return nil
}

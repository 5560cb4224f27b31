// Package proforma implements the income-property operating pro-forma:
// effective gross income, NOI, direct capitalization, and simple return
// metrics, with income and expense lines escalated along growth-rate
// schedules.
package proforma

import (
	"fmt"

	"github.com/shopspring/decimal"

	"land_proforma/pkg/core/pricing"
)

// =============================================================================
// OPERATING STATEMENT
// =============================================================================

// Statement is the year-one operating picture of an income property. Rates
// are fractions (a 5% vacancy is 0.05).
type Statement struct {
	GrossIncome       decimal.Decimal `json:"gross_income"`
	VacancyRate       decimal.Decimal `json:"vacancy_rate"`
	OperatingExpenses decimal.Decimal `json:"operating_expenses"`
}

// Vacancy is the income lost to vacancy: gross * rate.
func (s Statement) Vacancy() decimal.Decimal {
	return s.GrossIncome.Mul(s.VacancyRate).Round(2)
}

// EffectiveGross is gross income net of vacancy.
func (s Statement) EffectiveGross() decimal.Decimal {
	return s.GrossIncome.Sub(s.Vacancy()).Round(2)
}

// NOI is effective gross income less operating expenses.
func (s Statement) NOI() decimal.Decimal {
	return s.EffectiveGross().Sub(s.OperatingExpenses).Round(2)
}

// =============================================================================
// VALUATION METRICS
// =============================================================================

// DirectCapValue capitalizes NOI into a value: NOI / cap rate.
func DirectCapValue(noi, capRate decimal.Decimal) (decimal.Decimal, error) {
	if !capRate.IsPositive() {
		return decimal.Zero, fmt.Errorf("cap rate must be positive, got %s", capRate)
	}
	return noi.Div(capRate).Round(2), nil
}

// CashOnCash is annual cash flow over invested equity.
func CashOnCash(annualCashFlow, equity decimal.Decimal) (decimal.Decimal, error) {
	if !equity.IsPositive() {
		return decimal.Zero, fmt.Errorf("equity must be positive, got %s", equity)
	}
	return annualCashFlow.Div(equity).Round(4), nil
}

// =============================================================================
// DEAL EVALUATION
// =============================================================================

// Financing describes the capital stack used for return metrics.
type Financing struct {
	Equity            decimal.Decimal `json:"equity"`
	AnnualDebtService decimal.Decimal `json:"annual_debt_service"`
}

// Valuation bundles the headline numbers for an income deal.
type Valuation struct {
	NOI        decimal.Decimal `json:"noi"`
	Value      decimal.Decimal `json:"value"`
	CashFlow   decimal.Decimal `json:"cash_flow"`
	CashOnCash decimal.Decimal `json:"cash_on_cash"`
}

// Evaluate runs the statement through direct capitalization and levered
// return metrics.
func Evaluate(s Statement, capRate decimal.Decimal, fin Financing) (Valuation, error) {
	noi := s.NOI()
	value, err := DirectCapValue(noi, capRate)
	if err != nil {
		return Valuation{}, err
	}
	cashFlow := noi.Sub(fin.AnnualDebtService).Round(2)
	coc, err := CashOnCash(cashFlow, fin.Equity)
	if err != nil {
		return Valuation{}, err
	}
	return Valuation{NOI: noi, Value: value, CashFlow: cashFlow, CashOnCash: coc}, nil
}

// =============================================================================
// MULTI-YEAR PROJECTION
// =============================================================================

// YearRow is one projected operating year.
type YearRow struct {
	Year              int             `json:"year"`
	GrossIncome       decimal.Decimal `json:"gross_income"`
	Vacancy           decimal.Decimal `json:"vacancy"`
	EffectiveGross    decimal.Decimal `json:"effective_gross"`
	OperatingExpenses decimal.Decimal `json:"operating_expenses"`
	NOI               decimal.Decimal `json:"noi"`
}

// Project escalates the year-one statement forward. Year 1 is the statement
// as given; later years compound income and expenses along their respective
// growth schedules (income typically follows a PRICE_APPRECIATION
// assumption, expenses a DEVELOPMENT_COSTS one). The vacancy rate holds
// constant across years.
func Project(s Statement, incomeGrowth, expenseGrowth *pricing.Escalation, years int) ([]YearRow, error) {
	if years <= 0 {
		return nil, fmt.Errorf("projection needs at least one year, got %d", years)
	}
	if incomeGrowth == nil || expenseGrowth == nil {
		return nil, fmt.Errorf("projection requires both growth schedules")
	}

	rows := make([]YearRow, 0, years)
	for y := 1; y <= years; y++ {
		elapsed := (y - 1) * pricing.PeriodsPerYear
		yearStmt := Statement{
			GrossIncome:       incomeGrowth.PriceAt(s.GrossIncome, elapsed),
			VacancyRate:       s.VacancyRate,
			OperatingExpenses: expenseGrowth.PriceAt(s.OperatingExpenses, elapsed),
		}
		rows = append(rows, YearRow{
			Year:              y,
			GrossIncome:       yearStmt.GrossIncome,
			Vacancy:           yearStmt.Vacancy(),
			EffectiveGross:    yearStmt.EffectiveGross(),
			OperatingExpenses: yearStmt.OperatingExpenses,
			NOI:               yearStmt.NOI(),
		})
	}
	return rows, nil
}

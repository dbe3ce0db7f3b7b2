package entities

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type PricingRules struct {
	TimeBased      TimeBasedRules     `json:"timeBased"`
	DemandBased    DemandBasedRule    `json:"demandBased"`
	InventoryBased InventoryBasedRule `json:"inventoryBased"`
}

type TimeBasedRules struct {
	Enabled bool            `json:"enabled"`
	Weight  decimal.Decimal `json:"weight"`
	Rules   []TimeRule      `json:"rules"`
}

type TimeRule struct {
	DaysBefore int             `json:"daysBefore"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

type DemandBasedRule struct {
	Enabled    bool            `json:"enabled"`
	Weight     decimal.Decimal `json:"weight"`
	Threshold  int             `json:"threshold"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

type InventoryBasedRule struct {
	Enabled bool            `json:"enabled"`
	Weight  decimal.Decimal `json:"weight"`
	// Threshold is a remaining-inventory percentage.
	Threshold  decimal.Decimal `json:"threshold"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

// Validate rejects configurations the pricing engine can't evaluate sensibly.
// Multipliers may be negative so a rule can discount.
func (r PricingRules) Validate() error {
	var errs []error

	if r.TimeBased.Weight.IsNegative() {
		errs = append(errs, errors.New("timeBased.weight must not be negative"))
	}
	for i, rule := range r.TimeBased.Rules {
		if rule.DaysBefore < 0 {
			errs = append(errs, fmt.Errorf("timeBased.rules[%d].daysBefore must not be negative", i))
		}
	}

	if r.DemandBased.Weight.IsNegative() {
		errs = append(errs, errors.New("demandBased.weight must not be negative"))
	}
	if r.DemandBased.Threshold < 0 {
		errs = append(errs, errors.New("demandBased.threshold must not be negative"))
	}

	if r.InventoryBased.Weight.IsNegative() {
		errs = append(errs, errors.New("inventoryBased.weight must not be negative"))
	}
	if r.InventoryBased.Threshold.IsNegative() || r.InventoryBased.Threshold.GreaterThan(decimal.NewFromInt(100)) {
		errs = append(errs, errors.New("inventoryBased.threshold must be between 0 and 100"))
	}

	if len(errs) > 0 {
		return ValidationError{Err: errors.Join(errs...)}
	}
	return nil
}

func (r PricingRules) Value() (driver.Value, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("could not marshal pricing rules: %w", err)
	}
	return string(payload), nil
}

func (r *PricingRules) Scan(src any) error {
	var payload []byte
	switch v := src.(type) {
	case []byte:
		payload = v
	case string:
		payload = []byte(v)
	case nil:
		*r = PricingRules{}
		return nil
	default:
		return fmt.Errorf("unsupported pricing rules source %T", src)
	}

	if err := json.Unmarshal(payload, r); err != nil {
		return fmt.Errorf("could not unmarshal pricing rules: %w", err)
	}
	return nil
}

package pricing

import (
	"dynamictickets/entities"

	"github.com/shopspring/decimal"
)

// DefaultRules is applied to events created without their own rules.
func DefaultRules() entities.PricingRules {
	return entities.PricingRules{
		TimeBased: entities.TimeBasedRules{
			Enabled: true,
			Weight:  decimal.RequireFromString("0.4"),
			Rules: []entities.TimeRule{
				{DaysBefore: 30, Multiplier: decimal.Zero},
				{DaysBefore: 7, Multiplier: decimal.RequireFromString("0.2")},
				{DaysBefore: 1, Multiplier: decimal.RequireFromString("0.5")},
			},
		},
		DemandBased: entities.DemandBasedRule{
			Enabled:    true,
			Weight:     decimal.RequireFromString("0.3"),
			Threshold:  10,
			Multiplier: decimal.RequireFromString("0.15"),
		},
		InventoryBased: entities.InventoryBasedRule{
			Enabled:    true,
			Weight:     decimal.RequireFromString("0.3"),
			Threshold:  decimal.NewFromInt(20),
			Multiplier: decimal.RequireFromString("0.25"),
		},
	}
}

// DisabledRules turns every adjustment off, leaving the clamped base price.
func DisabledRules() entities.PricingRules {
	rules := DefaultRules()
	rules.TimeBased.Enabled = false
	rules.DemandBased.Enabled = false
	rules.InventoryBased.Enabled = false
	return rules
}

package entities

import "github.com/shopspring/decimal"

type PriceBreakdown struct {
	BasePrice       decimal.Decimal  `json:"basePrice"`
	CurrentPrice    decimal.Decimal  `json:"currentPrice"`
	Adjustments     PriceAdjustments `json:"adjustments"`
	FinalAdjustment decimal.Decimal  `json:"finalAdjustment"`
	RespectsFloor   bool             `json:"respectsFloor"`
	RespectsCeiling bool             `json:"respectsCeiling"`
}

type PriceAdjustments struct {
	TimeBased      TimeAdjustment      `json:"timeBased"`
	DemandBased    DemandAdjustment    `json:"demandBased"`
	InventoryBased InventoryAdjustment `json:"inventoryBased"`
}

type TimeAdjustment struct {
	Enabled    bool            `json:"enabled"`
	Adjustment decimal.Decimal `json:"adjustment"`
	Multiplier decimal.Decimal `json:"multiplier"`
	DaysUntil  int             `json:"daysUntilEvent"`
}

type DemandAdjustment struct {
	Enabled        bool            `json:"enabled"`
	Adjustment     decimal.Decimal `json:"adjustment"`
	Multiplier     decimal.Decimal `json:"multiplier"`
	RecentBookings int             `json:"recentBookings"`
}

type InventoryAdjustment struct {
	Enabled             bool            `json:"enabled"`
	Adjustment          decimal.Decimal `json:"adjustment"`
	Multiplier          decimal.Decimal `json:"multiplier"`
	RemainingPercentage decimal.Decimal `json:"remainingPercentage"`
}

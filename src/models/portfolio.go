package models

// Holding represents a position in a single symbol. MarketValue, GainLoss and
// GainLossPercent are derived from the other fields and recomputed on read;
// they are never stored independently where they could drift from their
// inputs.
type Holding struct {
	Symbol          string  `json:"symbol"`
	Name            string  `json:"name,omitempty"`
	Quantity        float64 `json:"quantity"`
	AverageCost     float64 `json:"averageCost"`
	CurrentPrice    float64 `json:"currentPrice"`
	MarketValue     float64 `json:"marketValue"`
	GainLoss        float64 `json:"gainLoss"`
	GainLossPercent float64 `json:"gainLossPercent"`
}

// DuplicateCluster is a set of transaction ids judged to be the same logical
// trade. Clusters are disjoint and always carry at least two members.
type DuplicateCluster struct {
	TransactionIDs []string `json:"transactionIds"`
}

// Contains reports whether the cluster holds the given transaction id.
func (c DuplicateCluster) Contains(id string) bool {
	for _, member := range c.TransactionIDs {
		if member == id {
			return true
		}
	}
	return false
}

package engine

import (
	"sort"
	"time"

	"github.com/username/tradeguard/backend/src/models"
)

// DefaultDedupWindow is the maximum time separation for two otherwise
// identical transactions to count as the same logical trade.
const DefaultDedupWindow = 60 * time.Second

// dupKey is the exact-equality part of the duplicate relation. Time-window
// comparison only ever happens inside one key group.
type dupKey struct {
	symbol   string
	quantity float64
	price    float64
}

// FindDuplicates clusters transactions that are probable duplicates: equal
// symbol, quantity and price, executed strictly less than window apart.
//
// Transactions are grouped by exact key, each group is sorted by executedAt,
// and a single sweep merges a transaction into the open cluster when its
// timestamp is within window of the cluster's most recent member, otherwise
// it starts a new cluster. Anchoring on the most recent member keeps the
// relation transitive by construction: a chain of pairwise-close
// transactions never drags in one that is window or more away from the
// member before it. Total cost is O(n log n).
//
// Clusters with fewer than two members are dropped. Timestamp ties keep
// their input order.
func FindDuplicates(transactions []models.Transaction, window time.Duration) []models.DuplicateCluster {
	if window <= 0 {
		window = DefaultDedupWindow
	}

	groups := make(map[dupKey][]models.Transaction)
	var order []dupKey
	for _, tx := range transactions {
		key := dupKey{symbol: tx.Symbol, quantity: tx.Quantity, price: tx.Price}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], tx)
	}

	var clusters []models.DuplicateCluster
	for _, key := range order {
		group := groups[key]
		if len(group) < 2 {
			continue
		}
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].ExecutedAt.Before(group[j].ExecutedAt)
		})

		current := []string{group[0].ID}
		anchor := group[0].ExecutedAt
		for _, tx := range group[1:] {
			if tx.ExecutedAt.Sub(anchor) < window {
				current = append(current, tx.ID)
			} else {
				if len(current) >= 2 {
					clusters = append(clusters, models.DuplicateCluster{TransactionIDs: current})
				}
				current = []string{tx.ID}
			}
			anchor = tx.ExecutedAt
		}
		if len(current) >= 2 {
			clusters = append(clusters, models.DuplicateCluster{TransactionIDs: current})
		}
	}
	return clusters
}

package models

// GraphEdge is a weighted, directed view of an undirected wallet relation.
// The builder always inserts both directions with equal weight.
type GraphEdge struct {
	Source string
	Target string
	Weight float64
}

// WalletGraph maps each account to its outgoing edges.
type WalletGraph map[string][]GraphEdge

// Community is a set of accounts pairwise reachable through qualifying edges.
type Community map[string]struct{}

// Has reports membership.
func (c Community) Has(entityID string) bool {
	_, ok := c[entityID]
	return ok
}

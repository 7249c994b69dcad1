package graph

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"PolyWatch/internal/domain/models"
)

// DefaultThreshold is the minimum co-trading weight for an edge.
const DefaultThreshold = 0.7

// Builder constructs a weighted wallet-relationship graph from co-trading
// patterns and extracts connected-component communities. Pairwise weight
// computation is quadratic per market, so markets fan out over a worker group
// and their adjacency maps merge with a commutative sum.
type Builder struct {
	threshold   float64
	concurrency int
}

type Option func(*Builder)

// WithThreshold overrides the edge-inclusion threshold.
func WithThreshold(t float64) Option {
	return func(b *Builder) { b.threshold = t }
}

// WithConcurrency caps the number of markets processed in parallel.
func WithConcurrency(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

func NewBuilder(opts ...Option) *Builder {
	b := &Builder{threshold: DefaultThreshold, concurrency: 4}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildWalletGraph partitions trades by market, computes pairwise co-trading
// weights within each market, and accumulates qualifying weights symmetrically
// into both accounts' adjacency entries. Repeated qualifying pairs across
// markets sum rather than overwrite.
func (b *Builder) BuildWalletGraph(ctx context.Context, trades []models.TradeRecord) (models.WalletGraph, error) {
	byMarket := make(map[string][]models.TradeRecord)
	for _, t := range trades {
		byMarket[t.MarketID] = append(byMarket[t.MarketID], t)
	}

	var mu sync.Mutex
	adjacency := make(map[string]map[string]float64)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for _, marketTrades := range byMarket {
		marketTrades := marketTrades
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			partial := b.marketAdjacency(marketTrades)
			mu.Lock()
			mergeAdjacency(adjacency, partial)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(models.WalletGraph, len(adjacency))
	for node, edges := range adjacency {
		list := make([]models.GraphEdge, 0, len(edges))
		for target, weight := range edges {
			list = append(list, models.GraphEdge{Source: node, Target: target, Weight: weight})
		}
		out[node] = list
	}
	return out, nil
}

// DetectCommunities finds connected components via breadth-first traversal.
// Any positive edge counts as connectivity; the accumulated weight only gated
// edge inclusion at build time. Accounts with no edges never appear.
func (b *Builder) DetectCommunities(g models.WalletGraph) []models.Community {
	visited := make(map[string]struct{}, len(g))
	communities := make([]models.Community, 0)

	for node := range g {
		if _, ok := visited[node]; ok {
			continue
		}
		community := make(models.Community)
		queue := []string{node}
		visited[node] = struct{}{}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			community[current] = struct{}{}
			for _, edge := range g[current] {
				if _, ok := visited[edge.Target]; !ok {
					visited[edge.Target] = struct{}{}
					queue = append(queue, edge.Target)
				}
			}
		}
		communities = append(communities, community)
	}
	return communities
}

func (b *Builder) marketAdjacency(trades []models.TradeRecord) map[string]map[string]float64 {
	adjacency := make(map[string]map[string]float64)
	for i, a := range trades {
		for _, other := range trades[i+1:] {
			weight := coTradingWeight(a, other)
			if weight < b.threshold {
				continue
			}
			addEdge(adjacency, a.AccountID, other.AccountID, weight)
			addEdge(adjacency, other.AccountID, a.AccountID, weight)
		}
	}
	return adjacency
}

// coTradingWeight estimates coordination between two trades in one market:
// outcome agreement scales the size similarity, and the whole term decays with
// the time gap. Zero-size pairs clamp the similarity denominator to 1.
func coTradingWeight(a, b models.TradeRecord) float64 {
	sameDirection := 0.5
	if a.Outcome == b.Outcome {
		sameDirection = 1.0
	}
	maxSize := a.Size
	if b.Size > maxSize {
		maxSize = b.Size
	}
	if maxSize < 1.0 {
		maxSize = 1.0
	}
	diff := a.Size - b.Size
	if diff < 0 {
		diff = -diff
	}
	sizeSimilarity := 1.0 - diff/maxSize
	gap := a.Timestamp.Sub(b.Timestamp).Seconds()
	if gap < 0 {
		gap = -gap
	}
	return sameDirection * sizeSimilarity / (gap + 1.0)
}

func addEdge(adjacency map[string]map[string]float64, from, to string, weight float64) {
	if adjacency[from] == nil {
		adjacency[from] = make(map[string]float64)
	}
	adjacency[from][to] += weight
}

func mergeAdjacency(dst, src map[string]map[string]float64) {
	for node, edges := range src {
		for target, weight := range edges {
			addEdge(dst, node, target, weight)
		}
	}
}

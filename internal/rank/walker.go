package rank

import (
	"sort"
	"teamvest/entity"
	"teamvest/lib/money"

	"github.com/shopspring/decimal"
)

// Graph is the referral graph grouped by owner: every edge (owner, member,
// level) indexed under its owner. Built once per batch and shared across
// users.
type Graph map[string][]entity.Subteam

func BuildGraph(edges []entity.Subteam) Graph {
	g := make(Graph, len(edges))
	for _, e := range edges {
		g[e.Owner] = append(g[e.Owner], e)
	}
	return g
}

// BranchMembers collects the full downline rooted at root, root included.
// Breadth-first over owner -> member edges regardless of level; the seen set
// both deduplicates and protects against malformed cyclic data.
func (g Graph) BranchMembers(root string) map[string]struct{} {
	seen := map[string]struct{}{root: {}}
	queue := []string{root}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, edge := range g[current] {
			if _, ok := seen[edge.Member]; ok {
				continue
			}
			seen[edge.Member] = struct{}{}
			queue = append(queue, edge.Member)
		}
	}
	return seen
}

// Leg is one direct referral annotated with the commission volume the owner
// has collected from the leg's entire downline.
type Leg struct {
	Email  string
	Volume decimal.Decimal
}

// volumeIndex maps member email to the summed commission the owner collected
// from that member, normal and platinum payouts combined.
type volumeIndex map[string]decimal.Decimal

func indexIncomes(rows []entity.TeamIncome) volumeIndex {
	idx := make(volumeIndex, len(rows))
	for _, row := range rows {
		idx[row.EmailMember] = idx[row.EmailMember].Add(money.ParseOrZero(row.Income))
	}
	return idx
}

// legVolume sums the owner's commission attributable to everyone under one
// direct leg, the leg head included.
func legVolume(g Graph, incomes volumeIndex, legHead string) decimal.Decimal {
	total := decimal.Zero
	for member := range g.BranchMembers(legHead) {
		if v, ok := incomes[member]; ok {
			total = total.Add(v)
		}
	}
	return total
}

// level1Legs returns the owner's direct referrals with their leg volumes,
// best legs first. Ties break on email so batch output is deterministic.
func level1Legs(g Graph, incomes volumeIndex, owner string) []Leg {
	var legs []Leg
	for _, edge := range g[owner] {
		if edge.Level != 1 {
			continue
		}
		legs = append(legs, Leg{
			Email:  edge.Member,
			Volume: legVolume(g, incomes, edge.Member),
		})
	}
	sort.SliceStable(legs, func(i, j int) bool {
		if !legs[i].Volume.Equal(legs[j].Volume) {
			return legs[i].Volume.GreaterThan(legs[j].Volume)
		}
		return legs[i].Email < legs[j].Email
	})
	return legs
}

package prune

import (
	"math"
	"sort"

	"github.com/lvlath-labs/terramesh/topology"
)

// AdversarialLinks ranks g's selected backhaul links by how much demand
// connectivity each one alone sustains within the selected network, then
// greedily picks the most disruptive ones whose removal from the full
// candidate graph still leaves every candidate-reachable demand site
// reachable some other way. phaseCoverageMaximization forces zero flow
// across the result, so its budget-constrained solve is pushed toward a
// genuinely alternate routing instead of reselecting phase 3's network
// unchanged. Mirrors get_adversarial_links/find_most_disruptive_links:
// rank by single-link-failure disruption count, then accept greedily
// subject to the candidate graph staying fully connected. count is
// len(selected backhaul links) * ratio, rounded up; a ratio of 0 (or no
// selected backhaul links) returns nil.
func AdversarialLinks(g *topology.CandidateGraph, ratio float64) ([]*topology.Link, error) {
	var selected []*topology.Link
	for _, l := range g.Links() {
		if l.Backhaul && l.Selected {
			selected = append(selected, l)
		}
	}
	count := int(math.Ceil(float64(len(selected)) * ratio))
	if count <= 0 || len(selected) == 0 {
		return nil, nil
	}

	baseSelectedReachable, err := reachableDemandSitesOverLinks(g, selected)
	if err != nil {
		return nil, err
	}

	type ranked struct {
		link        *topology.Link
		disruptions int
	}
	var candidates []ranked
	for _, l := range selected {
		without := make([]*topology.Link, 0, len(selected)-1)
		for _, other := range selected {
			if other.ID != l.ID {
				without = append(without, other)
			}
		}
		reachableWithout, err := reachableDemandSitesOverLinks(g, without)
		if err != nil {
			return nil, err
		}
		disrupted := 0
		for id := range baseSelectedReachable {
			if !reachableWithout[id] {
				disrupted++
			}
		}
		if disrupted > 0 {
			candidates = append(candidates, ranked{link: l, disruptions: disrupted})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].disruptions != candidates[j].disruptions {
			return candidates[i].disruptions > candidates[j].disruptions
		}
		return candidates[i].link.ID.String() < candidates[j].link.ID.String()
	})

	candidateReachable, err := ReachableDemandSites(g)
	if err != nil {
		return nil, err
	}

	removed := make(map[topology.ID]bool)
	var adversarial []*topology.Link
	for _, c := range candidates {
		if len(adversarial) >= count {
			break
		}
		removed[c.link.ID] = true

		var remaining []*topology.Link
		for _, l := range g.Links() {
			if l.Backhaul && removed[l.ID] {
				continue
			}
			remaining = append(remaining, l)
		}
		reachableAfter, err := reachableDemandSitesOverLinks(g, remaining)
		if err != nil {
			return nil, err
		}

		disconnects := false
		for id := range candidateReachable {
			if !reachableAfter[id] {
				disconnects = true
				break
			}
		}
		if disconnects {
			removed[c.link.ID] = false
			continue
		}
		adversarial = append(adversarial, c.link)
	}

	sort.Slice(adversarial, func(i, j int) bool { return adversarial[i].ID.String() < adversarial[j].ID.String() })
	return adversarial, nil
}

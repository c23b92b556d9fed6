package entities

import "strings"

// Evolution trigger kinds as reported by the catalog.
const (
	TriggerLevelUp = "level-up"
	TriggerUseItem = "use-item"
)

// itemTriggerLevelFloor approximates item-triggered evolutions as a flat
// level requirement; there is no item inventory.
const itemTriggerLevelFloor = 20

// defaultEvolutionLevel is assumed when a level-up edge carries no
// explicit minimum.
const defaultEvolutionLevel = 20

// maxChainNodes bounds chain traversal so malformed catalog data that is
// not actually a tree cannot loop the walk.
const maxChainNodes = 64

// EvolutionDetail is one trigger condition on a chain edge.
type EvolutionDetail struct {
	Trigger  string
	MinLevel *int
	Item     string
}

// ChainLink is one node of an evolution chain tree.
type ChainLink struct {
	SpeciesID   int
	SpeciesName string
	Details     []EvolutionDetail
	EvolvesTo   []*ChainLink
}

// EvolutionChain is the tree rooted at a line's base form.
type EvolutionChain struct {
	Root *ChainLink
}

// Candidate is a chain node flattened with its merged trigger conditions.
type Candidate struct {
	SpeciesID   int
	SpeciesName string
	Triggers    map[string]bool
	MinLevel    *int
	Items       []string
}

// Eligible reports whether a creature at the given level may take this
// candidate: a level-up trigger with no minimum or a met minimum, or an
// item trigger at or past the flat level floor.
func (c *Candidate) Eligible(level int) bool {
	if c.Triggers[TriggerLevelUp] && (c.MinLevel == nil || level >= *c.MinLevel) {
		return true
	}
	if c.Triggers[TriggerUseItem] && level >= itemTriggerLevelFloor {
		return true
	}
	return false
}

// Candidates flattens every chain node into a candidate list, in
// depth-first order from the root. The walk uses an explicit stack and a
// node cap so a malformed (non-tree) chain cannot recurse unbounded.
func (ec *EvolutionChain) Candidates() []Candidate {
	if ec == nil || ec.Root == nil {
		return nil
	}

	var out []Candidate
	seen := make(map[*ChainLink]bool)
	stack := []*ChainLink{ec.Root}
	for len(stack) > 0 && len(out) < maxChainNodes {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node == nil || seen[node] {
			continue
		}
		seen[node] = true

		cand := Candidate{
			SpeciesID:   node.SpeciesID,
			SpeciesName: node.SpeciesName,
			Triggers:    make(map[string]bool),
		}
		for _, d := range node.Details {
			if d.Trigger != "" {
				cand.Triggers[d.Trigger] = true
			}
			if d.MinLevel != nil {
				cand.MinLevel = d.MinLevel
			}
			if d.Item != "" {
				cand.Items = append(cand.Items, d.Item)
			}
		}
		out = append(out, cand)

		// Push children in reverse so they pop in listed order.
		for i := len(node.EvolvesTo) - 1; i >= 0; i-- {
			stack = append(stack, node.EvolvesTo[i])
		}
	}
	return out
}

// EligibleCandidates filters Candidates down to those a creature at the
// given level may take. Recomputed on every call; eligibility shifts with
// level and is never cached.
func (ec *EvolutionChain) EligibleCandidates(level int) []Candidate {
	var eligible []Candidate
	for _, cand := range ec.Candidates() {
		if cand.Eligible(level) {
			eligible = append(eligible, cand)
		}
	}
	return eligible
}

// NextThreshold finds the species in the chain by name and returns the
// level its immediate next evolution asks for: the edge's minimum level
// for a level-up trigger, or the flat default for anything else. ok is
// false when the species is absent or has no further evolution.
func (ec *EvolutionChain) NextThreshold(speciesName string) (level int, ok bool) {
	if ec == nil || ec.Root == nil {
		return 0, false
	}
	name := strings.ToLower(speciesName)

	visited := 0
	stack := []*ChainLink{ec.Root}
	for len(stack) > 0 && visited < maxChainNodes {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node == nil {
			continue
		}
		visited++

		if strings.ToLower(node.SpeciesName) == name {
			if len(node.EvolvesTo) == 0 {
				return 0, false
			}
			next := node.EvolvesTo[0]
			if len(next.Details) > 0 {
				d := next.Details[0]
				if d.Trigger == TriggerLevelUp && d.MinLevel != nil {
					return *d.MinLevel, true
				}
			}
			return defaultEvolutionLevel, true
		}
		for i := len(node.EvolvesTo) - 1; i >= 0; i-- {
			stack = append(stack, node.EvolvesTo[i])
		}
	}
	return 0, false
}

// Package consensus implements the large-trade validation gate as a
// majority-vote protocol over a fixed node set. A proposal needs a 2f+1
// quorum of votes before it can resolve; among the votes, a strict majority
// of accepts confirms the trade. Nodes marked dishonest abstain.
package consensus

import (
	"errors"

	"main/internal/match"
	"main/internal/schema"
)

var ErrNoQuorum = errors.New("consensus quorum not reached")

// Node votes on trade proposals.
type Node struct {
	id     int
	honest bool
	// maxNotional is the per-node sanity bound on a candidate's value.
	maxNotional schema.Notional
}

// Vote returns the node's decision on a candidate.
func (n *Node) Vote(candidate match.TradeCandidate) bool {
	if candidate.Notional <= 0 {
		return false
	}
	if n.maxNotional > 0 && candidate.Notional >= n.maxNotional {
		return false
	}
	return candidate.Qty > 0 && candidate.Price > 0
}

// SetHonest toggles whether the node participates in voting.
func (n *Node) SetHonest(honest bool) { n.honest = honest }

// Broadcast coordinates one validation round per candidate.
type Broadcast struct {
	nodes  []*Node
	rounds uint64
}

// NewBroadcast creates a validator with the given node count. With
// maxNotional > 0 every node rejects candidates at or above that value.
func NewBroadcast(nodeCount int, maxNotional schema.Notional) *Broadcast {
	if nodeCount <= 0 {
		nodeCount = 4
	}
	nodes := make([]*Node, nodeCount)
	for i := range nodes {
		nodes[i] = &Node{id: i, honest: true, maxNotional: maxNotional}
	}
	return &Broadcast{nodes: nodes}
}

// Node returns the node at the given index, for fault injection in tests.
func (b *Broadcast) Node(index int) *Node {
	if index < 0 || index >= len(b.nodes) {
		return nil
	}
	return b.nodes[index]
}

// Rounds returns the number of validation rounds run so far.
func (b *Broadcast) Rounds() uint64 { return b.rounds }

// Validate runs one voting round. Without a 2f+1 quorum it returns
// ErrNoQuorum, which callers treat as a rejection.
func (b *Broadcast) Validate(candidate match.TradeCandidate) (bool, error) {
	b.rounds++

	quorum := 2*len(b.nodes)/3 + 1
	accepts, votes := 0, 0
	for _, node := range b.nodes {
		if !node.honest {
			continue
		}
		votes++
		if node.Vote(candidate) {
			accepts++
		}
	}
	if votes < quorum {
		return false, ErrNoQuorum
	}
	return accepts > votes-accepts, nil
}

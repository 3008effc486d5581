// Package forkdb implements the in-memory DAG of candidate blocks described
// in spec §4.3: a set of nodes keyed by block id, rooted at the last
// irreversible block, supporting head selection, branch fetch, and atomic
// root advancement with garbage collection.
//
// The teacher's consensus/hotstuff/forks package stores proposals in a
// module/forest.LevelledForest keyed by (level, vertex id); that forest
// package was not present anywhere in the retrieved reference pack, so this
// type is a from-scratch map-based DAG that follows the same Vertex shape
// (id / level / parent) without inventing the missing library.
package forkdb

import (
	"sync"

	"github.com/flow-consensus/ifcore/model/chain"
)

// Node is a single fork-database entry: a block header plus whatever
// opaque, already-validated payload the controller attached to it (a
// stage.CompletedBlock, in practice). The fork database itself never
// inspects Payload; it only needs the header for DAG bookkeeping.
type Node struct {
	Header  chain.Header
	Valid   bool
	Payload interface{}
}

// BlockID returns the node's canonical block id.
func (n *Node) BlockID() chain.Identifier { return n.Header.ID() }

// BlockNum returns the node's block number (== Header.Height).
func (n *Node) BlockNum() uint32 { return n.Header.Height }

// ParentID returns the node's parent block id.
func (n *Node) ParentID() chain.Identifier { return n.Header.ParentID }

// ForkDB is the in-memory DAG of candidate blocks rooted at the last
// irreversible block. All operations are safe for concurrent use; head()
// readers never observe a partially-advanced root (spec §9).
type ForkDB struct {
	mu       sync.RWMutex
	nodes    map[chain.Identifier]*Node
	children map[chain.Identifier][]chain.Identifier
	rootID   chain.Identifier
	headID   chain.Identifier
}

// NewForkDB creates a fork database whose root and head are both rootNode.
// rootNode's ParentID is ignored: the root has no parent inside the
// database (it is the LIB anchor).
func NewForkDB(rootNode *Node) *ForkDB {
	id := rootNode.BlockID()
	db := &ForkDB{
		nodes:    map[chain.Identifier]*Node{id: rootNode},
		children: map[chain.Identifier][]chain.Identifier{},
		rootID:   id,
		headID:   id,
	}
	rootNode.Valid = true
	return db
}

// Add inserts node into the database, erroring if its id is already
// present. The parent must already be the root or a known node.
func (db *ForkDB) Add(node *Node) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	id := node.BlockID()
	if _, exists := db.nodes[id]; exists {
		return chain.NewForkDatabaseErrorf("fork database already contains block %s", id)
	}
	parentID := node.ParentID()
	if _, ok := db.nodes[parentID]; !ok {
		return chain.NewForkDatabaseErrorf("fork database: parent %s of block %s is unknown", parentID, id)
	}

	db.nodes[id] = node
	db.children[parentID] = append(db.children[parentID], id)
	return nil
}

// Get returns the node for id.
func (db *ForkDB) Get(id chain.Identifier) (*Node, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	n, ok := db.nodes[id]
	if !ok {
		return nil, chain.MissingBlockError{BlockID: id}
	}
	return n, nil
}

// GetHeader returns the header for id.
func (db *ForkDB) GetHeader(id chain.Identifier) (chain.Header, error) {
	n, err := db.Get(id)
	if err != nil {
		return chain.Header{}, err
	}
	return n.Header, nil
}

// MarkValid sets the validity flag on id, used by head selection to prefer
// validated branches.
func (db *ForkDB) MarkValid(id chain.Identifier) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	n, ok := db.nodes[id]
	if !ok {
		return chain.MissingBlockError{BlockID: id}
	}
	n.Valid = true
	return nil
}

// isLeaf reports whether id has no known children, i.e. it is a leaf of the
// DAG and therefore a candidate chain tip.
func (db *ForkDB) isLeaf(id chain.Identifier) bool {
	return len(db.children[id]) == 0
}

// bestTip walks every node and returns the id of the best candidate tip
// under the deterministic ordering (requireValid, block_num, timestamp,
// block id) from spec §4.3. Callers must hold at least db.mu.RLock().
func (db *ForkDB) bestTip(requireValid bool) chain.Identifier {
	best := db.rootID
	bestNode := db.nodes[best]
	for id, n := range db.nodes {
		if !db.isLeaf(id) {
			continue
		}
		if requireValid && !n.Valid {
			continue
		}
		if betterTip(n, id, bestNode, best) {
			best = id
			bestNode = n
		}
	}
	return best
}

// betterTip implements the deterministic tiebreak: higher block number
// wins; ties broken by later timestamp; remaining ties broken by the
// lexicographically greater block id, so head() is a pure function of the
// node set regardless of map iteration order.
func betterTip(candidate *Node, candidateID chain.Identifier, current *Node, currentID chain.Identifier) bool {
	if candidate.BlockNum() != current.BlockNum() {
		return candidate.BlockNum() > current.BlockNum()
	}
	if !candidate.Header.Timestamp.Equal(current.Header.Timestamp) {
		return candidate.Header.Timestamp.After(current.Header.Timestamp)
	}
	return chain.IdentifierList{candidateID, currentID}.Less(1, 0)
}

// Head returns the current best validated chain tip.
func (db *ForkDB) Head() chain.Identifier {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.headID
}

// PendingHead returns the current best chain tip, including unvalidated
// branches, matching spec §4.3's pending_head.
func (db *ForkDB) PendingHead() chain.Identifier {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.bestTip(false)
}

// RecomputeHead recomputes and stores the best validated tip, to be called
// after Add/MarkValid change the candidate set. It is split from those
// calls so the controller can batch several inserts before recomputing.
func (db *ForkDB) RecomputeHead() chain.Identifier {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.headID = db.bestTip(true)
	return db.headID
}

// Root returns the current root id (the anchor most recently committed as
// the last irreversible block).
func (db *ForkDB) Root() chain.Identifier {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.rootID
}

// All returns every node currently tracked, in no particular order.
// Intended for diagnostics (e.g. dumping the DAG) rather than consensus
// logic, which always walks from a specific tip via FetchBranch.
func (db *ForkDB) All() []*Node {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]*Node, 0, len(db.nodes))
	for _, n := range db.nodes {
		out = append(out, n)
	}
	return out
}

// FetchBranch returns the ordered list of block ids from tipID backward to
// (but excluding) the first ancestor with block_num < upToNum, oldest last.
func (db *ForkDB) FetchBranch(tipID chain.Identifier, upToNum uint32) ([]chain.Identifier, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var branch []chain.Identifier
	cur := tipID
	for {
		n, ok := db.nodes[cur]
		if !ok {
			return nil, chain.MissingBlockError{BlockID: cur}
		}
		if n.BlockNum() < upToNum {
			break
		}
		branch = append(branch, cur)
		if cur == db.rootID {
			break
		}
		cur = n.ParentID()
	}
	return branch, nil
}

// FetchBranchFrom returns (applyForward, popBack): the blocks unique to a
// (from b's perspective) and to b (from a's perspective) below their
// common ancestor, used for fork switching per spec §4.3.
// applyForward is ordered oldest-first (apply in this order to reach b);
// popBack is ordered newest-first (undo in this order to leave a).
func (db *ForkDB) FetchBranchFrom(a, b chain.Identifier) (applyForward, popBack []chain.Identifier, err error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	ancestorsA := map[chain.Identifier]bool{}
	cur := a
	for {
		ancestorsA[cur] = true
		n, ok := db.nodes[cur]
		if !ok {
			return nil, nil, chain.MissingBlockError{BlockID: cur}
		}
		if cur == db.rootID {
			break
		}
		cur = n.ParentID()
	}

	var fromB []chain.Identifier
	cur = b
	for !ancestorsA[cur] {
		fromB = append(fromB, cur)
		n, ok := db.nodes[cur]
		if !ok {
			return nil, nil, chain.MissingBlockError{BlockID: cur}
		}
		cur = n.ParentID()
	}
	commonAncestor := cur

	for i, j := 0, len(fromB)-1; i < j; i, j = i+1, j-1 {
		fromB[i], fromB[j] = fromB[j], fromB[i]
	}
	applyForward = fromB

	cur = a
	for cur != commonAncestor {
		popBack = append(popBack, cur)
		n := db.nodes[cur]
		cur = n.ParentID()
	}

	return applyForward, popBack, nil
}

// AdvanceRoot garbage-collects every node not on the branch containing
// newRootID and makes newRootID the new root. This is the commit+GC step
// driven by the irreversibility loop in the controller pipeline; it runs
// under a single write lock so no head() reader ever observes a
// partially-advanced root.
func (db *ForkDB) AdvanceRoot(newRootID chain.Identifier) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.nodes[newRootID]; !ok {
		return chain.MissingBlockError{BlockID: newRootID}
	}

	keep := map[chain.Identifier]bool{newRootID: true}
	var collectDescendants func(id chain.Identifier)
	collectDescendants = func(id chain.Identifier) {
		for _, child := range db.children[id] {
			keep[child] = true
			collectDescendants(child)
		}
	}
	collectDescendants(newRootID)

	for id := range db.nodes {
		if !keep[id] {
			delete(db.nodes, id)
			delete(db.children, id)
		}
	}
	for id, kids := range db.children {
		if !keep[id] {
			delete(db.children, id)
			continue
		}
		filtered := kids[:0]
		for _, k := range kids {
			if keep[k] {
				filtered = append(filtered, k)
			}
		}
		db.children[id] = filtered
	}

	db.rootID = newRootID
	if !keep[db.headID] {
		db.headID = newRootID
	}
	return nil
}

// Remove prunes the subtree rooted at id, which must not be the current
// root.
func (db *ForkDB) Remove(id chain.Identifier) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if id == db.rootID {
		return chain.NewForkDatabaseErrorf("cannot remove fork database root %s", id)
	}
	n, ok := db.nodes[id]
	if !ok {
		return chain.MissingBlockError{BlockID: id}
	}

	var remove func(cur chain.Identifier)
	remove = func(cur chain.Identifier) {
		for _, child := range db.children[cur] {
			remove(child)
		}
		delete(db.nodes, cur)
		delete(db.children, cur)
	}
	remove(id)

	parentID := n.ParentID()
	kids := db.children[parentID]
	filtered := kids[:0]
	for _, k := range kids {
		if k != id {
			filtered = append(filtered, k)
		}
	}
	db.children[parentID] = filtered

	if _, ok := db.nodes[db.headID]; !ok {
		db.headID = db.bestTip(true)
	}
	return nil
}

// Reset reinitializes the database with rootNode as both root and head,
// discarding every other node.
func (db *ForkDB) Reset(rootNode *Node) {
	db.mu.Lock()
	defer db.mu.Unlock()

	id := rootNode.BlockID()
	rootNode.Valid = true
	db.nodes = map[chain.Identifier]*Node{id: rootNode}
	db.children = map[chain.Identifier][]chain.Identifier{}
	db.rootID = id
	db.headID = id
}

// SearchOnBranch returns the nearest ancestor of tipID with the given
// block number.
func (db *ForkDB) SearchOnBranch(tipID chain.Identifier, blockNum uint32) (chain.Identifier, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	cur := tipID
	for {
		n, ok := db.nodes[cur]
		if !ok {
			return chain.ZeroID, chain.MissingBlockError{BlockID: cur}
		}
		if n.BlockNum() == blockNum {
			return cur, nil
		}
		if n.BlockNum() < blockNum || cur == db.rootID {
			return chain.ZeroID, chain.NewForkDatabaseErrorf("no ancestor of %s at block num %d", tipID, blockNum)
		}
		cur = n.ParentID()
	}
}

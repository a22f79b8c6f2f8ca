package optnetsim

// network.go - §4.D. Grounded on original_source/src/core/network.{hpp,cpp}
// for the public contract (addNode/addLink's dense-append-only rule,
// connect's adjacency bookkeeping, isConnected, the slot facade, the deep
// clone constructor) and on the teacher's net.go/routes.go for the Go idiom
// of driving gonum/graph for shortest-path computation instead of a
// hand-rolled priority queue. Per §9's redesign note, adjacency stores
// LinkID (not Link pointers) and the Paths table is owned exclusively by
// Network (never by Controller).

import (
	"golang.org/x/exp/slices"
)

// Network owns Nodes and Links, the adjacency index built from Connect
// calls, and the k-shortest-paths table. It is the unit the Controller
// deep-copies to hand a snapshot to the allocator.
type Network struct {
	name  string
	nodes []*Node
	links []*Link

	// adjacency: out[nodeID] / in[nodeID] list the LinkIDs leaving/entering
	// that node, in the order they were connected (CSR-style: a flat index
	// keyed by node id, no separate offset table needed since Go slices
	// already give us that for free).
	out [][]LinkID
	in  [][]LinkID

	paths    *PathsTable
	pathK    int
	dirty    bool
}

// NewNetwork builds an empty, named Network ("Unnamed Network" if name is
// empty, per §6).
func NewNetwork(name string) *Network {
	if name == "" {
		name = "Unnamed Network"
	}
	return &Network{name: name}
}

func (n *Network) Name() string { return n.name }

// AddNode appends node, which must carry an id equal to the current node
// count (dense, append-only).
func (n *Network) AddNode(node *Node) error {
	if node == nil {
		return errInvalidArgument("Network.AddNode", "node cannot be nil")
	}
	if node.ID() != len(n.nodes) {
		return errInvalidArgument("Network.AddNode", "node id must equal current node count")
	}
	n.nodes = append(n.nodes, node)
	n.out = append(n.out, nil)
	n.in = append(n.in, nil)
	n.dirty = true
	return nil
}

func (n *Network) NumberOfNodes() int { return len(n.nodes) }

func (n *Network) NodeByID(id int) (*Node, error) {
	if id < 0 || id >= len(n.nodes) {
		return nil, errOutOfRange("Network.NodeByID", "node id out of range")
	}
	return n.nodes[id], nil
}

// NodeByLabel returns the first node with the given label.
func (n *Network) NodeByLabel(label string) (*Node, error) {
	for _, node := range n.nodes {
		if l, err := node.Label(); err == nil && l == label {
			return node, nil
		}
	}
	return nil, errInvalidArgument("Network.NodeByLabel", "no node with that label")
}

func (n *Network) Nodes() []*Node { return n.nodes }

// AddLink appends link, which must carry an id equal to the current link
// count.
func (n *Network) AddLink(link *Link) error {
	if link == nil {
		return errInvalidArgument("Network.AddLink", "link cannot be nil")
	}
	if int(link.ID()) != len(n.links) || !link.idSet {
		return errInvalidArgument("Network.AddLink", "link id must equal current link count")
	}
	n.links = append(n.links, link)
	n.dirty = true
	return nil
}

func (n *Network) NumberOfLinks() int { return len(n.links) }

func (n *Network) LinkByID(id LinkID) (*Link, error) {
	if id < 0 || int(id) >= len(n.links) {
		return nil, errOutOfRange("Network.LinkByID", "link id out of range")
	}
	return n.links[id], nil
}

func (n *Network) Links() []*Link { return n.links }

// Connect records link as running from src to dst, updating adjacency and
// stamping the link with its endpoints. src, dst, and link's id must be in
// range.
func (n *Network) Connect(src int, linkID LinkID, dst int) error {
	if src < 0 || src >= len(n.nodes) {
		return errOutOfRange("Network.Connect", "src node id out of range")
	}
	if dst < 0 || dst >= len(n.nodes) {
		return errOutOfRange("Network.Connect", "dst node id out of range")
	}
	link, err := n.LinkByID(linkID)
	if err != nil {
		return err
	}
	link.setSrc(src)
	link.setDst(dst)
	n.out[src] = append(n.out[src], linkID)
	n.in[dst] = append(n.in[dst], linkID)
	n.dirty = true
	return nil
}

// IsConnected returns the list of link ids running directly from src to
// dst (possibly multiple, for a multi-edge topology); empty if none.
func (n *Network) IsConnected(src, dst int) []LinkID {
	if src < 0 || src >= len(n.nodes) || dst < 0 || dst >= len(n.nodes) {
		return nil
	}
	var found []LinkID
	for _, id := range n.out[src] {
		if n.links[id].Dst() == dst {
			found = append(found, id)
		}
	}
	return found
}

// GetLink returns one link running from src to dst (the first found by
// IsConnected), or an error if none exists.
func (n *Network) GetLink(src, dst int) (*Link, error) {
	ids := n.IsConnected(src, dst)
	if len(ids) == 0 {
		return nil, errInvalidArgument("Network.GetLink", "no link between src and dst")
	}
	return n.links[ids[0]], nil
}

// OutLinks returns the LinkIDs leaving node id.
func (n *Network) OutLinks(id int) []LinkID {
	if id < 0 || id >= len(n.out) {
		return nil
	}
	return n.out[id]
}

// OutDegree returns the number of links leaving node id, computed directly
// from adjacency (available before any SetPaths call, unlike Node.Degree
// which SetPaths stamps as a cached copy of this same value).
func (n *Network) OutDegree(id int) int {
	return len(n.OutLinks(id))
}

// InLinks returns the LinkIDs entering node id.
func (n *Network) InLinks(id int) []LinkID {
	if id < 0 || id >= len(n.in) {
		return nil
	}
	return n.in[id]
}

// ValidateBidirectional checks the §3/§6 invariant that every (src, dst)
// link is paired with a (dst, src) link. Returns InvalidTopology on the
// first violation found.
func (n *Network) ValidateBidirectional() error {
	for _, link := range n.links {
		if len(n.IsConnected(link.Dst(), link.Src())) == 0 {
			return errInvalidTopology("Network.ValidateBidirectional", "link has no matching reverse link")
		}
	}
	return nil
}

// MarkDirty flags the topology as changed since paths were last computed.
// AddNode, AddLink and Connect already set the flag themselves (so the
// Controller's AddNode/AddLink rely on them); MarkDirty is for callers
// that change topology by other means.
func (n *Network) MarkDirty() { n.dirty = true }

func (n *Network) Dirty() bool { return n.dirty }

func (n *Network) clearDirty() { n.dirty = false }

// UseSlots marks [from, to) with owner on the given (link, fiber, core,
// band, mode).
func (n *Network) UseSlots(linkID LinkID, fiberIdx, core int, band Band, mode, from, to, owner int) error {
	if from < 0 || to <= from {
		return errInvalidArgument("Network.UseSlots", "slot range requires 0 <= from < to")
	}
	fiber, err := n.fiberAt(linkID, fiberIdx)
	if err != nil {
		return err
	}
	for pos := from; pos < to; pos++ {
		if err := fiber.SetSlot(core, band, mode, pos, owner); err != nil {
			return err
		}
	}
	return nil
}

// UnuseSlots clears [from, to) on the given (link, fiber, core, band,
// mode).
func (n *Network) UnuseSlots(linkID LinkID, fiberIdx, core int, band Band, mode, from, to int) error {
	return n.UseSlots(linkID, fiberIdx, core, band, mode, from, to, FreeSlot)
}

// IsSlotUsed returns the owner id stored at one slot position.
func (n *Network) IsSlotUsed(linkID LinkID, fiberIdx, core int, band Band, mode, pos int) (int, error) {
	fiber, err := n.fiberAt(linkID, fiberIdx)
	if err != nil {
		return 0, err
	}
	return fiber.GetSlot(core, band, mode, pos)
}

func (n *Network) fiberAt(linkID LinkID, fiberIdx int) (*Fiber, error) {
	link, err := n.LinkByID(linkID)
	if err != nil {
		return nil, err
	}
	return link.Fiber(fiberIdx)
}

// Clone returns a structurally independent deep copy of n: fresh Nodes and
// Links (with freshly copied Fibers carrying current occupancy), the same
// adjacency, and the same paths table reference (paths are immutable once
// computed, so sharing is safe).
func (n *Network) Clone() *Network {
	cp := &Network{name: n.name, pathK: n.pathK, dirty: n.dirty, paths: n.paths}
	cp.nodes = make([]*Node, len(n.nodes))
	for i, node := range n.nodes {
		cp.nodes[i] = node.clone()
	}
	cp.links = make([]*Link, len(n.links))
	for i, link := range n.links {
		cp.links[i] = link.clone()
	}
	cp.out = make([][]LinkID, len(n.out))
	for i, ids := range n.out {
		cp.out[i] = slices.Clone(ids)
	}
	cp.in = make([][]LinkID, len(n.in))
	for i, ids := range n.in {
		cp.in[i] = slices.Clone(ids)
	}
	return cp
}

// UsagePercentage averages occupancy across every (link, fiber, band,
// core, mode, slot) cell in the network.
func (n *Network) UsagePercentage() float64 {
	if len(n.links) == 0 {
		return 0
	}
	var sum float64
	for _, link := range n.links {
		sum += link.UsagePercentage()
	}
	return sum / float64(len(n.links))
}

package optnetsim

// p2p.go - §4.H "P2P overlay" and §1's "minimum behavior needed to
// interoperate with the allocator" carve-out. Grounded on
// original_source/src/core/p2p.{hpp,cpp}: the container records a (link,
// fiberIdx) pair per hop, marks the backing Fiber dedicated-to-p2p on add,
// and reserves the same slot range across every fiber in one call.

// P2PID identifies a P2P overlay container.
type P2PID int

// p2pHop names the (link, fiber) pair a P2P container reserves on one hop
// of its path.
type p2pHop struct {
	link  LinkID
	fiber int
}

// P2P records a dedicated point-to-point overlay: a src, dst, the index of
// the precomputed path it rides, and the (link, fiber) pair used on each
// hop of that path.
type P2P struct {
	id       P2PID
	src, dst int
	pathIdx  int
	hops     []p2pHop
}

// NewP2P builds a P2P container for src != dst riding path index pathIdx.
func NewP2P(src, dst, pathIdx int) (*P2P, error) {
	if src == dst {
		return nil, errInvalidArgument("NewP2P", "src and dst must differ")
	}
	return &P2P{src: src, dst: dst, pathIdx: pathIdx}, nil
}

func (p *P2P) ID() P2PID    { return p.id }
func (p *P2P) Src() int     { return p.src }
func (p *P2P) Dst() int     { return p.dst }
func (p *P2P) PathIdx() int { return p.pathIdx }

func (p *P2P) setID(id P2PID) { p.id = id }

// Hops returns the (link, fiber) pairs backing this overlay, in path order.
func (p *P2P) Hops() []struct{ Link LinkID; Fiber int } {
	out := make([]struct {
		Link  LinkID
		Fiber int
	}, len(p.hops))
	for i, h := range p.hops {
		out[i] = struct {
			Link  LinkID
			Fiber int
		}{Link: h.link, Fiber: h.fiber}
	}
	return out
}

// addFiber records one (link, fiber) pair and marks the backing Fiber
// dedicated-to-p2p. Fails if the fiber is active or already dedicated.
func (p *P2P) addFiber(link LinkID, fiberIdx int, fiber *Fiber) error {
	if fiber == nil {
		return errInvalidArgument("P2P.addFiber", "fiber cannot be nil")
	}
	if fiber.IsDedicatedToP2P() {
		return errConflict("P2P.addFiber", "fiber already assigned to another P2P overlay")
	}
	if err := fiber.SetDedicatedToP2P(true); err != nil {
		return err
	}
	p.hops = append(p.hops, p2pHop{link: link, fiber: fiberIdx})
	return nil
}

package optnetsim

// allocator.go - §4.G "Allocator" and §9 "Macros -> composable helpers".
// Grounded on original_source/src/core/allocator.hpp (the Exec contract: a
// read-only Network snapshot plus a DemandMatrix in, a slice of proposed
// Connections out) and dummy_allocator.cpp (the reference greedy-first-fit
// walk this package's helpers are built to support). The original drives
// its walk through a set of C preprocessor macros reaching into Network's
// internals; here those become ordinary functions over the public Network/
// Fiber/Bitrate surface.

// Allocator proposes Connections against a read-only Network snapshot to
// satisfy unprovisioned demand, choosing among the given catalog of
// available bitrates and with visibility into the connections already
// committed. Controller.AssignConnections calls Exec against a private
// clone, then commits whatever it returns.
type Allocator interface {
	Exec(net *Network, demands *DemandMatrix, bitrates map[float64]*Bitrate, existing []*Connection) ([]*Connection, error)
}

// NumRoutes returns how many precomputed routes exist from src to dst.
func NumRoutes(net *Network, src, dst int) (int, error) {
	routes, err := net.GetPaths(src, dst)
	if err != nil {
		return 0, err
	}
	return len(routes), nil
}

// RouteAt returns the route at position idx from src to dst.
func RouteAt(net *Network, src, dst, idx int) (Route, error) {
	routes, err := net.GetPaths(src, dst)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(routes) {
		return nil, errOutOfRange("RouteAt", "route index out of range")
	}
	return routes[idx], nil
}

// FirstFitSlots scans fiber's (core, band, mode) lane for the first run of
// n contiguous free slots, returning its [from, to) range.
func FirstFitSlots(fiber *Fiber, core int, band Band, mode, n int) (from, to int, ok bool) {
	total, err := fiber.NumberOfSlots(core, band, mode)
	if err != nil {
		return 0, 0, false
	}
	run := 0
	for pos := 0; pos < total; pos++ {
		owner, err := fiber.GetSlot(core, band, mode, pos)
		if err != nil {
			return 0, 0, false
		}
		if owner == FreeSlot {
			run++
			if run == n {
				return pos - n + 1, pos + 1, true
			}
		} else {
			run = 0
		}
	}
	return 0, 0, false
}

// FirstFitRoute scans every (fiber, core, band, mode) lane on every hop of
// route, in order, for the first lane that can hold n contiguous free slots
// on every hop simultaneously using the same (fiberIdx, core, mode) choice.
// This mirrors the original's link-spectrum-continuity assumption: a
// lightpath uses one spectral slot range, unchanged hop to hop.
func FirstFitRoute(net *Network, route Route, band Band, n int) ([]Hop, bool) {
	if len(route) == 0 || n <= 0 {
		return nil, false
	}
	first, err := net.LinkByID(route[0])
	if err != nil {
		return nil, false
	}
	for fiberIdx := 0; fiberIdx < first.NumberOfFibers(); fiberIdx++ {
		fib0, err := first.Fiber(fiberIdx)
		if err != nil {
			continue
		}
		for core := 0; core < fib0.NumberOfCores(); core++ {
			modes, err := fib0.NumberOfModes(core, band)
			if err != nil {
				continue
			}
			for mode := 0; mode < modes; mode++ {
				total, err := fib0.NumberOfSlots(core, band, mode)
				if err != nil {
					continue
				}
				for from := 0; from+n <= total; from++ {
					hops, ok := tryRangeOnRoute(net, route, fiberIdx, core, band, mode, from, from+n)
					if ok {
						return hops, true
					}
				}
			}
		}
	}
	return nil, false
}

func tryRangeOnRoute(net *Network, route Route, fiberIdx, core int, band Band, mode, from, to int) ([]Hop, bool) {
	hops := make([]Hop, 0, len(route))
	for _, linkID := range route {
		link, err := net.LinkByID(linkID)
		if err != nil {
			return nil, false
		}
		fiber, err := link.Fiber(fiberIdx)
		if err != nil {
			return nil, false
		}
		for pos := from; pos < to; pos++ {
			owner, err := fiber.GetSlot(core, band, mode, pos)
			if err != nil || owner != FreeSlot {
				return nil, false
			}
		}
		hops = append(hops, Hop{Link: linkID, Fiber: fiberIdx, Core: core, Band: band, Mode: mode, First: from, Last: to - 1})
	}
	return hops, true
}

// GreedyFirstFitAllocator is the reference Allocator: for each unprovisioned
// demand, walk its precomputed routes shortest-first, pick the bitrate's
// adaptive modulation for each route's length, and take the first route
// whose spectrum has room. Grounded on dummy_allocator.cpp.
type GreedyFirstFitAllocator struct {
	Bitrate *Bitrate
	Band    Band
}

// NewGreedyFirstFitAllocator builds an allocator that provisions
// unprovisioned demand in the given band. Exec chooses each connection's
// bitrate from the catalog it is given (see pickBitrate); bitrate is used
// only when that catalog is empty.
func NewGreedyFirstFitAllocator(bitrate *Bitrate, band Band) *GreedyFirstFitAllocator {
	return &GreedyFirstFitAllocator{Bitrate: bitrate, Band: band}
}

// pickBitrate chooses, from catalog, the largest bitrate not exceeding
// need, falling back to the smallest catalog entry if none is small enough,
// and to a.Bitrate if catalog is empty. This exercises the multi-bitrate
// catalog topoio.LoadBitrates builds instead of always allocating at a's
// single configured rate.
func (a *GreedyFirstFitAllocator) pickBitrate(catalog map[float64]*Bitrate, need float64) *Bitrate {
	if len(catalog) == 0 {
		return a.Bitrate
	}
	var best, smallest *Bitrate
	for value, br := range catalog {
		if smallest == nil || value < smallest.Value {
			smallest = br
		}
		if value <= need && (best == nil || value > best.Value) {
			best = br
		}
	}
	if best != nil {
		return best
	}
	return smallest
}

func (a *GreedyFirstFitAllocator) Exec(net *Network, demands *DemandMatrix, bitrates map[float64]*Bitrate, existing []*Connection) ([]*Connection, error) {
	var proposed []*Connection
	var outer error
	demands.ForEach(func(d *Demand) {
		if outer != nil || d.IsProvisioned() {
			return
		}
		bitrate := a.pickBitrate(bitrates, d.Unprovisioned())
		numRoutes, err := NumRoutes(net, d.Src, d.Dst)
		if err != nil || numRoutes == 0 {
			return
		}
		for idx := 0; idx < numRoutes; idx++ {
			route, err := RouteAt(net, d.Src, d.Dst, idx)
			if err != nil {
				continue
			}
			length, err := RouteLength(net, route)
			if err != nil {
				continue
			}
			modIdx := bitrate.AdaptiveModulationBand(length, a.Band)
			if modIdx < 0 {
				continue
			}
			mod, err := bitrate.Modulation(modIdx)
			if err != nil {
				continue
			}
			slots, err := mod.RequiredSlots(a.Band)
			if err != nil {
				continue
			}
			hops, ok := FirstFitRoute(net, route, a.Band, slots)
			if !ok {
				continue
			}
			conn, err := NewConnection(bitrate, d.Src, d.Dst)
			if err != nil {
				outer = err
				return
			}
			for _, h := range hops {
				if err := conn.AddHop(h.Link, h.Fiber, h.Core, h.Band, h.Mode, h.First, h.Last+1); err != nil {
					outer = err
					return
				}
			}
			proposed = append(proposed, conn)
			break
		}
	})
	if outer != nil {
		return nil, outer
	}
	return proposed, nil
}

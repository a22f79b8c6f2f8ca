package optnetsim

// paths.go - §4.D "k shortest paths". Grounded on the teacher's routes.go
// for driving gonum/graph/{simple,path} instead of a hand-rolled Dijkstra,
// and on original_source/src/core/network.cpp's setPaths for the Yen's
// algorithm shape (spur-node deviation over a Dijkstra base case,
// link-id-sequence dedup, lexicographic tie-break on link id). Unlike
// routes.go's single cached undirected tree, each spur search here builds a
// fresh directed subgraph with the tried deviations' first edges removed, so
// there's no reusable cross-call Dijkstra tree.

import (
	"sort"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// PathsTable holds, for every ordered (src, dst) pair, up to k precomputed
// Routes ordered shortest-first. Owned exclusively by Network (§9).
type PathsTable struct {
	k     int
	paths map[[2]int][]Route
}

// SetPaths computes up to k shortest paths between every ordered pair of
// distinct nodes and installs the result as n's paths table. Recomputes
// from scratch; O(N^2) Yen's searches over the current topology.
func (n *Network) SetPaths(k int) error {
	if k < 1 {
		return errInvalidArgument("Network.SetPaths", "k must be at least 1")
	}
	table := &PathsTable{k: k, paths: make(map[[2]int][]Route)}
	nNodes := len(n.nodes)
	for node := 0; node < nNodes; node++ {
		n.nodes[node].setDegree(len(n.out[node]))
	}
	for src := 0; src < nNodes; src++ {
		for dst := 0; dst < nNodes; dst++ {
			if src == dst {
				continue
			}
			routes, err := n.yenKShortest(src, dst, k)
			if err != nil {
				return err
			}
			if len(routes) > 0 {
				table.paths[[2]int{src, dst}] = routes
			}
		}
	}
	n.paths = table
	n.pathK = k
	n.clearDirty()
	return nil
}

// SetPathsFromRoutes installs an externally supplied paths table as-is,
// without computing it or synthesizing reverse-direction routes (§4.D
// "set_paths(filename)"). Every route must be continuous - hop i's dst must
// equal hop i+1's src - and must end at its declared dst, or the call fails
// with InvalidTopology and leaves the existing paths table untouched.
func (n *Network) SetPathsFromRoutes(routes map[[2]int][]Route) error {
	for key, rs := range routes {
		for _, r := range rs {
			if err := n.validateRouteContinuity(key[0], key[1], r); err != nil {
				return err
			}
		}
	}
	maxK := 0
	for _, rs := range routes {
		if len(rs) > maxK {
			maxK = len(rs)
		}
	}
	table := &PathsTable{k: maxK, paths: make(map[[2]int][]Route, len(routes))}
	for key, rs := range routes {
		table.paths[key] = rs
	}
	n.paths = table
	n.pathK = maxK
	n.clearDirty()
	return nil
}

// validateRouteContinuity checks that r starts at src, ends at dst, and that
// consecutive hops share an endpoint.
func (n *Network) validateRouteContinuity(src, dst int, r Route) error {
	if len(r) == 0 {
		return errInvalidTopology("Network.SetPathsFromRoutes", "route cannot be empty")
	}
	first, err := n.LinkByID(r[0])
	if err != nil {
		return errInvalidTopology("Network.SetPathsFromRoutes", "route references an unknown link")
	}
	if first.Src() != src {
		return errInvalidTopology("Network.SetPathsFromRoutes", "route does not start at its declared src")
	}
	cur := first
	for i := 1; i < len(r); i++ {
		next, err := n.LinkByID(r[i])
		if err != nil {
			return errInvalidTopology("Network.SetPathsFromRoutes", "route references an unknown link")
		}
		if cur.Dst() != next.Src() {
			return errInvalidTopology("Network.SetPathsFromRoutes", "route is not continuous")
		}
		cur = next
	}
	if cur.Dst() != dst {
		return errInvalidTopology("Network.SetPathsFromRoutes", "route does not end at its declared dst")
	}
	return nil
}

// GetPaths returns the up-to-k precomputed routes from src to dst, shortest
// first. Fails with NotSet if SetPaths has not been called.
func (n *Network) GetPaths(src, dst int) ([]Route, error) {
	if n.paths == nil {
		return nil, errNotSet("Network.GetPaths", "paths have not been computed")
	}
	return n.paths.paths[[2]int{src, dst}], nil
}

// GetPathK returns the k used to build the current paths table, or 0 if
// none has been computed.
func (n *Network) GetPathK() int {
	if n.paths == nil {
		return 0
	}
	return n.paths.k
}

// ClearPaths discards the current paths table.
func (n *Network) ClearPaths() {
	n.paths = nil
	n.pathK = 0
}

// buildGraph constructs a directed weighted graph over n's current links,
// weighted by length, excluding any link whose id is in exclude and any
// node in excludeNodes.
func (n *Network) buildGraph(excludeLinks map[LinkID]bool, excludeNodes map[int]bool) *simple.WeightedDirectedGraph {
	g := simple.NewWeightedDirectedGraph(0, 0)
	for i := range n.nodes {
		if !excludeNodes[i] {
			g.AddNode(simple.Node(i))
		}
	}
	for _, link := range n.links {
		if excludeLinks[link.ID()] {
			continue
		}
		if excludeNodes[link.Src()] || excludeNodes[link.Dst()] {
			continue
		}
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(link.Src()), simple.Node(link.Dst()), link.Length()))
	}
	return g
}

// shortestRoute runs Dijkstra on g from src and returns the node path to
// dst converted to a Route of link ids, using the lowest-id link when
// multiple links share an edge (lexicographic tie-break).
func (n *Network) shortestRoute(g *simple.WeightedDirectedGraph, src, dst int) (Route, bool) {
	shortest := path.DijkstraFrom(simple.Node(src), g)
	nodePath, _ := shortest.To(int64(dst))
	if len(nodePath) < 2 {
		return nil, false
	}
	route := make(Route, 0, len(nodePath)-1)
	for i := 0; i+1 < len(nodePath); i++ {
		u := int(nodePath[i].ID())
		v := int(nodePath[i+1].ID())
		linkID, ok := n.lowestLink(u, v)
		if !ok {
			return nil, false
		}
		route = append(route, linkID)
	}
	return route, true
}

// lowestLink returns the lowest-id link id running from u to v.
func (n *Network) lowestLink(u, v int) (LinkID, bool) {
	ids := n.IsConnected(u, v)
	if len(ids) == 0 {
		return 0, false
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids[0], true
}

// routeLength sums a route's link lengths.
func (n *Network) routeLength(r Route) float64 {
	var total float64
	for _, id := range r {
		if link, err := n.LinkByID(id); err == nil {
			total += link.Length()
		}
	}
	return total
}

// yenKShortest returns up to k loopless shortest routes from src to dst,
// ordered shortest first, via Yen's algorithm over repeated Dijkstra
// searches with spur-node link/node exclusion.
func (n *Network) yenKShortest(src, dst, k int) ([]Route, error) {
	base, ok := n.shortestRoute(n.buildGraph(nil, nil), src, dst)
	if !ok {
		return nil, nil
	}
	A := []Route{base}
	var B []Route
	seen := map[string]bool{routeKey(base): true}

	for len(A) < k {
		prev := A[len(A)-1]
		for i := 0; i < len(prev); i++ {
			spurNode := n.linkSrc(prev[i])
			rootPath := prev[:i]

			excludeLinks := map[LinkID]bool{}
			for _, r := range A {
				if routePrefixEqual(r, rootPath) && len(r) > i {
					excludeLinks[r[i]] = true
				}
			}
			excludeNodes := map[int]bool{}
			for _, id := range rootPath {
				excludeNodes[n.linkSrc(id)] = true
			}

			g := n.buildGraph(excludeLinks, excludeNodes)
			spurPath, ok := n.shortestRoute(g, spurNode, dst)
			if !ok {
				continue
			}
			total := append(append(Route{}, rootPath...), spurPath...)
			key := routeKey(total)
			if seen[key] {
				continue
			}
			seen[key] = true
			B = append(B, total)
		}
		if len(B) == 0 {
			break
		}
		sort.SliceStable(B, func(i, j int) bool { return n.routeLength(B[i]) < n.routeLength(B[j]) })
		A = append(A, B[0])
		B = B[1:]
	}
	return A, nil
}

func (n *Network) linkSrc(id LinkID) int {
	if link, err := n.LinkByID(id); err == nil {
		return link.Src()
	}
	return -1
}

func routePrefixEqual(r, prefix Route) bool {
	if len(r) < len(prefix) {
		return false
	}
	for i := range prefix {
		if r[i] != prefix[i] {
			return false
		}
	}
	return true
}

func routeKey(r Route) string {
	key := make([]byte, 0, len(r)*4)
	for _, id := range r {
		key = append(key, byte(id), byte(id>>8), byte(id>>16), byte(id>>24))
	}
	return string(key)
}

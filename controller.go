package optnetsim

// controller.go - §4.G "Controller". Grounded on
// original_source/src/sim/controller.{hpp,cpp}: same connection/P2P
// counters, same addLink/addNode-marks-dirty-for-lazy-recompute behavior,
// same callback-after-every-event hook, same failure-management hook
// (resolved Open Question #3: wired as a typed no-op by default). Per §9's
// "Macros -> composable helpers" and the interface-over-function-pointer
// idiom, the two C function pointers become Go func types.

// EventType names the kind of event a FailureHandler is invoked for: a
// failure at one of the three granularities the topology exposes (link,
// node, fiber), or that failure's matching recovery.
type EventType int

const (
	EventNone EventType = iota
	EventLinkFailure
	EventNodeFailure
	EventFiberFailure
	EventLinkRestoration
	EventNodeRestoration
	EventFiberRestoration
)

// CommitCallback runs after every AssignConnections commit, with
// modifiable access to the live network, demand matrix, and the
// connections just committed, at simulation time t.
type CommitCallback func(net *Network, demands *DemandMatrix, committed []*Connection, t float64)

// FailureHandler runs when the scheduler reports a failure event. The
// default is a no-op (Open Question #3): this simulator's scope is
// capacity planning, not failure recovery, but the hook is carried so a
// caller can layer restoration logic in without forking the Controller.
type FailureHandler func(net *Network, demands *DemandMatrix, affected []*Connection, event EventType, t float64)

// Controller is the link between a scheduler and a Network: it owns the
// Allocator, the committed Connection and P2P lists, and the lazy
// dirty-flag topology-mutation surface.
type Controller struct {
	network    *Network
	allocator  Allocator
	connections map[ConnectionID]*Connection
	order       []ConnectionID
	p2ps        map[P2PID]*P2P
	p2pOrder    []P2PID
	connCounter ConnectionID
	p2pCounter  P2PID

	callback        CommitCallback
	FailureHandler  FailureHandler
}

// NewController builds a Controller with no network or allocator yet
// registered.
func NewController() *Controller {
	return &Controller{
		connections: make(map[ConnectionID]*Connection),
		p2ps:        make(map[P2PID]*P2P),
	}
}

// NewControllerFor builds a Controller already bound to net.
func NewControllerFor(net *Network) *Controller {
	c := NewController()
	c.network = net
	return c
}

func (c *Controller) SetNetwork(net *Network) { c.network = net }
func (c *Controller) Network() *Network       { return c.network }

func (c *Controller) SetAllocator(a Allocator) { c.allocator = a }
func (c *Controller) GetAllocator() Allocator  { return c.allocator }

func (c *Controller) SetCallback(cb CommitCallback) { c.callback = cb }

func (c *Controller) SetFailureHandler(fh FailureHandler) { c.FailureHandler = fh }

// addConnection assigns the next ConnectionID, stamps createdAt, and
// records conn in commit order.
func (c *Controller) addConnection(conn *Connection, createdAt float64) error {
	c.connCounter++
	if err := conn.setID(c.connCounter); err != nil {
		return err
	}
	conn.setCreatedAt(createdAt)
	c.connections[conn.ID()] = conn
	c.order = append(c.order, conn.ID())
	return nil
}

// GetConnection looks up a committed connection by id.
func (c *Controller) GetConnection(id ConnectionID) (*Connection, error) {
	conn, ok := c.connections[id]
	if !ok {
		return nil, errInvalidArgument("Controller.GetConnection", "no connection with that id")
	}
	return conn, nil
}

// Connections returns all committed connections in commit order.
func (c *Controller) Connections() []*Connection {
	out := make([]*Connection, len(c.order))
	for i, id := range c.order {
		out[i] = c.connections[id]
	}
	return out
}

// AssignConnections runs the allocator against a private snapshot of the
// live network and demand matrix (plus the catalog of bitrates it may
// choose among and the connections already committed), then commits
// whatever it proposes back onto the live state: new Connection ids are
// assigned, their hops' slots are marked used on the live network, and
// each demand's allocated capacity grows by the connection's bitrate.
// Finally, if a commit callback is registered, it runs against the
// now-updated live state. If the topology is dirty, paths are recomputed
// first so the allocator sees current routes.
func (c *Controller) AssignConnections(demands *DemandMatrix, bitrates map[float64]*Bitrate, t float64) ([]*Connection, error) {
	if c.network == nil {
		return nil, errNotSet("Controller.AssignConnections", "no network registered")
	}
	if c.allocator == nil {
		return nil, errNotSet("Controller.AssignConnections", "no allocator registered")
	}
	if c.network.Dirty() {
		k := c.network.GetPathK()
		if k == 0 {
			k = 1
		}
		if err := c.network.SetPaths(k); err != nil {
			return nil, err
		}
	}

	snapshotNet := c.network.Clone()
	snapshotDemands := demands.clone()
	proposed, err := c.allocator.Exec(snapshotNet, snapshotDemands, bitrates, c.Connections())
	if err != nil {
		return nil, err
	}

	committed := make([]*Connection, 0, len(proposed))
	for _, conn := range proposed {
		if err := c.commitConnection(conn, demands, t); err != nil {
			return nil, err
		}
		committed = append(committed, conn)
	}

	if c.callback != nil {
		c.callback(c.network, demands, committed, t)
	}
	return committed, nil
}

// commitConnection marks conn's hops used on the live network, assigns an
// id, and grows the matching demand's allocated capacity.
func (c *Controller) commitConnection(conn *Connection, demands *DemandMatrix, t float64) error {
	for _, h := range conn.Hops() {
		if err := c.network.UseSlots(h.Link, h.Fiber, h.Core, h.Band, h.Mode, h.First, h.Last+1, int(c.connCounter+1)); err != nil {
			return err
		}
	}
	if err := c.addConnection(conn, t); err != nil {
		return err
	}
	demand, err := demands.At(conn.Src(), conn.Dst())
	if err != nil {
		return err
	}
	return demand.AddAllocated(conn.Bitrate().Value)
}

// SetPaths delegates to the live network's k-shortest-paths computation.
func (c *Controller) SetPaths(k int) error {
	if c.network == nil {
		return errNotSet("Controller.SetPaths", "no network registered")
	}
	return c.network.SetPaths(k)
}

func (c *Controller) GetPaths(src, dst int) ([]Route, error) {
	if c.network == nil {
		return nil, errNotSet("Controller.GetPaths", "no network registered")
	}
	return c.network.GetPaths(src, dst)
}

func (c *Controller) ClearPaths() {
	if c.network != nil {
		c.network.ClearPaths()
	}
}

// AddP2PBuiltFibers creates a P2P overlay from src to dst riding precomputed
// path pathIdx, dedicating the given fiber index on each hop of that path.
func (c *Controller) AddP2PBuiltFibers(src, dst, pathIdx int, fiberIdxs []int) (*P2P, error) {
	if c.network == nil {
		return nil, errNotSet("Controller.AddP2PBuiltFibers", "no network registered")
	}
	routes, err := c.network.GetPaths(src, dst)
	if err != nil {
		return nil, err
	}
	if pathIdx < 0 || pathIdx >= len(routes) {
		return nil, errOutOfRange("Controller.AddP2PBuiltFibers", "path index out of range")
	}
	route := routes[pathIdx]
	if len(fiberIdxs) != len(route) {
		return nil, errInvalidArgument("Controller.AddP2PBuiltFibers", "fiberIdxs length must match path hop count")
	}
	p2p, err := NewP2P(src, dst, pathIdx)
	if err != nil {
		return nil, err
	}
	for i, linkID := range route {
		link, err := c.network.LinkByID(linkID)
		if err != nil {
			return nil, err
		}
		fiber, err := link.Fiber(fiberIdxs[i])
		if err != nil {
			return nil, err
		}
		if err := p2p.addFiber(linkID, fiberIdxs[i], fiber); err != nil {
			return nil, err
		}
	}
	c.p2pCounter++
	p2p.setID(c.p2pCounter)
	c.p2ps[p2p.ID()] = p2p
	c.p2pOrder = append(c.p2pOrder, p2p.ID())
	return p2p, nil
}

// GetP2P looks up a registered P2P overlay by id.
func (c *Controller) GetP2P(id P2PID) (*P2P, error) {
	p2p, ok := c.p2ps[id]
	if !ok {
		return nil, errInvalidArgument("Controller.GetP2P", "no P2P with that id")
	}
	return p2p, nil
}

// P2Ps returns all registered P2P overlays in creation order.
func (c *Controller) P2Ps() []*P2P {
	out := make([]*P2P, len(c.p2pOrder))
	for i, id := range c.p2pOrder {
		out[i] = c.p2ps[id]
	}
	return out
}

// MigrateConnectionToP2P moves connID onto p2pID's dedicated fibers,
// reserving [slotFrom, slotTo) on the given (core, band, mode) across
// every hop of the overlay's path in one critical section (resolved Open
// Question #4: release-old-then-mark-new is treated as atomic from the
// caller's point of view since nothing else observes the intermediate
// state), and rebinds the connection to bitrate.
func (c *Controller) MigrateConnectionToP2P(p2pID P2PID, core int, band Band, mode, slotFrom, slotTo int, connID ConnectionID, bitrate *Bitrate) error {
	conn, err := c.GetConnection(connID)
	if err != nil {
		return err
	}
	if conn.IsAllocatedInP2P() {
		return errConflict("Controller.MigrateConnectionToP2P", "connection already allocated in a P2P overlay")
	}
	p2p, err := c.GetP2P(p2pID)
	if err != nil {
		return err
	}

	for _, h := range conn.Hops() {
		if err := c.network.UnuseSlots(h.Link, h.Fiber, h.Core, h.Band, h.Mode, h.First, h.Last+1); err != nil {
			return err
		}
	}

	newHops := make([]Hop, 0, len(p2p.Hops()))
	for _, ph := range p2p.Hops() {
		if err := c.network.UseSlots(ph.Link, ph.Fiber, core, band, mode, slotFrom, slotTo, int(connID)); err != nil {
			return err
		}
		newHops = append(newHops, Hop{Link: ph.Link, Fiber: ph.Fiber, Core: core, Band: band, Mode: mode, First: slotFrom, Last: slotTo - 1})
	}

	conn.replaceHops(newHops)
	if err := conn.changeBitrate(bitrate); err != nil {
		return err
	}
	conn.setAllocatedInP2P(true)
	return nil
}

// AddLink builds a link of the given length carrying fibers from src to
// dst, appends it to the network, and connects it; path recomputation is
// deferred to the next AssignConnections call (lazy, per §9).
func (c *Controller) AddLink(src, dst int, length float64, fibers []*Fiber) (*Link, error) {
	if c.network == nil {
		return nil, errNotSet("Controller.AddLink", "no network registered")
	}
	link, err := NewLinkWithFibers(length, fibers)
	if err != nil {
		return nil, err
	}
	if err := link.SetID(LinkID(c.network.NumberOfLinks())); err != nil {
		return nil, err
	}
	if err := c.network.AddLink(link); err != nil {
		return nil, err
	}
	if err := c.network.Connect(src, link.ID(), dst); err != nil {
		return nil, err
	}
	return link, nil
}

// AddNode appends a new node to the network and marks it dirty.
func (c *Controller) AddNode(node *Node) error {
	if c.network == nil {
		return errNotSet("Controller.AddNode", "no network registered")
	}
	return c.network.AddNode(node)
}

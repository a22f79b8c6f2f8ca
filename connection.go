package optnetsim

// connection.go - §3 "Connection" and §4.G. Grounded on
// original_source/src/core/connection.{hpp,cpp}: same per-hop parallel
// arrays (link, fiber, core, band, mode, slots) and the same hop-validation
// rules (non-negative indices, slotFrom < slotTo). Per §9's cyclic-reference
// redesign, hops store LinkID rather than a back-pointer to Link, and per
// §3 the slot list on each hop is always a contiguous range, carried here
// as (First, Last) rather than an expanded []int.

// ConnectionID identifies a committed Connection; assigned monotonically by
// the Controller at commit time. Zero is never a valid id (ids start at 1);
// fiber slots use -1 (FreeSlot) as "unowned".
type ConnectionID int

// Hop is one per-link leg of a Connection: a contiguous slot range
// [First, Last] (inclusive) on a single (fiber, core, band, mode).
type Hop struct {
	Link  LinkID
	Fiber int
	Core  int
	Band  Band
	Mode  int
	First int
	Last  int
}

// Slots returns the hop's slot positions as [First, Last].
func (h Hop) Slots() []int {
	s := make([]int, 0, h.Last-h.First+1)
	for p := h.First; p <= h.Last; p++ {
		s = append(s, p)
	}
	return s
}

// Connection is a committed lightpath: a Bitrate carried end to end over an
// ordered sequence of Hops.
type Connection struct {
	id             ConnectionID
	idSet          bool
	createdAt      float64
	bitrate        *Bitrate
	src, dst       int
	allocatedInP2P bool
	hops           []Hop
}

// NewConnection builds an uncommitted Connection for bitrate between src
// and dst. bitrate must be non-nil; src and dst must be non-negative.
func NewConnection(bitrate *Bitrate, src, dst int) (*Connection, error) {
	if bitrate == nil {
		return nil, errInvalidArgument("NewConnection", "bitrate cannot be nil")
	}
	if src < 0 || dst < 0 {
		return nil, errInvalidArgument("NewConnection", "src/dst cannot be negative")
	}
	return &Connection{bitrate: bitrate, src: src, dst: dst}, nil
}

// AddHop appends a hop with slot range [from, to) (half-open, matching
// Network.UseSlots), converting it to the Connection's inclusive [first,
// last] storage.
func (c *Connection) AddHop(link LinkID, fiber, core int, band Band, mode int, from, to int) error {
	if link < 0 {
		return errInvalidArgument("Connection.AddHop", "link id cannot be negative")
	}
	if fiber < 0 {
		return errInvalidArgument("Connection.AddHop", "fiber index cannot be negative")
	}
	if core < 0 {
		return errInvalidArgument("Connection.AddHop", "core index cannot be negative")
	}
	if mode < 0 {
		return errInvalidArgument("Connection.AddHop", "mode index cannot be negative")
	}
	if from < 0 || to <= from {
		return errInvalidArgument("Connection.AddHop", "invalid slot range")
	}
	c.hops = append(c.hops, Hop{Link: link, Fiber: fiber, Core: core, Band: band, Mode: mode, First: from, Last: to - 1})
	return nil
}

func (c *Connection) ID() ConnectionID       { return c.id }
func (c *Connection) Src() int               { return c.src }
func (c *Connection) Dst() int               { return c.dst }
func (c *Connection) Bitrate() *Bitrate      { return c.bitrate }
func (c *Connection) CreatedAt() float64     { return c.createdAt }
func (c *Connection) Hops() []Hop            { return c.hops }
func (c *Connection) IsAllocatedInP2P() bool { return c.allocatedInP2P }

func (c *Connection) setID(id ConnectionID) error {
	if c.idSet {
		return errConflict("Connection.setID", "id already assigned")
	}
	c.id, c.idSet = id, true
	return nil
}

func (c *Connection) setCreatedAt(t float64) { c.createdAt = t }

func (c *Connection) setAllocatedInP2P(v bool) { c.allocatedInP2P = v }

// changeBitrate rebinds the connection to a new Bitrate, used during P2P
// migration.
func (c *Connection) changeBitrate(b *Bitrate) error {
	if b == nil {
		return errInvalidArgument("Connection.changeBitrate", "bitrate cannot be nil")
	}
	c.bitrate = b
	return nil
}

// replaceHops discards the current hop list and installs a new one, used
// during P2P migration.
func (c *Connection) replaceHops(hops []Hop) { c.hops = hops }

// ConnectionBuilder accumulates hops for a Connection before any commit,
// the composable replacement for the original's macro-driven allocator DSL
// (§9 "Macros -> composable helpers").
type ConnectionBuilder struct {
	bitrate *Bitrate
	src     int
	dst     int
	hops    []Hop
}

// NewConnectionBuilder starts building a Connection for bitrate from src to
// dst.
func NewConnectionBuilder(bitrate *Bitrate, src, dst int) *ConnectionBuilder {
	return &ConnectionBuilder{bitrate: bitrate, src: src, dst: dst}
}

// Hop appends a hop with half-open slot range [from, to).
func (cb *ConnectionBuilder) Hop(link LinkID, fiber, core int, band Band, mode int, from, to int) *ConnectionBuilder {
	cb.hops = append(cb.hops, Hop{Link: link, Fiber: fiber, Core: core, Band: band, Mode: mode, First: from, Last: to - 1})
	return cb
}

// Build finishes the Connection. Errors propagate any invalid hop
// accumulated along the way.
func (cb *ConnectionBuilder) Build() (*Connection, error) {
	conn, err := NewConnection(cb.bitrate, cb.src, cb.dst)
	if err != nil {
		return nil, err
	}
	for _, h := range cb.hops {
		if h.Link < 0 || h.Fiber < 0 || h.Core < 0 || h.Mode < 0 || h.First > h.Last {
			return nil, errInvalidArgument("ConnectionBuilder.Build", "invalid hop in builder")
		}
	}
	conn.hops = cb.hops
	return conn, nil
}

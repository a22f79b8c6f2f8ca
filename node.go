package optnetsim

// node.go - §4.C. Node attributes are sum-typed (Present/Absent) the way
// §9's "Optional attributes vs null sentinels" redesign note requires:
// every optional field is a pointer, and reading an absent one returns
// NotSet rather than a zero-value sentinel. Grounded on the original's
// Node (node.hpp/node.cpp), whose optional<> accessors throw
// NodeAttributeNotSetException; mrnes has no direct analogue (its devices
// carry no geo/DC/IXP attributes) so the shape of createEndptDev /
// createRouterDev's plain-struct-plus-constructor style is what's borrowed.

// Node identifies a point in the topology. Ids are dense and append-only:
// a Node's id must equal the node count in the owning Network at the
// moment it is added.
type Node struct {
	id         int
	label      *string
	longitude  *float64
	latitude   *float64
	population *float64
	dc         *int
	ixp        *int
	param1     *float64
	param2     *float64
	degree     int
}

// NewNode constructs a bare Node with the given id; all optional
// attributes start Absent.
func NewNode(id int) *Node {
	return &Node{id: id}
}

func (n *Node) ID() int { return n.id }

func (n *Node) SetLabel(label string) { n.label = &label }

func (n *Node) Label() (string, error) {
	if n.label == nil {
		return "", errNotSet("Node.Label", "label was never set")
	}
	return *n.label, nil
}

// SetCoordinates sets the node's geographic position. lon must be in
// [-180,180] and lat in [-90,90].
func (n *Node) SetCoordinates(lon, lat float64) error {
	if lon < -180 || lon > 180 {
		return errOutOfRange("Node.SetCoordinates", "longitude out of [-180,180]")
	}
	if lat < -90 || lat > 90 {
		return errOutOfRange("Node.SetCoordinates", "latitude out of [-90,90]")
	}
	n.longitude = &lon
	n.latitude = &lat
	return nil
}

func (n *Node) Longitude() (float64, error) {
	if n.longitude == nil {
		return 0, errNotSet("Node.Longitude", "longitude was never set")
	}
	return *n.longitude, nil
}

func (n *Node) Latitude() (float64, error) {
	if n.latitude == nil {
		return 0, errNotSet("Node.Latitude", "latitude was never set")
	}
	return *n.latitude, nil
}

func (n *Node) SetPopulation(pop float64) error {
	if pop < 0 {
		return errInvalidArgument("Node.SetPopulation", "population must be non-negative")
	}
	n.population = &pop
	return nil
}

func (n *Node) Population() (float64, error) {
	if n.population == nil {
		return 0, errNotSet("Node.Population", "population was never set")
	}
	return *n.population, nil
}

func (n *Node) SetDC(dc int) error {
	if dc < 0 {
		return errInvalidArgument("Node.SetDC", "DC count must be non-negative")
	}
	n.dc = &dc
	return nil
}

func (n *Node) DC() (int, error) {
	if n.dc == nil {
		return 0, errNotSet("Node.DC", "DC was never set")
	}
	return *n.dc, nil
}

func (n *Node) SetIXP(ixp int) error {
	if ixp < 0 {
		return errInvalidArgument("Node.SetIXP", "IXP count must be non-negative")
	}
	n.ixp = &ixp
	return nil
}

func (n *Node) IXP() (int, error) {
	if n.ixp == nil {
		return 0, errNotSet("Node.IXP", "IXP was never set")
	}
	return *n.ixp, nil
}

func (n *Node) SetParam1(v float64) { n.param1 = &v }
func (n *Node) SetParam2(v float64) { n.param2 = &v }

func (n *Node) Param1() (float64, error) {
	if n.param1 == nil {
		return 0, errNotSet("Node.Param1", "param1 was never set")
	}
	return *n.param1, nil
}

func (n *Node) Param2() (float64, error) {
	if n.param2 == nil {
		return 0, errNotSet("Node.Param2", "param2 was never set")
	}
	return *n.param2, nil
}

// Degree returns the node's out-degree, as last recorded by Network during
// path computation. Zero before any call to Network.SetPaths.
func (n *Node) Degree() int { return n.degree }

func (n *Node) setDegree(d int) { n.degree = d }

// clone returns a structurally independent copy of n.
func (n *Node) clone() *Node {
	cp := *n
	if n.label != nil {
		v := *n.label
		cp.label = &v
	}
	if n.longitude != nil {
		v := *n.longitude
		cp.longitude = &v
	}
	if n.latitude != nil {
		v := *n.latitude
		cp.latitude = &v
	}
	if n.population != nil {
		v := *n.population
		cp.population = &v
	}
	if n.dc != nil {
		v := *n.dc
		cp.dc = &v
	}
	if n.ixp != nil {
		v := *n.ixp
		cp.ixp = &v
	}
	if n.param1 != nil {
		v := *n.param1
		cp.param1 = &v
	}
	if n.param2 != nil {
		v := *n.param2
		cp.param2 = &v
	}
	return &cp
}

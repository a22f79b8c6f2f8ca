package optnetsim

// link.go - §4.B. Grounded on original_source/src/core/link.{hpp,cpp}: same
// constructor shapes, the same "setId fails once id != -1" rule (translated
// to the Go idiom of "id already assigned"), and addCable's per-type default
// fiber shapes. The Route/Paths aliases are grounded on link.hpp's
// `using Route = vector<shared_ptr<Link>>` and `using Paths = ...`, but
// following §9's cyclic-reference redesign, a Route here is a sequence of
// LinkID (dense integers), never a Link pointer.

// LinkID identifies a Link by its dense, append-only position in a Network.
type LinkID int

// Link carries geometric length and an ordered list of Fibers between two
// directed endpoints. Each logical bidirectional edge is represented by two
// Link entries with swapped endpoints.
type Link struct {
	id        LinkID
	idSet     bool
	length    float64
	src, dst  int
	srcSet    bool
	dstSet    bool
	fibers    []*Fiber
}

const defaultLinkLength = 100.0

// NewLink builds a bare Link with unassigned id, the default length, and no
// fibers yet; callers add fibers via AddFiber/AddCable before the link is
// usable (§3 requires a Link to eventually carry at least one Fiber) and
// set the id once via SetID (mirroring the original's Link(void), whose id
// starts at -1 and can be set exactly once).
func NewLink() *Link {
	return &Link{length: defaultLinkLength}
}

// NewLinkLength builds a Link with unassigned id and the given length.
func NewLinkLength(length float64) (*Link, error) {
	if length <= 0 {
		return nil, errInvalidArgument("NewLinkLength", "length must be positive")
	}
	return &Link{length: length}, nil
}

// NewLinkWithFiber builds a Link with the given length and a single fiber.
func NewLinkWithFiber(length float64, fiber *Fiber) (*Link, error) {
	if length <= 0 {
		return nil, errInvalidArgument("NewLinkWithFiber", "length must be positive")
	}
	if fiber == nil {
		return nil, errInvalidArgument("NewLinkWithFiber", "fiber cannot be nil")
	}
	fiber.DetectType()
	return &Link{length: length, fibers: []*Fiber{fiber}}, nil
}

// NewLinkWithFibers builds a Link with the given length and fiber list.
func NewLinkWithFibers(length float64, fibers []*Fiber) (*Link, error) {
	if length <= 0 {
		return nil, errInvalidArgument("NewLinkWithFibers", "length must be positive")
	}
	if len(fibers) == 0 {
		return nil, errInvalidArgument("NewLinkWithFibers", "fibers cannot be empty")
	}
	for _, f := range fibers {
		if f == nil {
			return nil, errInvalidArgument("NewLinkWithFibers", "fiber list contains nil")
		}
		f.DetectType()
	}
	cp := make([]*Fiber, len(fibers))
	copy(cp, fibers)
	return &Link{length: length, fibers: cp}, nil
}

// SetID assigns the link's id. Only callable once, on a Link built with an
// unassigned id.
func (l *Link) SetID(id LinkID) error {
	if l.idSet {
		return errConflict("Link.SetID", "id already assigned")
	}
	l.id = id
	l.idSet = true
	return nil
}

func (l *Link) ID() LinkID { return l.id }

func (l *Link) SetLength(length float64) error {
	if length <= 0 {
		return errInvalidArgument("Link.SetLength", "length must be positive")
	}
	l.length = length
	return nil
}

func (l *Link) Length() float64 { return l.length }

func (l *Link) setSrc(src int) { l.src, l.srcSet = src, true }
func (l *Link) setDst(dst int) { l.dst, l.dstSet = dst, true }

func (l *Link) Src() int { return l.src }
func (l *Link) Dst() int { return l.dst }

// Fibers returns the link's fiber list (not a copy; callers must not mutate
// the slice itself, but may mutate Fiber contents through the returned
// pointers).
func (l *Link) Fibers() []*Fiber { return l.fibers }

func (l *Link) Fiber(index int) (*Fiber, error) {
	if index < 0 || index >= len(l.fibers) {
		return nil, errOutOfRange("Link.Fiber", "fiber index out of range")
	}
	return l.fibers[index], nil
}

func (l *Link) NumberOfFibers() int { return len(l.fibers) }

// AddFiber appends fiber to the link.
func (l *Link) AddFiber(fiber *Fiber) error {
	if fiber == nil {
		return errInvalidArgument("Link.AddFiber", "fiber cannot be nil")
	}
	fiber.DetectType()
	l.fibers = append(l.fibers, fiber)
	return nil
}

// AddCable appends n freshly constructed fibers of the given class, each
// built with the class's default core/mode/slot shape (same defaults as
// Link::addCable in the original).
func (l *Link) AddCable(t FiberType, n int) error {
	if n <= 0 {
		return errInvalidArgument("Link.AddCable", "number of fibers must be positive")
	}
	for i := 0; i < n; i++ {
		fiber, err := newCableFiber(t)
		if err != nil {
			return err
		}
		l.fibers = append(l.fibers, fiber)
	}
	return nil
}

func newCableFiber(t FiberType) (*Fiber, error) {
	switch t {
	case SSMF:
		return NewFiber(), nil
	case MCF:
		matrix := map[Band][][]int{BandC: onesRows(defaultCores, 1, defaultSlots)}
		f, err := NewFiberMatrix(matrix)
		if err != nil {
			return nil, err
		}
		f.SetType(MCF)
		return f, nil
	case FMF:
		matrix := map[Band][][]int{BandC: onesRows(1, 6, defaultSlots)}
		f, err := NewFiberMatrix(matrix)
		if err != nil {
			return nil, err
		}
		f.SetType(FMF)
		return f, nil
	case FMMCF:
		matrix := map[Band][][]int{BandC: onesRows(7, 5, defaultSlots)}
		f, err := NewFiberMatrix(matrix)
		if err != nil {
			return nil, err
		}
		f.SetType(FMMCF)
		return f, nil
	default:
		return nil, errInvalidArgument("Link.AddCable", "unknown fiber type for cable")
	}
}

func onesRows(cores, modes, slots int) [][]int {
	rows := make([][]int, cores)
	for c := range rows {
		row := make([]int, modes)
		for m := range row {
			row[m] = slots
		}
		rows[c] = row
	}
	return rows
}

// UsagePercentage averages occupancy across every (fiber, band, core, mode,
// slot) cell on the link, in the range [0, 1].
func (l *Link) UsagePercentage() float64 {
	var used, total int
	for _, f := range l.fibers {
		for _, band := range f.Bands() {
			cores := f.NumberOfCores()
			for core := 0; core < cores; core++ {
				modes, err := f.NumberOfModes(core, band)
				if err != nil {
					continue
				}
				for mode := 0; mode < modes; mode++ {
					slots, _ := f.NumberOfSlots(core, band, mode)
					total += slots
					for pos := 0; pos < slots; pos++ {
						owner, _ := f.GetSlot(core, band, mode, pos)
						if owner != FreeSlot {
							used++
						}
					}
				}
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(used) / float64(total)
}

// clone returns a structurally independent copy of l, including deep copies
// of its fibers (current occupancy preserved).
func (l *Link) clone() *Link {
	cp := &Link{id: l.id, idSet: l.idSet, length: l.length, src: l.src, dst: l.dst, srcSet: l.srcSet, dstSet: l.dstSet}
	cp.fibers = make([]*Fiber, len(l.fibers))
	for i, f := range l.fibers {
		cp.fibers[i] = f.clone()
	}
	return cp
}

// Route is an ordered list of LinkIDs from a src node to a dst node.
type Route []LinkID

// Equal reports whether two routes name the same link sequence.
func (r Route) Equal(other Route) bool {
	if len(r) != len(other) {
		return false
	}
	for i := range r {
		if r[i] != other[i] {
			return false
		}
	}
	return true
}

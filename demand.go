package optnetsim

// demand.go - §4.F and §3 "Demand matrix". Grounded on
// original_source/src/core/demand.{hpp,cpp}: same guarded setters
// (non-negative capacities), same addAllocatedCapacity/
// subtractAllocatedCapacity pair, same unprovisioned/isProvisioned
// derivation. DemandMatrix below is a dense N x N slice of structs, the
// same representation as the original's std::vector<std::vector<Demand>>.
// Its ForEach visits every ordered pair with src != dst; iterating only
// src < dst for symmetric demands is left to the caller.

// Demand tracks required and allocated capacity for one (src, dst) pair.
type Demand struct {
	Src, Dst  int
	required  float64
	allocated float64
}

// NewDemand builds a Demand with src != dst and a non-negative required
// capacity.
func NewDemand(src, dst int, required float64) (*Demand, error) {
	if src == dst {
		return nil, errInvalidArgument("NewDemand", "src and dst must differ")
	}
	if required < 0 {
		return nil, errInvalidArgument("NewDemand", "required capacity must be non-negative")
	}
	return &Demand{Src: src, Dst: dst, required: required}, nil
}

func (d *Demand) Required() float64  { return d.required }
func (d *Demand) Allocated() float64 { return d.allocated }

func (d *Demand) SetRequired(required float64) error {
	if required < 0 {
		return errInvalidArgument("Demand.SetRequired", "required capacity must be non-negative")
	}
	d.required = required
	return nil
}

// AddAllocated adds to the allocated capacity. x must be non-negative.
func (d *Demand) AddAllocated(x float64) error {
	if x < 0 {
		return errInvalidArgument("Demand.AddAllocated", "amount to add must be non-negative")
	}
	d.allocated += x
	return nil
}

// SubtractAllocated subtracts from the allocated capacity. Fails if it
// would go below zero.
func (d *Demand) SubtractAllocated(x float64) error {
	if x < 0 {
		return errInvalidArgument("Demand.SubtractAllocated", "amount to subtract must be non-negative")
	}
	if d.allocated < x {
		return errConflict("Demand.SubtractAllocated", "cannot subtract more than currently allocated")
	}
	d.allocated -= x
	return nil
}

// Unprovisioned returns max(required - allocated, 0).
func (d *Demand) Unprovisioned() float64 {
	u := d.required - d.allocated
	if u < 0 {
		return 0
	}
	return u
}

// IsProvisioned reports allocated >= required.
func (d *Demand) IsProvisioned() bool { return d.allocated >= d.required }

// IsNull reports whether this is the uninitialized/diagonal sentinel entry
// (src == dst), excluded from iteration.
func (d *Demand) IsNull() bool { return d.Src == d.Dst }

// DemandMatrix is a dense NxN pair-indexed matrix of Demands, as produced
// by the scheduler's demand initialization and consumed by the allocator
// contract. Entries on the diagonal are null (src == dst) and are skipped
// by ForEach.
type DemandMatrix struct {
	n     int
	cells [][]Demand
}

// NewDemandMatrix builds an n x n matrix of null demands (src == dst on
// every cell, required == allocated == 0); callers populate real entries
// with Set.
func NewDemandMatrix(n int) *DemandMatrix {
	cells := make([][]Demand, n)
	for i := range cells {
		cells[i] = make([]Demand, n)
		for j := range cells[i] {
			cells[i][j] = Demand{Src: i, Dst: j}
		}
	}
	return &DemandMatrix{n: n, cells: cells}
}

func (m *DemandMatrix) Size() int { return m.n }

// At returns a pointer to the (src, dst) cell for in-place mutation.
func (m *DemandMatrix) At(src, dst int) (*Demand, error) {
	if src < 0 || src >= m.n || dst < 0 || dst >= m.n {
		return nil, errOutOfRange("DemandMatrix.At", "src/dst out of range")
	}
	return &m.cells[src][dst], nil
}

// Set installs a required capacity for (src, dst), replacing the existing
// allocated amount with 0. src must differ from dst.
func (m *DemandMatrix) Set(src, dst int, required float64) error {
	if src == dst {
		return errInvalidArgument("DemandMatrix.Set", "src and dst must differ")
	}
	cell, err := m.At(src, dst)
	if err != nil {
		return err
	}
	if required < 0 {
		return errInvalidArgument("DemandMatrix.Set", "required capacity must be non-negative")
	}
	cell.required = required
	cell.allocated = 0
	return nil
}

// ForEach invokes fn for every non-null demand, in row-major (src, dst)
// order.
func (m *DemandMatrix) ForEach(fn func(d *Demand)) {
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			if i == j {
				continue
			}
			fn(&m.cells[i][j])
		}
	}
}

// Totals sums required and allocated capacity (Gbps) across every non-null
// demand.
func (m *DemandMatrix) Totals() (requiredGbps, allocatedGbps float64) {
	m.ForEach(func(d *Demand) {
		requiredGbps += d.required
		allocatedGbps += d.allocated
	})
	return
}

// UnderProvisioningRatio returns sum(max(required-allocated,0)) / sum(required),
// or 0 when total required demand is zero.
func (m *DemandMatrix) UnderProvisioningRatio() float64 {
	var under, required float64
	m.ForEach(func(d *Demand) {
		under += d.Unprovisioned()
		required += d.required
	})
	if required == 0 {
		return 0
	}
	return under / required
}

// clone returns a structurally independent copy of m.
func (m *DemandMatrix) clone() *DemandMatrix {
	cp := &DemandMatrix{n: m.n, cells: make([][]Demand, m.n)}
	for i := range m.cells {
		cp.cells[i] = make([]Demand, len(m.cells[i]))
		copy(cp.cells[i], m.cells[i])
	}
	return cp
}

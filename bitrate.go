package optnetsim

// bitrate.go - §4.E. Grounded on original_source/src/core/bitrate.{hpp,cpp}
// and modulation_format.{hpp,cpp}: same selection criteria for adaptive
// modulation (meets reach, then minimum slots, then maximum reach), same
// per-band slots/reach maps, same GSNR/baud-rate pass-through fields.

import "math"

// ModulationFormat is a named modulation with per-band slot and reach
// requirements. RequiredGSNR and BaudRate are carried through but unused by
// the core (reserved per §3).
type ModulationFormat struct {
	Name          string
	SlotsPerBand  map[Band]int
	ReachPerBand  map[Band]float64
	RequiredGSNR  float64
	BaudRate      float64
}

// NewModulationFormat builds a named modulation format with the given
// per-band slot/reach requirements.
func NewModulationFormat(name string, slotsPerBand map[Band]int, reachPerBand map[Band]float64) *ModulationFormat {
	return &ModulationFormat{Name: name, SlotsPerBand: slotsPerBand, ReachPerBand: reachPerBand}
}

func (m *ModulationFormat) RequiredSlots(band Band) (int, error) {
	n, ok := m.SlotsPerBand[band]
	if !ok {
		return 0, errInvalidArgument("ModulationFormat.RequiredSlots", "band not supported by this modulation")
	}
	return n, nil
}

func (m *ModulationFormat) Reach(band Band) (float64, error) {
	r, ok := m.ReachPerBand[band]
	if !ok {
		return 0, errInvalidArgument("ModulationFormat.Reach", "band not supported by this modulation")
	}
	return r, nil
}

// Bitrate is a positive Gbps value with an ordered list of modulation
// formats available at that rate.
type Bitrate struct {
	Value       float64
	Modulations []ModulationFormat
}

// NewBitrate constructs a Bitrate. value must be positive.
func NewBitrate(value float64) (*Bitrate, error) {
	if value <= 0 {
		return nil, errInvalidArgument("NewBitrate", "bitrate must be positive")
	}
	return &Bitrate{Value: value}, nil
}

// AddModulation appends a new modulation format (duplicate names permitted;
// lookup by name returns the first match).
func (b *Bitrate) AddModulation(name string, slotsPerBand map[Band]int, reachPerBand map[Band]float64) {
	b.Modulations = append(b.Modulations, ModulationFormat{
		Name:         name,
		SlotsPerBand: slotsPerBand,
		ReachPerBand: reachPerBand,
	})
}

func (b *Bitrate) Modulation(pos int) (*ModulationFormat, error) {
	if pos < 0 || pos >= len(b.Modulations) {
		return nil, errOutOfRange("Bitrate.Modulation", "modulation position out of range")
	}
	return &b.Modulations[pos], nil
}

// ModulationByName returns the first modulation with the given name.
func (b *Bitrate) ModulationByName(name string) (*ModulationFormat, error) {
	for i := range b.Modulations {
		if b.Modulations[i].Name == name {
			return &b.Modulations[i], nil
		}
	}
	return nil, errInvalidArgument("Bitrate.ModulationByName", "modulation not found")
}

// AdaptiveModulation selects, for the given route length in the default
// (C) band, the modulation index minimizing required slots subject to
// reach >= route length, breaking ties by maximum reach. Returns -1 when no
// modulation is feasible.
func (b *Bitrate) AdaptiveModulation(routeLength float64) int {
	return b.AdaptiveModulationBand(routeLength, BandC)
}

// AdaptiveModulationBand is AdaptiveModulation parameterized by band.
func (b *Bitrate) AdaptiveModulationBand(routeLength float64, band Band) int {
	best := -1
	minSlots := math.MaxInt32
	maxReach := 0.0
	for i := range b.Modulations {
		reach, ok := b.Modulations[i].ReachPerBand[band]
		if !ok {
			continue
		}
		slots, ok := b.Modulations[i].SlotsPerBand[band]
		if !ok {
			continue
		}
		if reach < routeLength {
			continue
		}
		if slots < minSlots || (slots == minSlots && reach > maxReach) {
			minSlots = slots
			maxReach = reach
			best = i
		}
	}
	return best
}

// NewBitrateCatalog builds the map[float64]*Bitrate catalog Allocator.Exec
// and Controller.AssignConnections expect, keyed by each bitrate's Value.
func NewBitrateCatalog(bitrates ...*Bitrate) map[float64]*Bitrate {
	catalog := make(map[float64]*Bitrate, len(bitrates))
	for _, br := range bitrates {
		catalog[br.Value] = br
	}
	return catalog
}

// RouteLength sums the lengths of a Route's links as found on net.
func RouteLength(net *Network, route Route) (float64, error) {
	var total float64
	for _, id := range route {
		link, err := net.LinkByID(id)
		if err != nil {
			return 0, err
		}
		total += link.Length()
	}
	return total, nil
}

package optnetsim

// fiber.go - §4.A. Owns the 4-D occupancy matrix band -> core -> mode ->
// slot[]. Grounded on original_source/src/core/fiber.{hpp,cpp}: same
// constructors, same detectType() rule table, same structural-mutation
// guards. Free slots are the sentinel FreeSlot; the original used 0, but
// the spec calls out "-1 (or equivalent sentinel)" explicitly, and 0 would
// collide with a real connection id of zero, so Connection ids are
// allocated starting at 1 (see connection.go) and FreeSlot is -1.

import (
	"fmt"
	"os"

	"golang.org/x/exp/slices"
)

// Band is one of the ITU-T optical transmission bands.
type Band int

const (
	BandO Band = iota
	BandE
	BandS
	BandC
	BandL
	BandU
)

// FiberType is the derived (or overridden) class of a Fiber.
type FiberType int

const (
	SSMF FiberType = iota
	FMF
	MCF
	FMMCF
	HCF
)

func (t FiberType) String() string {
	switch t {
	case SSMF:
		return "SSMF"
	case FMF:
		return "FMF"
	case MCF:
		return "MCF"
	case FMMCF:
		return "FMMCF"
	case HCF:
		return "HCF"
	default:
		return "HCF"
	}
}

// BandToChar and CharToBand implement the §6 single-character band codes.
func BandToChar(b Band) byte {
	switch b {
	case BandO:
		return 'O'
	case BandE:
		return 'E'
	case BandS:
		return 'S'
	case BandC:
		return 'C'
	case BandL:
		return 'L'
	case BandU:
		return 'U'
	default:
		return 'C'
	}
}

func CharToBand(c byte) (Band, error) {
	switch c {
	case 'O', 'o':
		return BandO, nil
	case 'E', 'e':
		return BandE, nil
	case 'S', 's':
		return BandS, nil
	case 'C', 'c':
		return BandC, nil
	case 'L', 'l':
		return BandL, nil
	case 'U', 'u':
		return BandU, nil
	}
	return BandC, errInvalidArgument("CharToBand", "unknown band character")
}

// FreeSlot is the sentinel owner id meaning "unoccupied".
const FreeSlot = -1

const (
	defaultSlots = 320
	defaultCores = 1
	defaultModes = 1
)

// Fiber owns the band -> core -> mode -> slot[] occupancy matrix for a
// single strand of fiber on a Link.
type Fiber struct {
	fiberType       FiberType
	dedicatedToP2P  bool
	resources       map[Band][][][]int // resources[band][core][mode][slotPos] = owner id
}

// NewFiber builds the default fiber: 1 core, 1 mode, C band, 320 slots.
func NewFiber() *Fiber {
	f := &Fiber{resources: make(map[Band][][][]int)}
	f.resources[BandC] = newCoreModeSlotMatrix(defaultCores, defaultModes, defaultSlots)
	f.fiberType = SSMF
	return f
}

// NewFiberSlots builds an SSMF fiber in the C band with the given slot
// count.
func NewFiberSlots(slots int) (*Fiber, error) {
	if slots < 1 {
		return nil, errInvalidArgument("NewFiberSlots", "slots must be at least 1")
	}
	f := &Fiber{resources: make(map[Band][][][]int)}
	f.resources[BandC] = newCoreModeSlotMatrix(defaultCores, defaultModes, slots)
	f.fiberType = SSMF
	return f, nil
}

// NewFiberMatrix builds a fiber from a per-band [core][mode] -> slot-count
// matrix. All bands must describe the same number of cores; every slot
// count must be >= 1.
func NewFiberMatrix(bandSlotMatrix map[Band][][]int) (*Fiber, error) {
	if len(bandSlotMatrix) == 0 {
		return nil, errInvalidArgument("NewFiberMatrix", "band slot matrix cannot be empty")
	}

	cores := -1
	for band, matrix := range bandSlotMatrix {
		if len(matrix) == 0 {
			return nil, errInvalidArgument("NewFiberMatrix", "matrix cannot be empty for any band")
		}
		if cores == -1 {
			cores = len(matrix)
		} else if len(matrix) != cores {
			return nil, errInvalidArgument("NewFiberMatrix", "all bands must have the same number of cores")
		}
		for _, row := range matrix {
			if len(row) == 0 {
				return nil, errInvalidArgument("NewFiberMatrix", "every core must have at least one mode")
			}
			for _, n := range row {
				if n < 1 {
					return nil, errInvalidArgument("NewFiberMatrix", "all slot counts must be positive")
				}
			}
		}
		_ = band
	}

	f := &Fiber{resources: make(map[Band][][][]int)}
	for band, matrix := range bandSlotMatrix {
		perCore := make([][][]int, cores)
		for core := 0; core < cores; core++ {
			modes := len(matrix[core])
			perMode := make([][]int, modes)
			for mode := 0; mode < modes; mode++ {
				perMode[mode] = newSlots(matrix[core][mode])
			}
			perCore[core] = perMode
		}
		f.resources[band] = perCore
	}
	f.detectType()
	return f, nil
}

func newSlots(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = FreeSlot
	}
	return s
}

func newCoreModeSlotMatrix(cores, modes, slots int) [][][]int {
	m := make([][][]int, cores)
	for c := 0; c < cores; c++ {
		perMode := make([][]int, modes)
		for mo := 0; mo < modes; mo++ {
			perMode[mo] = newSlots(slots)
		}
		m[c] = perMode
	}
	return m
}

func (f *Fiber) Type() FiberType        { return f.fiberType }
func (f *Fiber) SetType(t FiberType)    { f.fiberType = t }
func (f *Fiber) IsDedicatedToP2P() bool { return f.dedicatedToP2P }

// DetectType reclassifies the fiber's type from its current shape:
// SSMF (1 core, all modes==1), FMF (1 core, some mode-count>1),
// MCF (>1 core, all modes==1), FMMCF (>1 core, some mode-count>1).
// HCF is the fallback, produced only for a fiber with no cores (for
// example after Clear); otherwise it is reachable via explicit SetType.
func (f *Fiber) detectType() {
	cores := f.NumberOfCores()
	multiMode := false
	for _, matrix := range f.resources {
		for core := 0; core < cores && core < len(matrix); core++ {
			if len(matrix[core]) > 1 {
				multiMode = true
				break
			}
		}
		if multiMode {
			break
		}
	}

	switch {
	case cores == 1 && !multiMode:
		f.fiberType = SSMF
	case cores == 1 && multiMode:
		f.fiberType = FMF
	case cores > 1 && !multiMode:
		f.fiberType = MCF
	case cores > 1 && multiMode:
		f.fiberType = FMMCF
	default:
		f.fiberType = HCF
	}
}

// DetectType is the public entry point for detectType.
func (f *Fiber) DetectType() { f.detectType() }

// AddBand adds a new band with modes identical slot-count modes on every
// core, sized to the fiber's current core count (or the default core
// count if no band exists yet).
func (f *Fiber) AddBand(band Band, modes, slots int) error {
	if _, present := f.resources[band]; present {
		return errInvalidArgument("Fiber.AddBand", "band already exists")
	}
	if modes < 1 {
		return errInvalidArgument("Fiber.AddBand", "modes must be positive")
	}
	if slots < 1 {
		return errInvalidArgument("Fiber.AddBand", "slots must be positive")
	}
	cores := f.NumberOfCores()
	if cores == 0 {
		cores = defaultCores
	}
	f.resources[band] = newCoreModeSlotMatrix(cores, modes, slots)
	return nil
}

// Bands returns the fiber's initialized bands, in unspecified order.
func (f *Fiber) Bands() []Band {
	bands := make([]Band, 0, len(f.resources))
	for b := range f.resources {
		bands = append(bands, b)
	}
	return bands
}

func (f *Fiber) NumberOfBands() int { return len(f.resources) }

// SetCores replaces the core/mode/slot structure of every band with
// coreConfig, which for each core gives the slot count of each of its
// modes. Fails if any slot anywhere in the fiber is occupied.
func (f *Fiber) SetCores(coreConfig [][]int) error {
	if len(coreConfig) == 0 {
		return errInvalidArgument("Fiber.SetCores", "core configuration cannot be empty")
	}
	for core, modes := range coreConfig {
		if len(modes) == 0 {
			return errInvalidArgument("Fiber.SetCores", "every core must have at least one mode")
		}
		for _, n := range modes {
			if n < 1 {
				return errInvalidArgument("Fiber.SetCores", "all slot counts must be positive")
			}
		}
		_ = core
	}
	if f.IsActive() {
		return errConflict("Fiber.SetCores", "cannot change core configuration while slots are occupied")
	}

	newCores := len(coreConfig)
	for band := range f.resources {
		perCore := make([][][]int, newCores)
		for core := 0; core < newCores; core++ {
			perMode := make([][]int, len(coreConfig[core]))
			for mode, n := range coreConfig[core] {
				perMode[mode] = newSlots(n)
			}
			perCore[core] = perMode
		}
		f.resources[band] = perCore
	}
	f.detectType()
	return nil
}

func (f *Fiber) NumberOfCores() int {
	for _, matrix := range f.resources {
		return len(matrix)
	}
	return 0
}

// SetModes resets the modes (and their slot counts) of one (core, band)
// combination. Fails if any slot in that scope is occupied.
func (f *Fiber) SetModes(core int, band Band, slotsPerMode []int) error {
	if core < 0 || core >= f.NumberOfCores() {
		return errOutOfRange("Fiber.SetModes", "core index out of range")
	}
	matrix, present := f.resources[band]
	if !present {
		return errInvalidArgument("Fiber.SetModes", "band not found; add it first")
	}
	if len(slotsPerMode) == 0 {
		return errInvalidArgument("Fiber.SetModes", "slotsPerMode cannot be empty")
	}
	for _, n := range slotsPerMode {
		if n < 1 {
			return errInvalidArgument("Fiber.SetModes", "all slot counts must be positive")
		}
	}
	for _, mode := range matrix[core] {
		for _, owner := range mode {
			if owner != FreeSlot {
				return errConflict("Fiber.SetModes", "cannot change modes while slots are occupied")
			}
		}
	}
	perMode := make([][]int, len(slotsPerMode))
	for mode, n := range slotsPerMode {
		perMode[mode] = newSlots(n)
	}
	matrix[core] = perMode
	f.detectType()
	return nil
}

func (f *Fiber) NumberOfModes(core int, band Band) (int, error) {
	matrix, present := f.resources[band]
	if !present {
		return 0, errInvalidArgument("Fiber.NumberOfModes", "band not found")
	}
	if core < 0 || core >= len(matrix) {
		return 0, errOutOfRange("Fiber.NumberOfModes", "core index out of range")
	}
	return len(matrix[core]), nil
}

// SetSlots resizes one (core, band, mode)'s slot array. Free slots are
// appended if it grows; occupancy is not otherwise checked (mirrors the
// original's plain resize, which silently drops any trailing occupied
// slots if shrunk — callers are expected to check IsActive first).
func (f *Fiber) SetSlots(core int, band Band, mode int, n int) error {
	matrix, present := f.resources[band]
	if !present {
		return errInvalidArgument("Fiber.SetSlots", "band not found; add it first")
	}
	if core < 0 || core >= len(matrix) {
		return errOutOfRange("Fiber.SetSlots", "core index out of range")
	}
	if mode < 0 || mode >= len(matrix[core]) {
		return errOutOfRange("Fiber.SetSlots", "mode index out of range")
	}
	if n < 1 {
		return errInvalidArgument("Fiber.SetSlots", "slots must be positive")
	}
	cur := matrix[core][mode]
	if n <= len(cur) {
		matrix[core][mode] = cur[:n]
		return nil
	}
	grown := make([]int, n)
	copy(grown, cur)
	for i := len(cur); i < n; i++ {
		grown[i] = FreeSlot
	}
	matrix[core][mode] = grown
	return nil
}

func (f *Fiber) NumberOfSlots(core int, band Band, mode int) (int, error) {
	matrix, present := f.resources[band]
	if !present {
		return 0, errInvalidArgument("Fiber.NumberOfSlots", "band not found")
	}
	if core < 0 || core >= len(matrix) {
		return 0, errOutOfRange("Fiber.NumberOfSlots", "core index out of range")
	}
	if mode < 0 || mode >= len(matrix[core]) {
		return 0, errOutOfRange("Fiber.NumberOfSlots", "mode index out of range")
	}
	return len(matrix[core][mode]), nil
}

func (f *Fiber) validate(core int, band Band, mode, slotPos int) error {
	matrix, present := f.resources[band]
	if !present {
		return errInvalidArgument("Fiber", "band not found")
	}
	if core < 0 || core >= len(matrix) {
		return errOutOfRange("Fiber", "core index out of range")
	}
	if mode < 0 || mode >= len(matrix[core]) {
		return errOutOfRange("Fiber", "mode index out of range")
	}
	if slotPos < 0 || slotPos >= len(matrix[core][mode]) {
		return errOutOfRange("Fiber", "slot index out of range")
	}
	return nil
}

func (f *Fiber) GetSlot(core int, band Band, mode, slotPos int) (int, error) {
	if err := f.validate(core, band, mode, slotPos); err != nil {
		return 0, err
	}
	return f.resources[band][core][mode][slotPos], nil
}

func (f *Fiber) SetSlot(core int, band Band, mode, slotPos, ownerID int) error {
	if err := f.validate(core, band, mode, slotPos); err != nil {
		return err
	}
	f.resources[band][core][mode][slotPos] = ownerID
	return nil
}

// IsActive reports whether any slot in the fiber is occupied.
func (f *Fiber) IsActive() bool {
	for _, matrix := range f.resources {
		for _, perCore := range matrix {
			for _, perMode := range perCore {
				for _, owner := range perMode {
					if owner != FreeSlot {
						return true
					}
				}
			}
		}
	}
	return false
}

// SetDedicatedToP2P marks the fiber as reserved for a point-to-point
// overlay. Fails if the fiber currently carries traffic.
func (f *Fiber) SetDedicatedToP2P(dedicated bool) error {
	if dedicated && f.IsActive() {
		return errConflict("Fiber.SetDedicatedToP2P", "cannot dedicate an active fiber")
	}
	f.dedicatedToP2P = dedicated
	return nil
}

// Reset zeroes occupancy (sets every slot free) but keeps the band/core/
// mode/slot-count structure intact.
func (f *Fiber) Reset() {
	for _, matrix := range f.resources {
		for _, perCore := range matrix {
			for _, perMode := range perCore {
				for i := range perMode {
					perMode[i] = FreeSlot
				}
			}
		}
	}
}

// Clear removes all bands/cores/modes/slots, warning to stderr first if the
// fiber is still active (original's clearFiber() cerr warning).
func (f *Fiber) Clear() {
	if f.IsActive() {
		fmt.Fprintf(os.Stderr, "warning: clearing fiber with active connections\n")
	}
	f.resources = make(map[Band][][][]int)
}

// UsagePercentage averages occupancy across every (band, core, mode,
// slot) cell in the fiber. Returns 0 for a fiber with no slots at all.
func (f *Fiber) UsagePercentage() float64 {
	var used, total int
	for _, matrix := range f.resources {
		for _, perCore := range matrix {
			for _, perMode := range perCore {
				total += len(perMode)
				for _, owner := range perMode {
					if owner != FreeSlot {
						used++
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

// clone returns a structurally independent deep copy of f, preserving
// current occupancy.
func (f *Fiber) clone() *Fiber {
	cp := &Fiber{fiberType: f.fiberType, dedicatedToP2P: f.dedicatedToP2P}
	cp.resources = make(map[Band][][][]int, len(f.resources))
	bands := f.Bands()
	slices.Sort(bandsAsInt(bands))
	for _, band := range bands {
		matrix := f.resources[band]
		perCore := make([][][]int, len(matrix))
		for core, modes := range matrix {
			perMode := make([][]int, len(modes))
			for mode, slots := range modes {
				s := make([]int, len(slots))
				copy(s, slots)
				perMode[mode] = s
			}
			perCore[core] = perMode
		}
		cp.resources[band] = perCore
	}
	return cp
}

func bandsAsInt(b []Band) []Band { return b }

// Package topoio loads and saves network topologies, path tables, and
// demand matrices in the JSON/YAML formats described by the external
// interfaces. Grounded on the teacher's desc-topo.go: file format is
// selected by extension (.json/.yaml/.yml), and loaders accept either a
// filename or a pre-read byte slice, matching ReadDevExecList's dict
// parameter.
package topoio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/optnetsim/optnetsim"
)

// nodeDoc is the on-disk shape of one Node.
type nodeDoc struct {
	ID        int      `json:"id" yaml:"id"`
	Label     *string  `json:"label,omitempty" yaml:"label,omitempty"`
	DC        *int     `json:"DC,omitempty" yaml:"DC,omitempty"`
	IXP       *int     `json:"IXP,omitempty" yaml:"IXP,omitempty"`
	Pop       *float64 `json:"pop,omitempty" yaml:"pop,omitempty"`
	Param1    *float64 `json:"param1,omitempty" yaml:"param1,omitempty"`
	Param2    *float64 `json:"param2,omitempty" yaml:"param2,omitempty"`
	Longitude *float64 `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty" yaml:"latitude,omitempty"`
}

// fiberDoc is the on-disk shape of one explicit fiber entry under a link's
// "fibers" array.
type fiberDoc struct {
	Type  string `json:"type,omitempty" yaml:"type,omitempty"`
	Slots any    `json:"slots" yaml:"slots"`
}

// linkDoc is the on-disk shape of one Link.
type linkDoc struct {
	ID     int        `json:"id" yaml:"id"`
	Src    int        `json:"src" yaml:"src"`
	Dst    int        `json:"dst" yaml:"dst"`
	Length float64    `json:"length" yaml:"length"`
	Type   string     `json:"type,omitempty" yaml:"type,omitempty"`
	Slots  any        `json:"slots,omitempty" yaml:"slots,omitempty"`
	Fibers []fiberDoc `json:"fibers,omitempty" yaml:"fibers,omitempty"`
}

// topologyDoc is the on-disk shape of an entire topology file.
type topologyDoc struct {
	Name  string    `json:"name,omitempty" yaml:"name,omitempty"`
	Nodes []nodeDoc `json:"nodes" yaml:"nodes"`
	Links []linkDoc `json:"links" yaml:"links"`
}

// LoadTopology reads filename (format chosen by extension) and builds a
// Network from it, validating the bidirectional-link invariant before
// returning.
func LoadTopology(filename string) (*optnetsim.Network, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseTopology(filename, data)
}

// ParseTopology decodes data (format chosen by filename's extension) into a
// Network.
func ParseTopology(filename string, data []byte) (*optnetsim.Network, error) {
	var doc topologyDoc
	if isYAML(filename) {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	} else {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	}
	return buildNetwork(doc)
}

func isYAML(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".yaml" || ext == ".yml"
}

func buildNetwork(doc topologyDoc) (*optnetsim.Network, error) {
	net := optnetsim.NewNetwork(doc.Name)
	for _, nd := range doc.Nodes {
		node := optnetsim.NewNode(nd.ID)
		if nd.Label != nil {
			node.SetLabel(*nd.Label)
		}
		if nd.DC != nil {
			if err := node.SetDC(*nd.DC); err != nil {
				return nil, err
			}
		}
		if nd.IXP != nil {
			if err := node.SetIXP(*nd.IXP); err != nil {
				return nil, err
			}
		}
		if nd.Pop != nil {
			if err := node.SetPopulation(*nd.Pop); err != nil {
				return nil, err
			}
		}
		if nd.Param1 != nil {
			node.SetParam1(*nd.Param1)
		}
		if nd.Param2 != nil {
			node.SetParam2(*nd.Param2)
		}
		if nd.Longitude != nil && nd.Latitude != nil {
			if err := node.SetCoordinates(*nd.Longitude, *nd.Latitude); err != nil {
				return nil, err
			}
		}
		if err := net.AddNode(node); err != nil {
			return nil, err
		}
	}

	for _, ld := range doc.Links {
		fibers, err := fibersFromLinkDoc(ld)
		if err != nil {
			return nil, err
		}
		link, err := optnetsim.NewLinkWithFibers(ld.Length, fibers)
		if err != nil {
			return nil, err
		}
		if err := link.SetID(optnetsim.LinkID(ld.ID)); err != nil {
			return nil, err
		}
		if err := net.AddLink(link); err != nil {
			return nil, err
		}
		if err := net.Connect(ld.Src, link.ID(), ld.Dst); err != nil {
			return nil, err
		}
	}

	if err := net.ValidateBidirectional(); err != nil {
		return nil, err
	}
	return net, nil
}

// fibersFromLinkDoc builds the Fiber set for one link, applying §6's
// discriminated "slots"/"fibers" rules.
func fibersFromLinkDoc(ld linkDoc) ([]*optnetsim.Fiber, error) {
	if len(ld.Fibers) > 0 {
		if ld.Type != "" {
			// §6: link-level "type" is ignored (with a warning) when
			// "fibers" is present.
			fmt.Fprintf(os.Stderr, "topoio: warning: link %d has both fibers and a type override; type ignored\n", ld.ID)
		}
		fibers := make([]*optnetsim.Fiber, 0, len(ld.Fibers))
		for _, fd := range ld.Fibers {
			matrix, err := slotsFromValue(fd.Slots)
			if err != nil {
				return nil, err
			}
			fib, err := optnetsim.NewFiberMatrix(matrix)
			if err != nil {
				return nil, err
			}
			if fd.Type != "" {
				t, err := fiberTypeFromString(fd.Type)
				if err != nil {
					return nil, err
				}
				fib.SetType(t)
			}
			fibers = append(fibers, fib)
		}
		return fibers, nil
	}

	if ld.Slots == nil {
		fib := optnetsim.NewFiber()
		return []*optnetsim.Fiber{fib}, nil
	}
	matrix, err := slotsFromValue(ld.Slots)
	if err != nil {
		return nil, err
	}
	fib, err := optnetsim.NewFiberMatrix(matrix)
	if err != nil {
		return nil, err
	}
	if ld.Type != "" {
		t, err := fiberTypeFromString(ld.Type)
		if err != nil {
			return nil, err
		}
		fib.SetType(t)
	}
	return []*optnetsim.Fiber{fib}, nil
}

func fiberTypeFromString(s string) (optnetsim.FiberType, error) {
	switch strings.ToUpper(s) {
	case "SSMF":
		return optnetsim.SSMF, nil
	case "FMF":
		return optnetsim.FMF, nil
	case "MCF":
		return optnetsim.MCF, nil
	case "FMMCF":
		return optnetsim.FMMCF, nil
	case "HCF":
		return optnetsim.HCF, nil
	default:
		return 0, fmt.Errorf("topoio: unknown fiber type %q", s)
	}
}

// slotsFromValue discriminates the "slots" field's shapes (§6): a bare
// number, a flat array, a nested array, or an object keyed by band letter.
func slotsFromValue(v any) (map[optnetsim.Band][][]int, error) {
	switch t := v.(type) {
	case float64:
		return map[optnetsim.Band][][]int{optnetsim.BandC: {onesCore(int(t))}}, nil
	case int:
		return map[optnetsim.Band][][]int{optnetsim.BandC: {onesCore(t)}}, nil
	case []any:
		if len(t) == 0 {
			return nil, fmt.Errorf("topoio: empty slots array")
		}
		if _, isNested := t[0].([]any); isNested {
			cores := make([][]int, 0, len(t))
			for _, row := range t {
				modes, err := intSlice(row)
				if err != nil {
					return nil, err
				}
				cores = append(cores, modes)
			}
			return map[optnetsim.Band][][]int{optnetsim.BandC: cores}, nil
		}
		ints, err := intSlice(v)
		if err != nil {
			return nil, err
		}
		// a flat array of N entries is N single-mode cores (MCF); a length-1
		// array is one single-mode core with that many slots (SSMF).
		if len(ints) == 1 {
			return map[optnetsim.Band][][]int{optnetsim.BandC: {ints}}, nil
		}
		cores := make([][]int, len(ints))
		for i, s := range ints {
			cores[i] = []int{s}
		}
		return map[optnetsim.Band][][]int{optnetsim.BandC: cores}, nil
	case map[string]any:
		out := make(map[optnetsim.Band][][]int, len(t))
		for k, bv := range t {
			band, err := optnetsim.CharToBand(strings.ToUpper(k)[0])
			if err != nil {
				return nil, err
			}
			nested, err := slotsFromValue(bv)
			if err != nil {
				return nil, err
			}
			out[band] = nested[optnetsim.BandC]
		}
		return out, nil
	default:
		return nil, fmt.Errorf("topoio: unrecognized slots shape %T", v)
	}
}

func onesCore(n int) []int {
	// a bare slot count describes a single-mode core with n slots.
	return []int{n}
}

func intSlice(v any) ([]int, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("topoio: expected array, got %T", v)
	}
	out := make([]int, len(arr))
	for i, e := range arr {
		switch n := e.(type) {
		case float64:
			out[i] = int(n)
		case int:
			out[i] = n
		default:
			return nil, fmt.Errorf("topoio: expected numeric slot count, got %T", e)
		}
	}
	return out, nil
}

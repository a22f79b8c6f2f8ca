package topoio

// demand.go - §6 "demand-update file". Grounded on the same
// extension-selects-format idiom as topology.go; the on-disk shape mirrors
// Controller.demandsToJson's export shape in
// original_source/src/sim/controller.cpp. Per §6/§7, a demand-update file is
// a bare array of records whose src/dst may be either a node id or a node
// label, "source"/"destination" are accepted synonyms for "src"/"dst", and
// malformed records (unknown label, src==dst, out-of-range id) are skipped
// with a logged warning rather than aborting the whole load - one of the
// two places §7 permits silent (logged) error swallowing.

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/optnetsim/optnetsim"
)

// rawDemandEntry accepts either numeric node ids or string labels for its
// endpoints, and either the "src"/"dst" or "source"/"destination" spelling.
type rawDemandEntry struct {
	Src         any     `json:"src,omitempty" yaml:"src,omitempty"`
	Dst         any     `json:"dst,omitempty" yaml:"dst,omitempty"`
	Source      any     `json:"source,omitempty" yaml:"source,omitempty"`
	Destination any     `json:"destination,omitempty" yaml:"destination,omitempty"`
	Required    float64 `json:"required" yaml:"required"`
}

type demandEntry struct {
	Src       int     `json:"src" yaml:"src"`
	Dst       int     `json:"dst" yaml:"dst"`
	Required  float64 `json:"required" yaml:"required"`
	Allocated float64 `json:"allocated" yaml:"allocated"`
}

type demandsDoc struct {
	Time    float64       `json:"time,omitempty" yaml:"time,omitempty"`
	Demands []demandEntry `json:"demands" yaml:"demands"`
}

// LoadDemandUpdate reads a demand-update file (a bare JSON/YAML array of
// records) and applies each entry's required capacity to m via Set.
// net resolves string endpoints against node labels. Records with unknown
// labels, equal src/dst, or out-of-range ids are skipped with a warning
// printed to stderr; the rest of the file is still applied.
func LoadDemandUpdate(filename string, net *optnetsim.Network, m *optnetsim.DemandMatrix) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	var entries []rawDemandEntry
	if isYAML(filename) {
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return err
		}
	} else {
		if err := json.Unmarshal(data, &entries); err != nil {
			return err
		}
	}
	for i, e := range entries {
		src, ok := resolveEndpoint(net, firstNonNil(e.Src, e.Source))
		if !ok {
			fmt.Fprintf(os.Stderr, "topoio: warning: demand record %d has an unresolvable src; skipped\n", i)
			continue
		}
		dst, ok := resolveEndpoint(net, firstNonNil(e.Dst, e.Destination))
		if !ok {
			fmt.Fprintf(os.Stderr, "topoio: warning: demand record %d has an unresolvable dst; skipped\n", i)
			continue
		}
		if src == dst {
			fmt.Fprintf(os.Stderr, "topoio: warning: demand record %d has equal src and dst; skipped\n", i)
			continue
		}
		if e.Required < 0 {
			fmt.Fprintf(os.Stderr, "topoio: warning: demand record %d has a negative required capacity; skipped\n", i)
			continue
		}
		if err := m.Set(src, dst, e.Required); err != nil {
			fmt.Fprintf(os.Stderr, "topoio: warning: demand record %d out of range; skipped\n", i)
			continue
		}
	}
	return nil
}

// resolveEndpoint interprets v as either a numeric node id or a string node
// label, returning ok=false when it is neither a valid id nor a known label.
func resolveEndpoint(net *optnetsim.Network, v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		id := int(t)
		if id < 0 || id >= net.NumberOfNodes() {
			return 0, false
		}
		return id, true
	case int:
		if t < 0 || t >= net.NumberOfNodes() {
			return 0, false
		}
		return t, true
	case string:
		node, err := net.NodeByLabel(t)
		if err != nil {
			return 0, false
		}
		return node.ID(), true
	default:
		return 0, false
	}
}

func firstNonNil(a, b any) any {
	if a != nil {
		return a
	}
	return b
}

// ExportDemands writes m's current required/allocated capacities to
// filename, named "demands_export.json" by convention.
func ExportDemands(m *optnetsim.DemandMatrix, simTime float64, filename string) error {
	doc := demandsDoc{Time: simTime}
	m.ForEach(func(d *optnetsim.Demand) {
		doc.Demands = append(doc.Demands, demandEntry{Src: d.Src, Dst: d.Dst, Required: d.Required(), Allocated: d.Allocated()})
	})
	return writeDoc(filename, doc)
}

// DefaultDemandsExportName returns "demands_export.json" tagged with the
// current wall-clock time, matching the original's fixed-name convention
// closely enough to avoid collisions across repeated runs in the same
// directory.
func DefaultDemandsExportName() string {
	return "demands_export_" + time.Now().UTC().Format("20060102T150405") + ".json"
}

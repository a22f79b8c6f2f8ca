package topoio

// export.go - supplemented feature (§ original_source/src/core/network.cpp
// exportToJson/exportRoutesToJson): round-tripping a live Network's
// topology and computed paths back out to disk, for inspection between
// simulation runs. Grounded on the same desc-topo.go
// extension-selects-format idiom as topology.go.

import (
	"encoding/json"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/optnetsim/optnetsim"
)

// ExportTopology writes net's current topology (nodes, links, per-fiber
// band/core/mode/slot structure, but not live occupancy) to filename.
func ExportTopology(net *optnetsim.Network, filename string) error {
	doc := topologyDoc{Name: net.Name()}
	for _, node := range net.Nodes() {
		nd := nodeDoc{ID: node.ID()}
		if l, err := node.Label(); err == nil {
			nd.Label = &l
		}
		if dc, err := node.DC(); err == nil {
			nd.DC = &dc
		}
		if ixp, err := node.IXP(); err == nil {
			nd.IXP = &ixp
		}
		if pop, err := node.Population(); err == nil {
			nd.Pop = &pop
		}
		if p1, err := node.Param1(); err == nil {
			nd.Param1 = &p1
		}
		if p2, err := node.Param2(); err == nil {
			nd.Param2 = &p2
		}
		if lon, err := node.Longitude(); err == nil {
			if lat, err := node.Latitude(); err == nil {
				nd.Longitude = &lon
				nd.Latitude = &lat
			}
		}
		doc.Nodes = append(doc.Nodes, nd)
	}
	for _, link := range net.Links() {
		ld := linkDoc{ID: int(link.ID()), Src: link.Src(), Dst: link.Dst(), Length: link.Length()}
		for i := 0; i < link.NumberOfFibers(); i++ {
			fib, err := link.Fiber(i)
			if err != nil {
				continue
			}
			ld.Fibers = append(ld.Fibers, fiberDoc{Type: fib.Type().String(), Slots: fiberMatrixToValue(fib)})
		}
		doc.Links = append(doc.Links, ld)
	}
	return writeDoc(filename, doc)
}

func fiberMatrixToValue(fib *optnetsim.Fiber) any {
	out := map[string][][]int{}
	for _, band := range fib.Bands() {
		cores := make([][]int, fib.NumberOfCores())
		for core := 0; core < fib.NumberOfCores(); core++ {
			modes, err := fib.NumberOfModes(core, band)
			if err != nil {
				continue
			}
			row := make([]int, modes)
			for mode := 0; mode < modes; mode++ {
				n, err := fib.NumberOfSlots(core, band, mode)
				if err == nil {
					row[mode] = n
				}
			}
			cores[core] = row
		}
		out[string(optnetsim.BandToChar(band))] = cores
	}
	return out
}

// routesDoc is the on-disk shape of a paths file: §6 "Paths file (JSON)".
type routesDoc struct {
	Routes []pathEntry `json:"routes" yaml:"routes"`
}

type pathEntry struct {
	Src   int     `json:"src" yaml:"src"`
	Dst   int     `json:"dst" yaml:"dst"`
	Paths [][]int `json:"paths" yaml:"paths"`
}

// ExportRoutes writes net's computed k-shortest-paths table to filename in
// the §6 paths-file shape.
func ExportRoutes(net *optnetsim.Network, filename string) error {
	var doc routesDoc
	n := net.NumberOfNodes()
	for src := 0; src < n; src++ {
		for dst := 0; dst < n; dst++ {
			if src == dst {
				continue
			}
			routes, err := net.GetPaths(src, dst)
			if err != nil || len(routes) == 0 {
				continue
			}
			entry := pathEntry{Src: src, Dst: dst}
			for _, r := range routes {
				ids := make([]int, len(r))
				for i, id := range r {
					ids[i] = int(id)
				}
				entry.Paths = append(entry.Paths, ids)
			}
			doc.Routes = append(doc.Routes, entry)
		}
	}
	return writeDoc(filename, doc)
}

// LoadRoutes reads a §6 paths file and installs it as net's paths table
// without computing reverse paths (Network.set_paths(filename) in the
// original contract). Each path must be continuous (hop k's dst equals hop
// k+1's src) and end at its declared dst, or the load fails with
// InvalidTopology.
func LoadRoutes(filename string, net *optnetsim.Network) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	var doc routesDoc
	if isYAML(filename) {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return err
		}
	} else {
		if err := json.Unmarshal(data, &doc); err != nil {
			return err
		}
	}
	routes := make(map[[2]int][]optnetsim.Route, len(doc.Routes))
	for _, entry := range doc.Routes {
		rs := make([]optnetsim.Route, 0, len(entry.Paths))
		for _, ids := range entry.Paths {
			r := make(optnetsim.Route, len(ids))
			for i, id := range ids {
				r[i] = optnetsim.LinkID(id)
			}
			rs = append(rs, r)
		}
		routes[[2]int{entry.Src, entry.Dst}] = rs
	}
	return net.SetPathsFromRoutes(routes)
}

func writeDoc(filename string, doc any) error {
	var data []byte
	var err error
	if isYAML(filename) {
		data, err = yaml.Marshal(doc)
	} else {
		data, err = json.MarshalIndent(doc, "", "\t")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}

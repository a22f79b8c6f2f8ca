package topoio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optnetsim/optnetsim"
)

// buildSampleNetwork returns a small two-node network joined by a link and
// its reverse link (so it passes LoadTopology's bidirectional check), with
// labeled nodes and one DC/IXP-tagged node, exercising the label and DC/IXP
// attributes through an ExportTopology/ParseTopology round-trip.
func buildSampleNetwork(t *testing.T) *optnetsim.Network {
	t.Helper()
	net := optnetsim.NewNetwork("sample")

	n0 := optnetsim.NewNode(0)
	n0.SetLabel("nyc")
	require.NoError(t, n0.SetDC(5))
	require.NoError(t, n0.SetIXP(2))
	require.NoError(t, net.AddNode(n0))

	n1 := optnetsim.NewNode(1)
	n1.SetLabel("bos")
	require.NoError(t, net.AddNode(n1))

	fiber, err := optnetsim.NewFiberSlots(320)
	require.NoError(t, err)
	link, err := optnetsim.NewLinkWithFiber(100, fiber)
	require.NoError(t, err)
	require.NoError(t, link.SetID(0))
	require.NoError(t, net.AddLink(link))
	require.NoError(t, net.Connect(0, 0, 1))

	revFiber, err := optnetsim.NewFiberSlots(320)
	require.NoError(t, err)
	revLink, err := optnetsim.NewLinkWithFiber(100, revFiber)
	require.NoError(t, err)
	require.NoError(t, revLink.SetID(1))
	require.NoError(t, net.AddLink(revLink))
	require.NoError(t, net.Connect(1, 1, 0))
	return net
}

func TestExportThenLoadTopologyRoundTrips(t *testing.T) {
	net := buildSampleNetwork(t)
	path := filepath.Join(t.TempDir(), "topo.json")
	require.NoError(t, ExportTopology(net, path))

	reloaded, err := LoadTopology(path)
	require.NoError(t, err)

	assert.Equal(t, net.Name(), reloaded.Name())
	assert.Equal(t, net.NumberOfNodes(), reloaded.NumberOfNodes())
	assert.Equal(t, net.NumberOfLinks(), reloaded.NumberOfLinks())

	node0, err := reloaded.NodeByID(0)
	require.NoError(t, err)
	label, err := node0.Label()
	require.NoError(t, err)
	assert.Equal(t, "nyc", label)
	dc, err := node0.DC()
	require.NoError(t, err)
	assert.Equal(t, 5, dc)

	link, err := reloaded.LinkByID(0)
	require.NoError(t, err)
	assert.Equal(t, 100.0, link.Length())
	assert.Equal(t, 0, link.Src())
	assert.Equal(t, 1, link.Dst())
	fiber, err := link.Fiber(0)
	require.NoError(t, err)
	slots, err := fiber.NumberOfSlots(0, optnetsim.BandC, 0)
	require.NoError(t, err)
	assert.Equal(t, 320, slots)
}

func TestExportThenLoadRoutesRoundTrips(t *testing.T) {
	net := buildSampleNetwork(t)
	require.NoError(t, net.SetPaths(1))

	path := filepath.Join(t.TempDir(), "routes.json")
	require.NoError(t, ExportRoutes(net, path))

	fresh := buildSampleNetwork(t)
	require.NoError(t, LoadRoutes(path, fresh))

	routes, err := fresh.GetPaths(0, 1)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, optnetsim.LinkID(0), routes[0][0])
}

func TestLoadRoutesRejectsDiscontinuousPath(t *testing.T) {
	net := buildSampleNetwork(t)
	path := filepath.Join(t.TempDir(), "bad-routes.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"routes":[{"src":0,"dst":1,"paths":[[0,0]]}]}`), 0o644))

	err := LoadRoutes(path, net)
	require.Error(t, err)
	assert.True(t, optnetsim.Is(err, optnetsim.InvalidTopology))
}

func TestParseBitratesHandlesBareAndPerBandSpecs(t *testing.T) {
	data := []byte(`{
		"100": [{"BPSK": {"slots": 8, "reach": 5520}}],
		"200": [{"QPSK-multi": [{"C": {"slots": 4, "reach": 2000}}, {"L": {"slots": 6, "reach": 1500}}]}]
	}`)
	rates, err := ParseBitrates("bitrates.json", data)
	require.NoError(t, err)
	require.Contains(t, rates, 100.0)
	require.Contains(t, rates, 200.0)

	b100 := rates[100.0]
	mod, err := b100.ModulationByName("BPSK")
	require.NoError(t, err)
	slots, err := mod.RequiredSlots(optnetsim.BandC)
	require.NoError(t, err)
	assert.Equal(t, 8, slots)

	b200 := rates[200.0]
	mod2, err := b200.ModulationByName("QPSK-multi")
	require.NoError(t, err)
	cSlots, err := mod2.RequiredSlots(optnetsim.BandC)
	require.NoError(t, err)
	assert.Equal(t, 4, cSlots)
	lSlots, err := mod2.RequiredSlots(optnetsim.BandL)
	require.NoError(t, err)
	assert.Equal(t, 6, lSlots)
}

func TestParseBitratesRejectsNegativeSlots(t *testing.T) {
	data := []byte(`{"100": [{"BPSK": {"slots": -1, "reach": 5520}}]}`)
	_, err := ParseBitrates("bitrates.json", data)
	require.Error(t, err)
}

func TestLoadDemandUpdateResolvesLabelsAndSkipsMalformed(t *testing.T) {
	net := buildSampleNetwork(t)
	m := optnetsim.NewDemandMatrix(2)

	path := filepath.Join(t.TempDir(), "demands.json")
	body := `[
		{"src": "nyc", "dst": "bos", "required": 150},
		{"source": 1, "destination": 0, "required": 75},
		{"src": 0, "dst": 0, "required": 10},
		{"src": "unknown-label", "dst": "bos", "required": 20}
	]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	require.NoError(t, LoadDemandUpdate(path, net, m))

	cell, err := m.At(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 150.0, cell.Required())

	cell2, err := m.At(1, 0)
	require.NoError(t, err)
	assert.Equal(t, 75.0, cell2.Required())
}

package optnetsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewP2PRejectsSameSrcDst(t *testing.T) {
	_, err := NewP2P(1, 1, 0)
	require.Error(t, err)
	assert.True(t, Is(err, InvalidArgument))
}

func TestP2PAddFiberRejectsAlreadyDedicatedFiber(t *testing.T) {
	p2p, err := NewP2P(0, 1, 0)
	require.NoError(t, err)
	fiber := NewFiber()

	require.NoError(t, p2p.addFiber(0, 0, fiber))

	other, err := NewP2P(0, 2, 0)
	require.NoError(t, err)
	err = other.addFiber(0, 0, fiber)
	require.Error(t, err)
	assert.True(t, Is(err, Conflict))
}

// buildP2PController builds a single-link network, a Controller bound to
// it, a dedicated-fiber P2P overlay on a second parallel fiber, and a
// committed Connection on the first fiber - the fixture §8 scenario 5's
// migration test exercises.
func buildP2PController(t *testing.T) (*Controller, *Connection, *P2P) {
	t.Helper()
	net := NewNetwork("")
	require.NoError(t, net.AddNode(NewNode(0)))
	require.NoError(t, net.AddNode(NewNode(1)))

	primary, err := NewFiberSlots(320)
	require.NoError(t, err)
	dedicated, err := NewFiberSlots(320)
	require.NoError(t, err)
	link, err := NewLinkWithFibers(100, []*Fiber{primary, dedicated})
	require.NoError(t, err)
	require.NoError(t, link.SetID(0))
	require.NoError(t, net.AddLink(link))
	require.NoError(t, net.Connect(0, 0, 1))
	require.NoError(t, net.SetPaths(1))

	controller := NewControllerFor(net)
	p2p, err := controller.AddP2PBuiltFibers(0, 1, 0, []int{1})
	require.NoError(t, err)

	bitrate, err := NewBitrate(100)
	require.NoError(t, err)
	bitrate.AddModulation("BPSK", map[Band]int{BandC: 8}, map[Band]float64{BandC: 5520})
	controller.SetAllocator(NewGreedyFirstFitAllocator(bitrate, BandC))

	demands := NewDemandMatrix(2)
	require.NoError(t, demands.Set(0, 1, 100))
	committed, err := controller.AssignConnections(demands, NewBitrateCatalog(bitrate), 1)
	require.NoError(t, err)
	require.Len(t, committed, 1)

	return controller, committed[0], p2p
}

func TestMigrateConnectionToP2PMovesSlotsAndRebindsBitrate(t *testing.T) {
	controller, conn, p2p := buildP2PController(t)
	net := controller.Network()

	newBitrate, err := NewBitrate(200)
	require.NoError(t, err)
	newBitrate.AddModulation("QPSK", map[Band]int{BandC: 4}, map[Band]float64{BandC: 2000})

	err = controller.MigrateConnectionToP2P(p2p.ID(), 0, BandC, 0, 0, 4, conn.ID(), newBitrate)
	require.NoError(t, err)

	assert.True(t, conn.IsAllocatedInP2P())
	assert.Equal(t, newBitrate, conn.Bitrate())
	require.Len(t, conn.Hops(), 1)
	assert.Equal(t, 1, conn.Hops()[0].Fiber)

	// the original fiber's slots are freed.
	for pos := 0; pos < 8; pos++ {
		owner, err := net.IsSlotUsed(0, 0, 0, BandC, 0, pos)
		require.NoError(t, err)
		assert.Equal(t, FreeSlot, owner)
	}
	// the dedicated fiber now carries the connection.
	for pos := 0; pos < 4; pos++ {
		owner, err := net.IsSlotUsed(0, 1, 0, BandC, 0, pos)
		require.NoError(t, err)
		assert.Equal(t, int(conn.ID()), owner)
	}
}

// TestMigrateConnectionToP2PRejectsDoubleMigration exercises §8 scenario 5's
// Conflict case: migrating an already-migrated connection a second time
// fails and leaves its state untouched.
func TestMigrateConnectionToP2PRejectsDoubleMigration(t *testing.T) {
	controller, conn, p2p := buildP2PController(t)

	bitrate, err := NewBitrate(200)
	require.NoError(t, err)
	bitrate.AddModulation("QPSK", map[Band]int{BandC: 4}, map[Band]float64{BandC: 2000})
	require.NoError(t, controller.MigrateConnectionToP2P(p2p.ID(), 0, BandC, 0, 0, 4, conn.ID(), bitrate))

	hopsBefore := conn.Hops()
	err = controller.MigrateConnectionToP2P(p2p.ID(), 0, BandC, 0, 4, 8, conn.ID(), bitrate)
	require.Error(t, err)
	assert.True(t, Is(err, Conflict))
	assert.Equal(t, hopsBefore, conn.Hops(), "a rejected second migration must leave the connection's hops unchanged")
}

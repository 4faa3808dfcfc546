package knowledge

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HiddenPCOfficial/biotica/internal/civ"
	"github.com/HiddenPCOfficial/biotica/internal/items"
	"github.com/HiddenPCOfficial/biotica/internal/materials"
	"github.com/HiddenPCOfficial/biotica/internal/narrative"
	"github.com/HiddenPCOfficial/biotica/internal/world"
)

func testSystem(t *testing.T) *civ.System {
	t.Helper()
	g, err := world.NewGrid(8, 8, 42)
	require.NoError(t, err)
	for i := range g.Tiles {
		g.Tiles[i] = byte(world.BiomeGrassland)
		g.Fertility[i] = 160
		g.Humidity[i] = 160
		g.Temperature[i] = 140
	}
	mats, err := materials.GenerateCatalog(g)
	require.NoError(t, err)
	catalog, err := items.GenerateCatalog(42, mats)
	require.NoError(t, err)
	sys, err := civ.NewSystem(civ.Deps{Grid: g, Materials: mats, Items: catalog}, civ.DefaultConfig())
	require.NoError(t, err)

	stats := []civ.SpeciesStat{{
		SpeciesID: "sp-a", Population: 30, Intelligence: 0.5,
		Vitality: 0.7, IsIntelligent: true, Stability: 0.7,
	}}
	for tick := uint64(0); tick < 60; tick++ {
		sys.Step(tick, stats)
	}
	return sys
}

func testPack(t *testing.T) *Pack {
	t.Helper()
	return BuildPack(testSystem(t))
}

func TestRouterWorldSummary(t *testing.T) {
	router := NewToolRouter(testPack(t))
	res := router.CallTool("getWorldSummary", nil)
	require.True(t, res.OK)
	summary, ok := res.Data.(civ.WorldSummary)
	require.True(t, ok)
	assert.Greater(t, summary.Population, 0)
}

func TestRouterUnknownTool(t *testing.T) {
	router := NewToolRouter(testPack(t))
	res := router.CallTool("dropTables", nil)
	assert.False(t, res.OK)
	assert.NotEmpty(t, res.Error)
}

func TestRouterCivLookup(t *testing.T) {
	pack := testPack(t)
	router := NewToolRouter(pack)

	res := router.CallTool("listCivs", nil)
	require.True(t, res.OK)
	civs := res.Data.([]civ.FactionSummary)
	require.NotEmpty(t, civs)

	res = router.CallTool("getCiv", map[string]any{"civId": civs[0].ID})
	assert.True(t, res.OK)

	res = router.CallTool("getCiv", map[string]any{"civId": "faction-404"})
	assert.False(t, res.OK)
}

func TestRouterSpeciesAndCreatures(t *testing.T) {
	pack := testPack(t)
	router := NewToolRouter(pack)

	res := router.CallTool("getTopSpecies", map[string]any{"limit": 3})
	require.True(t, res.OK)

	res = router.CallTool("getSpecies", map[string]any{"speciesId": "sp-a"})
	require.True(t, res.OK)

	res = router.CallTool("searchCreatures", map[string]any{"query": "agent", "limit": 5})
	require.True(t, res.OK)
	found := res.Data.([]any)
	require.NotEmpty(t, found)

	first := found[0].(civ.Agent)
	res = router.CallTool("getCreature", map[string]any{"creatureId": first.ID})
	assert.True(t, res.OK)

	res = router.CallTool("getSpeciesLineage", map[string]any{"speciesId": "sp-a"})
	assert.True(t, res.OK)
}

func TestRouterRegionAndLogs(t *testing.T) {
	pack := testPack(t)
	router := NewToolRouter(pack)

	res := router.CallTool("queryRegion", map[string]any{"x": 4, "y": 4, "radius": 8})
	require.True(t, res.OK)

	res = router.CallTool("getRecentLogs", map[string]any{"limit": 5})
	require.True(t, res.OK)
	logs := res.Data.([]civ.TimelineEntry)
	assert.LessOrEqual(t, len(logs), 5)
}

func TestRecentLogsFactionFilter(t *testing.T) {
	pack := testPack(t)
	router := NewToolRouter(pack)
	require.NotEmpty(t, pack.Factions)
	factionID := pack.Factions[0].ID

	res := router.CallTool("getRecentLogs", map[string]any{"limit": 50, "factionId": factionID})
	require.True(t, res.OK)
	logs := res.Data.([]civ.TimelineEntry)
	require.NotEmpty(t, logs)
	for _, e := range logs {
		assert.Equal(t, factionID, e.FactionID)
	}

	res = router.CallTool("getRecentLogs", map[string]any{"limit": 50, "factionId": "faction-404"})
	require.True(t, res.OK)
	assert.Empty(t, res.Data.([]civ.TimelineEntry))
}

func TestBridgeFillsChroniclePayload(t *testing.T) {
	sys := testSystem(t)
	bridge := NewBridge(sys)
	bridge.Refresh()
	factionID := sys.FactionSummaries()[0].ID

	req := narrative.Request{Kind: narrative.KindChronicle, FactionID: factionID}
	bridge.FillPayload(&req)

	logs, ok := req.Payload["recentLogs"].([]string)
	require.True(t, ok)
	assert.NotEmpty(t, logs)
	assert.LessOrEqual(t, len(logs), 12)
}

func TestBridgeFillsIdentityPayload(t *testing.T) {
	sys := testSystem(t)
	bridge := NewBridge(sys)
	bridge.Refresh()
	factionID := sys.FactionSummaries()[0].ID

	req := narrative.Request{Kind: narrative.KindFactionIdentity, FactionID: factionID}
	bridge.FillPayload(&req)

	summary, ok := req.Payload["worldSummary"].(string)
	require.True(t, ok)
	assert.Contains(t, summary, "members of sp-a")
}

func TestBridgeLeavesCoreOwnedPayloadsAlone(t *testing.T) {
	sys := testSystem(t)
	bridge := NewBridge(sys)
	bridge.Refresh()

	req := narrative.Request{
		Kind:    narrative.KindChronicle,
		Payload: map[string]any{"recentLogs": []string{"already set"}},
	}
	bridge.FillPayload(&req)
	assert.Equal(t, []string{"already set"}, req.Payload["recentLogs"])

	dialogue := narrative.Request{
		Kind:    narrative.KindDialogue,
		Payload: map[string]any{"utteranceTokens": "ka tu"},
	}
	bridge.FillPayload(&dialogue)
	assert.Equal(t, "ka tu", dialogue.Payload["utteranceTokens"], "dialogue payloads stay core-owned")
}

func TestActiveEventsRankedAndBounded(t *testing.T) {
	pack := testPack(t)
	assert.LessOrEqual(t, len(pack.Events), 12)
	for i := 1; i < len(pack.Events); i++ {
		assert.GreaterOrEqual(t, pack.Events[i-1].Intensity, pack.Events[i].Intensity)
	}
}

// fakeClock drives cache expiry deterministically.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCacheLRUEviction(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	cache := NewAiCache(2, time.Second)
	cache.now = clock.Now

	cache.Set("a", 1)
	cache.Set("b", 2)
	_, ok := cache.Get("a") // Touch refreshes recency: order is now [b, a].
	require.True(t, ok)

	cache.Set("c", 3) // Over capacity: the iteration head (b) is evicted.
	_, ok = cache.Get("b")
	assert.False(t, ok, "b was the oldest and must be evicted")
	_, ok = cache.Get("a")
	assert.True(t, ok)
	_, ok = cache.Get("c")
	assert.True(t, ok)
}

func TestCacheTTLExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	cache := NewAiCache(4, time.Second)
	cache.now = clock.Now

	cache.Set("a", 1)
	clock.Advance(500 * time.Millisecond)
	_, ok := cache.Get("a")
	assert.True(t, ok)

	clock.Advance(600 * time.Millisecond)
	_, ok = cache.Get("a")
	assert.False(t, ok, "expired on access")
	assert.Equal(t, 0, cache.Len())
}

func TestCacheSetReplacesExisting(t *testing.T) {
	cache := NewAiCache(2, time.Minute)
	cache.Set("a", 1)
	cache.Set("b", 2)
	cache.Set("a", 10) // Re-set moves a to the recent end.
	cache.Set("c", 3)  // Evicts b, not a.

	v, ok := cache.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10, v)
	_, ok = cache.Get("b")
	assert.False(t, ok)
}

func TestRateLimiterSpacing(t *testing.T) {
	rl := NewAiRateLimiter(100 * time.Millisecond)
	clock := &fakeClock{now: time.Unix(0, 0)}
	var slept []time.Duration
	rl.now = clock.Now
	rl.sleep = func(d time.Duration) {
		slept = append(slept, d)
		clock.Advance(d)
	}

	_, err := rl.Run(func() (any, error) { return 1, nil })
	require.NoError(t, err)
	assert.Empty(t, slept, "first call runs immediately")

	_, err = rl.Run(func() (any, error) { return 2, nil })
	require.NoError(t, err)
	require.Len(t, slept, 1)
	assert.Equal(t, 100*time.Millisecond, slept[0])
}

func TestRateLimiterSerializes(t *testing.T) {
	rl := NewAiRateLimiter(0)
	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			rl.Run(func() (any, error) {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil, nil
			})
		}()
	}
	wg.Wait()
	assert.Len(t, order, 8, "every task ran exactly once")
}

func TestFlightGroupDeduplicates(t *testing.T) {
	g := NewFlightGroup()
	var calls int
	var mu sync.Mutex
	started := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]any, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			v, _ := g.Do("key", func() (any, error) {
				mu.Lock()
				calls++
				mu.Unlock()
				close(started)
				<-release
				return "shared", nil
			})
			results[i] = v
		}()
	}

	<-started
	time.Sleep(10 * time.Millisecond) // Let the other callers join the flight.
	close(release)
	wg.Wait()

	assert.Equal(t, 1, calls, "only one computation per key")
	for _, v := range results {
		assert.Equal(t, "shared", v)
	}
}

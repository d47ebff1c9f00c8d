package guild

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// warFixture sets up two guilds with leaders ready to fight.
func warFixture(t *testing.T) (reg *Registry, store *memStore, leaderA, leaderB uuid.UUID) {
	t.Helper()
	reg, store = newTestRegistry()
	ctx := context.Background()
	leaderA, leaderB = uuid.New(), uuid.New()
	_, err := reg.CreateGuild(ctx, "Alpha", leaderA)
	require.NoError(t, err)
	_, err = reg.CreateGuild(ctx, "Beta", leaderB)
	require.NoError(t, err)
	return reg, store, leaderA, leaderB
}

func TestRegistry_DeclareWar(t *testing.T) {
	reg, store, leaderA, _ := warFixture(t)
	ctx := context.Background()

	member := uuid.New()
	require.NoError(t, reg.AddPlayerToGuild(ctx, "Alpha", member))

	assert.ErrorIs(t, reg.DeclareWar(ctx, uuid.New(), "Beta"), ErrNotInGuild)
	assert.ErrorIs(t, reg.DeclareWar(ctx, member, "Beta"), ErrNotLeader)
	assert.ErrorIs(t, reg.DeclareWar(ctx, leaderA, "Nope"), ErrGuildNotFound)
	assert.ErrorIs(t, reg.DeclareWar(ctx, leaderA, "Alpha"), ErrSelfWar)

	require.NoError(t, reg.DeclareWar(ctx, leaderA, "Beta"))
	assert.True(t, reg.IsAtWarWith("Alpha", "Beta"))
	assert.True(t, reg.IsAtWarWith("Beta", "Alpha"))
	assert.Len(t, store.savedWars, 1)

	assert.ErrorIs(t, reg.DeclareWar(ctx, leaderA, "Beta"), ErrAlreadyAtWar)

	ours, theirs, err := reg.WarScore("Alpha", "Beta")
	require.NoError(t, err)
	assert.Zero(t, ours)
	assert.Zero(t, theirs)
}

func TestRegistry_DeclarePeace(t *testing.T) {
	reg, store, leaderA, leaderB := warFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, reg.DeclarePeace(ctx, leaderA, "Beta"), ErrNotAtWar)

	require.NoError(t, reg.DeclareWar(ctx, leaderA, "Beta"))
	// Either side's leader may end it.
	require.NoError(t, reg.DeclarePeace(ctx, leaderB, "Alpha"))

	assert.False(t, reg.IsAtWarWith("Alpha", "Beta"))
	assert.Len(t, store.deletedWars, 1)
	_, _, err := reg.WarScore("Alpha", "Beta")
	assert.ErrorIs(t, err, ErrNotAtWar)
}

func TestRegistry_RecordKill(t *testing.T) {
	reg, _, leaderA, leaderB := warFixture(t)
	ctx := context.Background()

	// Not at war: nothing scored.
	assert.False(t, reg.RecordKill(ctx, leaderA, leaderB))

	require.NoError(t, reg.DeclareWar(ctx, leaderA, "Beta"))
	assert.True(t, reg.RecordKill(ctx, leaderA, leaderB))

	// Scores read 1-0 from Alpha's side regardless of query order.
	ours, theirs, err := reg.WarScore("Alpha", "Beta")
	require.NoError(t, err)
	assert.Equal(t, WarPointsPerKill, ours)
	assert.Equal(t, 0, theirs)

	theirs, ours, err = reg.WarScore("Beta", "Alpha")
	require.NoError(t, err)
	assert.Equal(t, WarPointsPerKill, ours)
	assert.Equal(t, 0, theirs)

	// Same guild or guildless players: never scored.
	memberA := uuid.New()
	require.NoError(t, reg.AddPlayerToGuild(ctx, "Alpha", memberA))
	assert.False(t, reg.RecordKill(ctx, leaderA, memberA))
	assert.False(t, reg.RecordKill(ctx, leaderA, uuid.New()))
	assert.False(t, reg.RecordKill(ctx, uuid.New(), leaderB))

	ours, _, err = reg.WarScore("Alpha", "Beta")
	require.NoError(t, err)
	assert.Equal(t, WarPointsPerKill, ours)
}

func TestRegistry_RedeclaredWarResetsScore(t *testing.T) {
	reg, _, leaderA, leaderB := warFixture(t)
	ctx := context.Background()

	require.NoError(t, reg.DeclareWar(ctx, leaderA, "Beta"))
	require.True(t, reg.RecordKill(ctx, leaderA, leaderB))
	require.NoError(t, reg.DeclarePeace(ctx, leaderA, "Beta"))

	require.NoError(t, reg.DeclareWar(ctx, leaderB, "Alpha"))
	ours, theirs, err := reg.WarScore("Alpha", "Beta")
	require.NoError(t, err)
	assert.Zero(t, ours)
	assert.Zero(t, theirs)
}

func TestRegistry_ContestChunk(t *testing.T) {
	reg, store, leaderA, _ := warFixture(t)
	ctx := context.Background()
	require.NoError(t, reg.ClaimChunk(ctx, "Beta", "world:5:5"))
	require.NoError(t, reg.ClaimChunk(ctx, "Alpha", "world:0:0"))

	assert.ErrorIs(t, reg.ContestChunk(ctx, uuid.New(), "world:5:5"), ErrNotInGuild)

	memberA := uuid.New()
	require.NoError(t, reg.AddPlayerToGuild(ctx, "Alpha", memberA))
	assert.ErrorIs(t, reg.ContestChunk(ctx, memberA, "world:5:5"), ErrNotOfficer)

	// No war yet.
	assert.ErrorIs(t, reg.ContestChunk(ctx, leaderA, "world:5:5"), ErrNotAtWar)

	require.NoError(t, reg.DeclareWar(ctx, leaderA, "Beta"))

	// Own or unclaimed chunks cannot be contested.
	assert.ErrorIs(t, reg.ContestChunk(ctx, leaderA, "world:0:0"), ErrChunkNotOwned)
	assert.ErrorIs(t, reg.ContestChunk(ctx, leaderA, "world:9:9"), ErrChunkNotOwned)

	require.NoError(t, reg.ContestChunk(ctx, leaderA, "world:5:5"))
	assert.Nil(t, reg.OwnerOfChunk("world:5:5"))
	assert.False(t, reg.Guild("Beta").HasClaim("world:5:5"))
	assert.Contains(t, store.deletedClaims, "world:5:5")

	ours, theirs, err := reg.WarScore("Alpha", "Beta")
	require.NoError(t, err)
	assert.Equal(t, WarPointsPerContest, ours)
	assert.Zero(t, theirs)
}

func TestRegistry_WarsFor(t *testing.T) {
	reg, _, leaderA, _ := warFixture(t)
	ctx := context.Background()
	leaderC := uuid.New()
	_, err := reg.CreateGuild(ctx, "Gamma", leaderC)
	require.NoError(t, err)

	require.NoError(t, reg.DeclareWar(ctx, leaderA, "Beta"))
	require.NoError(t, reg.DeclareWar(ctx, leaderA, "Gamma"))

	assert.ElementsMatch(t, []string{"Beta", "Gamma"}, reg.WarsFor("Alpha"))
	assert.ElementsMatch(t, []string{"Alpha"}, reg.WarsFor("Beta"))
	assert.Empty(t, reg.WarsFor("Nope"))
}

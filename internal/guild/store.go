package guild

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence port consumed by the Registry. Every write is an
// idempotent upsert; bank and outpost saves are full-replace-by-guild.
// Implementations must never partially apply a snapshot write.
type Store interface {
	// Load methods, used once at startup.
	LoadGuilds(ctx context.Context) ([]GuildRow, error)
	LoadMembers(ctx context.Context) ([]MemberRow, error)
	LoadClaims(ctx context.Context) ([]ClaimRow, error)
	LoadBanks(ctx context.Context) ([]BankRow, error)
	LoadOutposts(ctx context.Context) ([]OutpostRow, error)
	LoadInvites(ctx context.Context) ([]InviteRow, error)
	LoadWars(ctx context.Context) ([]WarRow, error)

	// Per-mutation writes mirroring every registry state change.
	SaveGuild(ctx context.Context, g *Guild) error
	DeleteGuild(ctx context.Context, name string) error
	SaveMember(ctx context.Context, guildName string, player uuid.UUID, officer bool) error
	DeleteMember(ctx context.Context, guildName string, player uuid.UUID) error
	SaveXP(ctx context.Context, guildName string, level int32, currentXP int64) error
	SaveHome(ctx context.Context, guildName string, home *Location) error
	SaveClaim(ctx context.Context, guildName, chunk string) error
	DeleteClaim(ctx context.Context, chunk string) error
	SaveBank(ctx context.Context, g *Guild) error
	SaveOutposts(ctx context.Context, g *Guild) error
	SaveInvite(ctx context.Context, player uuid.UUID, guildName string) error
	DeleteInvite(ctx context.Context, player uuid.UUID) error

	// War writes take names in any order; implementations canonicalize
	// (lexicographically smaller name first) at the storage boundary.
	SaveWar(ctx context.Context, guild1, guild2 string) error
	DeleteWar(ctx context.Context, guild1, guild2 string) error
	AddWarScore(ctx context.Context, guild1, guild2 string, delta1, delta2 int) error
}

// GuildRow is a persisted guild header.
type GuildRow struct {
	Name      string
	Leader    uuid.UUID
	Level     int32
	CurrentXP int64
	Home      *Location
}

// MemberRow is a persisted membership record.
type MemberRow struct {
	GuildName string
	Player    uuid.UUID
	Officer   bool
}

// ClaimRow is a persisted chunk claim.
type ClaimRow struct {
	GuildName string
	Chunk     string
}

// BankRow is a persisted bank slot.
type BankRow struct {
	GuildName string
	Slot      int
	Kind      string
	Count     int
}

// OutpostRow is a persisted outpost record. Kind is the storage name;
// unknown kinds are skipped with a warning at load.
type OutpostRow struct {
	GuildName string
	Kind      string
	Location  Location
	NextTick  time.Time
}

// InviteRow is a persisted pending invite.
type InviteRow struct {
	Player    uuid.UUID
	GuildName string
}

// WarRow is a persisted war edge in canonical order (Guild1 < Guild2).
type WarRow struct {
	Guild1 string
	Guild2 string
	Score1 int
	Score2 int
}

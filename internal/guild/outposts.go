package guild

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// CreateOutpost builds an outpost for the actor's guild at the given
// location. The actor needs officer authority, the guild must not already
// have an outpost of this kind, and the target chunk must be claimed by the
// guild. The creation cost is paid up front; if the structure build fails
// the cost is refunded in full and nothing is recorded.
func (r *Registry) CreateOutpost(ctx context.Context, actor uuid.UUID, kind OutpostKind, at Location) error {
	costXP, interval, known := r.cfg.outpostSettings(kind)
	if !known {
		return fmt.Errorf("unknown outpost kind %q", kind)
	}

	g := r.GuildByPlayer(actor)
	if g == nil {
		return ErrNotInGuild
	}
	if !g.HasOfficerAuthority(actor) {
		return ErrNotOfficer
	}
	if g.HasOutpost(kind) {
		return ErrOutpostExists
	}
	if owner := r.OwnerOfChunk(at.ChunkKey()); owner != g {
		return ErrUnclaimedLand
	}
	if !g.PayXP(costXP) {
		return ErrInsufficientXP
	}

	core, err := r.builder.Build(kind, at)
	if err != nil {
		g.AddXP(costXP)
		r.persistXP(ctx, g)
		return fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}

	g.AddOutpost(kind, core, time.Now().Add(interval))
	r.persistXP(ctx, g)
	logPersist("save outposts", r.store.SaveOutposts(ctx, g))
	slog.Info("outpost created", "guild", g.Name(), "kind", kind, "cost_xp", costXP)
	return nil
}

// DestroyOutpost tears down an outpost of the actor's guild. If the physical
// structure cannot be removed the record is dropped anyway, so a broken
// world state never wedges the guild.
func (r *Registry) DestroyOutpost(ctx context.Context, actor uuid.UUID, kind OutpostKind) error {
	g := r.GuildByPlayer(actor)
	if g == nil {
		return ErrNotInGuild
	}
	if !g.HasOfficerAuthority(actor) {
		return ErrNotOfficer
	}
	o, ok := g.Outpost(kind)
	if !ok {
		return ErrNoOutpost
	}

	if err := r.builder.Remove(kind, o.Location); err != nil {
		slog.Warn("outpost structure removal failed, record dropped anyway",
			"guild", g.Name(), "kind", kind, "err", err)
	}
	g.RemoveOutpost(kind)
	logPersist("save outposts", r.store.SaveOutposts(ctx, g))
	slog.Info("outpost destroyed", "guild", g.Name(), "kind", kind)
	return nil
}

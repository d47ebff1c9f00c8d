package guild

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// War score rewards.
const (
	WarPointsPerKill    = 1
	WarPointsPerContest = 5
)

// warKey is the canonical unordered pair of two guild names:
// First is always the lexicographically smaller name. Canonical order never
// leaks to callers; the Registry translates back to caller order.
type warKey struct {
	First  string
	Second string
}

// pairKey normalizes two names into canonical order.
func pairKey(a, b string) warKey {
	if a < b {
		return warKey{First: a, Second: b}
	}
	return warKey{First: b, Second: a}
}

// warScore holds the symmetric score pair in canonical order.
type warScore struct {
	first  int
	second int
}

// add credits points to the named contributing guild.
func (s *warScore) add(key warKey, contributor string, points int) {
	if contributor == key.First {
		s.first += points
	} else {
		s.second += points
	}
}

// scoreFor returns the score attributed to the named guild.
func (s *warScore) scoreFor(key warKey, name string) int {
	if name == key.First {
		return s.first
	}
	return s.second
}

// IsAtWarWith reports whether the two named guilds are at war. Order does
// not matter; a guild is never at war with itself.
func (r *Registry) IsAtWarWith(guild1, guild2 string) bool {
	if guild1 == guild2 {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.wars[pairKey(guild1, guild2)]
	return ok
}

// WarsFor returns the names of all guilds the named guild is at war with.
func (r *Registry) WarsFor(guildName string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var enemies []string
	for key := range r.wars {
		switch guildName {
		case key.First:
			enemies = append(enemies, key.Second)
		case key.Second:
			enemies = append(enemies, key.First)
		}
	}
	return enemies
}

// WarScore returns the current score pair in the caller's argument order.
func (r *Registry) WarScore(guild1, guild2 string) (int, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key := pairKey(guild1, guild2)
	score, ok := r.wars[key]
	if !ok {
		return 0, 0, ErrNotAtWar
	}
	return score.scoreFor(key, guild1), score.scoreFor(key, guild2), nil
}

// DeclareWar opens a war between the actor's guild and the target guild.
// Leader-only. A newly declared war always starts at 0-0, including a war
// re-declared after peace.
func (r *Registry) DeclareWar(ctx context.Context, actor uuid.UUID, targetName string) error {
	r.mu.Lock()
	declaring, ok := r.guildByPlayerLocked(actor)
	if !ok {
		r.mu.Unlock()
		return ErrNotInGuild
	}
	if !declaring.IsLeader(actor) {
		r.mu.Unlock()
		return ErrNotLeader
	}
	if _, ok := r.guilds[targetName]; !ok {
		r.mu.Unlock()
		return ErrGuildNotFound
	}
	if declaring.Name() == targetName {
		r.mu.Unlock()
		return ErrSelfWar
	}
	key := pairKey(declaring.Name(), targetName)
	if _, ok := r.wars[key]; ok {
		r.mu.Unlock()
		return ErrAlreadyAtWar
	}
	r.wars[key] = &warScore{}
	r.mu.Unlock()

	logPersist("save war", r.store.SaveWar(ctx, declaring.Name(), targetName))
	slog.Info("war declared", "declarer", declaring.Name(), "target", targetName)
	return nil
}

// DeclarePeace ends the war between the actor's guild and the target guild.
// Leader-only. The score is discarded with the edge.
func (r *Registry) DeclarePeace(ctx context.Context, actor uuid.UUID, targetName string) error {
	r.mu.Lock()
	declaring, ok := r.guildByPlayerLocked(actor)
	if !ok {
		r.mu.Unlock()
		return ErrNotInGuild
	}
	if !declaring.IsLeader(actor) {
		r.mu.Unlock()
		return ErrNotLeader
	}
	key := pairKey(declaring.Name(), targetName)
	if _, ok := r.wars[key]; !ok {
		r.mu.Unlock()
		return ErrNotAtWar
	}
	delete(r.wars, key)
	r.mu.Unlock()

	logPersist("delete war", r.store.DeleteWar(ctx, declaring.Name(), targetName))
	slog.Info("peace declared", "declarer", declaring.Name(), "target", targetName)
	return nil
}

// RecordKill credits a kill to the attacker's guild when attacker and victim
// belong to different guilds that are currently at war. Everything else is a
// no-op. Returns whether the kill was scored.
func (r *Registry) RecordKill(ctx context.Context, attacker, victim uuid.UUID) bool {
	r.mu.Lock()
	attacking, ok := r.guildByPlayerLocked(attacker)
	if !ok {
		r.mu.Unlock()
		return false
	}
	defending, ok := r.guildByPlayerLocked(victim)
	if !ok || attacking == defending {
		r.mu.Unlock()
		return false
	}
	if !r.creditWarPointsLocked(attacking.Name(), defending.Name(), WarPointsPerKill) {
		r.mu.Unlock()
		return false
	}
	r.mu.Unlock()

	logPersist("add war score", r.store.AddWarScore(ctx, attacking.Name(), defending.Name(), WarPointsPerKill, 0))
	return true
}

// ContestChunk strips a chunk from an enemy guild. The actor needs officer
// authority, the chunk must be owned, and owner and actor's guild must be at
// war. The chunk becomes unclaimed and the actor's guild gains contest points.
func (r *Registry) ContestChunk(ctx context.Context, actor uuid.UUID, chunk string) error {
	r.mu.Lock()
	attacking, ok := r.guildByPlayerLocked(actor)
	if !ok {
		r.mu.Unlock()
		return ErrNotInGuild
	}
	if !attacking.HasOfficerAuthority(actor) {
		r.mu.Unlock()
		return ErrNotOfficer
	}
	ownerName, ok := r.chunkOwners[chunk]
	if !ok || ownerName == attacking.Name() {
		r.mu.Unlock()
		return ErrChunkNotOwned
	}
	owner := r.guilds[ownerName]
	if _, atWar := r.wars[pairKey(attacking.Name(), ownerName)]; !atWar {
		r.mu.Unlock()
		return ErrNotAtWar
	}
	owner.RemoveClaim(chunk)
	delete(r.chunkOwners, chunk)
	r.creditWarPointsLocked(attacking.Name(), ownerName, WarPointsPerContest)
	r.mu.Unlock()

	logPersist("delete claim", r.store.DeleteClaim(ctx, chunk))
	logPersist("add war score", r.store.AddWarScore(ctx, attacking.Name(), ownerName, WarPointsPerContest, 0))
	slog.Info("chunk contested", "attacker", attacking.Name(), "owner", ownerName, "chunk", chunk)
	return nil
}

// guildByPlayerLocked resolves a player's guild. Caller holds r.mu.
func (r *Registry) guildByPlayerLocked(player uuid.UUID) (*Guild, bool) {
	name, ok := r.byMember[player]
	if !ok {
		return nil, false
	}
	g, ok := r.guilds[name]
	return g, ok
}

// creditWarPointsLocked adds points for the acting guild to the war edge
// against the opposing guild, if one exists. Caller holds r.mu.
func (r *Registry) creditWarPointsLocked(acting, opposing string, points int) bool {
	key := pairKey(acting, opposing)
	score, ok := r.wars[key]
	if !ok {
		return false
	}
	score.add(key, acting, points)
	return true
}

package guild

import (
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level limits.
const (
	MinLevel int32 = 1
	MaxLevel int32 = 200
)

// Base caps before perk bonuses.
const (
	BaseMaxMembers = 10
	BaseMaxClaims  = 5
)

// XPForNextLevel returns the XP needed to advance past the given level.
func XPForNextLevel(level int32) int64 {
	return 500 * int64(level) * int64(level)
}

// Guild is a persistent player group: roles, XP/level, home, claimed land,
// bank, and active outposts. Thread-safe: all mutable fields protected by mu.
// Cross-guild invariants (name uniqueness, one-guild-per-player, chunk
// ownership, capacity caps) are the Registry's job.
type Guild struct {
	mu sync.RWMutex

	name   string // immutable identity
	leader uuid.UUID

	members  map[uuid.UUID]struct{}
	officers map[uuid.UUID]struct{}

	level     int32
	currentXP int64

	home *Location

	claimedChunks map[string]struct{} // "world:x:z"
	bank          Bank
	outposts      map[OutpostKind]Outpost
}

// New creates a guild with the given leader as its sole member and officer.
func New(name string, leader uuid.UUID) *Guild {
	g := &Guild{
		name:          name,
		leader:        leader,
		members:       make(map[uuid.UUID]struct{}, BaseMaxMembers),
		officers:      make(map[uuid.UUID]struct{}, 2),
		level:         MinLevel,
		claimedChunks: make(map[string]struct{}, BaseMaxClaims),
		outposts:      make(map[OutpostKind]Outpost, 3),
	}
	g.members[leader] = struct{}{}
	g.officers[leader] = struct{}{}
	return g
}

// Restore rebuilds a guild from persisted state. Members, claims, bank and
// outposts are populated separately during load.
func Restore(name string, leader uuid.UUID, level int32, currentXP int64) *Guild {
	g := New(name, leader)
	if level >= MinLevel {
		g.level = level
	}
	if currentXP > 0 {
		g.currentXP = currentXP
	}
	return g
}

// Name returns the guild name.
func (g *Guild) Name() string { return g.name }

// Leader returns the current leader's player ID.
func (g *Guild) Leader() uuid.UUID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.leader
}

// IsLeader reports whether the player is the guild leader.
func (g *Guild) IsLeader(player uuid.UUID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.leader == player
}

// IsMember reports whether the player belongs to the guild.
func (g *Guild) IsMember(player uuid.UUID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.members[player]
	return ok
}

// IsOfficer reports whether the player is in the officer set. The leader has
// officer authority regardless; use HasOfficerAuthority for permission checks.
func (g *Guild) IsOfficer(player uuid.UUID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.officers[player]
	return ok
}

// HasOfficerAuthority reports whether the player may act as an officer:
// either an officer or the leader.
func (g *Guild) HasOfficerAuthority(player uuid.UUID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.leader == player {
		return true
	}
	_, ok := g.officers[player]
	return ok
}

// MemberCount returns the current number of members.
func (g *Guild) MemberCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.members)
}

// Members returns a snapshot of all member IDs.
func (g *Guild) Members() []uuid.UUID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	result := make([]uuid.UUID, 0, len(g.members))
	for id := range g.members {
		result = append(result, id)
	}
	return result
}

// Officers returns a snapshot of the officer set.
func (g *Guild) Officers() []uuid.UUID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	result := make([]uuid.UUID, 0, len(g.officers))
	for id := range g.officers {
		result = append(result, id)
	}
	return result
}

// AddMember adds a player to the member set.
// Returns false if already a member. Capacity is the caller's concern.
func (g *Guild) AddMember(player uuid.UUID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.members[player]; ok {
		return false
	}
	g.members[player] = struct{}{}
	return true
}

// RemoveMember removes a player from the member and officer sets.
// The leader can never be removed this way; returns whether removal occurred.
func (g *Guild) RemoveMember(player uuid.UUID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if player == g.leader {
		return false
	}
	if _, ok := g.members[player]; !ok {
		return false
	}
	delete(g.members, player)
	delete(g.officers, player)
	return true
}

// PromoteOfficer grants officer status. Requires membership and non-officer
// status; the leader cannot be promoted (already above officer).
func (g *Guild) PromoteOfficer(player uuid.UUID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if player == g.leader {
		return false
	}
	if _, ok := g.members[player]; !ok {
		return false
	}
	if _, ok := g.officers[player]; ok {
		return false
	}
	g.officers[player] = struct{}{}
	return true
}

// DemoteOfficer revokes officer status. The leader cannot be demoted.
func (g *Guild) DemoteOfficer(player uuid.UUID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if player == g.leader {
		return false
	}
	if _, ok := g.officers[player]; !ok {
		return false
	}
	delete(g.officers, player)
	return true
}

// SetLeader transfers leadership to an existing member. The old leader stays
// a member and is guaranteed officer status, as is the new leader.
// No-op for non-members.
func (g *Guild) SetLeader(newLeader uuid.UUID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.members[newLeader]; !ok {
		return false
	}
	if g.leader != newLeader {
		g.officers[g.leader] = struct{}{}
	}
	g.leader = newLeader
	g.officers[newLeader] = struct{}{}
	return true
}

// Level returns the guild level.
func (g *Guild) Level() int32 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.level
}

// CurrentXP returns the XP accumulated toward the next level.
func (g *Guild) CurrentXP() int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.currentXP
}

// AddXP adds XP and resolves level-ups. Amounts <= 0 are a no-op. Levels are
// consumed repeatedly while enough XP is banked; at MaxLevel the remainder is
// zeroed so XP cannot accumulate at cap. Returns whether at least one
// level-up occurred — callers use this to trigger notifications.
func (g *Guild) AddXP(amount int64) bool {
	if amount <= 0 {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.currentXP += amount
	leveledUp := false
	for {
		needed := XPForNextLevel(g.level)
		if needed <= 0 || g.currentXP < needed {
			break
		}
		g.currentXP -= needed
		g.level++
		leveledUp = true
		if g.level >= MaxLevel {
			g.currentXP = 0
			break
		}
	}
	return leveledUp
}

// PayXP deducts the amount if the guild can afford it; otherwise leaves state
// untouched and returns false. Negative amounts are treated as zero cost and
// always succeed. This is the single economic primitive shared by upkeep
// billing and outpost creation.
func (g *Guild) PayXP(amount int64) bool {
	if amount < 0 {
		return true
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.currentXP < amount {
		return false
	}
	g.currentXP -= amount
	return true
}

// Home returns the guild home location, or nil if unset.
func (g *Guild) Home() *Location {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.home == nil {
		return nil
	}
	h := *g.home
	return &h
}

// SetHome sets or clears the guild home.
func (g *Guild) SetHome(loc *Location) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if loc == nil {
		g.home = nil
		return
	}
	h := *loc
	g.home = &h
}

// --- Claimed chunks ---

// HasClaim reports whether the guild holds the given chunk key.
func (g *Guild) HasClaim(chunk string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.claimedChunks[chunk]
	return ok
}

// ClaimCount returns the number of claimed chunks.
func (g *Guild) ClaimCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.claimedChunks)
}

// Claims returns a snapshot of all claimed chunk keys.
func (g *Guild) Claims() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	result := make([]string, 0, len(g.claimedChunks))
	for key := range g.claimedChunks {
		result = append(result, key)
	}
	return result
}

// AddClaim records a chunk key in the claim set.
// System-wide ownership uniqueness is the Registry's job.
func (g *Guild) AddClaim(chunk string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.claimedChunks[chunk] = struct{}{}
}

// RemoveClaim drops a chunk key; returns whether it was held.
func (g *Guild) RemoveClaim(chunk string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.claimedChunks[chunk]; !ok {
		return false
	}
	delete(g.claimedChunks, chunk)
	return true
}

// ClearClaims drops every claim.
func (g *Guild) ClearClaims() {
	g.mu.Lock()
	defer g.mu.Unlock()
	clear(g.claimedChunks)
}

// --- Bank ---

// BankContents returns a snapshot of the bank slots.
func (g *Guild) BankContents() []ItemStack {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.bank.Contents()
}

// SetBankContents replaces the bank slot array.
func (g *Guild) SetBankContents(slots []ItemStack) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.bank.SetContents(slots)
}

// DepositItems stacks items into the bank, compatible stacks first, then
// empty slots. Returns per-kind deposited counts and the overflow that did
// not fit.
func (g *Guild) DepositItems(items []ItemStack) (map[string]int, []ItemStack) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.bank.Deposit(items)
}

// --- Outposts ---

// HasOutpost reports whether an outpost of the kind is active.
func (g *Guild) HasOutpost(kind OutpostKind) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.outposts[kind]
	return ok
}

// Outpost returns the active outpost of the kind, if any.
func (g *Guild) Outpost(kind OutpostKind) (Outpost, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	o, ok := g.outposts[kind]
	return o, ok
}

// Outposts returns a snapshot of all active outposts by kind.
func (g *Guild) Outposts() map[OutpostKind]Outpost {
	g.mu.RLock()
	defer g.mu.RUnlock()
	result := make(map[OutpostKind]Outpost, len(g.outposts))
	maps.Copy(result, g.outposts)
	return result
}

// AddOutpost records an outpost; at most one per kind by map semantics.
func (g *Guild) AddOutpost(kind OutpostKind, loc Location, nextTick time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.outposts[kind] = Outpost{Location: loc, NextTick: nextTick}
}

// UpdateOutpostNextTick advances the production timer, preserving location.
func (g *Guild) UpdateOutpostNextTick(kind OutpostKind, nextTick time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	o, ok := g.outposts[kind]
	if !ok {
		return
	}
	o.NextTick = nextTick
	g.outposts[kind] = o
}

// RemoveOutpost drops the outpost record of the kind.
func (g *Guild) RemoveOutpost(kind OutpostKind) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.outposts, kind)
}

package guild

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Guild name constraints.
const (
	MinNameLen = 3
	MaxNameLen = 16
)

// Registry errors. Validation failures are expected, user-correctable
// conditions; callers branch on errors.Is and produce their own messaging.
var (
	ErrNameInvalid    = errors.New("invalid guild name")
	ErrNameTaken      = errors.New("guild name already taken")
	ErrGuildNotFound  = errors.New("guild not found")
	ErrAlreadyInGuild = errors.New("player already in a guild")
	ErrNotInGuild     = errors.New("player not in a guild")
	ErrNotMember      = errors.New("not a member of this guild")
	ErrGuildFull      = errors.New("guild is full")
	ErrNotLeader      = errors.New("only the guild leader may do this")
	ErrNotOfficer     = errors.New("only officers or the leader may do this")
	ErrRoleUnchanged  = errors.New("role unchanged")
	ErrNoInvite       = errors.New("no pending invite")
	ErrChunkOwned     = errors.New("chunk already claimed")
	ErrChunkNotOwned  = errors.New("chunk not claimed by this guild")
	ErrClaimLimit     = errors.New("claim limit reached")
	ErrSelfWar        = errors.New("cannot declare war on own guild")
	ErrAlreadyAtWar   = errors.New("already at war with this guild")
	ErrNotAtWar       = errors.New("not at war with this guild")
	ErrOutpostExists  = errors.New("guild already has this outpost")
	ErrNoOutpost      = errors.New("guild has no such outpost")
	ErrUnclaimedLand  = errors.New("outposts require claimed territory")
	ErrInsufficientXP = errors.New("insufficient guild XP")
	ErrBuildFailed    = errors.New("outpost structure generation failed")
	ErrSetHomeLocked  = errors.New("guild home perk not unlocked")
)

// Registry is the single holder of all live guilds, the pending-invite
// table, the chunk-ownership index, and the war graph. Every cross-guild
// operation goes through it; it is the only writer to the Store.
// Thread-safe: its own maps are protected by mu, each Guild by its own lock.
type Registry struct {
	mu sync.RWMutex

	guilds      map[string]*Guild    // by name
	byMember    map[uuid.UUID]string // player -> guild name
	chunkOwners map[string]string    // "world:x:z" -> guild name
	invites     map[uuid.UUID]string // player -> inviting guild name
	wars        map[warKey]*warScore

	store   Store
	builder StructureBuilder
	perks   *PerkTable
	cfg     Config
}

// NewRegistry creates an empty registry.
func NewRegistry(store Store, builder StructureBuilder, perks *PerkTable, cfg Config) *Registry {
	if builder == nil {
		builder = NopBuilder{}
	}
	if perks == nil {
		perks = DefaultPerkTable()
	}
	return &Registry{
		guilds:      make(map[string]*Guild, 64),
		byMember:    make(map[uuid.UUID]string, 256),
		chunkOwners: make(map[string]string, 256),
		invites:     make(map[uuid.UUID]string, 32),
		wars:        make(map[warKey]*warScore, 16),
		store:       store,
		builder:     builder,
		perks:       perks,
		cfg:         cfg,
	}
}

// Config returns the economy tuning.
func (r *Registry) Config() Config { return r.cfg }

// PerkTable returns the static perk table.
func (r *Registry) PerkTable() *PerkTable { return r.perks }

// logPersist records a failed store write. In-memory state remains the
// source of truth for the session; the triggering operation still succeeds.
func logPersist(op string, err error) {
	if err != nil {
		slog.Error("persist failed", "op", op, "err", err)
	}
}

// --- Load ---

// Load populates the registry from the store. Data-integrity anomalies
// (unknown guilds, unknown outpost kinds, malformed chunk keys) are skipped
// with a warning, never fatal.
func (r *Registry) Load(ctx context.Context) error {
	rows, err := r.store.LoadGuilds(ctx)
	if err != nil {
		return fmt.Errorf("load guilds: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range rows {
		g := Restore(row.Name, row.Leader, row.Level, row.CurrentXP)
		g.SetHome(row.Home)
		r.guilds[row.Name] = g
		r.byMember[row.Leader] = row.Name
	}

	members, err := r.store.LoadMembers(ctx)
	if err != nil {
		return fmt.Errorf("load members: %w", err)
	}
	for _, m := range members {
		g, ok := r.guilds[m.GuildName]
		if !ok {
			slog.Warn("member for unknown guild, skipped", "guild", m.GuildName, "player", m.Player)
			continue
		}
		g.AddMember(m.Player)
		if m.Officer {
			g.PromoteOfficer(m.Player)
		}
		r.byMember[m.Player] = m.GuildName
	}

	claims, err := r.store.LoadClaims(ctx)
	if err != nil {
		return fmt.Errorf("load claims: %w", err)
	}
	for _, c := range claims {
		g, ok := r.guilds[c.GuildName]
		if !ok {
			slog.Warn("claim for unknown guild, skipped", "guild", c.GuildName, "chunk", c.Chunk)
			continue
		}
		if _, _, _, err := ParseChunkKey(c.Chunk); err != nil {
			slog.Warn("malformed claim, skipped", "guild", c.GuildName, "chunk", c.Chunk, "err", err)
			continue
		}
		if owner, taken := r.chunkOwners[c.Chunk]; taken {
			slog.Warn("duplicate chunk owner, skipped", "chunk", c.Chunk, "owner", owner, "claimant", c.GuildName)
			continue
		}
		g.AddClaim(c.Chunk)
		r.chunkOwners[c.Chunk] = c.GuildName
	}

	banks, err := r.store.LoadBanks(ctx)
	if err != nil {
		return fmt.Errorf("load banks: %w", err)
	}
	bankSlots := make(map[string][]ItemStack)
	for _, b := range banks {
		if b.Slot < 0 || b.Slot >= BankSize {
			slog.Warn("bank slot out of range, skipped", "guild", b.GuildName, "slot", b.Slot)
			continue
		}
		slots, ok := bankSlots[b.GuildName]
		if !ok {
			slots = make([]ItemStack, BankSize)
		}
		slots[b.Slot] = ItemStack{Kind: b.Kind, Count: b.Count}
		bankSlots[b.GuildName] = slots
	}
	for name, slots := range bankSlots {
		if g, ok := r.guilds[name]; ok {
			g.SetBankContents(slots)
		}
	}

	outposts, err := r.store.LoadOutposts(ctx)
	if err != nil {
		return fmt.Errorf("load outposts: %w", err)
	}
	for _, o := range outposts {
		g, ok := r.guilds[o.GuildName]
		if !ok {
			slog.Warn("outpost for unknown guild, skipped", "guild", o.GuildName, "kind", o.Kind)
			continue
		}
		kind, ok := ParseOutpostKind(o.Kind)
		if !ok {
			slog.Warn("unknown outpost kind, skipped", "guild", o.GuildName, "kind", o.Kind)
			continue
		}
		g.AddOutpost(kind, o.Location, o.NextTick)
	}

	invites, err := r.store.LoadInvites(ctx)
	if err != nil {
		return fmt.Errorf("load invites: %w", err)
	}
	for _, inv := range invites {
		if _, ok := r.guilds[inv.GuildName]; !ok {
			slog.Warn("invite for unknown guild, skipped", "guild", inv.GuildName, "player", inv.Player)
			continue
		}
		r.invites[inv.Player] = inv.GuildName
	}

	wars, err := r.store.LoadWars(ctx)
	if err != nil {
		return fmt.Errorf("load wars: %w", err)
	}
	for _, w := range wars {
		if _, ok := r.guilds[w.Guild1]; !ok {
			slog.Warn("war for unknown guild, skipped", "guild", w.Guild1)
			continue
		}
		if _, ok := r.guilds[w.Guild2]; !ok {
			slog.Warn("war for unknown guild, skipped", "guild", w.Guild2)
			continue
		}
		key := pairKey(w.Guild1, w.Guild2)
		r.wars[key] = &warScore{
			first:  w.Score1,
			second: w.Score2,
		}
	}

	slog.Info("guild registry loaded",
		"guilds", len(r.guilds),
		"claims", len(r.chunkOwners),
		"invites", len(r.invites),
		"wars", len(r.wars))
	return nil
}

// --- Lookups ---

// Guild returns a guild by name, or nil.
func (r *Registry) Guild(name string) *Guild {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.guilds[name]
}

// GuildByPlayer returns the guild the player belongs to, or nil.
func (r *Registry) GuildByPlayer(player uuid.UUID) *Guild {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.byMember[player]
	if !ok {
		return nil
	}
	return r.guilds[name]
}

// Guilds returns a snapshot slice of all guilds.
func (r *Registry) Guilds() []*Guild {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*Guild, 0, len(r.guilds))
	for _, g := range r.guilds {
		result = append(result, g)
	}
	return result
}

// Count returns the number of registered guilds.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.guilds)
}

// --- Creation / deletion ---

// CreateGuild registers a new guild with the given leader.
func (r *Registry) CreateGuild(ctx context.Context, name string, leader uuid.UUID) (*Guild, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	r.mu.Lock()
	if _, ok := r.guilds[name]; ok {
		r.mu.Unlock()
		return nil, ErrNameTaken
	}
	if _, ok := r.byMember[leader]; ok {
		r.mu.Unlock()
		return nil, ErrAlreadyInGuild
	}
	g := New(name, leader)
	r.guilds[name] = g
	r.byMember[leader] = name
	r.mu.Unlock()

	logPersist("save guild", r.store.SaveGuild(ctx, g))
	logPersist("save member", r.store.SaveMember(ctx, name, leader, true))
	slog.Info("guild created", "name", name, "leader", leader)
	return g, nil
}

// DeleteGuild removes a guild and cascades: outpost structures torn down,
// claims released, pending invites cleared, war edges removed.
func (r *Registry) DeleteGuild(ctx context.Context, name string) error {
	r.mu.Lock()
	g, ok := r.guilds[name]
	if !ok {
		r.mu.Unlock()
		return ErrGuildNotFound
	}
	delete(r.guilds, name)
	for _, member := range g.Members() {
		delete(r.byMember, member)
	}
	for _, chunk := range g.Claims() {
		delete(r.chunkOwners, chunk)
	}
	var clearedInvites []uuid.UUID
	for player, inviter := range r.invites {
		if inviter == name {
			delete(r.invites, player)
			clearedInvites = append(clearedInvites, player)
		}
	}
	var endedWars []warKey
	for key := range r.wars {
		if key.First == name || key.Second == name {
			delete(r.wars, key)
			endedWars = append(endedWars, key)
		}
	}
	r.mu.Unlock()

	for kind, o := range g.Outposts() {
		if err := r.builder.Remove(kind, o.Location); err != nil {
			slog.Warn("outpost structure removal failed", "guild", name, "kind", kind, "err", err)
		}
	}
	g.ClearClaims()

	for _, player := range clearedInvites {
		logPersist("delete invite", r.store.DeleteInvite(ctx, player))
	}
	for _, key := range endedWars {
		logPersist("delete war", r.store.DeleteWar(ctx, key.First, key.Second))
	}
	logPersist("delete guild", r.store.DeleteGuild(ctx, name))
	slog.Info("guild deleted", "name", name)
	return nil
}

// --- Membership ---

// AddPlayerToGuild adds a player, enforcing the one-guild-per-player rule
// and the perk-derived member capacity.
func (r *Registry) AddPlayerToGuild(ctx context.Context, guildName string, player uuid.UUID) error {
	r.mu.Lock()
	g, ok := r.guilds[guildName]
	if !ok {
		r.mu.Unlock()
		return ErrGuildNotFound
	}
	if _, ok := r.byMember[player]; ok {
		r.mu.Unlock()
		return ErrAlreadyInGuild
	}
	if g.MemberCount() >= r.EffectiveMaxMembers(g) {
		r.mu.Unlock()
		return ErrGuildFull
	}
	g.AddMember(player)
	r.byMember[player] = guildName
	r.mu.Unlock()

	logPersist("save member", r.store.SaveMember(ctx, guildName, player, false))
	return nil
}

// RemovePlayerFromGuild removes a player. The leader cannot be removed this
// way. If the guild is left empty and the removed player was not the leader,
// the guild is auto-deleted.
func (r *Registry) RemovePlayerFromGuild(ctx context.Context, guildName string, player uuid.UUID) error {
	r.mu.Lock()
	g, ok := r.guilds[guildName]
	if !ok {
		r.mu.Unlock()
		return ErrGuildNotFound
	}
	if !g.RemoveMember(player) {
		r.mu.Unlock()
		return ErrNotMember
	}
	delete(r.byMember, player)
	r.mu.Unlock()

	logPersist("delete member", r.store.DeleteMember(ctx, guildName, player))
	if g.MemberCount() == 0 && g.Leader() != player {
		return r.DeleteGuild(ctx, guildName)
	}
	return nil
}

// PromotePlayer grants officer status; the leader cannot be promoted.
func (r *Registry) PromotePlayer(ctx context.Context, guildName string, player uuid.UUID) error {
	g := r.Guild(guildName)
	if g == nil {
		return ErrGuildNotFound
	}
	if g.IsLeader(player) {
		return ErrRoleUnchanged
	}
	if !g.IsMember(player) {
		return ErrNotMember
	}
	if !g.PromoteOfficer(player) {
		return ErrRoleUnchanged
	}
	logPersist("save member role", r.store.SaveMember(ctx, guildName, player, true))
	return nil
}

// DemotePlayer revokes officer status; the leader cannot be demoted.
func (r *Registry) DemotePlayer(ctx context.Context, guildName string, player uuid.UUID) error {
	g := r.Guild(guildName)
	if g == nil {
		return ErrGuildNotFound
	}
	if g.IsLeader(player) {
		return ErrRoleUnchanged
	}
	if !g.DemoteOfficer(player) {
		return ErrRoleUnchanged
	}
	logPersist("save member role", r.store.SaveMember(ctx, guildName, player, false))
	return nil
}

// TransferLeadership hands the guild to an existing member. The old leader
// stays a member with officer status.
func (r *Registry) TransferLeadership(ctx context.Context, guildName string, newLeader uuid.UUID) error {
	g := r.Guild(guildName)
	if g == nil {
		return ErrGuildNotFound
	}
	oldLeader := g.Leader()
	if !g.SetLeader(newLeader) {
		return ErrNotMember
	}
	logPersist("save guild", r.store.SaveGuild(ctx, g))
	logPersist("save member role", r.store.SaveMember(ctx, guildName, oldLeader, true))
	logPersist("save member role", r.store.SaveMember(ctx, guildName, newLeader, true))
	slog.Info("guild leadership transferred", "guild", guildName, "from", oldLeader, "to", newLeader)
	return nil
}

// --- Invites ---

// Invite records a pending invite for the player, overwriting any previous
// one. One pending invite per player at a time.
func (r *Registry) Invite(ctx context.Context, player uuid.UUID, guildName string) error {
	r.mu.Lock()
	if _, ok := r.guilds[guildName]; !ok {
		r.mu.Unlock()
		return ErrGuildNotFound
	}
	r.invites[player] = guildName
	r.mu.Unlock()

	logPersist("save invite", r.store.SaveInvite(ctx, player, guildName))
	return nil
}

// InviteFor returns the guild name the player is invited to, if any.
func (r *Registry) InviteFor(player uuid.UUID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.invites[player]
	return name, ok
}

// HasInvite reports whether the player holds a pending invite from the guild.
func (r *Registry) HasInvite(player uuid.UUID, guildName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.invites[player] == guildName
}

// RemoveInvite clears the player's pending invite.
func (r *Registry) RemoveInvite(ctx context.Context, player uuid.UUID) {
	r.mu.Lock()
	_, ok := r.invites[player]
	delete(r.invites, player)
	r.mu.Unlock()
	if ok {
		logPersist("delete invite", r.store.DeleteInvite(ctx, player))
	}
}

// JoinGuild consumes the player's pending invite and adds them to the
// inviting guild, subject to the capacity cap.
func (r *Registry) JoinGuild(ctx context.Context, player uuid.UUID) (*Guild, error) {
	name, ok := r.InviteFor(player)
	if !ok {
		return nil, ErrNoInvite
	}
	if err := r.AddPlayerToGuild(ctx, name, player); err != nil {
		return nil, err
	}
	r.RemoveInvite(ctx, player)
	return r.Guild(name), nil
}

// --- XP, contribution, home ---

// persistXP mirrors the guild's level/XP state to the store.
func (r *Registry) persistXP(ctx context.Context, g *Guild) {
	logPersist("save xp", r.store.SaveXP(ctx, g.Name(), g.Level(), g.CurrentXP()))
}

// ContributeItems converts contributed items to guild XP at a fixed rate
// per unit. Returns the XP awarded and whether the guild leveled up.
// A zero contribution awards nothing and has no side effects.
func (r *Registry) ContributeItems(ctx context.Context, guildName string, items []ItemStack) (int64, bool, error) {
	g := r.Guild(guildName)
	if g == nil {
		return 0, false, ErrGuildNotFound
	}
	var total int64
	for _, item := range items {
		if !item.Empty() {
			total += XPPerContributedItem * int64(item.Count)
		}
	}
	if total == 0 {
		return 0, false, nil
	}
	leveledUp := g.AddXP(total)
	r.persistXP(ctx, g)
	return total, leveledUp, nil
}

// SetGuildHome sets (or clears, with nil) the guild home. Setting requires
// the sethome perk; clearing is always allowed.
func (r *Registry) SetGuildHome(ctx context.Context, guildName string, loc *Location) error {
	g := r.Guild(guildName)
	if g == nil {
		return ErrGuildNotFound
	}
	if loc != nil && !r.CanSetHome(g) {
		return ErrSetHomeLocked
	}
	g.SetHome(loc)
	logPersist("save home", r.store.SaveHome(ctx, guildName, loc))
	return nil
}

// SaveGuildBank persists the guild's bank snapshot (full replace).
func (r *Registry) SaveGuildBank(ctx context.Context, g *Guild) {
	logPersist("save bank", r.store.SaveBank(ctx, g))
}

// --- Perk-derived getters ---

// EffectiveMaxMembers returns the member capacity at the guild's level.
func (r *Registry) EffectiveMaxMembers(g *Guild) int {
	return BaseMaxMembers + r.perks.AccumulatedInt(g.Level(), PerkMaxMembersIncrease)
}

// EffectiveMaxClaims returns the claim capacity at the guild's level.
func (r *Registry) EffectiveMaxClaims(g *Guild) int {
	return BaseMaxClaims + r.perks.AccumulatedInt(g.Level(), PerkMaxClaimsIncrease)
}

// CanSetHome reports whether the guild has unlocked the home perk.
func (r *Registry) CanSetHome(g *Guild) bool {
	return r.perks.Has(g.Level(), PerkAllowSetHome)
}

// HomeParticle returns the unlocked home particle effect name, or "".
func (r *Registry) HomeParticle(g *Guild) string {
	return r.perks.StringValue(g.Level(), PerkHomeParticle)
}

// HasteAmplifier returns the passive haste amplifier, or -1 if not unlocked.
func (r *Registry) HasteAmplifier(g *Guild) int {
	if !r.perks.Has(g.Level(), PerkPassiveHasteAura) {
		return -1
	}
	return r.perks.IntValueAt(g.Level(), PerkPassiveHasteAura)
}

// --- Claims ---

// ClaimChunk claims the chunk for the guild. The check-and-insert against
// the global ownership index is atomic under the registry lock, so two
// racing claims of the same chunk cannot both succeed.
func (r *Registry) ClaimChunk(ctx context.Context, guildName, chunk string) error {
	r.mu.Lock()
	g, ok := r.guilds[guildName]
	if !ok {
		r.mu.Unlock()
		return ErrGuildNotFound
	}
	if _, taken := r.chunkOwners[chunk]; taken {
		r.mu.Unlock()
		return ErrChunkOwned
	}
	if g.ClaimCount() >= r.EffectiveMaxClaims(g) {
		r.mu.Unlock()
		return ErrClaimLimit
	}
	r.chunkOwners[chunk] = guildName
	g.AddClaim(chunk)
	r.mu.Unlock()

	logPersist("save claim", r.store.SaveClaim(ctx, guildName, chunk))
	return nil
}

// UnclaimChunk releases a chunk the guild currently owns.
func (r *Registry) UnclaimChunk(ctx context.Context, guildName, chunk string) error {
	r.mu.Lock()
	g, ok := r.guilds[guildName]
	if !ok {
		r.mu.Unlock()
		return ErrGuildNotFound
	}
	if !g.RemoveClaim(chunk) {
		r.mu.Unlock()
		return ErrChunkNotOwned
	}
	delete(r.chunkOwners, chunk)
	r.mu.Unlock()

	logPersist("delete claim", r.store.DeleteClaim(ctx, chunk))
	return nil
}

// OwnerOfChunk returns the guild owning the chunk, or nil. At most one guild
// ever owns a given key.
func (r *Registry) OwnerOfChunk(chunk string) *Guild {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.chunkOwners[chunk]
	if !ok {
		return nil
	}
	return r.guilds[name]
}

// validateName checks guild name constraints: 3-16 chars, alphanumeric and
// underscore only. Names are case-sensitive identities.
func validateName(name string) error {
	if len(name) < MinNameLen || len(name) > MaxNameLen {
		return fmt.Errorf("%w: length must be %d-%d", ErrNameInvalid, MinNameLen, MaxNameLen)
	}
	for _, r := range name {
		if !isNameChar(r) {
			return fmt.Errorf("%w: invalid character %q", ErrNameInvalid, r)
		}
	}
	return nil
}

func isNameChar(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_'
}

package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/udisondev/guildwar/internal/guild"
)

// GuildRepository handles guild persistence to PostgreSQL. It implements
// guild.Store. War rows are kept in canonical order (lexicographically
// smaller name first, enforced by a table CHECK); callers may pass names in
// either order.
type GuildRepository struct {
	pool *pgxpool.Pool
}

// NewGuildRepository creates a new guild repository.
func NewGuildRepository(pool *pgxpool.Pool) *GuildRepository {
	return &GuildRepository{pool: pool}
}

// LoadGuilds loads all guild header rows.
func (r *GuildRepository) LoadGuilds(ctx context.Context) ([]guild.GuildRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT name, leader_uuid, level, current_xp,
		        home_world, home_x, home_y, home_z, home_yaw, home_pitch
		 FROM guilds ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query guilds: %w", err)
	}
	defer rows.Close()

	var result []guild.GuildRow
	for rows.Next() {
		var g guild.GuildRow
		var world *string
		var x, y, z *int
		var yaw, pitch *float32
		if err := rows.Scan(
			&g.Name, &g.Leader, &g.Level, &g.CurrentXP,
			&world, &x, &y, &z, &yaw, &pitch,
		); err != nil {
			return nil, fmt.Errorf("scan guilds: %w", err)
		}
		if world != nil && x != nil && y != nil && z != nil && yaw != nil && pitch != nil {
			g.Home = &guild.Location{World: *world, X: *x, Y: *y, Z: *z, Yaw: *yaw, Pitch: *pitch}
		}
		result = append(result, g)
	}
	return result, rows.Err()
}

// LoadMembers loads all membership rows.
func (r *GuildRepository) LoadMembers(ctx context.Context) ([]guild.MemberRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT guild_name, player_uuid, officer FROM guild_members`)
	if err != nil {
		return nil, fmt.Errorf("query guild_members: %w", err)
	}
	defer rows.Close()

	var result []guild.MemberRow
	for rows.Next() {
		var m guild.MemberRow
		if err := rows.Scan(&m.GuildName, &m.Player, &m.Officer); err != nil {
			return nil, fmt.Errorf("scan guild_members: %w", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// LoadClaims loads all chunk claims.
func (r *GuildRepository) LoadClaims(ctx context.Context) ([]guild.ClaimRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT guild_name, world, chunk_x, chunk_z FROM guild_claims`)
	if err != nil {
		return nil, fmt.Errorf("query guild_claims: %w", err)
	}
	defer rows.Close()

	var result []guild.ClaimRow
	for rows.Next() {
		var c guild.ClaimRow
		var world string
		var chunkX, chunkZ int
		if err := rows.Scan(&c.GuildName, &world, &chunkX, &chunkZ); err != nil {
			return nil, fmt.Errorf("scan guild_claims: %w", err)
		}
		c.Chunk = guild.ChunkKey(world, chunkX, chunkZ)
		result = append(result, c)
	}
	return result, rows.Err()
}

// LoadBanks loads all bank slot rows.
func (r *GuildRepository) LoadBanks(ctx context.Context) ([]guild.BankRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT guild_name, slot, item_kind, amount FROM guild_bank_items`)
	if err != nil {
		return nil, fmt.Errorf("query guild_bank_items: %w", err)
	}
	defer rows.Close()

	var result []guild.BankRow
	for rows.Next() {
		var b guild.BankRow
		if err := rows.Scan(&b.GuildName, &b.Slot, &b.Kind, &b.Count); err != nil {
			return nil, fmt.Errorf("scan guild_bank_items: %w", err)
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

// LoadOutposts loads all outpost rows.
func (r *GuildRepository) LoadOutposts(ctx context.Context) ([]guild.OutpostRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT guild_name, kind, world, x, y, z, next_tick FROM guild_outposts`)
	if err != nil {
		return nil, fmt.Errorf("query guild_outposts: %w", err)
	}
	defer rows.Close()

	var result []guild.OutpostRow
	for rows.Next() {
		var o guild.OutpostRow
		if err := rows.Scan(
			&o.GuildName, &o.Kind,
			&o.Location.World, &o.Location.X, &o.Location.Y, &o.Location.Z,
			&o.NextTick,
		); err != nil {
			return nil, fmt.Errorf("scan guild_outposts: %w", err)
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

// LoadInvites loads all pending invites.
func (r *GuildRepository) LoadInvites(ctx context.Context) ([]guild.InviteRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT player_uuid, guild_name FROM guild_invites`)
	if err != nil {
		return nil, fmt.Errorf("query guild_invites: %w", err)
	}
	defer rows.Close()

	var result []guild.InviteRow
	for rows.Next() {
		var inv guild.InviteRow
		if err := rows.Scan(&inv.Player, &inv.GuildName); err != nil {
			return nil, fmt.Errorf("scan guild_invites: %w", err)
		}
		result = append(result, inv)
	}
	return result, rows.Err()
}

// LoadWars loads all war rows in canonical order.
func (r *GuildRepository) LoadWars(ctx context.Context) ([]guild.WarRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT guild1_name, guild2_name, guild1_score, guild2_score FROM guild_wars`)
	if err != nil {
		return nil, fmt.Errorf("query guild_wars: %w", err)
	}
	defer rows.Close()

	var result []guild.WarRow
	for rows.Next() {
		var w guild.WarRow
		if err := rows.Scan(&w.Guild1, &w.Guild2, &w.Score1, &w.Score2); err != nil {
			return nil, fmt.Errorf("scan guild_wars: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// SaveGuild inserts or updates a guilds row, home included.
func (r *GuildRepository) SaveGuild(ctx context.Context, g *guild.Guild) error {
	world, x, y, z, yaw, pitch := homeColumns(g.Home())
	_, err := r.pool.Exec(ctx,
		`INSERT INTO guilds
		 (name, leader_uuid, level, current_xp,
		  home_world, home_x, home_y, home_z, home_yaw, home_pitch)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		 ON CONFLICT (name) DO UPDATE SET
		  leader_uuid=$2, level=$3, current_xp=$4,
		  home_world=$5, home_x=$6, home_y=$7, home_z=$8, home_yaw=$9, home_pitch=$10`,
		g.Name(), g.Leader(), g.Level(), g.CurrentXP(),
		world, x, y, z, yaw, pitch,
	)
	if err != nil {
		return fmt.Errorf("save guild %q: %w", g.Name(), err)
	}
	return nil
}

// DeleteGuild deletes a guild; members, invites, claims, bank, outposts and
// wars go with it via ON DELETE CASCADE.
func (r *GuildRepository) DeleteGuild(ctx context.Context, name string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM guilds WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete guild %q: %w", name, err)
	}
	return nil
}

// SaveMember inserts or updates a membership row.
func (r *GuildRepository) SaveMember(ctx context.Context, guildName string, player uuid.UUID, officer bool) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO guild_members (player_uuid, guild_name, officer)
		 VALUES ($1,$2,$3)
		 ON CONFLICT (player_uuid) DO UPDATE SET guild_name=$2, officer=$3`,
		player, guildName, officer,
	)
	if err != nil {
		return fmt.Errorf("save member %s of %q: %w", player, guildName, err)
	}
	return nil
}

// DeleteMember removes a membership row.
func (r *GuildRepository) DeleteMember(ctx context.Context, guildName string, player uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM guild_members WHERE player_uuid = $1 AND guild_name = $2`,
		player, guildName,
	)
	if err != nil {
		return fmt.Errorf("delete member %s of %q: %w", player, guildName, err)
	}
	return nil
}

// SaveXP updates the level and XP columns.
func (r *GuildRepository) SaveXP(ctx context.Context, guildName string, level int32, currentXP int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE guilds SET level = $1, current_xp = $2 WHERE name = $3`,
		level, currentXP, guildName,
	)
	if err != nil {
		return fmt.Errorf("save xp for %q: %w", guildName, err)
	}
	return nil
}

// SaveHome updates the home columns; a nil home clears them.
func (r *GuildRepository) SaveHome(ctx context.Context, guildName string, home *guild.Location) error {
	world, x, y, z, yaw, pitch := homeColumns(home)
	_, err := r.pool.Exec(ctx,
		`UPDATE guilds SET home_world=$1, home_x=$2, home_y=$3, home_z=$4,
		        home_yaw=$5, home_pitch=$6
		 WHERE name = $7`,
		world, x, y, z, yaw, pitch, guildName,
	)
	if err != nil {
		return fmt.Errorf("save home for %q: %w", guildName, err)
	}
	return nil
}

// SaveClaim inserts or reassigns a chunk claim.
func (r *GuildRepository) SaveClaim(ctx context.Context, guildName, chunk string) error {
	world, chunkX, chunkZ, err := guild.ParseChunkKey(chunk)
	if err != nil {
		return fmt.Errorf("save claim for %q: %w", guildName, err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO guild_claims (world, chunk_x, chunk_z, guild_name)
		 VALUES ($1,$2,$3,$4)
		 ON CONFLICT (world, chunk_x, chunk_z) DO UPDATE SET guild_name=$4`,
		world, chunkX, chunkZ, guildName,
	)
	if err != nil {
		return fmt.Errorf("save claim %s for %q: %w", chunk, guildName, err)
	}
	return nil
}

// DeleteClaim removes a chunk claim.
func (r *GuildRepository) DeleteClaim(ctx context.Context, chunk string) error {
	world, chunkX, chunkZ, err := guild.ParseChunkKey(chunk)
	if err != nil {
		return fmt.Errorf("delete claim: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`DELETE FROM guild_claims WHERE world = $1 AND chunk_x = $2 AND chunk_z = $3`,
		world, chunkX, chunkZ,
	)
	if err != nil {
		return fmt.Errorf("delete claim %s: %w", chunk, err)
	}
	return nil
}

// SaveBank replaces the guild's bank rows with its current non-empty slots,
// in a single transaction.
func (r *GuildRepository) SaveBank(ctx context.Context, g *guild.Guild) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`DELETE FROM guild_bank_items WHERE guild_name = $1`, g.Name(),
	); err != nil {
		return fmt.Errorf("clear bank for %q: %w", g.Name(), err)
	}

	batch := &pgx.Batch{}
	queued := 0
	for slot, item := range g.BankContents() {
		if item.Empty() {
			continue
		}
		batch.Queue(
			`INSERT INTO guild_bank_items (guild_name, slot, item_kind, amount)
			 VALUES ($1,$2,$3,$4)`,
			g.Name(), slot, item.Kind, item.Count,
		)
		queued++
	}
	if queued > 0 {
		br := tx.SendBatch(ctx, batch)
		for i := 0; i < queued; i++ {
			if _, err := br.Exec(); err != nil {
				br.Close() //nolint:errcheck
				return fmt.Errorf("save bank slot batch for %q: %w", g.Name(), err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("close bank batch for %q: %w", g.Name(), err)
		}
	}

	return tx.Commit(ctx)
}

// SaveOutposts replaces the guild's outpost rows with its current outposts,
// in a single transaction.
func (r *GuildRepository) SaveOutposts(ctx context.Context, g *guild.Guild) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`DELETE FROM guild_outposts WHERE guild_name = $1`, g.Name(),
	); err != nil {
		return fmt.Errorf("clear outposts for %q: %w", g.Name(), err)
	}

	for kind, o := range g.Outposts() {
		if _, err := tx.Exec(ctx,
			`INSERT INTO guild_outposts (guild_name, kind, world, x, y, z, next_tick)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			g.Name(), string(kind),
			o.Location.World, o.Location.X, o.Location.Y, o.Location.Z,
			o.NextTick,
		); err != nil {
			return fmt.Errorf("save outpost %s for %q: %w", kind, g.Name(), err)
		}
	}

	return tx.Commit(ctx)
}

// SaveInvite inserts or overwrites the player's pending invite.
func (r *GuildRepository) SaveInvite(ctx context.Context, player uuid.UUID, guildName string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO guild_invites (player_uuid, guild_name) VALUES ($1,$2)
		 ON CONFLICT (player_uuid) DO UPDATE SET guild_name=$2`,
		player, guildName,
	)
	if err != nil {
		return fmt.Errorf("save invite for %s: %w", player, err)
	}
	return nil
}

// DeleteInvite removes the player's pending invite.
func (r *GuildRepository) DeleteInvite(ctx context.Context, player uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM guild_invites WHERE player_uuid = $1`, player)
	if err != nil {
		return fmt.Errorf("delete invite for %s: %w", player, err)
	}
	return nil
}

// SaveWar inserts a war row at 0-0, resetting the score if the row somehow
// survived a peace.
func (r *GuildRepository) SaveWar(ctx context.Context, guild1, guild2 string) error {
	g1, g2 := canonicalPair(guild1, guild2)
	_, err := r.pool.Exec(ctx,
		`INSERT INTO guild_wars (guild1_name, guild2_name, guild1_score, guild2_score)
		 VALUES ($1,$2,0,0)
		 ON CONFLICT (guild1_name, guild2_name) DO UPDATE SET guild1_score=0, guild2_score=0`,
		g1, g2,
	)
	if err != nil {
		return fmt.Errorf("save war %q vs %q: %w", g1, g2, err)
	}
	return nil
}

// DeleteWar removes a war row.
func (r *GuildRepository) DeleteWar(ctx context.Context, guild1, guild2 string) error {
	g1, g2 := canonicalPair(guild1, guild2)
	_, err := r.pool.Exec(ctx,
		`DELETE FROM guild_wars WHERE guild1_name = $1 AND guild2_name = $2`,
		g1, g2,
	)
	if err != nil {
		return fmt.Errorf("delete war %q vs %q: %w", g1, g2, err)
	}
	return nil
}

// AddWarScore adds score deltas attributed to guild1 and guild2 as passed by
// the caller, translating to canonical column order.
func (r *GuildRepository) AddWarScore(ctx context.Context, guild1, guild2 string, delta1, delta2 int) error {
	g1, g2 := canonicalPair(guild1, guild2)
	d1, d2 := delta1, delta2
	if g1 != guild1 {
		d1, d2 = delta2, delta1
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE guild_wars
		 SET guild1_score = guild1_score + $1, guild2_score = guild2_score + $2
		 WHERE guild1_name = $3 AND guild2_name = $4`,
		d1, d2, g1, g2,
	)
	if err != nil {
		return fmt.Errorf("add war score %q vs %q: %w", g1, g2, err)
	}
	return nil
}

func canonicalPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

func homeColumns(home *guild.Location) (world *string, x, y, z *int, yaw, pitch *float32) {
	if home == nil {
		return nil, nil, nil, nil, nil, nil
	}
	return &home.World, &home.X, &home.Y, &home.Z, &home.Yaw, &home.Pitch
}

package guild

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// OutpostStatus is one outpost line of a guild snapshot.
type OutpostStatus struct {
	Kind     OutpostKind
	Location Location
	NextTick time.Time
}

// WarStanding is one war line of a guild snapshot, scores ordered from the
// snapshotted guild's point of view.
type WarStanding struct {
	Enemy      string
	Score      int
	EnemyScore int
}

// Snapshot is a read-only view of a guild for presentation layers. It is a
// point-in-time copy; mutating it has no effect on the live guild.
type Snapshot struct {
	Name           string
	Leader         uuid.UUID
	Level          int32
	CurrentXP      int64
	XPForNextLevel int64
	Members        []uuid.UUID
	Officers       []uuid.UUID
	MaxMembers     int
	MaxClaims      int
	Home           *Location
	Claims         []string
	Outposts       []OutpostStatus
	Wars           []WarStanding
}

// Snapshot assembles the full presentation view of a guild.
func (r *Registry) Snapshot(guildName string) (Snapshot, error) {
	g := r.Guild(guildName)
	if g == nil {
		return Snapshot{}, ErrGuildNotFound
	}

	snap := Snapshot{
		Name:           g.Name(),
		Leader:         g.Leader(),
		Level:          g.Level(),
		CurrentXP:      g.CurrentXP(),
		XPForNextLevel: XPForNextLevel(g.Level()),
		Members:        g.Members(),
		Officers:       g.Officers(),
		MaxMembers:     r.EffectiveMaxMembers(g),
		MaxClaims:      r.EffectiveMaxClaims(g),
		Home:           g.Home(),
		Claims:         g.Claims(),
	}
	sort.Strings(snap.Claims)

	for kind, o := range g.Outposts() {
		snap.Outposts = append(snap.Outposts, OutpostStatus{
			Kind:     kind,
			Location: o.Location,
			NextTick: o.NextTick,
		})
	}
	sort.Slice(snap.Outposts, func(i, j int) bool {
		return snap.Outposts[i].Kind < snap.Outposts[j].Kind
	})

	for _, enemy := range r.WarsFor(guildName) {
		ours, theirs, err := r.WarScore(guildName, enemy)
		if err != nil {
			continue
		}
		snap.Wars = append(snap.Wars, WarStanding{Enemy: enemy, Score: ours, EnemyScore: theirs})
	}
	sort.Slice(snap.Wars, func(i, j int) bool {
		return snap.Wars[i].Enemy < snap.Wars[j].Enemy
	})

	return snap, nil
}

package guild

// PerkType identifies a level-gated guild perk.
type PerkType int

const (
	PerkMaxMembersIncrease PerkType = iota
	PerkAllowSetHome
	PerkHomeParticle
	PerkPassiveHasteAura
	PerkMaxClaimsIncrease
)

// PerkValue is the tagged value carried by a perk entry. Exactly one shape
// is valid per perk type: integer bonuses accumulate, string and flag perks
// take the highest-level matching entry.
type PerkValue struct {
	Int  int
	Str  string
	Flag bool
}

// IntValue returns an integer-shaped perk value.
func IntValue(v int) PerkValue { return PerkValue{Int: v} }

// StrValue returns a string-shaped perk value.
func StrValue(s string) PerkValue { return PerkValue{Str: s} }

// FlagValue returns a presence-flag perk value.
func FlagValue() PerkValue { return PerkValue{Flag: true} }

// Perk is a single unlockable entry in the perk table.
type Perk struct {
	UnlockLevel int32
	Type        PerkType
	Value       PerkValue
}

// PerkTable is a static level-indexed table of perks. It has no mutable
// state; all accessors are pure functions of (guild level, table).
type PerkTable struct {
	perks []Perk
}

// NewPerkTable creates a perk table from explicit entries.
func NewPerkTable(perks ...Perk) *PerkTable {
	return &PerkTable{perks: perks}
}

// DefaultPerkTable returns the stock perk progression.
func DefaultPerkTable() *PerkTable {
	return NewPerkTable(
		Perk{UnlockLevel: 2, Type: PerkMaxMembersIncrease, Value: IntValue(5)},
		Perk{UnlockLevel: 3, Type: PerkAllowSetHome, Value: FlagValue()},
		Perk{UnlockLevel: 4, Type: PerkMaxClaimsIncrease, Value: IntValue(3)},
		Perk{UnlockLevel: 5, Type: PerkMaxMembersIncrease, Value: IntValue(5)},
		Perk{UnlockLevel: 8, Type: PerkMaxClaimsIncrease, Value: IntValue(5)},
	)
}

// Unlocked returns all perks available at the given guild level.
func (t *PerkTable) Unlocked(level int32) []Perk {
	var result []Perk
	for _, p := range t.perks {
		if p.UnlockLevel <= level {
			result = append(result, p)
		}
	}
	return result
}

// AccumulatedInt sums all integer values of the given perk type unlocked
// at the given level.
func (t *PerkTable) AccumulatedInt(level int32, pt PerkType) int {
	sum := 0
	for _, p := range t.perks {
		if p.UnlockLevel <= level && p.Type == pt {
			sum += p.Value.Int
		}
	}
	return sum
}

// Has reports whether any entry of the given type is unlocked at the level.
func (t *PerkTable) Has(level int32, pt PerkType) bool {
	for _, p := range t.perks {
		if p.UnlockLevel <= level && p.Type == pt {
			return true
		}
	}
	return false
}

// StringValue returns the string value of the highest-level unlocked entry
// of the given type, or "" if none.
func (t *PerkTable) StringValue(level int32, pt PerkType) string {
	var best string
	var bestLevel int32 = -1
	for _, p := range t.perks {
		if p.UnlockLevel <= level && p.Type == pt && p.UnlockLevel > bestLevel {
			best = p.Value.Str
			bestLevel = p.UnlockLevel
		}
	}
	return best
}

// IntValueAt returns the integer value of the highest-level unlocked entry
// of the given type, or 0 if none.
func (t *PerkTable) IntValueAt(level int32, pt PerkType) int {
	var best int
	var bestLevel int32 = -1
	for _, p := range t.perks {
		if p.UnlockLevel <= level && p.Type == pt && p.UnlockLevel > bestLevel {
			best = p.Value.Int
			bestLevel = p.UnlockLevel
		}
	}
	return best
}

// RequiredLevel returns the lowest level at which the perk type unlocks,
// or -1 if it is not in the table.
func (t *PerkTable) RequiredLevel(pt PerkType) int32 {
	var min int32 = -1
	for _, p := range t.perks {
		if p.Type == pt && (min == -1 || p.UnlockLevel < min) {
			min = p.UnlockLevel
		}
	}
	return min
}

package guild

import "time"

// XP awarded per contributed item unit.
const XPPerContributedItem = 10

// OutpostSettings tunes an XP-producing outpost kind.
type OutpostSettings struct {
	CreationCostXP int64
	ProductionXP   int64
	Interval       time.Duration
}

// ResourceRange is one silo resource entry: a quantity drawn uniformly
// from [Min, Max] per production roll.
type ResourceRange struct {
	Kind string
	Min  int
	Max  int
}

// SiloSettings tunes the resource silo outpost.
type SiloSettings struct {
	CreationCostXP int64
	Interval       time.Duration
	ChancePercent  int
	Resources      []ResourceRange
}

// Config holds the economy tuning consumed by the Registry.
type Config struct {
	UpkeepXPPerChunk int64
	Siphon           OutpostSettings
	Barracks         OutpostSettings
	Silo             SiloSettings
}

// DefaultConfig returns the stock economy tuning.
func DefaultConfig() Config {
	return Config{
		UpkeepXPPerChunk: 50,
		Siphon: OutpostSettings{
			CreationCostXP: 1000,
			ProductionXP:   100,
			Interval:       6 * time.Hour,
		},
		Barracks: OutpostSettings{
			CreationCostXP: 750,
			ProductionXP:   25,
			Interval:       8 * time.Hour,
		},
		Silo: SiloSettings{
			CreationCostXP: 1200,
			Interval:       12 * time.Hour,
			ChancePercent:  20,
			Resources: []ResourceRange{
				{Kind: "iron_ingot", Min: 2, Max: 5},
				{Kind: "coal", Min: 4, Max: 8},
				{Kind: "oak_log", Min: 8, Max: 16},
			},
		},
	}
}

// outpostSettings returns the cost/interval tuning for a kind.
func (c Config) outpostSettings(kind OutpostKind) (costXP int64, interval time.Duration, ok bool) {
	switch kind {
	case OutpostSiphon:
		return c.Siphon.CreationCostXP, c.Siphon.Interval, true
	case OutpostBarracks:
		return c.Barracks.CreationCostXP, c.Barracks.Interval, true
	case OutpostSilo:
		return c.Silo.CreationCostXP, c.Silo.Interval, true
	}
	return 0, 0, false
}

// StructureBuilder is the world collaborator that materializes and removes
// the physical outpost structure. Build returns the core block location the
// engine records; a Build error aborts creation (the XP cost is refunded).
type StructureBuilder interface {
	Build(kind OutpostKind, at Location) (Location, error)
	Remove(kind OutpostKind, at Location) error
}

// NopBuilder is a StructureBuilder that builds nothing and always succeeds.
// Used when the engine runs without a world backend.
type NopBuilder struct{}

func (NopBuilder) Build(_ OutpostKind, at Location) (Location, error) { return at, nil }
func (NopBuilder) Remove(OutpostKind, Location) error                 { return nil }

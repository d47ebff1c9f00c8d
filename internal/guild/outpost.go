package guild

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// OutpostKind identifies a guild outpost type.
type OutpostKind string

// The three outpost kinds.
const (
	OutpostSiphon   OutpostKind = "SIPHON"
	OutpostBarracks OutpostKind = "BARRACKS"
	OutpostSilo     OutpostKind = "SILO"
)

// DisplayName returns a human-readable outpost name.
func (k OutpostKind) DisplayName() string {
	switch k {
	case OutpostSiphon:
		return "XP Siphon"
	case OutpostBarracks:
		return "Barracks"
	case OutpostSilo:
		return "Resource Silo"
	}
	return string(k)
}

// ParseOutpostKind matches a kind by its storage name or display name
// (case-insensitive). Returns false for unknown kinds.
func ParseOutpostKind(s string) (OutpostKind, bool) {
	for _, k := range []OutpostKind{OutpostSiphon, OutpostBarracks, OutpostSilo} {
		if strings.EqualFold(s, string(k)) || strings.EqualFold(s, k.DisplayName()) {
			return k, true
		}
	}
	return "", false
}

// Location is an opaque world coordinate of an outpost core block or
// a guild home. The engine never interprets it beyond storage.
type Location struct {
	World string
	X     int
	Y     int
	Z     int
	Yaw   float32
	Pitch float32
}

// ChunkKey returns the ownership key of the chunk containing this location,
// assuming 16-block chunks.
func (l Location) ChunkKey() string {
	return ChunkKey(l.World, floorDiv(l.X, 16), floorDiv(l.Z, 16))
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Outpost is an active outpost instance: a fixed core location and the
// wall-clock time of the next production tick.
type Outpost struct {
	Location Location
	NextTick time.Time
}

// ChunkKey builds the canonical "world:x:z" ownership key.
func ChunkKey(world string, chunkX, chunkZ int) string {
	return world + ":" + strconv.Itoa(chunkX) + ":" + strconv.Itoa(chunkZ)
}

// ParseChunkKey splits a "world:x:z" key back into its parts.
func ParseChunkKey(key string) (world string, chunkX, chunkZ int, err error) {
	// World names may not contain ':', so the last two fields are coordinates.
	parts := strings.Split(key, ":")
	if len(parts) != 3 {
		return "", 0, 0, fmt.Errorf("malformed chunk key %q", key)
	}
	chunkX, err = strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, 0, fmt.Errorf("malformed chunk key %q: %w", key, err)
	}
	chunkZ, err = strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, 0, fmt.Errorf("malformed chunk key %q: %w", key, err)
	}
	return parts[0], chunkX, chunkZ, nil
}

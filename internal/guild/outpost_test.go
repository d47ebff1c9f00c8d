package guild

import "testing"

func TestLocation_ChunkKey(t *testing.T) {
	tests := []struct {
		x, z int
		want string
	}{
		{0, 0, "world:0:0"},
		{15, 15, "world:0:0"},
		{16, 0, "world:1:0"},
		{-1, -1, "world:-1:-1"},
		{-16, -16, "world:-1:-1"},
		{-17, 31, "world:-2:1"},
	}
	for _, tt := range tests {
		loc := Location{World: "world", X: tt.x, Y: 64, Z: tt.z}
		if got := loc.ChunkKey(); got != tt.want {
			t.Errorf("ChunkKey(%d, %d) = %q, want %q", tt.x, tt.z, got, tt.want)
		}
	}
}

func TestParseChunkKey(t *testing.T) {
	world, x, z, err := ParseChunkKey("nether:-3:12")
	if err != nil {
		t.Fatalf("ParseChunkKey: %v", err)
	}
	if world != "nether" || x != -3 || z != 12 {
		t.Errorf("ParseChunkKey = (%q, %d, %d), want (nether, -3, 12)", world, x, z)
	}

	for _, bad := range []string{"", "world", "world:1", "world:a:2", "world:1:b", "a:b:c:d"} {
		if _, _, _, err := ParseChunkKey(bad); err == nil {
			t.Errorf("ParseChunkKey(%q) = nil error, want error", bad)
		}
	}
}

func TestParseOutpostKind(t *testing.T) {
	tests := []struct {
		in   string
		want OutpostKind
		ok   bool
	}{
		{"SIPHON", OutpostSiphon, true},
		{"siphon", OutpostSiphon, true},
		{"XP Siphon", OutpostSiphon, true},
		{"Barracks", OutpostBarracks, true},
		{"resource silo", OutpostSilo, true},
		{"SILO", OutpostSilo, true},
		{"castle", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseOutpostKind(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseOutpostKind(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

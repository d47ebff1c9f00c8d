package guild

import "testing"

func TestPerkTable_AccumulatedInt(t *testing.T) {
	table := DefaultPerkTable()

	tests := []struct {
		level int32
		pt    PerkType
		want  int
	}{
		{1, PerkMaxMembersIncrease, 0},
		{2, PerkMaxMembersIncrease, 5},
		{4, PerkMaxMembersIncrease, 5},
		{5, PerkMaxMembersIncrease, 10},
		{200, PerkMaxMembersIncrease, 10},
		{3, PerkMaxClaimsIncrease, 0},
		{4, PerkMaxClaimsIncrease, 3},
		{8, PerkMaxClaimsIncrease, 8},
	}
	for _, tt := range tests {
		if got := table.AccumulatedInt(tt.level, tt.pt); got != tt.want {
			t.Errorf("AccumulatedInt(%d, %d) = %d, want %d", tt.level, tt.pt, got, tt.want)
		}
	}
}

func TestPerkTable_Has(t *testing.T) {
	table := DefaultPerkTable()

	if table.Has(2, PerkAllowSetHome) {
		t.Error("Has(2, sethome) = true, want false")
	}
	if !table.Has(3, PerkAllowSetHome) {
		t.Error("Has(3, sethome) = false, want true")
	}
	if table.Has(200, PerkPassiveHasteAura) {
		t.Error("Has(200, haste) = true for perk not in table")
	}
}

func TestPerkTable_RequiredLevel(t *testing.T) {
	table := DefaultPerkTable()

	if got := table.RequiredLevel(PerkAllowSetHome); got != 3 {
		t.Errorf("RequiredLevel(sethome) = %d, want 3", got)
	}
	if got := table.RequiredLevel(PerkMaxMembersIncrease); got != 2 {
		t.Errorf("RequiredLevel(members) = %d, want 2", got)
	}
	if got := table.RequiredLevel(PerkPassiveHasteAura); got != -1 {
		t.Errorf("RequiredLevel(absent) = %d, want -1", got)
	}
}

func TestPerkTable_Unlocked(t *testing.T) {
	table := DefaultPerkTable()

	if got := len(table.Unlocked(1)); got != 0 {
		t.Errorf("Unlocked(1) = %d perks, want 0", got)
	}
	if got := len(table.Unlocked(4)); got != 3 {
		t.Errorf("Unlocked(4) = %d perks, want 3", got)
	}
	if got := len(table.Unlocked(200)); got != 5 {
		t.Errorf("Unlocked(200) = %d perks, want 5", got)
	}
}

func TestPerkTable_HighestLevelEntryWins(t *testing.T) {
	table := NewPerkTable(
		Perk{UnlockLevel: 2, Type: PerkHomeParticle, Value: StrValue("flame")},
		Perk{UnlockLevel: 6, Type: PerkHomeParticle, Value: StrValue("soul_fire_flame")},
		Perk{UnlockLevel: 3, Type: PerkPassiveHasteAura, Value: IntValue(0)},
		Perk{UnlockLevel: 7, Type: PerkPassiveHasteAura, Value: IntValue(1)},
	)

	if got := table.StringValue(2, PerkHomeParticle); got != "flame" {
		t.Errorf("StringValue(2) = %q, want %q", got, "flame")
	}
	if got := table.StringValue(6, PerkHomeParticle); got != "soul_fire_flame" {
		t.Errorf("StringValue(6) = %q, want %q", got, "soul_fire_flame")
	}
	if got := table.StringValue(1, PerkHomeParticle); got != "" {
		t.Errorf("StringValue(1) = %q, want empty", got)
	}

	if got := table.IntValueAt(3, PerkPassiveHasteAura); got != 0 {
		t.Errorf("IntValueAt(3) = %d, want 0", got)
	}
	if got := table.IntValueAt(7, PerkPassiveHasteAura); got != 1 {
		t.Errorf("IntValueAt(7) = %d, want 1", got)
	}
}

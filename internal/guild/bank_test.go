package guild

import "testing"

func TestBank_Deposit_StacksCompatibleFirst(t *testing.T) {
	var b Bank
	b.SetSlot(0, ItemStack{Kind: "coal", Count: 60})
	b.SetSlot(1, ItemStack{Kind: "iron_ingot", Count: 10})

	deposited, overflow := b.Deposit([]ItemStack{{Kind: "coal", Count: 10}})
	if len(overflow) != 0 {
		t.Fatalf("overflow = %v, want none", overflow)
	}
	if deposited["coal"] != 10 {
		t.Errorf("deposited[coal] = %d, want 10", deposited["coal"])
	}
	// 4 tops up slot 0 to the stack limit, 6 go to the first empty slot.
	if got := b.Slot(0).Count; got != MaxStackSize {
		t.Errorf("slot 0 = %d, want %d", got, MaxStackSize)
	}
	if got := b.Slot(2); got.Kind != "coal" || got.Count != 6 {
		t.Errorf("slot 2 = %+v, want 6 coal", got)
	}
}

func TestBank_Deposit_SplitsLargeStacks(t *testing.T) {
	var b Bank

	deposited, overflow := b.Deposit([]ItemStack{{Kind: "oak_log", Count: 150}})
	if len(overflow) != 0 {
		t.Fatalf("overflow = %v, want none", overflow)
	}
	if deposited["oak_log"] != 150 {
		t.Errorf("deposited = %d, want 150", deposited["oak_log"])
	}
	if b.UsedSlots() != 3 {
		t.Errorf("UsedSlots() = %d, want 3", b.UsedSlots())
	}
	if got := b.Slot(2).Count; got != 150-2*MaxStackSize {
		t.Errorf("last slot = %d, want %d", got, 150-2*MaxStackSize)
	}
}

func TestBank_Deposit_OverflowWhenFull(t *testing.T) {
	var b Bank
	for i := 0; i < BankSize; i++ {
		b.SetSlot(i, ItemStack{Kind: "stone", Count: MaxStackSize})
	}

	deposited, overflow := b.Deposit([]ItemStack{{Kind: "coal", Count: 30}})
	if len(deposited) != 0 {
		t.Errorf("deposited = %v, want none", deposited)
	}
	if len(overflow) != 1 || overflow[0].Count != 30 {
		t.Errorf("overflow = %v, want 30 coal", overflow)
	}
}

func TestBank_Deposit_IgnoresEmptyStacks(t *testing.T) {
	var b Bank

	deposited, overflow := b.Deposit([]ItemStack{{}, {Kind: "coal", Count: 0}})
	if len(deposited) != 0 || len(overflow) != 0 {
		t.Errorf("Deposit(empty) = %v, %v, want nothing", deposited, overflow)
	}
	if b.UsedSlots() != 0 {
		t.Errorf("UsedSlots() = %d, want 0", b.UsedSlots())
	}
}

func TestBank_SetContents(t *testing.T) {
	var b Bank
	b.SetContents([]ItemStack{{Kind: "coal", Count: 5}})

	if got := b.Slot(0); got.Kind != "coal" || got.Count != 5 {
		t.Errorf("slot 0 = %+v, want 5 coal", got)
	}
	if b.UsedSlots() != 1 {
		t.Errorf("UsedSlots() = %d, want 1", b.UsedSlots())
	}

	// Replacing drops old contents entirely.
	b.SetContents(nil)
	if b.UsedSlots() != 0 {
		t.Errorf("UsedSlots() after clear = %d, want 0", b.UsedSlots())
	}
}

func TestBank_SlotOutOfRange(t *testing.T) {
	var b Bank
	b.SetSlot(-1, ItemStack{Kind: "coal", Count: 1})
	b.SetSlot(BankSize, ItemStack{Kind: "coal", Count: 1})

	if b.UsedSlots() != 0 {
		t.Errorf("out-of-range SetSlot stored something: %d slots", b.UsedSlots())
	}
	if !b.Slot(BankSize).Empty() {
		t.Error("out-of-range Slot() not empty")
	}
}

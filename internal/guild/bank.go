package guild

// Bank capacity: a standard double chest.
const (
	BankSize     = 54
	MaxStackSize = 64
)

// ItemStack is a stack of a single item kind in the guild bank.
// A zero-value ItemStack (empty Kind) marks an empty slot.
type ItemStack struct {
	Kind  string
	Count int
}

// Empty reports whether the stack holds nothing.
func (s ItemStack) Empty() bool {
	return s.Kind == "" || s.Count <= 0
}

// Bank is a fixed-size slot array of item stacks. Not safe for concurrent
// use on its own; the owning Guild's lock covers it.
type Bank struct {
	slots [BankSize]ItemStack
}

// Contents returns a snapshot copy of all slots.
func (b *Bank) Contents() []ItemStack {
	out := make([]ItemStack, BankSize)
	copy(out, b.slots[:])
	return out
}

// SetContents replaces the slot array. Slices shorter than BankSize leave
// the remaining slots empty; longer input is truncated.
func (b *Bank) SetContents(slots []ItemStack) {
	b.slots = [BankSize]ItemStack{}
	copy(b.slots[:], slots)
}

// Slot returns the stack at the given index, or an empty stack for
// out-of-range indices.
func (b *Bank) Slot(i int) ItemStack {
	if i < 0 || i >= BankSize {
		return ItemStack{}
	}
	return b.slots[i]
}

// SetSlot replaces a single slot. Out-of-range indices are ignored.
func (b *Bank) SetSlot(i int, s ItemStack) {
	if i < 0 || i >= BankSize {
		return
	}
	b.slots[i] = s
}

// Deposit stores the given stacks, filling existing compatible stacks first,
// then empty slots. Returns the per-kind deposited counts and any overflow
// that did not fit.
func (b *Bank) Deposit(items []ItemStack) (deposited map[string]int, overflow []ItemStack) {
	deposited = make(map[string]int)
	for _, item := range items {
		if item.Empty() {
			continue
		}
		remaining := item.Count

		// Top up existing stacks of the same kind.
		for i := 0; i < BankSize && remaining > 0; i++ {
			s := b.slots[i]
			if s.Empty() || s.Kind != item.Kind || s.Count >= MaxStackSize {
				continue
			}
			add := min(remaining, MaxStackSize-s.Count)
			b.slots[i].Count += add
			remaining -= add
			deposited[item.Kind] += add
		}

		// Then fill empty slots.
		for i := 0; i < BankSize && remaining > 0; i++ {
			if !b.slots[i].Empty() {
				continue
			}
			add := min(remaining, MaxStackSize)
			b.slots[i] = ItemStack{Kind: item.Kind, Count: add}
			remaining -= add
			deposited[item.Kind] += add
		}

		if remaining > 0 {
			overflow = append(overflow, ItemStack{Kind: item.Kind, Count: remaining})
		}
	}
	return deposited, overflow
}

// UsedSlots returns the number of non-empty slots.
func (b *Bank) UsedSlots() int {
	count := 0
	for _, s := range b.slots {
		if !s.Empty() {
			count++
		}
	}
	return count
}

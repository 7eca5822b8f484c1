package sim

import (
	"hifive/src/hardware/sifive"
)

// Clint is a simulated core local interruptor, addressed the way the real
// one is: by physical address.
type Clint struct {
	mtime    uint64
	mtimecmp [sifive.ClintHarts]uint64
}

// NewClint starts with every compare register at the maximum, like the
// hardware after reset, so nothing is pending.
func NewClint() *Clint {
	c := &Clint{}
	for i := range c.mtimecmp {
		c.mtimecmp[i] = ^uint64(0)
	}
	return c
}

// Load64 reads a 64 bit CLINT register.  ok is false for addresses that are
// not a 64 bit register.
func (c *Clint) Load64(addr uintptr) (v uint64, ok bool) {
	if addr == sifive.MTimeAddr() {
		return c.mtime, true
	}
	if hart, ok := c.compareHart(addr); ok {
		return c.mtimecmp[hart], true
	}
	return 0, false
}

// Store64 writes a 64 bit CLINT register.  mtime is writable on real parts
// too.
func (c *Clint) Store64(addr uintptr, v uint64) bool {
	if addr == sifive.MTimeAddr() {
		c.mtime = v
		return true
	}
	if hart, ok := c.compareHart(addr); ok {
		c.mtimecmp[hart] = v
		return true
	}
	return false
}

func (c *Clint) compareHart(addr uintptr) (int, bool) {
	base := sifive.MTimeCmpAddr(0)
	if addr < base || addr >= base+sifive.ClintHarts*8 || (addr-base)%8 != 0 {
		return 0, false
	}
	return int((addr - base) / 8), true
}

// Advance moves mtime forward.
func (c *Clint) Advance(ticks uint64) {
	c.mtime += ticks
}

// TimerPending is MTIP for a hart.
func (c *Clint) TimerPending(hart int) bool {
	return c.mtime >= c.mtimecmp[hart]
}

// UntilDeadline is how far mtime is from hart's compare value, zero if it
// is already there.
func (c *Clint) UntilDeadline(hart int) uint64 {
	if c.TimerPending(hart) {
		return 0
	}
	return c.mtimecmp[hart] - c.mtime
}

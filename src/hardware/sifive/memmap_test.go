package sifive

import "testing"

func TestClintAddresses(t *testing.T) {
	if MTimeCmpAddr(KernelHart) != 0x0200_4000 {
		t.Errorf("mtimecmp for hart 0 at %x", MTimeCmpAddr(KernelHart))
	}
	if MTimeCmpAddr(4) != 0x0200_4020 {
		t.Errorf("mtimecmp for hart 4 at %x", MTimeCmpAddr(4))
	}
	if MTimeAddr() != 0x0200_BFF8 {
		t.Errorf("mtime at %x", MTimeAddr())
	}
	if MTimeCmpAddr(ClintHarts-1)+8 > MTimeAddr() {
		t.Errorf("compare registers run into mtime")
	}
}

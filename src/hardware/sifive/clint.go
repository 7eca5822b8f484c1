//go:build tinygo && riscv64

package sifive

import (
	"runtime/volatile"
	"unsafe"
)

type ClintRegisterMap struct {
	MSIP      [ClintHarts]volatile.Register32 //0x0000
	reserved0 [4091]uint32
	MTimeCmp  [ClintHarts]volatile.Register64 //0x4000
	reserved1 [4090]uint64
	MTime     volatile.Register64 //0xBFF8
}

var Clint *ClintRegisterMap = (*ClintRegisterMap)(unsafe.Pointer(ClintBase))

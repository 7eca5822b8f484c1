//go:build tinygo && riscv64

package sifive

import (
	"runtime/volatile"
	"unsafe"
)

type UARTRegisterMap struct {
	TxData volatile.Register32 //0x00
	RxData volatile.Register32 //0x04
	TxCtrl volatile.Register32 //0x08
	RxCtrl volatile.Register32 //0x0C
	IE     volatile.Register32 //0x10
	IP     volatile.Register32 //0x14
	Div    volatile.Register32 //0x18
}

var UART0 *UARTRegisterMap = (*UARTRegisterMap)(unsafe.Pointer(UART0Base))

// UART is the diagnostic console.  Output only, polled, one byte at a time.
type UART struct {
	regs *UARTRegisterMap
}

// Console is UART0, already set up by the boot firmware for its baud rate.
var Console = &UART{regs: UART0}

func (u *UART) Configure() {
	u.regs.TxCtrl.SetBits(UARTTxEnable)
}

func (u *UART) WriteByte(c byte) error {
	for u.regs.TxData.Get()&UARTTxFull != 0 {
	}
	u.regs.TxData.Set(uint32(c))
	return nil
}

func (u *UART) WriteString(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			u.WriteByte('\r')
		}
		u.WriteByte(s[i])
	}
	return len(s), nil
}

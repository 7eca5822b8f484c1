//go:build tinygo && riscv64

package main

import (
	"device/riscv"

	"hifive/src/hardware/sifive"
	"hifive/src/joy"
	"hifive/src/lib/trust"
)

//go:generate go run hifive/src/tools/genfuncptr/cmd/genfuncptr tasks.txt ../../../../modtinygo/hifive-files/src/device/hifive/task_ptrs.S

// Addresses of the exported functions below, from task_ptrs.S.
//
//go:extern task1Ptr
var task1Ptr joy.FuncPtr

//go:extern task2Ptr
var task2Ptr joy.FuncPtr

//go:extern taskExitPtr
var taskExitPtr joy.FuncPtr

// interval is 10ms of mtime at 1MHz.
const interval = sifive.MTimeFrequency / 100

const spin = 1000000

func main() {
	sifive.Console.Configure()
	trust.SetSink(trust.NewTextSink(sifive.Console))
	trust.SetHalt(sifive.Halt)
	trust.SetLevel(trust.ErrorMask | trust.WarnMask | trust.InfoMask)
	trust.Infof("HiFive Pro booting...")

	joy.KernelMain(sifive.Board{}, joy.BootConfig{
		Template: joy.TaskTemplate{
			ExitPC:        taskExitPtr,
			GlobalPointer: sifive.GlobalPointer(),
		},
		Interval: interval,
		Tasks: []joy.FuncPtr{
			task1Ptr,
			task2Ptr,
		},
	})
}

// The tasks write straight to the console: the heap never gives memory
// back (gc=leaking), so nothing that runs forever may allocate.

//export task1
func task1() {
	for {
		sifive.Console.WriteString("Task 1 running\n")
		busy()
	}
}

//export task2
func task2() {
	for {
		sifive.Console.WriteString("Task 2 running\n")
		busy()
	}
}

func busy() {
	for i := 0; i < spin; i++ {
		riscv.Asm("nop")
	}
}

// taskExit is where a task ends up if its function returns.  It keeps the
// slot busy until the next tick takes the processor away, forever.
//
//export taskExit
func taskExit() {
	sifive.Console.WriteString("a task returned\n")
	for {
		riscv.Asm("wfi")
	}
}

package main

import (
	"fmt"
	"io"

	"github.com/golang-collections/collections/queue"

	"hifive/src/sim"
)

type command int

const (
	cmdStep command = iota
	cmdTrap
	cmdRun
	cmdStatus
	cmdHelp
	cmdQuit
)

const keyHelp = "s step, t next trap, T ten traps, r run to the end, p status, q quit"

// keyCommands turns one key press into the commands it stands for.
func keyCommands(r rune) []command {
	switch r {
	case 's', ' ':
		return []command{cmdStep, cmdStatus}
	case 't', '\r', '\n':
		return []command{cmdTrap, cmdStatus}
	case 'T':
		cmds := make([]command, 0, 11)
		for i := 0; i < 10; i++ {
			cmds = append(cmds, cmdTrap)
		}
		return append(cmds, cmdStatus)
	case 'r':
		return []command{cmdRun, cmdStatus}
	case 'p':
		return []command{cmdStatus}
	case 'q', 3, 4:
		return []command{cmdQuit}
	}
	return []command{cmdHelp}
}

// stepper runs queued commands against a machine.  ticks is where 'r'
// stops.
type stepper struct {
	m     *sim.Machine
	ticks uint64
	out   io.Writer
	q     queue.Queue
}

func (s *stepper) push(cmds []command) {
	for _, c := range cmds {
		s.q.Enqueue(c)
	}
}

// drain runs everything queued.  A machine error empties the queue and is
// returned; quit is true once a quit command has been seen.
func (s *stepper) drain() (quit bool, err error) {
	for s.q.Len() > 0 {
		c := s.q.Dequeue().(command)
		switch c {
		case cmdStep:
			err = s.m.Step()
		case cmdTrap:
			err = s.m.NextTrap()
		case cmdRun:
			if done := s.m.Kernel.Timer.Ticks(); done < s.ticks {
				err = s.m.RunTicks(s.ticks - done)
			}
		case cmdStatus:
			s.printStatus()
		case cmdHelp:
			fmt.Fprintln(s.out, keyHelp)
		case cmdQuit:
			return true, nil
		}
		if err != nil {
			for s.q.Len() > 0 {
				s.q.Dequeue()
			}
			return false, err
		}
	}
	return false, nil
}

func (s *stepper) printStatus() {
	s.m.Refresh()
	st := s.m.Status()
	cur := "idle"
	if st.Current != sim.Idle {
		cur = fmt.Sprintf("task %d", st.Current)
	}
	fmt.Fprintf(s.out, "step %d mtime %d ticks %d pc 0x%x running %s\r\n",
		st.Steps, st.MTime, st.Ticks, s.m.Hart.PC, cur)
}

package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"
)

var sectionFlag = flag.String("s", ".rodata.task_ptrs", "section to put the pointer table in")

func main() {
	flag.Parse()
	if flag.NArg() < 2 {
		log.Fatalf("unable to process input, expected arguments: " +
			"genfuncptr [-s section] <infile> <outfile>")
	}
	in, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("open: %v", err)
	}
	defer in.Close()
	exists := true
	st, err := os.Stat(flag.Arg(1))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("%v", err)
		}
		exists = false
	}
	var lastGenTime time.Time
	if exists {
		lastGenTime = st.ModTime()
	}
	st, err = os.Stat(flag.Arg(0))
	if err != nil {
		log.Fatalf("stat 0: %v", err)
	}
	lastModTime := st.ModTime()

	log.Printf("last mod time: %s, last gen time: %s", lastModTime, lastGenTime)
	if !lastModTime.After(lastGenTime) {
		return
	}
	out, err := os.Create(flag.Arg(1))
	if err != nil {
		log.Fatalf("%v", err)
	}
	wr := bufio.NewWriter(out)
	if err := generate(in, wr, *sectionFlag); err != nil {
		out.Close()
		os.Remove(flag.Arg(1))
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}
	wr.Flush()
	out.Close()
}

// generate reads one exported function name per line (blank lines and #
// comments are skipped) and writes, for each name, a global <name>Ptr
// holding the function's address.  Go code picks them up with
// //go:extern <name>Ptr.
func generate(in io.Reader, out io.Writer, section string) error {
	rd := bufio.NewScanner(in)
	if _, err := io.WriteString(out, fmt.Sprintf(warn, section)); err != nil {
		return err
	}
	lineNo := 0
	for rd.Scan() {
		lineNo++
		line := strings.TrimSpace(rd.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !isSymbol(line) {
			return fmt.Errorf("line %d: %q is not a symbol name", lineNo, line)
		}
		if _, err := io.WriteString(out, fmt.Sprintf(lit, line, line, line)); err != nil {
			return err
		}
	}
	return rd.Err()
}

func isSymbol(s string) bool {
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return s != ""
}

const lit = `
.global %sPtr
%sPtr:
	.dword %s
`
const warn = `
// DO NOT EDIT! This file is machine generated by genfuncptr and your
// changes will be overwritten.

.section %s,"a",@progbits
.balign 8
`

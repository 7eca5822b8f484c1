package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	tty "github.com/mattn/go-tty"
	"go.uber.org/zap"
)

var helpFlag = flag.Bool("h", false, "get usage info")
var widthFlag = flag.Int("w", 256, "longest line kept, longer ones are truncated")
var jsonFlag = flag.Bool("json", false, "log JSON instead of the console format")

func usage() {
	fmt.Fprintf(os.Stderr, "usage: uartcat [flags] /dev/ttyUSB1\n")
	flag.PrintDefaults()
	os.Exit(1)
}

func main() {
	flag.Parse()
	if *helpFlag || flag.NArg() != 1 {
		usage()
	}
	var log *zap.Logger
	var err error
	if *jsonFlag {
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	dev := flag.Arg(0)
	port, err := tty.OpenDevice(dev)
	if err != nil {
		log.Fatal("cannot open serial device", zap.String("device", dev), zap.Error(err))
	}
	defer port.Close()
	restore := port.MustRaw()
	defer restore()
	log.Info("listening", zap.String("device", dev))

	lr := newLineReader(port.Input(), *widthFlag)
	for {
		line, err := lr.Read()
		if line != "" {
			relay(log, line)
		}
		if n := lr.Dropped(); n != 0 {
			log.Warn("line truncated", zap.Int("dropped", n))
		}
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			log.Fatal("read failed", zap.Error(err))
		}
	}
}

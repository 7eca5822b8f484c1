package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	tty "github.com/mattn/go-tty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"hifive/src/lib/trust"
	"hifive/src/lib/trust/trustzap"
	"hifive/src/sim"
)

var helpFlag = flag.Bool("h", false, "get usage info")
var configFlag = flag.String("c", "", "TOML file describing the run")
var envFlag = flag.String("e", ".env", "dotenv file with HARTSIM_ defaults")
var ticksFlag = flag.Uint64("n", 0, "timer ticks to run, overrides the config")
var interactiveFlag = flag.Bool("i", false, "step the machine from the terminal")
var httpFlag = flag.String("http", "", "serve the inspector on this address, e.g. localhost:8088")
var holdFlag = flag.Bool("hold", false, "keep the inspector up after the run until interrupted")
var pngFlag = flag.String("png", "", "write a timeline of the schedule to this PNG file")
var verbose = flag.Int("v", 0, "verbosity level: 0 terse (default), 1 kernel debug lines")

func usage() {
	fmt.Fprintf(os.Stderr, "usage: hartsim [flags]\n")
	flag.PrintDefaults()
	os.Exit(1)
}

func newLogger(verbosity int) *zap.Logger {
	conf := zap.NewDevelopmentConfig()
	conf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if verbosity == 0 {
		conf.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	l, err := conf.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot build logger: %v\n", err)
		os.Exit(1)
	}
	return l
}

func loadConfig() (sim.Config, error) {
	conf, err := sim.LoadEnv(sim.DefaultConfig(), *envFlag)
	if err != nil {
		return conf, err
	}
	if *configFlag != "" {
		if conf, err = sim.LoadConfig(*configFlag, conf); err != nil {
			return conf, err
		}
	}
	if *ticksFlag != 0 {
		conf.Ticks = *ticksFlag
	}
	return conf, conf.Validate()
}

func main() {
	flag.Parse()
	if *helpFlag || flag.NArg() != 0 {
		usage()
	}
	log := newLogger(*verbose)
	defer log.Sync()
	runID := uuid.New().String()
	log = log.With(zap.String("run", runID))

	conf, err := loadConfig()
	if err != nil {
		log.Fatal("bad configuration", zap.Error(err))
	}
	progs, err := conf.Programs()
	if err != nil {
		log.Fatal("bad configuration", zap.Error(err))
	}

	kernelLog := trust.NewLogger(trustzap.New(log.Named("kernel")))
	if *verbose == 0 {
		kernelLog.SetLevel(trust.ErrorMask | trust.WarnMask | trust.InfoMask | trust.StatsMask)
	}
	opts := conf.Options()
	opts.Log = kernelLog
	m := sim.NewMachine(opts, progs...)
	m.SetRunID(runID)

	var srv *http.Server
	if *httpFlag != "" {
		srv = &http.Server{Addr: *httpFlag, Handler: sim.NewInspector(m, log.Named("inspector"))}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("inspector stopped", zap.Error(err))
			}
		}()
		log.Info("inspector listening", zap.String("addr", *httpFlag))
	}

	created := m.Boot()
	log.Info("booted", zap.Int("tasks", created), zap.Int("programs", len(progs)),
		zap.Uint64("interval", m.Kernel.Timer.Interval()), zap.Uint64("ticks", conf.Ticks))

	if *interactiveFlag {
		err = interact(m, conf.Ticks)
	} else {
		start := time.Now()
		err = m.RunTicks(conf.Ticks)
		log.Info("run finished", zap.Duration("took", time.Since(start)))
	}
	m.Refresh()
	corrupted := report(m, progs, log)

	if *pngFlag != "" {
		if perr := m.SaveTimeline(*pngFlag, 1200); perr != nil {
			log.Error("timeline", zap.Error(perr))
		} else {
			log.Info("timeline written", zap.String("file", *pngFlag))
		}
	}
	if srv != nil {
		if *holdFlag {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			log.Info("holding the inspector, interrupt to exit")
			<-ctx.Done()
			stop()
		}
		shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = srv.Shutdown(shutdown)
		cancel()
	}
	if err != nil {
		log.Fatal("machine stopped", zap.Error(err))
	}
	if corrupted {
		log.Fatal("context corruption detected")
	}
}

// report logs one line per task and says whether any counter saw its
// registers change under it.
func report(m *sim.Machine, progs []sim.Program, log *zap.Logger) bool {
	st := m.Status()
	log.Info("machine", zap.Uint64("steps", st.Steps), zap.Uint64("idle_steps", st.IdleSteps),
		zap.Uint64("mtime", st.MTime), zap.Uint64("ticks", st.Ticks), zap.Uint64("traps", st.Traps))
	corrupted := false
	for _, t := range st.Tasks {
		fields := []zap.Field{
			zap.Int("task", t.ID),
			zap.String("program", t.Program),
			zap.String("state", t.State),
			zap.Uint64("switches", t.Switches),
			zap.Uint64("executed", t.Executed),
		}
		if c, ok := progs[t.ID].(*sim.Counter); ok {
			fields = append(fields, zap.Uint64("iterations", c.Iterations()), zap.Uint64("corruptions", c.Corruptions()))
			if c.Corruptions() != 0 {
				corrupted = true
				fields = append(fields, zap.String("first", c.FirstCorruption()))
			}
		}
		log.Info("task", fields...)
	}
	return corrupted
}

// interact reads keys from the terminal and queues the commands they stand
// for.
func interact(m *sim.Machine, ticks uint64) error {
	t, err := tty.Open()
	if err != nil {
		return err
	}
	defer t.Close()
	s := &stepper{m: m, ticks: ticks, out: t.Output()}
	fmt.Fprintf(s.out, "%s\r\n", keyHelp)
	for {
		r, err := t.ReadRune()
		if err != nil {
			return err
		}
		s.push(keyCommands(r))
		quit, err := s.drain()
		if err != nil {
			fmt.Fprintf(s.out, "stopped: %v\r\n", err)
			return err
		}
		if quit {
			return nil
		}
	}
}

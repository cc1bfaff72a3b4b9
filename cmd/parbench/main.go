// Command parbench measures dispatch throughput of the parcore runtime on
// the local machine: parallel-for, reduction, and scan over a flat range,
// under both schedules.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	_ "go.uber.org/automaxprocs"

	"github.com/hpcgo/parcore"
)

func main() {
	var (
		n       = flag.Int("n", 1<<20, "iteration space extent")
		threads = flag.Int("threads", 0, "pool size (0 = GOMAXPROCS)")
		reps    = flag.Int("reps", 50, "repetitions per measurement")
		pin     = flag.Bool("pin", false, "pin worker threads to CPUs")
		verbose = flag.Bool("v", false, "verbose runtime logging")
	)
	flag.Parse()

	logger := zerolog.Nop()
	if *verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(zerolog.DebugLevel).With().Timestamp().Logger()
	}

	opts := []parcore.Option{
		parcore.WithPinning(*pin),
		parcore.WithLogger(logger),
	}
	if *threads > 0 {
		opts = append(opts, parcore.WithThreads(*threads))
	}
	rt, err := parcore.NewRuntime(opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parbench: %v\n", err)
		os.Exit(1)
	}
	defer rt.Close()

	fmt.Println("=== parcore benchmark ===")
	fmt.Printf("Go Version: %s\n", runtime.Version())
	fmt.Printf("GOARCH:     %s\n", runtime.GOARCH)
	dev := rt.DeviceInfo()
	fmt.Printf("Device:     %s, %d cores, %s\n", dev.Name, dev.Cores, dev.Features)
	fmt.Printf("Pool:       %d threads, extent %d, %d reps\n\n", rt.ThreadCount(), *n, *reps)

	p, err := parcore.NewRange(0, *n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parbench: %v\n", err)
		os.Exit(1)
	}

	data := make([]float64, *n)
	for i := range data {
		data[i] = float64(i%1000) * 0.25
	}
	out := make([]float64, *n)

	for _, sched := range []parcore.Schedule{parcore.Static, parcore.Dynamic} {
		sp := p.WithSchedule(sched)

		report("for/"+sched.String(), *n, *reps, func() {
			parcore.For(rt, sp, func(i int) {
				out[i] = data[i]*1.5 + 2.0
			})
		})

		report("reduce/"+sched.String(), *n, *reps, func() {
			parcore.Reduce(rt, sp, func(i int, acc *float64) {
				*acc += data[i]
			}, parcore.Sum[float64]{})
		})
	}

	// Scan always runs statically partitioned.
	report("scan/static", *n, *reps, func() {
		parcore.Scan(rt, p, func(i int, acc *float64, final bool) {
			if final {
				out[i] = *acc
			}
			*acc += data[i]
		}, parcore.Sum[float64]{})
	})
}

// report times fn over reps runs and prints the best per-element rate.
// The best run, not the mean, is the repeatable number on a noisy host.
func report(name string, n, reps int, fn func()) {
	best := time.Duration(1<<63 - 1)
	for r := 0; r < reps; r++ {
		start := time.Now()
		fn()
		if d := time.Since(start); d < best {
			best = d
		}
	}
	perOp := float64(best.Nanoseconds()) / float64(n)
	rate := float64(n) / best.Seconds() / 1e6
	fmt.Printf("%-16s best %10v   %6.2f ns/elem   %8.1f Melem/s\n", name, best, perOp, rate)
}

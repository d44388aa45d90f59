// pft-demo records spans from a pool of worker goroutines alongside a pair
// of counter tracks, and writes the result as a Perfetto trace file that can
// be opened directly in https://ui.perfetto.dev.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/oklog/run"
	"github.com/oklog/ulid/v2"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/pftrace/pft"
)

var (
	siteWorker = pft.NewSourceInfo("worker run", "id", "spans")
	siteDouble = pft.NewSourceInfo("double numbers", "iteration", "note")
)

func main() {
	err := exec(context.Background(), os.Args[1:])
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.As(err, &(run.SignalError{})):
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func exec(ctx context.Context, args []string) error {
	fs := ff.NewFlagSet("pft-demo")
	var (
		workers  = fs.IntLong("workers", runtime.NumCPU(), "worker goroutines recording spans")
		spans    = fs.IntLong("spans", 200, "spans recorded by each worker")
		output   = fs.StringLong("output", "", "output file (default trace-<ulid>.pftrace)")
		interval = fs.DurationLong("sample-interval", 10*time.Millisecond, "counter sampling interval")
	)
	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("PFT_DEMO")); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		return err
	}

	if err := pft.Start(); err != nil {
		return err
	}

	builder, err := pft.NewTraceBuilder()
	if err != nil {
		return err
	}

	// The builder has no internal locking and is fed from both the sampler
	// goroutine and this one, so every use goes through the mutex.
	var builderMtx sync.Mutex

	cpuTrack := builder.CreateCounterTrack("CPU Usage", pft.UnitCustom("%"), 1, false)
	memTrack := builder.CreateCounterTrack("Heap In Use", pft.UnitSizeBytes, 1, false)

	captures := make(chan *pft.Capture, *workers)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var g run.Group

	g.Add(run.SignalHandler(ctx, os.Interrupt))

	g.Add(func() error {
		var wg sync.WaitGroup
		for id := 0; id < *workers; id++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				captures <- work(id, *spans)
			}(id)
		}
		wg.Wait()
		return nil
	}, func(error) {})

	g.Add(func() error {
		tick := time.NewTicker(*interval)
		defer tick.Stop()
		for i := 0; ; i++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick.C:
				ts := pft.Now()
				cpu := 50 + 30*math.Sin(float64(i)/10)
				builderMtx.Lock()
				builder.RecordCounterFloat64(cpuTrack, ts, cpu)
				builder.RecordCounterInt64(memTrack, ts, heapInUse())
				builderMtx.Unlock()
			}
		}
	}, func(error) { cancel() })

	if err := g.Run(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	close(captures)
	builderMtx.Lock()
	for c := range captures {
		builder.ProcessThreadData(c)
	}
	builderMtx.Unlock()

	path := *output
	if path == "" {
		path = fmt.Sprintf("trace-%s.pftrace", ulid.Make())
	}
	if err := builder.WriteFile(path); err != nil {
		return err
	}

	log.Printf("wrote %s", path)
	return nil
}

// work records one worker's spans into its own log and drains it. Locking
// the goroutine to its OS thread keeps the capture's thread id stable, so
// every span lands on one track.
func work(id, spans int) *pft.Capture {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	lg := pft.NewLog()
	lg.SetName(fmt.Sprintf("worker-%d", id))
	lg.Reserve((spans + 1) * (pft.EventsPerSpan + 4*pft.EventsPerArg))

	outer := lg.StartSpan(siteWorker, pft.Int(id), pft.Int(spans))
	note := []byte("demo payload")
	for i := 0; i < spans; i++ {
		span := lg.StartSpan(siteDouble, pft.Uint(uint64(i)), pft.Bytes(note))
		spin()
		span.End()
	}
	outer.End()

	return lg.Take()
}

// spin burns a little CPU so the spans have visible width.
func spin() {
	x := 1.0
	for i := 0; i < 20_000; i++ {
		x = math.Sqrt(x + float64(i))
	}
	_ = x
}

func heapInUse() int64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return int64(ms.HeapInuse)
}

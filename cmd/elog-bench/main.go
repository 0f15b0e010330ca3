// elog-bench: throughput microbenchmark for elog's target variants
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/agilira/elog"
)

const usage = `elog-bench - throughput microbenchmark for elog target variants

USAGE:
    elog-bench [OPTIONS]

OPTIONS:
`

func main() {
	scheme := flag.String("scheme", "sync", "target variant: sync, deferred, quantum, multiquantum")
	goroutines := flag.Int("goroutines", 4, "concurrent producer goroutines")
	perGoroutine := flag.Int("n", 200000, "records logged per goroutine")

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	format := elog.MustParse("${time} ${level} ${src}: ${msg}")
	sink := NewWriterTargetSink(io.Discard, format, *scheme)

	tree := elog.NewTree()
	reg := elog.NewRegistry()
	reg.AddLogTarget(sink, *scheme)
	log := func() *elog.Logger {
		l, err := newSharedLogger(tree, reg)
		if err != nil {
			panic(err)
		}
		return l
	}()

	var wg sync.WaitGroup
	start := time.Now()
	for g := 0; g < *goroutines; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < *perGoroutine; i++ {
				log.Info("producer %d record %d", id, i)
			}
		}(g)
	}
	wg.Wait()
	_ = sink.Flush()
	elapsed := time.Since(start)

	total := *goroutines * *perGoroutine
	fmt.Printf("scheme=%s goroutines=%d records=%d elapsed=%s rate=%.0f records/s\n",
		*scheme, *goroutines, total, elapsed, float64(total)/elapsed.Seconds())

	_ = sink.Close()
}

func newSharedLogger(tree *elog.Tree, reg *elog.Registry) (*elog.Logger, error) {
	src, err := tree.DefineSource("bench", true)
	if err != nil {
		return nil, err
	}
	return elog.NewSharedLogger(src, reg), nil
}

// NewWriterTargetSink builds the requested target variant wrapping a plain
// writer target over w, so every scheme can be compared against the same
// discarded-output baseline.
func NewWriterTargetSink(w io.Writer, format *elog.Formatter, scheme string) elog.Target {
	base := elog.NewWriterTarget(1, w, format, elog.TextEncoderFactory(false), elog.FlushNever, nil)

	switch scheme {
	case "deferred":
		return elog.NewDeferredTarget(1, base, 65536)
	case "quantum":
		t, err := elog.NewQuantumTarget(1, base, elog.QuantumOptions{Capacity: 65536, BatchSize: 256})
		if err != nil {
			panic(err)
		}
		return t
	case "multiquantum":
		t, err := elog.NewMultiQuantumTarget(1, base, elog.MultiQuantumOptions{Producers: 8, RingCapacity: 8192})
		if err != nil {
			panic(err)
		}
		return t
	default:
		return base
	}
}

// Command fairrwdemo exercises a fairrw.FairRWQueue with a configurable mix
// of reader and writer goroutines, modeled on the benchmark driver that
// ilock's own test suite used to stress-test its mutex: spawn a pool of
// goroutines, each looping against a shared queue, and report what they
// observed when the run ends.
//
// Usage:
//
//	fairrwdemo -readers 20 -writers 5 -duration 2s
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	fairrw "github.com/dijkstracula/go-fairrw"
)

func main() {
	readers := flag.Int("readers", 20, "number of concurrent reader goroutines")
	writers := flag.Int("writers", 5, "number of concurrent writer goroutines")
	duration := flag.Duration("duration", 2*time.Second, "how long to run before shutting down")
	flag.Parse()

	logger := log.New(os.Stderr, "fairrwdemo: ", log.LstdFlags)

	q := fairrw.NewFairRWQueue()
	var shared int64
	var reads, writes uint64

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	var wg sync.WaitGroup

	for i := 0; i < *writers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w := fairrw.NewWaiter()
			for ctx.Err() == nil {
				q.AcquireWrite(w)
				atomic.AddInt64(&shared, 1)
				q.ReleaseWrite(w)
				atomic.AddUint64(&writes, 1)
			}
		}(i)
	}

	for i := 0; i < *readers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w := fairrw.NewWaiter()
			for ctx.Err() == nil {
				q.AcquireRead(w)
				_ = atomic.LoadInt64(&shared)
				q.ReleaseRead(w)
				atomic.AddUint64(&reads, 1)
			}
		}(i)
	}

	<-ctx.Done()
	wg.Wait()

	stats := q.Stats()
	logger.Printf("ran for %s: %d reads, %d writes, final shared=%d", *duration, reads, writes, shared)
	logger.Printf("queue stats: %+v", stats)
}

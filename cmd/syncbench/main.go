// syncbench 对比乐观本地更新与远端落地、快照回流的延迟。
//
//	N=2000 CONC=8 PIXELPALS_REALTIME_DRIVER=redis go run ./cmd/syncbench
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/d60-Lab/pixelpals/config"
	"github.com/d60-Lab/pixelpals/internal/model"
	"github.com/d60-Lab/pixelpals/internal/realtime"
	"github.com/d60-Lab/pixelpals/internal/service"
	"github.com/d60-Lab/pixelpals/pkg/logger"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

// timed 并发执行 n 次 fn，返回每次耗时
func timed(n, conc int, fn func(i int)) ([]time.Duration, time.Duration) {
	if conc > n {
		conc = n
	}
	feed := make(chan int, n)
	for i := 0; i < n; i++ {
		feed <- i
	}
	close(feed)

	recs := make(chan time.Duration, n)
	var wg sync.WaitGroup
	t0 := time.Now()
	for w := 0; w < conc; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range feed {
				st := time.Now()
				fn(i)
				recs <- time.Since(st)
			}
		}()
	}
	wg.Wait()
	total := time.Since(t0)
	close(recs)
	out := make([]time.Duration, 0, n)
	for d := range recs {
		out = append(out, d)
	}
	return out, total
}

func main() {
	cfg := must(config.Load())
	if err := logger.Init(cfg.Log); err != nil {
		panic(err)
	}
	defer logger.Sync()
	if cfg.Realtime.Driver == "none" || cfg.Realtime.Driver == "" {
		cfg.Realtime.Driver = "memory"
	}

	N := envInt("N", 1000)
	CONC := envInt("CONC", 4)
	ctx := context.Background()

	store, closeStore, err := realtime.Open(ctx, cfg)
	if err != nil {
		panic(err)
	}
	defer closeStore()
	if store == nil {
		fmt.Println("realtime store unavailable")
		os.Exit(1)
	}

	writer := service.NewRemoteWriter(store, cfg.Realtime.QueueSize, cfg.Realtime.WriteTimeout)
	stop := writer.Start(cfg.Realtime.Workers)
	path := fmt.Sprintf("%s-bench-%d", cfg.Realtime.Path, time.Now().UnixNano())
	gallery := service.NewGallery(store, writer, service.WithPath(path))

	// 快照回流：记录每个新作品第一次出现在快照中的时刻，按标题对应
	var mu sync.Mutex
	uploadedAt := make(map[string]time.Time, N)
	seenRemote := make(map[string]bool, N)
	snapRecs := make([]time.Duration, 0, N)
	allSeen := make(chan struct{})
	var seenOnce sync.Once
	gallery.OnChange(func() {
		if !gallery.Live() {
			return
		}
		now := time.Now()
		mu.Lock()
		defer mu.Unlock()
		for _, e := range gallery.Entries() {
			at, ok := uploadedAt[e.Title]
			if !ok || e.ExternalID == "" || seenRemote[e.Title] {
				continue
			}
			seenRemote[e.Title] = true
			snapRecs = append(snapRecs, now.Sub(at))
		}
		if len(seenRemote) == N {
			seenOnce.Do(func() { close(allSeen) })
		}
	})
	gallery.Start(ctx)
	defer gallery.Close()

	// 远端落地耗时
	landRecs := make([]time.Duration, 0, 2*N)
	doneLand := make(chan struct{})
	landDone := make(chan struct{})
	go func() {
		defer close(landDone)
		for {
			select {
			case d := <-writer.Metrics():
				landRecs = append(landRecs, d)
			case <-doneLand:
				return
			}
		}
	}()

	maxQ := 0
	quitSample := make(chan struct{})
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if q := writer.QueueLen(); q > maxQ {
					maxQ = q
				}
			case <-quitSample:
				return
			}
		}
	}()

	uploadRecs, uploadDur := timed(N, CONC, func(i int) {
		title := fmt.Sprintf("bench-%d", i)
		mu.Lock()
		uploadedAt[title] = time.Now()
		mu.Unlock()
		gallery.Upload(ctx, title, fmt.Sprintf("artist-%d", i%16), "https://picsum.photos/seed/bench/64/64", nil)
	})

	select {
	case <-allSeen:
	case <-time.After(time.Minute):
		fmt.Println("timed out waiting for snapshots")
	}

	var remote []model.ArtEntry
	for _, e := range gallery.Entries() {
		if e.ExternalID != "" {
			remote = append(remote, e)
		}
	}
	likeRecs, likeDur := timed(len(remote), CONC, func(i int) {
		_ = gallery.Like(ctx, remote[i].ID, fmt.Sprintf("fan-%d", i), nil)
	})
	close(quitSample)

	drainStart := time.Now()
	_ = stop(context.Background())
	drainDur := time.Since(drainStart)
	close(doneLand)
	<-landDone

	fmt.Printf("driver=%s N=%d CONC=%d\n", cfg.Realtime.Driver, N, CONC)
	fmt.Printf("Optimistic upload total: %v, p50: %v, p95: %v, p99: %v\n",
		uploadDur, pct(uploadRecs, 0.50), pct(uploadRecs, 0.95), pct(uploadRecs, 0.99))
	fmt.Printf("Optimistic like total: %v, p50: %v, p95: %v, p99: %v\n",
		likeDur, pct(likeRecs, 0.50), pct(likeRecs, 0.95), pct(likeRecs, 0.99))
	fmt.Printf("Remote landing: samples=%d, p50=%v, p95=%v, p99=%v, maxQueue=%d, drain=%v\n",
		len(landRecs), pct(landRecs, 0.50), pct(landRecs, 0.95), pct(landRecs, 0.99), maxQ, drainDur)
	fmt.Printf("Snapshot visible: samples=%d, p50=%v, p95=%v, p99=%v\n",
		len(snapRecs), pct(snapRecs, 0.50), pct(snapRecs, 0.95), pct(snapRecs, 0.99))
}

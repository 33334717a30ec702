package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"minigolf/internal/config"
	"minigolf/internal/course"
	"minigolf/internal/terrain"
)

func main() {
	var (
		totalCourses = flag.Int("courses", 2000, "number of courses to generate")
		concurrency  = flag.Int("concurrency", runtime.NumCPU(), "number of concurrent workers")
		width        = flag.Int("width", 16, "course width in cells")
		height       = flag.Int("height", 26, "course height in cells")
		baseSeed     = flag.Int64("seed", 1337, "seed of the first course; course i uses seed+i")
		backend      = flag.String("backend", "simplex", "noise backend: simplex, perlin")
		cfgPath      = flag.String("config", "", "optional server config supplying terrain parameters")
		warmup       = flag.Int("warmup", 0, "courses generated before measuring; excluded from the report")
	)
	flag.Parse()

	if *totalCourses <= 0 {
		fmt.Fprintln(os.Stderr, "courses must be positive")
		os.Exit(1)
	}
	if *warmup < 0 {
		fmt.Fprintln(os.Stderr, "warmup must not be negative")
		os.Exit(1)
	}
	if *concurrency <= 0 {
		fmt.Fprintln(os.Stderr, "concurrency must be positive")
		os.Exit(1)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	cfg.Terrain.Backend = *backend
	cfg.Course.Width, cfg.Course.Height = *width, *height
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid parameters: %v\n", err)
		os.Exit(1)
	}

	var (
		wg       sync.WaitGroup
		metrics  terrain.GenerationMetrics
		errCount int64
		firstErr atomic.Value
	)

	// Warmup seeds precede the measured range so no course is profiled twice.
	for i := 0; i < *warmup; i++ {
		gen, err := terrain.NewGenerator(cfg.Terrain, *baseSeed-int64(i)-1)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warmup: %v\n", err)
			os.Exit(1)
		}
		gen.SetProfiler(metrics.Profiler())
		_, _ = gen.Generate(cfg.Course.Width, cfg.Course.Height)
	}
	metrics.Reset()

	jobs := make(chan int64)
	go func() {
		defer close(jobs)
		for i := 0; i < *totalCourses; i++ {
			jobs <- *baseSeed + int64(i)
		}
	}()

	worker := func() {
		defer wg.Done()
		for seed := range jobs {
			gen, err := terrain.NewGenerator(cfg.Terrain, seed)
			if err != nil {
				atomic.AddInt64(&errCount, 1)
				firstErr.CompareAndSwap(nil, err.Error())
				continue
			}
			gen.SetPar(cfg.Rules.Par)
			gen.SetProfiler(metrics.Profiler())
			if _, err := gen.Generate(cfg.Course.Width, cfg.Course.Height); err != nil {
				if !errors.Is(err, course.ErrNoHole) && !errors.Is(err, course.ErrNoBall) {
					atomic.AddInt64(&errCount, 1)
					firstErr.CompareAndSwap(nil, err.Error())
				}
			}
		}
	}

	wg.Add(*concurrency)
	startWall := time.Now()
	for i := 0; i < *concurrency; i++ {
		go worker()
	}
	wg.Wait()
	wallDuration := time.Since(startWall)

	snap := metrics.Snapshot()
	attempts := snap.Courses + snap.Failures
	successRate := 0.0
	if attempts > 0 {
		successRate = float64(snap.Courses) / float64(attempts) * 100
	}
	avgDuration := time.Duration(0)
	if snap.Courses > 0 {
		avgDuration = snap.TotalTime / time.Duration(snap.Courses)
	}

	fmt.Println("== Course Generation Profile ==")
	fmt.Printf("Course dimensions: %dx%d\n", cfg.Course.Width, cfg.Course.Height)
	fmt.Printf("Backend: %s (octaves %d, terrain scale %.1f)\n", cfg.Terrain.Backend, cfg.Terrain.Octaves, cfg.Terrain.TerrainScale)
	fmt.Printf("Courses: %d, Seeds: %d..%d\n", *totalCourses, *baseSeed, *baseSeed+int64(*totalCourses)-1)
	fmt.Printf("Concurrency: %d, Warmup: %d\n", *concurrency, *warmup)
	fmt.Printf("Playable: %d, Rejected: %d (%.2f%% playable)\n", snap.Courses, snap.Failures, successRate)
	fmt.Printf("Missing hole: %d, Missing ball: %d\n", snap.MissingHoles, snap.MissingBalls)
	if n := atomic.LoadInt64(&errCount); n > 0 {
		fmt.Printf("Generator errors: %d (first: %v)\n", n, firstErr.Load())
	}
	fmt.Printf("Average per-course duration: %s\n", avgDuration)
	fmt.Printf("Wall clock duration: %s\n", wallDuration)

	var totalCells int64
	for _, n := range snap.Cells {
		totalCells += n
	}
	if totalCells == 0 {
		return
	}
	fmt.Println("Terrain distribution (playable courses):")
	for t := course.Rough; t <= course.Ball; t++ {
		n := snap.Cells[t]
		fmt.Printf("  %-8s %8d  %6.2f%%\n", t, n, float64(n)/float64(totalCells)*100)
	}
}

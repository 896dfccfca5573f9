// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

// Command natgwd is the NAT gateway daemon: it loads a configuration,
// spins up one Worker per configured port (each pinned to a CPU from
// -cores when that flag is given), and exposes the
// admin control surface described in SPEC_FULL.md §4.L.
package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"

	"github.com/natgw/natgw/internal/admin"
	"github.com/natgw/natgw/internal/config"
	"github.com/natgw/natgw/internal/iopkt"
	"github.com/natgw/natgw/internal/logging"
	"github.com/natgw/natgw/internal/offload"
	"github.com/natgw/natgw/internal/reload"
	"github.com/natgw/natgw/internal/stats"
	"github.com/natgw/natgw/internal/worker"
)

var version = "dev"

func main() {
	configPath := flag.String("f", "", "path to the HCL configuration file")
	adminAddr := flag.String("admin", "127.0.0.1:9999", "primary admin protocol listen address")
	httpAddr := flag.String("http", "127.0.0.1:9998", "admin HTTP (metrics/websocket) listen address")
	cores := flag.String("cores", "", "comma-separated CPU indices to pin workers to (default: one worker per configured port, unpinned)")
	burst := flag.Int("burst", worker.DefaultBurst, "packets read per port per pipeline iteration")
	watch := flag.Bool("watch", true, "reload automatically when the config file changes")
	ebpfProg := flag.String("ebpf-prog", "", "path to a compiled TC fast-path object to attach per port (optional; disabled if empty)")
	flag.Parse()

	log := logging.New(os.Stderr, slog.LevelInfo, nil)

	if *configPath == "" {
		log.Error("missing required -f <config> flag")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	numWorkers := len(cfg.Ports)
	if numWorkers == 0 {
		numWorkers = 1
	}
	cpuList := parseCPUList(*cores, numWorkers)

	// Every worker opens its own raw socket per configured interface —
	// spec.md §5's "no NIC queue is shared between workers" means each
	// worker needs an independently owned RX/TX queue per port, not a
	// Port object shared across goroutines.
	var allPorts []*iopkt.Port
	workerPorts := make([][]*iopkt.Port, numWorkers)
	for w := 0; w < numWorkers; w++ {
		for _, pc := range cfg.Ports {
			p, err := iopkt.OpenPort(pc.Name, 4096, *burst)
			if err != nil {
				log.Error("failed to open port", "port", pc.Name, "worker", w, "error", err)
				os.Exit(1)
			}
			workerPorts[w] = append(workerPorts[w], p)
			allPorts = append(allPorts, p)
		}
	}
	ports := allPorts

	var tcOffload *offload.TCOffload
	if *ebpfProg != "" {
		tcOffload, err = offload.Load(*ebpfProg, log.With("component", "offload"))
		if err != nil {
			log.Error("failed to load TC fast-path program, continuing without it", "error", err)
			tcOffload = nil
		} else {
			for _, pc := range cfg.Ports {
				if err := tcOffload.Attach(pc.Name); err != nil {
					log.Error("failed to attach TC fast-path program", "port", pc.Name, "error", err)
				}
			}
		}
	}

	workers := make([]*worker.Worker, 0, numWorkers)
	stopCh := make(chan struct{})
	var stopOnce sync.Once
	stop := func() { stopOnce.Do(func() { close(stopCh) }) }
	for i := 0; i < numWorkers; i++ {
		w := worker.New(i, workerPorts[i], cfg, log.With("worker", i), *burst)
		workers = append(workers, w)
		go runPinned(w, cpuList[i], stopCh, log)
	}

	blocks := make([]*stats.Block, len(workers))
	for i, w := range workers {
		blocks[i] = w.StatsBlock()
	}
	exporter := stats.NewExporter(blocks)

	targets := make([]reload.Target, len(workers))
	for i, w := range workers {
		targets[i] = w
	}
	coordinator := reload.New(targets, log.With("component", "reload"))

	var configWatcher *config.Watcher
	if *watch {
		configWatcher, err = config.WatchFile(*configPath, func() {
			next, err := config.Load(*configPath)
			if err != nil {
				log.Error("config reload: file changed but failed to load", "error", err)
				return
			}
			report := coordinator.Apply(next)
			log.Info("config reloaded from filesystem change", "config_id", report.NewConfigID)
		})
		if err != nil {
			log.Warn("config file watch disabled", "error", err)
		}
	}

	adminSrv, err := admin.Listen(*adminAddr, admin.Handlers{
		Version: version,
		Reload: func() (any, error) {
			next, err := config.Load(*configPath)
			if err != nil {
				return nil, err
			}
			return coordinator.Apply(next), nil
		},
		Stats: func() stats.Snapshot { return stats.Aggregate(blocks) },
		Shutdown: func() {
			stop()
		},
	}, log.With("component", "admin"))
	if err != nil {
		log.Error("failed to start admin listener", "error", err)
		os.Exit(1)
	}
	go func() {
		if err := adminSrv.Serve(stopCh); err != nil {
			log.Error("admin server stopped", "error", err)
		}
	}()

	httpHandler := admin.NewHTTPHandler(exporter.Registry(), func() stats.Snapshot { return stats.Aggregate(blocks) }, log)
	go serveHTTP(*httpAddr, httpHandler, log)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-stopCh:
	}
	log.Info("shutting down")
	stop()
	if configWatcher != nil {
		configWatcher.Close()
	}
	_ = adminSrv.Close()
	if tcOffload != nil {
		_ = tcOffload.Close()
	}
	for _, p := range ports {
		_ = p.Close()
	}
}

func serveHTTP(addr string, handler http.Handler, log *logging.Logger) {
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Error("admin http server stopped", "error", err)
	}
}

func runPinned(w *worker.Worker, cpu int, stop <-chan struct{}, log *logging.Logger) {
	if cpu >= 0 {
		if err := worker.PinToCPU(cpu); err != nil {
			log.Warn("failed to pin worker to cpu, continuing unpinned", "cpu", cpu, "error", err)
		}
	}
	w.Run(stop)
}

func parseCPUList(spec string, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = -1
	}
	if spec == "" {
		return out
	}
	i := 0
	cur := 0
	started := false
	for _, r := range spec {
		switch {
		case r >= '0' && r <= '9':
			cur = cur*10 + int(r-'0')
			started = true
		case r == ',':
			if started && i < n {
				out[i] = cur
			}
			i++
			cur = 0
			started = false
		}
	}
	if started && i < n {
		out[i] = cur
	}
	return out
}

func init() {
	// Guard against a GOMAXPROCS lower than the worker count silently
	// serializing pinned workers onto shared OS threads.
	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		runtime.GOMAXPROCS(runtime.NumCPU())
	}
}

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voxmesh/internal/config"
	"voxmesh/internal/logging"
	"voxmesh/internal/meshing"
	"voxmesh/internal/profiling"
	"voxmesh/internal/registry"
	"voxmesh/internal/world"
)

var log = logging.Component("main")

type options struct {
	configPath string
	radius     int
	seed       int64
	workers    int
	load       string
	blocks     string
	save       string
	obj        string
	preview    string
	scale      int
	metrics    bool
	logLevel   string
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.configPath, "config", "", "YAML config file (default $VOXMESH_CONFIG)")
	flag.IntVar(&o.radius, "radius", -1, "world radius in chunks (overrides config)")
	flag.Int64Var(&o.seed, "seed", 0, "terrain seed (overrides config when non-zero)")
	flag.IntVar(&o.workers, "workers", 0, "mesh workers (overrides config when non-zero)")
	flag.StringVar(&o.load, "load", "", "load chunks from a snapshot instead of generating")
	flag.StringVar(&o.blocks, "blocks", "", "YAML block definitions added to the built-in registry")
	flag.StringVar(&o.save, "save", "", "write a snapshot of the world")
	flag.StringVar(&o.obj, "obj", "", "write meshes as Wavefront OBJ")
	flag.StringVar(&o.preview, "preview", "", "write a top-down PNG preview")
	flag.IntVar(&o.scale, "scale", 4, "preview pixels per block")
	flag.BoolVar(&o.metrics, "metrics", false, "print prometheus metrics when done")
	flag.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	flag.Parse()
	return o
}

func main() {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		log.Errorf("config: %v", err)
		os.Exit(1)
	}
	if opts.radius >= 0 {
		cfg.World.Radius = opts.radius
	}
	if opts.seed != 0 {
		cfg.World.Seed = opts.seed
	}
	if opts.workers > 0 {
		cfg.Mesher.Workers = opts.workers
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.metrics {
		cfg.Metrics.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		log.Errorf("config: %v", err)
		os.Exit(1)
	}
	cfg.Apply()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options) error {
	start := time.Now()

	store, err := buildWorld(opts.load)
	if err != nil {
		return err
	}
	log.Infof("world ready: %d chunks with extents %v", store.Len(), store.Extents())

	reg := registry.Default()
	if opts.blocks != "" {
		if err := reg.LoadFile(opts.blocks); err != nil {
			return err
		}
		log.Infof("registered blocks: %v", reg.Names())
	}

	pool := meshing.NewWorkerPool(store, reg, config.MeshWorkers(), config.QueueSize())
	defer pool.Shutdown()

	stats, err := meshAll(ctx, store, pool)
	if err != nil {
		return err
	}
	log.Infof("meshed %d chunks: %d quads (top %d, bottom %d, sides %d) in %v",
		store.Len(), stats.Quads,
		stats.PerFace[world.FaceTop], stats.PerFace[world.FaceBottom],
		stats.Quads-stats.PerFace[world.FaceTop]-stats.PerFace[world.FaceBottom],
		time.Since(start).Round(time.Millisecond))
	log.Debugf("slowest stages: %s", profiling.TopN(5))

	if err := writeOutputs(store, opts); err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		if err := profiling.WriteMetrics(os.Stdout); err != nil {
			return err
		}
	}
	return nil
}

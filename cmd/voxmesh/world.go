package main

import (
	"context"
	"os"

	"github.com/pkg/errors"

	"voxmesh/internal/config"
	"voxmesh/internal/export"
	"voxmesh/internal/meshing"
	"voxmesh/internal/world"
)

// buildWorld loads a snapshot when path is set and generates terrain otherwise.
func buildWorld(path string) (*world.ChunkStore, error) {
	if path == "" {
		store := world.NewChunkStore(config.ChunkExtents())
		gen := world.NewGenerator(config.Seed())
		streamer := world.NewChunkStreamer(store, gen, config.MeshWorkers())
		defer streamer.Close()
		n := streamer.StreamChunksAroundAsync(world.ChunkCoord{}, config.WorldRadius())
		streamer.Wait()
		// chunks refused by a full queue are generated inline
		n += streamer.StreamChunksAroundSync(world.ChunkCoord{}, config.WorldRadius())
		log.Debugf("generated %d chunks with seed %d", n, gen.Seed())
		return store, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open snapshot")
	}
	defer f.Close()

	chunks, err := world.ReadSnapshot(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	if len(chunks) == 0 {
		return nil, errors.Errorf("snapshot %s holds no chunks", path)
	}
	store := world.NewChunkStore(chunks[0].Extents)
	for _, c := range chunks {
		if c.Extents != store.Extents() {
			return nil, errors.Errorf("snapshot %s mixes chunk extents %v and %v", path, store.Extents(), c.Extents)
		}
		store.AddChunk(c)
	}
	return store, nil
}

// meshAll meshes every dirty chunk through the pool and waits for the results.
func meshAll(ctx context.Context, store *world.ChunkStore, pool *meshing.WorkerPool) (meshing.Stats, error) {
	var total meshing.Stats
	coords := store.DirtyChunks()
	results := make(chan meshing.MeshResult, len(coords))

	submitted := 0
	for _, coord := range coords {
		err := pool.SubmitJobBlocking(ctx, meshing.MeshJob{Coord: coord, ResultChan: results})
		if err != nil {
			return total, errors.Wrapf(err, "submit chunk %v", coord)
		}
		submitted++
	}

	for i := 0; i < submitted; i++ {
		select {
		case r := <-results:
			if r.Error != nil {
				return total, errors.Wrapf(r.Error, "mesh chunk %v", r.Coord)
			}
			log.Debugf("chunk %v: %d quads in %v", r.Coord, r.Stats.Quads, r.Duration)
			total.Add(r.Stats)
		case <-ctx.Done():
			return total, ctx.Err()
		}
	}
	return total, nil
}

func writeOutputs(store *world.ChunkStore, opts options) error {
	chunks := store.AllChunks()

	if opts.save != "" {
		if err := writeFile(opts.save, func(f *os.File) error { return world.WriteSnapshot(f, chunks) }); err != nil {
			return err
		}
		log.Infof("saved snapshot to %s", opts.save)
	}
	if opts.obj != "" {
		if err := writeFile(opts.obj, func(f *os.File) error { return export.WriteOBJ(f, chunks) }); err != nil {
			return err
		}
		log.Infof("wrote OBJ to %s", opts.obj)
	}
	if opts.preview != "" {
		if err := writeFile(opts.preview, func(f *os.File) error { return export.WritePreviewPNG(f, chunks, opts.scale) }); err != nil {
			return err
		}
		log.Infof("wrote preview to %s", opts.preview)
	}
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create output")
	}
	if err := write(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}

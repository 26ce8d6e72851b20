package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"voxelforge.dev/internal/atlas"
	"voxelforge.dev/internal/block"
	"voxelforge.dev/internal/config"
	"voxelforge.dev/internal/job"
	"voxelforge.dev/internal/mesh"
	"voxelforge.dev/internal/observer"
	"voxelforge.dev/internal/persist"
	"voxelforge.dev/internal/render"
	"voxelforge.dev/internal/scene"
	"voxelforge.dev/internal/script"
	"voxelforge.dev/internal/voxel"
	"voxelforge.dev/internal/world"
	"voxelforge.dev/internal/worldgen"
)

func main() {
	var (
		configPath = flag.String("config", "./configs/engine.yaml", "engine config path (empty for defaults)")
		schemaPath = flag.String("blocks_schema", "./schemas/blocks.schema.json", "blocks schema path (empty to skip validation)")
		camX       = flag.Float64("cam_x", 8, "initial camera x")
		camY       = flag.Float64("cam_y", 80, "initial camera y")
		camZ       = flag.Float64("cam_z", 8, "initial camera z")
		frameHz    = flag.Int("frame_hz", 60, "frame rate for the headless loop")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[engine] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load(strings.TrimSpace(*configPath))
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	reg := block.NewRegistry()
	if err := reg.LoadDefinitions(cfg.World.BlocksPath, strings.TrimSpace(*schemaPath)); err != nil {
		logger.Fatalf("load blocks: %v", err)
	}
	logger.Printf("registered %d block types", reg.Len())

	atlases := atlasRegistry(logger)

	gen, err := worldgen.NewTerrain(worldgen.DefaultParams(cfg.World.Seed), reg)
	if err != nil {
		logger.Fatalf("terrain generator: %v", err)
	}

	sched := job.NewScheduler(cfg.Jobs.Workers, logger)
	mainQ := job.NewMainQueue()
	backend := render.NewNullBackend()

	var store world.Store
	var fileStore *persist.Store
	if cfg.Persist.Enabled {
		fileStore, err = persist.NewStore(cfg.Persist.DataDir, logger)
		if err != nil {
			logger.Fatalf("open store: %v", err)
		}
		defer fileStore.Close()
		store = fileStore
	}

	mgr := world.NewManager(world.Config{
		ChunkSize:     cfg.World.ChunkSize,
		ChunkHeight:   cfg.World.ChunkHeight,
		LoadRadius:    cfg.World.LoadRadius,
		BuildCollider: cfg.World.BuildColliders,
	}, reg, gen, mesh.NewBuilder(reg, atlases, logger), sched, mainQ, backend, store, logger)

	cam := scene.NewCamera(mgl32.Vec3{float32(*camX), float32(*camY), float32(*camZ)}, 16.0/9.0)
	layer := world.NewChunkLayer(mgr, cam, scene.NewCuller(), world.LayerConfig{
		OpaqueShader: 1,
		FluidShader:  2,
		Textures:     map[string]render.TextureHandle{"terrain": 1},
	})

	pipeline := render.NewPipeline(backend, logger)
	pipeline.AddLayer("chunks", layer, true)

	table := script.NewTable()
	script.Bind(table, mgr, reg, func() any { return mgr.Stats() })
	logger.Printf("script functions: %v", table.Names())

	ctx, cancel := signalContext()
	defer cancel()

	// Published once per frame; the observer reads it from HTTP goroutines.
	var lastStatus atomic.Value
	lastStatus.Store(observer.Status{})

	var frame uint64
	if cfg.Observer.Enabled {
		obs := observer.NewServer(
			func() observer.Bootstrap {
				return observer.Bootstrap{
					ProtocolVersion: observer.Version,
					ChunkSize:       cfg.World.ChunkSize,
					ChunkHeight:     cfg.World.ChunkHeight,
					LoadRadius:      cfg.World.LoadRadius,
					Seed:            cfg.World.Seed,
					BlockPalette:    reg.Palette(),
				}
			},
			func() observer.Status {
				return lastStatus.Load().(observer.Status)
			},
			logger,
		)
		go func() {
			if err := obs.Serve(ctx, cfg.Observer.ListenAddr); err != nil {
				logger.Printf("observer stopped: %v", err)
			}
		}()
	}

	var autosave <-chan time.Time
	if cfg.Persist.Enabled && cfg.Persist.AutosaveInterval > 0 {
		t := time.NewTicker(time.Duration(cfg.Persist.AutosaveInterval) * time.Second)
		defer t.Stop()
		autosave = t.C
	}

	logger.Printf("running: chunk %dx%d, radius %d, %d workers",
		cfg.World.ChunkSize, cfg.World.ChunkHeight, cfg.World.LoadRadius, cfg.Jobs.Workers)

	ticker := time.NewTicker(time.Second / time.Duration(*frameHz))
	defer ticker.Stop()
	frameTime := 1.0 / float64(*frameHz)

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-autosave:
			if err := mgr.Flush(); err != nil {
				logger.Printf("autosave: %v", err)
			}
		case <-ticker.C:
			mgr.Update(centerChunk(cam, cfg.World.ChunkSize))
			mainQ.Drain(cfg.Jobs.MainQueueBudget)
			pipeline.Frame(frameTime)
			frame++

			st := mgr.Stats()
			js := sched.Snapshot()
			vis := layer.LastVisible()
			lastStatus.Store(observer.Status{
				Frame:         frame,
				FrameTime:     frameTime,
				ChunksLoaded:  st.ChunksLoaded,
				MeshesBuilt:   st.MeshesBuilt,
				BuildsDropped: st.BuildsDropped,
				JobsQueued:    js.Queued,
				JobsRunning:   js.Running,
				Visible:       len(vis.Opaque) + len(vis.Transparent),
				Culled:        vis.Culled,
			})
		}
	}

	logger.Printf("shutting down")
	shutdownCtx, cancel2 := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel2()
	sched.Shutdown(shutdownCtx)
	mainQ.Drain(0)
	if err := mgr.Flush(); err != nil {
		logger.Printf("final flush: %v", err)
	}
	logger.Printf("done: %d frames, %d chunks loaded", frame, mgr.ChunkCount())
}

func atlasRegistry(logger *log.Logger) *atlas.Registry {
	atlases := atlas.NewRegistry()
	if _, err := atlases.Register("terrain", 16, 16, 256, 256, 0, 0); err != nil {
		logger.Fatalf("terrain atlas: %v", err)
	}
	return atlases
}

func centerChunk(cam *scene.Camera, size int) voxel.ChunkCoord {
	return voxel.ChunkCoord{
		X: voxel.FloorDiv(int(cam.Position.X()), size),
		Z: voxel.FloorDiv(int(cam.Position.Z()), size),
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(ch)
	}()
	return ctx, cancel
}

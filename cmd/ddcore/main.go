// Command ddcore runs the Doomsday core runtime headless: it loads
// archives into the content store, builds a map arena wired to every
// thinker-kind stepper, and drives the tick loop at the configured rate
// until interrupted, at which point it writes a savegame if -save names a
// path. There is no renderer or input device here — those are host/platform
// collaborators per §1. It constructs the zone, content store, lump cache,
// arena, physics engine, scheduler, binding engine, network session and ACS
// system; particle generators, plane movers and light effects run through
// the arena's step hooks only once something spawns them.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/skyjake/doomsday-core/internal/acs"
	"github.com/skyjake/doomsday-core/internal/bias"
	"github.com/skyjake/doomsday-core/internal/bind"
	"github.com/skyjake/doomsday-core/internal/cache"
	"github.com/skyjake/doomsday-core/internal/config"
	"github.com/skyjake/doomsday-core/internal/content"
	"github.com/skyjake/doomsday-core/internal/debug"
	"github.com/skyjake/doomsday-core/internal/netsession"
	"github.com/skyjake/doomsday-core/internal/physics"
	"github.com/skyjake/doomsday-core/internal/save"
	"github.com/skyjake/doomsday-core/internal/sim"
	"github.com/skyjake/doomsday-core/internal/world"
	"github.com/skyjake/doomsday-core/internal/zone"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file (defaults if absent)")
	archives := flag.String("archives", "", "Comma-separated archive/WAD paths, appended to the config's archive_paths")
	savePath := flag.String("save", "", "Savegame path written on shutdown (skipped if empty)")
	enableLogging := flag.Bool("log", false, "Enable component logging (disabled by default)")
	gravity := flag.Int("gravity", 1, "Per-tick gravity, in map units (fixed-point integer part)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *archives != "" {
		cfg.ArchivePaths = append(cfg.ArchivePaths, strings.Split(*archives, ",")...)
	}
	bias.MaxBiasAffected = cfg.Bias.MaxAffected
	bias.IgnoreLimit = world.Fixed(cfg.Bias.IgnoreLimit)
	bias.LightSpeed = cfg.Bias.LightSpeed
	netsession.WarpLimit = world.Fixed(cfg.WarpLimit)

	var logger *debug.Logger
	if *enableLogging {
		logger = debug.NewLogger(10000)
		for _, c := range []debug.Component{
			debug.ComponentContent, debug.ComponentZone, debug.ComponentSim,
			debug.ComponentPhysics, debug.ComponentACS, debug.ComponentBind,
			debug.ComponentNet, debug.ComponentSave, debug.ComponentSystem,
		} {
			logger.SetComponentEnabled(c, true)
		}
		defer logger.Shutdown()
	}

	zn := zone.New()
	store := content.NewStore(logger)
	lumpCache := cache.New(zn, store, logger)
	store.OnRemoveIndices(lumpCache.Invalidate)

	for _, p := range cfg.ArchivePaths {
		if p == "" {
			continue
		}
		if _, err := store.LoadPath(p, false); err != nil {
			fmt.Fprintf(os.Stderr, "loading %s: %v\n", p, err)
			os.Exit(1)
		}
	}
	lumpCache.Resize(store.NumLumps())

	arena := world.NewArena()

	phys := physics.New(arena, world.FixedFromInt(*gravity))
	arena.MobjStep = func(a *world.Arena, m *world.Mobj) { phys.Step(a, m) }
	arena.GeneratorStep = func(a *world.Arena, g *world.Generator) bool { return g.State.Tick(a) }
	arena.MoverStep = func(a *world.Arena, m *world.PlaneMover) bool { return m.State.Step(a) }
	arena.LightStep = func(a *world.Arena, l *world.LightFX) bool { return l.State.Step(a) }
	arena.ScriptStep = func(a *world.Arena, s *world.ScriptRef) bool { return s.State.Step(a) }

	scheduler := sim.New(arena)

	bindEngine := bind.New()
	bindEngine.SetClassActive(0, true)

	netSess := netsession.New()
	netSess.Broadcast = func(p netsession.Packet) {
		if logger != nil {
			logger.LogNetf(debug.LogLevelDebug, "broadcast type=%d len=%d", p.Type, len(p.Payload))
		}
	}

	act := &engineActuator{arena: arena, logger: logger}
	prog := &acs.Program{} // no bytecode loaded; a compiler front-end is an external collaborator per scope
	acsSystem := acs.NewSystem(prog, 0, 0, act)

	scheduler.BeforeTick = func() {
		if logger != nil {
			logger.LogNetf(debug.LogLevelTrace, "tick %d: network ingest", scheduler.TickCount)
		}
	}
	scheduler.AfterTick = func() {
		if logger != nil {
			logger.LogSimf(debug.LogLevelTrace, "tick %d complete, %d active thinkers", scheduler.TickCount, len(arena.Active()))
		}
	}

	fmt.Println("Doomsday core runtime")
	fmt.Println("======================")
	fmt.Printf("Lumps loaded: %d\n", store.NumLumps())
	fmt.Printf("Ticks per second: %d\n", cfg.TicksPerSecond)
	fmt.Println("Running headless. Press Ctrl+C to stop.")

	ctx := make(chan os.Signal, 1)
	signal.Notify(ctx, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second / time.Duration(cfg.TicksPerSecond))
	defer ticker.Stop()

runLoop:
	for {
		select {
		case <-ticker.C:
			scheduler.Tick()
		case <-ctx:
			break runLoop
		}
	}

	fmt.Printf("Stopped after %d ticks.\n", scheduler.TickCount)

	if *savePath != "" {
		data, err := save.Save(arena, save.Header{Description: "ddcore autosave", MapTime: uint32(scheduler.TickCount)}, save.Hooks{ACS: acsSystem})
		if err != nil {
			fmt.Fprintf(os.Stderr, "save: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*savePath, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "save: writing %s: %v\n", *savePath, err)
			os.Exit(1)
		}
		fmt.Printf("Wrote savegame to %s (%d bytes)\n", *savePath, len(data))
	}

	_ = bindEngine // bound to a host input device not implemented here
	_ = netSess
}

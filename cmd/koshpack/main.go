package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"time"

	"github.com/spf13/afero"

	"github.com/Kush-Singh-26/koshpack/builder/cache"
	"github.com/Kush-Singh-26/koshpack/builder/compose"
	"github.com/Kush-Singh-26/koshpack/builder/config"
	"github.com/Kush-Singh-26/koshpack/builder/emit"
	"github.com/Kush-Singh-26/koshpack/builder/mode"
	"github.com/Kush-Singh-26/koshpack/builder/models"
	"github.com/Kush-Singh-26/koshpack/builder/services"
	"github.com/Kush-Singh-26/koshpack/internal/clean"
	"github.com/Kush-Singh-26/koshpack/internal/scaffold"
	"github.com/Kush-Singh-26/koshpack/internal/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch command {
	case "emit":
		err = runEmit(ctx, args, logger)
	case "print":
		err = runPrint(ctx, args, logger)
	case "bundle":
		err = runBundle(ctx, args, logger)
	case "serve":
		err = runServe(ctx, args, logger)
	case "init":
		err = runInit(args)
	case "clean":
		err = runClean(args)
	case "history":
		err = runHistory(args, logger)
	case "help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("❌ %v\n", err)
		stop()
		os.Exit(1)
	}
}

// load reads the config and resolves the build mode once for the command.
func load(args []string) (*config.Config, models.BuildMode, error) {
	cfg, err := config.Load(args)
	if err != nil {
		return nil, models.Production, err
	}
	if cfg.Signal != "" {
		return cfg, mode.Resolve(cfg.Signal), nil
	}
	return cfg, mode.FromEnv(os.Getenv), nil
}

// popFlag removes a command-only boolean flag from args.
func popFlag(args []string, name string) ([]string, bool) {
	i := slices.IndexFunc(args, func(a string) bool { return a == "-"+name || a == "--"+name })
	if i < 0 {
		return args, false
	}
	return slices.Delete(slices.Clone(args), i, i+1), true
}

func openHistory(cfg *config.Config, m models.BuildMode, logger *slog.Logger) services.HistoryService {
	manager, err := cache.Open(cfg.CachePath(), m.IsDev())
	if err != nil {
		logger.Warn("descriptor history unavailable", "error", err)
		return nil
	}
	return services.NewHistoryService(manager, logger)
}

func runEmit(ctx context.Context, args []string, logger *slog.Logger) error {
	cfg, m, err := load(args)
	if err != nil {
		return err
	}
	fmt.Printf("🔨 Emitting %s descriptor (%s)...\n", m, cfg.Format)

	history := openHistory(cfg, m, logger)
	if history != nil {
		defer func() { _ = history.Close() }()
	}

	res, err := services.NewDescriptorService(cfg, afero.NewOsFs(), history, logger).Emit(ctx, m)
	if err != nil {
		return err
	}

	if res.Written {
		fmt.Printf("✅ Wrote %s\n", res.Path)
	} else {
		fmt.Printf("⏭️  %s is up to date\n", res.Path)
	}
	res.Metrics.Print()
	return nil
}

func runPrint(ctx context.Context, args []string, logger *slog.Logger) error {
	args, color := popFlag(args, "color")
	cfg, m, err := load(args)
	if err != nil {
		return err
	}
	format, err := emit.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	body, err := services.NewDescriptorService(cfg, afero.NewOsFs(), nil, logger).Render(ctx, m, format)
	if err != nil {
		return err
	}
	if color {
		return emit.Highlight(os.Stdout, body, format)
	}
	_, err = os.Stdout.Write(body)
	return err
}

func runBundle(ctx context.Context, args []string, logger *slog.Logger) error {
	cfg, m, err := load(args)
	if err != nil {
		return err
	}
	start := time.Now()
	fmt.Printf("📦 Bundling %s build into %s...\n", m, cfg.OutputPath())

	osFs := afero.NewOsFs()
	res, err := services.NewBundleService(cfg, osFs, osFs, logger).Bundle(ctx, m)
	if err != nil {
		return err
	}
	for entry, out := range res.Entries {
		fmt.Printf("   📄 %s -> %s\n", entry, out)
	}
	fmt.Printf("✅ Bundled %d files (%d bytes) in %v\n", len(res.Files), res.Bytes, time.Since(start).Round(time.Millisecond))
	return nil
}

// runServe bundles once, then serves the output. Without writeToDisk the
// bundle lives in memory only.
func runServe(ctx context.Context, args []string, logger *slog.Logger) error {
	cfg, m, err := load(args)
	if err != nil {
		return err
	}
	d := compose.Assemble(m, cfg)

	var out afero.Fs = afero.NewMemMapFs()
	if d.DevServer.WriteToDisk {
		out = afero.NewOsFs()
	}
	bundler := services.NewBundleService(cfg, afero.NewOsFs(), out, logger)
	rebuild := func() error {
		start := time.Now()
		res, err := bundler.Bundle(ctx, m)
		if err != nil {
			return err
		}
		fmt.Printf("🔄 Bundled %d files in %v\n", len(res.Files), time.Since(start).Round(time.Millisecond))
		return nil
	}
	if err := rebuild(); err != nil {
		return err
	}

	srv := server.New(d.DevServer, out, logger)
	srv.WatchDir = cfg.SourcePath()
	srv.Rebuild = rebuild
	if d.DevServer.Open {
		fmt.Printf("   👉 Open http://%s in your browser\n", srv.Addr)
	}
	return srv.Run(ctx)
}

func runInit(args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	return scaffold.Run(afero.NewOsFs(), root)
}

func runClean(args []string) error {
	args, all := popFlag(args, "all")
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}
	clean.Run(cfg, all)
	return nil
}

func runHistory(args []string, logger *slog.Logger) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}
	manager, err := cache.Open(cfg.CachePath(), true)
	if err != nil {
		return err
	}
	history := services.NewHistoryService(manager, logger)
	defer func() { _ = history.Close() }()

	for _, m := range []models.BuildMode{models.Development, models.Production} {
		entries, err := history.History(m, 5)
		if err != nil {
			return err
		}
		fmt.Printf("📜 %s\n", m)
		if len(entries) == 0 {
			fmt.Println("   (no emissions)")
			continue
		}
		latest, err := history.Latest(m)
		if err != nil {
			return err
		}
		for i, e := range entries {
			count := e.Count
			if i == 0 && latest != nil {
				count = latest.Count
			}
			fmt.Printf("   %s  %-4s %s  %6d bytes (%s)  x%d\n",
				e.Created().Format(time.DateTime), e.Format, e.Fingerprint[:12], e.Size, e.Compression, count)
		}
	}

	stats, err := history.Stats()
	if err != nil {
		return err
	}
	fmt.Printf("📊 %d emissions, %d unchanged, %d modes, %d bytes on disk (schema v%d)\n",
		stats.Emissions, stats.Unchanged, stats.Modes, stats.DBBytes, stats.SchemaVersion)
	return nil
}

func printUsage() {
	fmt.Println("Usage: koshpack <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  emit           Assemble, validate and write the build descriptor")
	fmt.Println("  print          Render the descriptor to stdout")
	fmt.Println("  bundle         Bundle the project with esbuild")
	fmt.Println("  serve          Bundle and serve with live reload")
	fmt.Println("  init [dir]     Scaffold a new project")
	fmt.Println("  clean          Remove descriptors and history")
	fmt.Println("  history        Show recent emissions per mode")
	fmt.Println("  help           Show this help message")
	fmt.Println("\nFlags:")
	fmt.Println("  -config <path>     Config file (default koshpack.yaml)")
	fmt.Println("  -env <mode>        Mode signal, overrides NODE_ENV")
	fmt.Println("  -out <path>        Descriptor output path")
	fmt.Println("  -format <fmt>      json, yaml or js")
	fmt.Println("  -port <n>          Dev server port")
	fmt.Println("  -copy-assets       Enable the asset copy plugin")
	fmt.Println("  -public-path       Pass the public path to the CSS extraction loader")
	fmt.Println("  -color             (print) Highlight output")
	fmt.Println("  -all               (clean) Also remove the output directory")
}

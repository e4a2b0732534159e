package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/ultraschall/enginehub/internal/config"
	"github.com/ultraschall/enginehub/internal/env"
	"github.com/ultraschall/enginehub/internal/logger"
	"github.com/ultraschall/enginehub/internal/preset"
	"github.com/ultraschall/enginehub/internal/registry"
	"github.com/ultraschall/enginehub/internal/server"
	"github.com/ultraschall/enginehub/internal/xfs"
)

const usageText = `Usage: enginehub [flags] <command> [args]

Commands:
  list                                  List engines in presentation order
  add <description> <channels>          Add an engine
  update <id> <description> <channels>  Update an engine
  remove <id>                           Remove an engine
  load-config <path>                    Load a driver document and list its engines
  save-config [target]                  Write the driver document with the current engines
  preset-new <name>                     Write an empty preset
  preset-save <name>                    Snapshot the current engines into a preset
  serve                                 Serve the registry over gRPC

Relative preset names resolve under the presets directory from the settings.

Flags:
`

// cli holds the parsed global flags.
type cli struct {
	driverConfig string
	preset       string
	out          string
}

func main() {
	var (
		flagConfigPath   = flag.String("config", path.Join(config.DefaultConfigPath(), "config.yaml"), "Path to settings file")
		flagDriverConfig = flag.String("driver-config", "", "Driver configuration document (overrides settings)")
		flagPreset       = flag.String("preset", "", "Work on this preset (name under the presets directory, or absolute path) instead of the driver configuration")
		flagOut          = flag.String("out", "", "Target for the rewritten driver configuration (default: fresh temp file)")
	)
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usageText)
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*flagConfigPath)
	if err != nil {
		slog.Error("Failed to load settings", "path", *flagConfigPath, "error", err)
		os.Exit(1)
	}

	logOpts := []logger.Option{
		logger.WithLevel(cfg.Logging.Level),
		logger.WithLogToFile(cfg.Logging.ToFile),
	}
	if cfg.Logging.File != "" {
		logOpts = append(logOpts, logger.WithLogFile(cfg.Logging.File))
	}
	slog.SetDefault(logger.New(env.FromEnv(), logOpts...))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flags := cli{driverConfig: *flagDriverConfig, preset: *flagPreset, out: *flagOut}
	if err := run(ctx, cfg, flags, flag.Args(), os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			flag.Usage()
		}
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("invalid usage")

func run(ctx context.Context, cfg *config.Config, flags cli, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	if flags.driverConfig != "" {
		cfg.Driver.ConfigPath = flags.driverConfig
	}

	manager := registry.NewManager(registry.Options{
		DriverConfigPath: cfg.Driver.ConfigPath,
		Layout:           cfg.Driver.Layout,
		Logger:           slog.Default(),
	})
	reg := manager.Registry()

	if flags.preset != "" {
		resolved, err := presetPath(cfg, flags.preset)
		if err != nil {
			return err
		}
		flags.preset = resolved
		if err := reg.LoadPreset(flags.preset); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			reg.NewPreset()
		}
	}

	command, rest := args[0], args[1:]
	switch command {
	case "list":
		return printEngines(stdout, reg)

	case "add":
		if len(rest) != 2 {
			return errUsage
		}
		channels, err := strconv.Atoi(rest[1])
		if err != nil {
			return fmt.Errorf("channels: %w", err)
		}
		e := reg.Add(rest[0], channels)
		fmt.Fprintln(stdout, e.ID())
		return persist(reg, flags, stdout)

	case "update":
		if len(rest) != 3 {
			return errUsage
		}
		channels, err := strconv.Atoi(rest[2])
		if err != nil {
			return fmt.Errorf("channels: %w", err)
		}
		if err := reg.Update(rest[0], rest[1], channels); err != nil {
			return err
		}
		return persist(reg, flags, stdout)

	case "remove":
		if len(rest) != 1 {
			return errUsage
		}
		if err := reg.Remove(rest[0]); err != nil {
			return err
		}
		return persist(reg, flags, stdout)

	case "load-config":
		if len(rest) != 1 {
			return errUsage
		}
		if err := reg.LoadConfiguration(rest[0]); err != nil {
			return err
		}
		return printEngines(stdout, reg)

	case "save-config":
		if len(rest) > 1 {
			return errUsage
		}
		if len(rest) == 1 {
			flags.out = rest[0]
		}
		flags.preset = ""
		return persist(reg, flags, stdout)

	case "preset-new":
		if len(rest) != 1 {
			return errUsage
		}
		reg.NewPreset()
		return savePreset(cfg, reg, rest[0])

	case "preset-save":
		if len(rest) != 1 {
			return errUsage
		}
		return savePreset(cfg, reg, rest[0])

	case "serve":
		srv := server.New(server.Options{
			Registry:          reg,
			PresetDir:         cfg.Presets.Dir,
			Logger:            slog.Default(),
			WatchDriverConfig: cfg.Driver.Watch,
		})
		return srv.ListenAndServe(ctx, cfg.Server.GRPCAddress)

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

// presetPath keeps absolute paths and resolves anything else under the
// configured presets directory.
func presetPath(cfg *config.Config, name string) (string, error) {
	if filepath.IsAbs(name) {
		return name, nil
	}
	return preset.Resolve(cfg.Presets.Dir, name)
}

func savePreset(cfg *config.Config, reg *registry.Registry, name string) error {
	target, err := presetPath(cfg, name)
	if err != nil {
		return err
	}
	if err := xfs.EnsureParentDir(target); err != nil {
		return err
	}
	return reg.SavePreset(target)
}

// persist writes the working state back: to the preset when one is in use,
// otherwise to a rewritten driver document.
func persist(reg *registry.Registry, flags cli, stdout io.Writer) error {
	if flags.preset != "" {
		if err := xfs.EnsureParentDir(flags.preset); err != nil {
			return err
		}
		return reg.SavePreset(flags.preset)
	}

	target := flags.out
	if target == "" {
		var err error
		if target, err = reg.SaveDriverConfiguration(); err != nil {
			return err
		}
	} else if err := reg.SaveConfiguration(target); err != nil {
		return err
	}

	fmt.Fprintln(stdout, target)
	return nil
}

func printEngines(stdout io.Writer, reg *registry.Registry) error {
	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "INDEX\tID\tDESCRIPTION\tCHANNELS")
	for i, e := range reg.List() {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", i, e.ID(), e.Description, e.Channels)
	}
	return w.Flush()
}

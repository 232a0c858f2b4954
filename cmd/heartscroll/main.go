package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lixenwraith/heartscroll/app"
	"github.com/lixenwraith/heartscroll/audio"
	"github.com/lixenwraith/heartscroll/config"
	"github.com/lixenwraith/heartscroll/constants"
	"github.com/lixenwraith/heartscroll/content"
	"github.com/lixenwraith/heartscroll/core"
	"github.com/lixenwraith/heartscroll/events"
	"github.com/lixenwraith/heartscroll/input"
	"github.com/lixenwraith/heartscroll/network"
	"github.com/lixenwraith/heartscroll/render"
	"github.com/lixenwraith/heartscroll/service"
	"github.com/lixenwraith/heartscroll/status"
)

type cliFlags struct {
	configPath    string
	contentPath   string
	contentURL    string
	color         string
	broadcastAddr string
	mute          bool
	debug         bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f cliFlags

	cmd := &cobra.Command{
		Use:          "heartscroll",
		Short:        "A four-part scroll-driven love letter for the terminal",
		Long:         "Scroll, drag or use the arrow keys to move through the sections one at a time.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, f)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "YAML config file")
	fl.StringVar(&f.contentPath, "content", "", "YAML content file (built-in content when empty)")
	fl.StringVar(&f.contentURL, "content-url", "", "headless content API endpoint; {id} is replaced by the section id")
	fl.StringVar(&f.color, "color", config.ColorAuto, "color mode: auto, truecolor, 256")
	fl.StringVar(&f.broadcastAddr, "broadcast-addr", "", "serve section changes over websocket at this address")
	fl.BoolVar(&f.mute, "mute", false, "start with the transition sound off")
	fl.BoolVar(&f.debug, "debug", false, "write a debug log under the log directory")
	return cmd
}

// resolveConfig layers explicitly set flags over file and environment
func resolveConfig(cmd *cobra.Command, f cliFlags) (config.Config, error) {
	cfg, err := config.Load(f.configPath, nil)
	if err != nil {
		return config.Config{}, err
	}

	set := cmd.Flags().Changed
	if set("content") {
		cfg.ContentPath = f.contentPath
	}
	if set("content-url") {
		cfg.ContentURL = f.contentURL
	}
	if set("color") {
		cfg.ColorMode = f.color
	}
	if set("broadcast-addr") {
		cfg.BroadcastAddr = f.broadcastAddr
	}
	if set("mute") {
		cfg.Muted = f.mute
	}
	if set("debug") {
		cfg.Debug = f.debug
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newFetcher(cfg config.Config) content.Fetcher {
	if cfg.ContentURL != "" {
		client := &http.Client{Timeout: constants.ContentFetchTimeout}
		return content.NewHTTPFetcher(cfg.ContentURL, cfg.ContentResultPath, client)
	}
	return content.NewFileFetcher(cfg.ContentPath)
}

// run starts the services, takes over the terminal and blocks until the
// experience ends
func run(ctx context.Context, cfg config.Config) error {
	logger, closeLog, err := setupLogging(cfg.Debug, cfg.LogDir)
	if err != nil {
		return err
	}
	defer closeLog()

	queue := events.NewEventQueue()
	broadcaster := events.NewBroadcaster(logger.Named("broadcast"))

	contentOpts := []content.ServiceOption{
		content.WithQueue(queue),
		content.WithLogger(logger.Named("content")),
	}
	if cfg.Watch && cfg.ContentPath != "" {
		contentOpts = append(contentOpts, content.WithWatch(cfg.ContentPath))
	}
	contentSvc := content.NewService(newFetcher(cfg), constants.SectionIDs, contentOpts...)
	cue := audio.NewCuePlayer(audio.WithQueue(queue), audio.WithLogger(logger.Named("audio")))
	bridge := network.NewBridge(broadcaster, logger.Named("network"))
	stats := status.NewService(logger.Named("status"))

	hub := service.NewHub(logger.Named("hub"))
	for _, svc := range []service.Service{stats, contentSvc, cue, bridge} {
		if err := hub.Register(svc); err != nil {
			return err
		}
	}

	netCfg := network.DefaultConfig()
	netCfg.Address = cfg.BroadcastAddr
	if err := hub.InitAll(audio.Settings{Muted: cfg.Muted, Volume: cfg.Volume}, netCfg); err != nil {
		return err
	}
	if err := hub.StartAll(); err != nil {
		return err
	}
	defer hub.StopAll()
	if addr := bridge.Addr(); addr != "" {
		fmt.Fprintf(os.Stderr, "broadcasting section changes on ws://%s%s\n", addr, netCfg.Path)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	core.RegisterScreen(screen)
	defer func() {
		core.RegisterScreen(nil)
		screen.Fini()
	}()
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.HideCursor()

	mode, err := render.ParseColorMode(cfg.ColorMode, screen)
	if err != nil {
		return err
	}

	routerCfg := input.DefaultRouterConfig()
	routerCfg.Cooldown = cfg.WheelCooldown

	x, err := app.New(app.Options{
		Screen:      screen,
		ColorMode:   mode,
		Content:     contentSvc,
		Cue:         cue,
		Broadcaster: broadcaster,
		Queue:       queue,
		Input:       routerCfg,
		Transition:  cfg.TransitionTime,
		Metrics:     stats.Registry(),
		Logger:      logger.Named("app"),
	})
	if err != nil {
		return err
	}

	logger.Info("experience started",
		zap.String("color", cfg.ColorMode),
		zap.Bool("muted", cfg.Muted),
		zap.Strings("services", hub.Order()))
	err = x.Run(ctx)

	sent, dropped := bridge.Stats()
	stats.Registry().Counter("network.sent").Store(sent)
	stats.Registry().Counter("network.dropped").Store(dropped)
	return err
}

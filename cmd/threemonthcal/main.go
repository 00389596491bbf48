package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"threemonthcal/internal/config"
	"threemonthcal/internal/holiday"
	appLog "threemonthcal/internal/log"
	"threemonthcal/internal/model"
	"threemonthcal/internal/render"
	"threemonthcal/internal/term"
	"threemonthcal/internal/timeline"
	"threemonthcal/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	once       bool
	size       string
	date       string
	ephemeral  bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if level, ok := appLog.ParseLevel(conf.LogLevel); ok {
		appLog.SetLevel(level)
	}

	appLog.Info("threemonthcal starting", "version", "0.1.0")
	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"week_start", conf.WeekStart,
		"color_preset", conf.ColorPreset,
		"size", conf.Size,
		"refresh", conf.RefreshCron,
		"cache_dir", conf.CacheDir,
		"once", flags.once,
		"ephemeral", flags.ephemeral,
	)

	loc := conf.Location()

	var store holiday.Store
	if flags.ephemeral {
		store = holiday.NewMemoryStore()
	} else {
		store = holiday.NewFileStore(conf.CacheDir)
	}
	syncer := holiday.NewSyncer(holiday.SyncConfig{Store: store, Location: loc})
	provider := &timeline.Provider{Syncer: syncer, HolidayURL: conf.HolidayURL}
	feedURL := syncer.ResolveURL(conf.HolidayURL)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if flags.once {
		if err := runOnce(ctx, conf, flags, provider, feedURL, loc); err != nil {
			appLog.Error("single run failed", err)
			os.Exit(1)
		}
		return
	}

	if err := runDaemon(ctx, conf, provider, feedURL, loc); err != nil {
		appLog.Error("daemon exited with error", err)
		os.Exit(1)
	}
	appLog.Info("threemonthcal exiting")
}

// runOnce runs one refresh cycle and prints the calendar for the requested
// frame and date to stdout.
func runOnce(ctx context.Context, conf *config.Config, flags flagConfig, provider *timeline.Provider, feedURL string, loc *time.Location) error {
	sizeSpec := flags.size
	if sizeSpec == "" {
		sizeSpec = conf.Size
	}
	class, size, ok := config.ParseSize(sizeSpec)
	if !ok {
		return fmt.Errorf("invalid size %q", sizeSpec)
	}

	now := time.Now().In(loc)
	ref := now
	if flags.date != "" {
		parsed, err := model.ParseDayKey(flags.date, loc)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", flags.date, err)
		}
		ref = parsed
	}

	tl := provider.Timeline(ctx, now, false)
	entry := tl.EntryAt(now)

	opts := conf.RenderOptions()
	opts.FeedURL = feedURL
	opts.Today = now
	opts.Error = entry.Error

	plan := render.Build(opts, entry.Holidays, ref, class, size)
	return term.NewPrinter(os.Stdout).Fprint(os.Stdout, plan)
}

// runDaemon runs a refresh cycle at startup and then on the configured cron
// schedule, serving the latest timeline over HTTP until ctx is canceled.
func runDaemon(ctx context.Context, conf *config.Config, provider *timeline.Provider, feedURL string, loc *time.Location) error {
	srv := web.NewServer(conf, provider, feedURL)

	cycle := func() {
		now := time.Now().In(loc)
		tl := provider.Timeline(ctx, now, false)
		srv.Publish(tl)
		appLog.Info("refresh cycle done",
			"refreshed", tl.Refreshed,
			"holidays", tl.Entries[0].Holidays.Len(),
			"error", tl.Entries[0].Error,
			"reload_after", tl.ReloadAfter.Format(time.RFC3339),
		)
	}

	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(conf.RefreshCron, cycle); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", conf.RefreshCron, err)
	}

	cycle()
	c.Start()
	defer func() {
		<-c.Stop().Done()
	}()

	return srv.Serve(ctx)
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/threemonthcal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one refresh cycle, print the calendar and exit")
	flag.StringVar(&cfg.size, "size", "", "Frame for -once: medium, large, tall, small or WxH (default: config size)")
	flag.StringVar(&cfg.date, "date", "", "Reference date for -once, YYYY-MM-DD (default: today)")
	flag.BoolVar(&cfg.ephemeral, "ephemeral", false, "Keep the holiday cache in memory only")

	flag.Parse()

	return cfg
}

package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/AHorihuela/juno-sub001/internal/config"
	"github.com/AHorihuela/juno-sub001/internal/memory"
	"github.com/AHorihuela/juno-sub001/internal/notify"
	"github.com/AHorihuela/juno-sub001/internal/server"
)

// rescoreSchedule refreshes decayed relevance scores for idle items
// once a day. Items are rescored on every access anyway.
const rescoreSchedule = "0 3 * * *"

var serveConfigPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the memory daemon",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config file (default ~/.juno/config.yaml)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfgPath := serveConfigPath
	if cfgPath == "" {
		cfgPath = os.Getenv("JUNO_CONFIG")
	}
	if cfgPath == "" {
		var err error
		cfgPath, err = config.DefaultConfigPath()
		if err != nil {
			return fmt.Errorf("resolve config path: %w", err)
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if cfg.AppData == "" {
		appData, err := config.DefaultAppDataPath()
		if err != nil {
			return fmt.Errorf("resolve app data dir: %w", err)
		}
		cfg.AppData = appData
	}

	var notifier memory.ContextNotifier = notify.LogNotifier{}
	if cfg.Context.URL != "" {
		notifier = notify.NewClient(cfg.Context.URL)
	}

	manager := memory.NewManager(memory.TierCapacities{
		Working:   cfg.Memory.WorkingCapacity,
		ShortTerm: cfg.Memory.ShortTermCapacity,
		LongTerm:  cfg.Memory.LongTermCapacity,
	})
	if err := manager.Initialize(memory.Services{Config: &cfg, Context: notifier}); err != nil {
		return fmt.Errorf("initialize memory manager: %w", err)
	}

	// Daily maintenance: keep idle items' decay fresh.
	sched := cron.New()
	if _, err := sched.AddFunc(rescoreSchedule, func() {
		if n, err := manager.RescoreAll(); err != nil {
			log.Printf("rescore error: %v", err)
		} else if n > 0 {
			log.Printf("rescore: updated %d items", n)
		}
	}); err != nil {
		return fmt.Errorf("schedule maintenance: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(manager, VersionString())
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Fprintf(os.Stderr, "junomem serving on %s\n", addr)
		fmt.Fprintf(os.Stderr, "  app data: %s\n", cfg.AppData)
		if cfg.Context.URL != "" {
			fmt.Fprintf(os.Stderr, "  context: %s\n", cfg.Context.URL)
		}
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-done
	fmt.Fprintln(os.Stderr, "\nshutting down...")

	// Long-term memory is the only durable tier; flush it before exit.
	if err := manager.SaveMemory(); err != nil {
		log.Printf("save long-term memory on shutdown: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}

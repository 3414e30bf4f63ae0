// Command voiceverse-agent runs the offline agent in front of the
// VoiceVerse origin: it intercepts application requests, serves them
// through the per-class caching policies, queues TTS generations made
// while offline and replays them on reconnect.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AliGym19/voiceverse-sub001/agent"
	"github.com/AliGym19/voiceverse-sub001/cachestore"
	"github.com/AliGym19/voiceverse-sub001/classify"
	"github.com/AliGym19/voiceverse-sub001/config"
	"github.com/AliGym19/voiceverse-sub001/connectivity"
	"github.com/AliGym19/voiceverse-sub001/fetch"
	"github.com/AliGym19/voiceverse-sub001/lifecycle"
	"github.com/AliGym19/voiceverse-sub001/logger"
	"github.com/AliGym19/voiceverse-sub001/notify"
	"github.com/AliGym19/voiceverse-sub001/policy"
	"github.com/AliGym19/voiceverse-sub001/queue"
	"github.com/AliGym19/voiceverse-sub001/relay"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "voiceverse-agent",
		Short: "Offline caching and replay agent for the VoiceVerse web client",
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the configuration file")
	root.AddCommand(newServeCmd(), newVersionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the configured application version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			fmt.Printf("%s %s\n", cfg.App.Name, cfg.App.Version)
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the agent server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func serve(cfg *config.Config) error {
	logger.InitManager(cfg.Log)
	defer logger.CloseAll()
	log := logger.GetLogger("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := newBackend(cfg)
	if err != nil {
		return err
	}
	stores := cachestore.NewManager(backend, nil)
	defer stores.Close()

	persistence, err := newPersistence(cfg)
	if err != nil {
		return err
	}

	client := fetch.NewClient(
		fetch.WithBaseURL(cfg.Origin.BaseURL),
		fetch.WithTimeout(cfg.Origin.Timeout),
	)

	dispatcher := relay.NewDispatcher()
	defer dispatcher.Close()
	notifier := notify.NewLogNotifier()

	q := queue.New(persistence,
		queue.WithMaxSize(cfg.Queue.MaxSize),
		queue.WithNotifier(notifier),
	)
	defer q.Close()

	coordinator := queue.NewCoordinator(q, client, dispatcher, notifier,
		queue.WithMaxAttempts(cfg.Queue.MaxAttempts))
	unsubscribe := coordinator.Start()
	defer unsubscribe()

	monitor := connectivity.NewMonitor(dispatcher)
	if cfg.Probe.Enabled {
		prober, err := connectivity.NewProber(monitor, client, cfg.Origin.HealthPath,
			connectivity.WithInterval(cfg.Probe.Interval))
		if err != nil {
			return err
		}
		if err := prober.Start(ctx); err != nil {
			return err
		}
		defer prober.Stop()
	}

	classifier := classify.New(classifierOptions(cfg)...)
	engine := policy.NewEngine(client, stores, cfg.App.Version,
		policy.WithMetrics(policy.NewMetrics()))

	controller := lifecycle.NewController(
		cfg.App.Version, cfg.Origin.Manifest, stores, client, dispatcher)
	if len(cfg.Origin.Manifest) > 0 {
		if err := controller.Install(ctx); err != nil {
			return err
		}
		if err := controller.Activate(ctx); err != nil {
			return err
		}
	}

	server := agent.NewServer(agent.Deps{
		Classifier:  classifier,
		Fetcher:     client,
		Policy:      engine,
		Lifecycle:   controller,
		Queue:       q,
		Coordinator: coordinator,
		Monitor:     monitor,
		Dispatcher:  dispatcher,
		Stores:      stores,
		Notifier:    notifier,
	})

	log.InfoCtx(ctx, "agent starting",
		zap.String("version", cfg.App.Version),
		zap.String("origin", cfg.Origin.BaseURL),
		zap.String("addr", cfg.Server.Addr))
	return server.Run(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout)
}

func newBackend(cfg *config.Config) (cachestore.Backend, error) {
	switch cfg.Cache.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		return cachestore.NewRedisBackend(client, cfg.Cache.KeyPrefix), nil
	default:
		return cachestore.NewMemoryBackend(), nil
	}
}

func newPersistence(cfg *config.Config) (queue.Persistence, error) {
	if cfg.Queue.SQLitePath == "" {
		return queue.NewMemoryPersistence(), nil
	}
	return queue.NewSQLitePersistence(cfg.Queue.SQLitePath)
}

func classifierOptions(cfg *config.Config) []classify.Option {
	var opts []classify.Option
	if len(cfg.Classifier.StaticPrefixes) > 0 {
		opts = append(opts, classify.WithStaticPrefixes(cfg.Classifier.StaticPrefixes...))
	}
	if len(cfg.Classifier.AudioPrefixes) > 0 {
		opts = append(opts, classify.WithAudioPrefixes(cfg.Classifier.AudioPrefixes...))
	}
	if len(cfg.Classifier.APIPrefixes) > 0 {
		opts = append(opts, classify.WithAPIPrefixes(cfg.Classifier.APIPrefixes...))
	}
	return opts
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"NWord_Counter/internal/config"
	"NWord_Counter/internal/pkg"
	"NWord_Counter/internal/ranking"
	"NWord_Counter/internal/repository/mysql"
	"NWord_Counter/internal/repository/redis"
	"NWord_Counter/internal/router"
	"NWord_Counter/internal/service"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	setupLogging(cfg)
	return cfg, nil
}

func openStore(ctx context.Context, cfg *config.Config) (*mysql.Store, error) {
	store, err := mysql.OpenMySQL(cfg.MySQL.DSN, mysql.Options{
		MaxOpenConns:    cfg.MySQL.MaxOpenConns,
		MaxIdleConns:    cfg.MySQL.MaxIdleConns,
		ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	if _, err := mysql.Migrate(ctx, store.DB()); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP API, outbox relayer and message workers",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			return serve(c.Context, cfg)
		},
	}
}

func serve(parent context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	// 配置了 redis 时用分布式锁，多实例部署下同一 votee 的投票也能串行
	var locker service.Locker = service.NewKeyedMutex()
	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(ctx, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		locker = redis.NewDistLock(rdb)
	}

	var sender service.Sender = service.LogSender
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := pkg.NewKafkaProducer(pkg.KafkaConfig{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
		if err != nil {
			return err
		}
		defer producer.Close()
		sender = service.KafkaSender(producer)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", producer.Topic()).Msg("kafka outbox sender enabled")
	}

	tokens, err := pkg.NewTokenManager(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	votes := service.NewVoteService(store, locker, cfg.Bot.VoteTimeout)
	settings := service.NewSettingsService(store)
	counter := service.NewCounterService(store, votes, settings,
		service.NewReplyLimiter(cfg.Bot.ReplyRate, cfg.Bot.ReplyBurst))
	commands := service.NewCommandService(store, votes)

	pool := service.NewWorkerPool(cfg.Bot.Workers, cfg.Bot.Queue)
	pool.Start(ctx)
	defer pool.Close()

	sessions := ranking.NewSessionManager(cfg.Bot.PageTimeout, func(id string) {
		log.Debug().Str("session_id", id).Msg("page session expired")
	})
	defer sessions.Close()

	relayer := service.NewOutboxRelayer(store.Outbox, sender, service.OutboxOptions{
		BatchSize: cfg.Outbox.BatchSize,
		Interval:  cfg.Outbox.Interval,
		MaxRetry:  cfg.Outbox.MaxRetry,
	})

	srv := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: router.InitRouter(router.Deps{
			Tokens:   tokens,
			Counter:  counter,
			Commands: commands,
			Votes:    votes,
			Settings: settings,
			Pool:     pool,
			Sessions: sessions,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		relayer.Run(gctx)
		return nil
	})
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending schema migrations and exit",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if cfg.MySQL.DSN == "" {
				return errors.New("mysql.dsn is required")
			}
			store, err := mysql.OpenMySQL(cfg.MySQL.DSN, mysql.Options{})
			if err != nil {
				return err
			}
			defer store.Close()
			n, err := mysql.Migrate(c.Context, store.DB())
			if err != nil {
				return err
			}
			v, err := mysql.SchemaVersion(c.Context, store.DB())
			if err != nil {
				return err
			}
			fmt.Printf("applied %d migration(s), schema version %d\n", n, v)
			return nil
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:      "token",
		Usage:     "Issue a gateway bearer token for a bot client",
		ArgsUsage: "<client-id>",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "ttl",
				Usage: "Token lifetime (defaults to auth.token_ttl)",
			},
		},
		Action: func(c *cli.Context) error {
			clientID := c.Args().First()
			if clientID == "" {
				return errors.New("client id is required")
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			ttl := cfg.Auth.TokenTTL
			if c.IsSet("ttl") {
				ttl = c.Duration("ttl")
			}
			tm, err := pkg.NewTokenManager(cfg.Auth.Secret, ttl)
			if err != nil {
				return err
			}
			tok, exp, err := tm.Generate(clientID)
			if err != nil {
				return err
			}
			fmt.Println(tok)
			log.Info().Str("client_id", clientID).Time("expires_at", exp).Msg("token issued")
			return nil
		},
	}
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write a sample configuration file",
				Action: func(c *cli.Context) error {
					path := c.String("config")
					if err := config.InitConfig(path); err != nil {
						return err
					}
					fmt.Printf("configuration written to %s\n", path)
					return nil
				},
			},
		},
	}
}

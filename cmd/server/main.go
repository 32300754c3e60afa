package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/rupamthxt/symptomrank/internal/classifier"
	"github.com/rupamthxt/symptomrank/internal/cluster"
	"github.com/rupamthxt/symptomrank/internal/config"
	"github.com/rupamthxt/symptomrank/internal/history"
	predictHttp "github.com/rupamthxt/symptomrank/internal/http"
	"github.com/rupamthxt/symptomrank/internal/logging"
	"github.com/rupamthxt/symptomrank/internal/predict"
	"github.com/rupamthxt/symptomrank/internal/symptom"
)

func main() {
	app := &cli.App{
		Name:  "symptomrank",
		Usage: "serve disease predictions from observed symptoms",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, EnvVars: []string{"SYMPTOMRANK_CONFIG"}, Usage: "path to a YAML config file"},
			&cli.StringFlag{Name: "addr", Usage: "listen address"},
			&cli.StringFlag{Name: "model", Usage: "model file (.json parameters or .gob snapshot)"},
			&cli.StringFlag{Name: "model-url", Usage: "base URL of a remote model server"},
			&cli.StringFlag{Name: "vocabulary", Usage: "symptom list, one per line"},
			&cli.BoolFlag{Name: "history", Usage: "record predictions"},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:      "convert-model",
				Usage:     "convert exported JSON model parameters into a gob snapshot",
				ArgsUsage: "<in.json> <out.gob>",
				Action:    convertModel,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cfg, err
	}
	if c.IsSet("addr") {
		cfg.Server.Addr = c.String("addr")
	}
	if c.IsSet("model") {
		cfg.Model.Path = c.String("model")
		cfg.Model.RemoteURL = ""
	}
	if c.IsSet("model-url") {
		cfg.Model.RemoteURL = c.String("model-url")
	}
	if c.IsSet("vocabulary") {
		cfg.Vocabulary.Path = c.String("vocabulary")
	}
	if c.IsSet("history") {
		cfg.History.Enabled = c.Bool("history")
	}
	return cfg, cfg.Validate()
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	if err != nil {
		return err
	}

	vocab := symptom.DefaultVocabulary()
	if cfg.Vocabulary.Path != "" {
		if vocab, err = symptom.LoadVocabulary(cfg.Vocabulary.Path); err != nil {
			return err
		}
	}

	svc := predict.New(vocab, logger)
	reload := func(ctx context.Context) error {
		cl, version, err := loadClassifier(ctx, cfg.Model)
		if err != nil {
			return err
		}
		return svc.Load(cl, version)
	}

	// a missing model is not fatal: predictions answer 503 until a reload succeeds
	if err := reload(c.Context); err != nil {
		logger.WithError(err).Error("classifier not loaded, predictions unavailable")
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	opts := []predictHttp.Option{predictHttp.WithReload(reload)}

	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		var (
			recorder history.Recorder = store
			reader   history.Reader   = store
		)

		if cfg.Cluster.Enabled {
			node, err := startRaft(cfg.Cluster, store, logger)
			if err != nil {
				return err
			}
			defer node.Close()

			recorder, reader = node, node
			opts = append(opts, predictHttp.WithJoin(node.Join))
			g.Go(func() error {
				node.WatchState(ctx, 5*time.Second)
				return nil
			})
		}
		opts = append(opts, predictHttp.WithHistory(recorder, reader, cfg.History.MaxList))
	}

	app := predictHttp.NewApp(predictHttp.NewHandler(svc, logger, opts...), cfg.Server.AllowOrigins)

	g.Go(func() error {
		logger.WithFields(logrus.Fields{
			"addr":     cfg.Server.Addr,
			"symptoms": vocab.Len(),
			"history":  cfg.History.Enabled,
		}).Info("symptomrank listening")
		return app.Listen(cfg.Server.Addr)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return app.ShutdownWithContext(shutdownCtx)
	})

	return g.Wait()
}

func loadClassifier(ctx context.Context, cfg config.ModelConfig) (classifier.Classifier, string, error) {
	var (
		cl      classifier.Classifier
		version string
	)

	if cfg.RemoteURL != "" {
		remote, err := classifier.NewRemote(ctx, cfg.RemoteURL, cfg.Timeout)
		if err != nil {
			return nil, "", fmt.Errorf("connect to model server: %w", err)
		}
		cl, version = remote, cfg.RemoteURL
	} else {
		info, err := os.Stat(cfg.Path)
		if err != nil {
			return nil, "", fmt.Errorf("model file: %w", err)
		}
		model, err := classifier.LoadModel(cfg.Path)
		if err != nil {
			return nil, "", err
		}
		cl = model
		version = fmt.Sprintf("%s@%s", filepath.Base(cfg.Path), info.ModTime().UTC().Format(time.RFC3339))
	}

	if cfg.Serialize {
		cl = classifier.NewSerialized(cl)
	}
	return cl, version, nil
}

func startRaft(cfg config.ClusterConfig, store *history.Store, logger *logrus.Logger) (*cluster.RaftNode, error) {
	node, err := cluster.NewRaftNode(cluster.Config{
		NodeID:   cfg.NodeID,
		BindAddr: cfg.RaftAddr,
		DataDir:  cfg.DataDir,
	}, store, logging.Raft(logger))
	if err != nil {
		return nil, err
	}

	if cfg.Bootstrap {
		if err := node.Bootstrap(); err != nil {
			node.Close()
			return nil, fmt.Errorf("bootstrap raft: %w", err)
		}
	}
	logger.WithFields(logrus.Fields{"node_id": cfg.NodeID, "raft_addr": node.Addr()}).Info("history replica started")
	return node, nil
}

func convertModel(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: symptomrank convert-model <in.json> <out.gob>", 2)
	}

	model, err := classifier.LoadModel(c.Args().Get(0))
	if err != nil {
		return err
	}
	if err := classifier.SaveModel(c.Args().Get(1), model); err != nil {
		return err
	}
	fmt.Printf("wrote %s: %d classes, %d features\n", c.Args().Get(1), len(model.Classes()), model.NumFeatures())
	return nil
}

// Command nasdecode walks a directory of GSMTAP-over-PCAP-NG capture files,
// decodes every NAS PDU it finds, and writes one pretty-printed JSON file
// per capture to the configured output directory. With --serve it also
// starts a live-tail web server and, if configured, persists every decoded
// message to PostgreSQL.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/protei/nasdecode/internal/logger"
	"github.com/protei/nasdecode/pkg/capture"
	"github.com/protei/nasdecode/pkg/config"
	"github.com/protei/nasdecode/pkg/decoder"
	"github.com/protei/nasdecode/pkg/decoder/nasadapter"
	"github.com/protei/nasdecode/pkg/nas"
	"github.com/protei/nasdecode/pkg/output"
	"github.com/protei/nasdecode/pkg/storage"
	"github.com/protei/nasdecode/pkg/web"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML configuration file")
	serve := flag.Bool("serve", false, "also start the live-tail web server alongside the batch run")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nasdecode: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Path:       cfg.Logging.Path,
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "nasdecode: initializing logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.Get().WithComponent("nasdecode")

	var store *storage.DB
	if *serve && cfg.Serve.Enabled && cfg.Serve.Storage.Enabled {
		store, err = storage.New(&storage.Config{
			Host:     cfg.Serve.Storage.Host,
			Port:     cfg.Serve.Storage.Port,
			Database: cfg.Serve.Storage.Database,
			User:     cfg.Serve.Storage.User,
			Password: cfg.Serve.Storage.Password,
			SSLMode:  cfg.Serve.Storage.SSLMode,
			MaxConns: 10,
			MaxIdle:  5,
		})
		if err != nil {
			log.Fatal("failed to connect to storage", err)
		}
		defer store.Close()
	}

	var webServer *web.Server
	if *serve && cfg.Serve.Enabled {
		webServer = startWebServer(cfg, *configPath, store, log)
	}

	if err := os.MkdirAll(cfg.Capture.OutputDir, 0o755); err != nil {
		log.Fatal("failed to create output directory", err)
	}

	proc := newNASProcessor(cfg.Capture.OutputDir, store, webServer, log)
	engine := capture.NewEngine(capture.Config{
		InputDir: cfg.Capture.InputDir,
		Pattern:  cfg.Capture.Pattern,
		Workers:  cfg.Capture.Workers,
	})
	engine.RegisterProcessor(proc)

	log.Info("starting capture run", "input_dir", cfg.Capture.InputDir, "output_dir", cfg.Capture.OutputDir)
	if err := engine.Run(); err != nil {
		log.Error("capture run failed", err)
	}

	if err := proc.flush(); err != nil {
		log.Error("failed to flush batch output", err)
	}
	log.Info("capture run complete")

	if webServer != nil {
		waitForShutdown(webServer, log)
	}
}

// nasProcessor decodes each captured NAS PDU and accumulates results into
// one output.Batch per source file, since capture.Engine processes files
// concurrently but the JSON output is written one file at a time.
type nasProcessor struct {
	mu        sync.Mutex
	batches   map[string]*output.Batch
	outputDir string
	store     *storage.DB
	webServer *web.Server
	log       *logger.Logger
	registry  *decoder.DecoderRegistry
}

func newNASProcessor(outputDir string, store *storage.DB, webServer *web.Server, log *logger.Logger) *nasProcessor {
	registry := decoder.NewRegistry()
	registry.Register(nasadapter.New())
	return &nasProcessor{
		batches:   make(map[string]*output.Batch),
		outputDir: outputDir,
		store:     store,
		webServer: webServer,
		log:       log,
		registry:  registry,
	}
}

func (p *nasProcessor) Process(pkt *capture.Packet) error {
	batch := p.batchFor(pkt.SourceFile)

	// The generic registry view exists so this pipeline can sit alongside
	// decoders for other protocols sharing the same Decoder contract; it is
	// logged for observability but nas.Parse below remains the source of
	// truth for classification and storage.
	if nasDecoder, ok := p.registry.Get(decoder.ProtocolNAS4G); ok && nasDecoder.CanDecode(pkt.NASPDU) {
		if generic, err := p.registry.Decode(pkt.NASPDU, &decoder.Metadata{CaptureTime: pkt.Timestamp}); err == nil {
			p.log.Debug("generic decoder view", "message_name", generic.MessageName, "decode_time_us", generic.DecodeTimeUs)
		}
	}

	msg, err := nas.Parse(pkt.NASPDU)
	if err != nil {
		batch.RecordError(pkt.Index, err)
		if p.store != nil {
			if storeErr := p.store.StoreError(pkt.SourceFile, pkt.Index, err); storeErr != nil {
				p.log.Warn("failed to record decode error", "error", storeErr.Error())
			}
		}
		return nil
	}

	batch.RecordSuccess(pkt.Index, msg)
	if p.store != nil {
		if storeErr := p.store.StoreMessage(pkt.SourceFile, pkt.Index, msg); storeErr != nil {
			p.log.Warn("failed to store message", "error", storeErr.Error())
		}
	}
	if p.webServer != nil {
		p.webServer.BroadcastMessage(pkt.SourceFile, pkt.Index, msg)
	}
	return nil
}

func (p *nasProcessor) batchFor(sourceFile string) *output.Batch {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, ok := p.batches[sourceFile]
	if !ok {
		b = output.NewBatch(sourceFile)
		p.batches[sourceFile] = b
	}
	return b
}

// flush writes every accumulated batch to outputDir, one JSON file per
// source capture, once the capture run has finished.
func (p *nasProcessor) flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for sourceFile, batch := range p.batches {
		base := filepath.Base(sourceFile)
		ext := filepath.Ext(base)
		outName := strings.TrimSuffix(base, ext) + ".json"
		outPath := filepath.Join(p.outputDir, outName)
		if err := batch.WriteFile(outPath); err != nil {
			return fmt.Errorf("writing %s: %w", outPath, err)
		}
	}
	return nil
}

func startWebServer(cfg *config.Config, configPath string, store *storage.DB, log *logger.Logger) *web.Server {
	authSvc := newAuthAdapter(cfg.Serve.JWTSecret, time.Duration(cfg.Serve.TokenExpiryMinutes)*time.Minute, cfg.Serve.Users)

	configMgr, err := config.NewManager(configPath, nil)
	if err != nil {
		log.Fatal("failed to start configuration manager", err)
	}

	var msgStore web.MessageStore
	if store != nil {
		msgStore = storeAdapter{store}
	}

	srv := web.New(web.Config{
		Port:          cfg.Serve.WebPort,
		AuthService:   authSvc,
		ConfigManager: configMgr,
		Store:         msgStore,
		Logger:        logger.Get().Zerolog(),
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Error("web server stopped", err)
		}
	}()
	return srv
}

func waitForShutdown(srv *web.Server, log *logger.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down web server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		log.Error("web server shutdown error", err)
	}
}

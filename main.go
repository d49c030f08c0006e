package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/zjx20/arabic-analyzer/analyzer"
	"github.com/zjx20/arabic-analyzer/config"
	"github.com/zjx20/arabic-analyzer/metrics"

	log "github.com/sirupsen/logrus"
)

// in-flight requests get this long to finish once a signal arrives
const shutdownTimeout = 10 * time.Second

func init() {
	log.SetLevel(config.GetLogLevel())
	log.SetOutput(os.Stdout)
	log.SetFormatter(&log.TextFormatter{
		DisableColors:   runtime.GOOS == "windows",
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	config.AddConfigChangeCallback(func() {
		log.SetLevel(config.GetLogLevel())
	})
}

func main() {
	if err := config.Init(); err != nil {
		log.Fatalln(err)
	}
	cfg := config.ReadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := config.Watch(ctx); err != nil {
		log.Warnf("config hot reload disabled: %s", err)
	}

	handler, err := analyzer.NewServer(&cfg, metrics.NewCollector(nil))
	if err != nil {
		log.Fatalln(err)
	}

	l, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		log.Fatalln(err)
	}
	log.Infof("Using %d API keys for fallback, transport %s", len(cfg.APIKeys), cfg.Transport)
	log.Infof("Server listening at %s", l.Addr())

	if err = serve(ctx, l, handler, shutdownTimeout); err != nil {
		log.Fatalln(err)
	}
}

// serve runs until ctx is done, then gives in-flight requests grace to
// finish before returning.
func serve(ctx context.Context, l net.Listener, handler http.Handler, grace time.Duration) error {
	srv := &http.Server{Handler: handler}
	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		log.Infoln("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		done <- srv.Shutdown(sctx)
	}()
	if err := srv.Serve(l); err != http.ErrServerClosed {
		return err
	}
	return <-done
}

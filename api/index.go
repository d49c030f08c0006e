// Package api exposes the service as a single serverless function.
package api

import (
	"net/http"
	"sync"

	"github.com/zjx20/arabic-analyzer/analyzer"
	"github.com/zjx20/arabic-analyzer/config"
	"github.com/zjx20/arabic-analyzer/util"

	log "github.com/sirupsen/logrus"
)

var (
	once    sync.Once
	handler http.Handler
	initErr error
)

func setup() {
	if initErr = config.Init(); initErr != nil {
		return
	}
	cfg := config.ReadConfig()
	log.SetLevel(cfg.Level())
	// no /metrics scrape target in a serverless deployment
	handler, initErr = analyzer.NewServer(&cfg, nil)
}

func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(setup)
	if initErr != nil {
		log.Errorf("service not configured: %s", initErr)
		util.WriteError(w, r, http.StatusInternalServerError, "service not configured")
		return
	}
	handler.ServeHTTP(w, r)
}

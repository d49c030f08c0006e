package analyzer

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	m "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/zjx20/arabic-analyzer/config"
	"github.com/zjx20/arabic-analyzer/gemini"
	"github.com/zjx20/arabic-analyzer/metrics"
	"github.com/zjx20/arabic-analyzer/util/httpclient"
	"github.com/zjx20/arabic-analyzer/util/middleware"
)

type RouterOptions struct {
	AllowedOrigins []string
	// Metrics may be nil, in which case /metrics answers 404.
	Metrics *metrics.Collector
}

func NewRouter(h *Handler, opts RouterOptions) chi.Router {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(m.RequestID)
	r.Use(m.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(opts.Metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Post("/ocr", h.OCR)
	r.Post("/analyze_arabic", h.AnalyzeArabic)
	r.Post("/ocr_and_analyze", h.OCRAndAnalyze)
	r.Post("/generate_arabic", h.GenerateArabic)
	r.Post("/generate_and_analyze", h.GenerateAndAnalyze)
	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	return r
}

// NewCaller returns the upstream transport selected by cfg.Transport.
func NewCaller(cfg *config.Config) (gemini.Caller, error) {
	switch cfg.Transport {
	case config.TransportSDK:
		return &gemini.SDKCaller{}, nil
	case config.TransportREST, "":
		httpc, err := httpclient.New(0, cfg.PingInterval)
		if err != nil {
			return nil, err
		}
		return gemini.NewRESTCaller(httpc), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}

// NewServer wires the whole service for cfg: upstream client with
// credential fallback, handlers, middleware and metrics.
func NewServer(cfg *config.Config, collector *metrics.Collector) (http.Handler, error) {
	caller, err := NewCaller(cfg)
	if err != nil {
		return nil, err
	}
	client := gemini.NewClient(caller, cfg.APIKeys,
		gemini.WithAttemptTimeout(cfg.RequestTimeout),
		gemini.WithAttemptHook(collector.ObserveAttempt),
	)
	h := NewHandler(client, cfg.VisionEndpoint, cfg.TextEndpoint)
	return NewRouter(h, RouterOptions{
		AllowedOrigins: cfg.AllowedOrigins,
		Metrics:        collector,
	}), nil
}

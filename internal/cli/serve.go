package cli

import (
	"log/slog"
	"net/http"

	chathttp "github.com/aretw0/chatdialog/pkg/adapters/http"
	"github.com/aretw0/chatdialog/pkg/adapters/memory"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Simulator is the HTTP chat simulator wired from configuration.
type Simulator struct {
	App     *App
	View    *memory.Transport
	Streams *chathttp.StreamManager
	Handler http.Handler
}

// NewSimulator builds the simulator API and, when enabled, the /metrics endpoint.
func NewSimulator(cfg Config, logger *slog.Logger, version string) (*Simulator, error) {
	streams := chathttp.NewStreamManager(logger)
	view := memory.NewTransport(memory.WithOnChange(streams.Publish))

	var (
		registerer prometheus.Registerer
		gatherer   *prometheus.Registry
	)
	if cfg.HTTP.Metrics {
		gatherer = prometheus.NewRegistry()
		gatherer.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		registerer = gatherer
	}

	app, err := NewApp(cfg, view, logger, registerer)
	if err != nil {
		return nil, err
	}

	api := chathttp.NewHandler(app.Engine, view,
		chathttp.WithStreams(streams),
		chathttp.WithBotID(cfg.HTTP.BotID),
		chathttp.WithVersion(version),
		chathttp.WithLogger(logger),
	)

	r := chi.NewRouter()
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	r.Mount("/", api)

	return &Simulator{App: app, View: view, Streams: streams, Handler: r}, nil
}

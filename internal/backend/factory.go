package backend

import (
	"context"
	"fmt"
	"net/http"

	"harcama/internal/api"
	"harcama/internal/api/memory"
	"harcama/internal/log"
	"harcama/internal/metrics"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger  *log.Logger
	metrics *metrics.Metrics
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger, m *metrics.Metrics) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger:  logger.WithComponent(log.ComponentBackend),
		metrics: m,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case RESTBackend:
		return f.createRESTBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(ctx)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createRESTBackend(ctx context.Context, config Config) (*BackendResult, error) {
	httpClient := &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
	client := api.NewClient(config.APIBaseURL, httpClient,
		api.WithLogger(f.logger),
		api.WithMetrics(f.metrics))

	f.logger.InfoContext(ctx, "Initialized REST backend", "api_base_url", config.APIBaseURL)

	return &BackendResult{
		Backend: client,
		Cleanup: func() error {
			httpClient.CloseIdleConnections()
			return nil
		},
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context) (*BackendResult, error) {
	f.logger.InfoContext(ctx, "Initialized memory backend; data is lost on exit")
	return &BackendResult{Backend: memory.New()}, nil
}

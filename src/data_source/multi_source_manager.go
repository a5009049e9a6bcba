package datasource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"stock-predictor/src/helpers"
	"stock-predictor/src/interfaces"
	"stock-predictor/src/logger"
	"stock-predictor/src/models"
)

// MultiSourceManager serves history from the first source that answers.
// Sources are tried in registration order; an invalid ticker from one source
// is final since the next would only repeat the lookup.
type MultiSourceManager struct {
	Sources    []interfaces.IMarketData
	MaxRetries int
	RetryDelay time.Duration
	Logger     *logger.Logger
	mu         sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewMultiSourceManager(sources []interfaces.IMarketData, maxRetries int, log *logger.Logger) *MultiSourceManager {
	return &MultiSourceManager{
		Sources:    sources,
		MaxRetries: maxRetries,
		RetryDelay: 500 * time.Millisecond,
		Logger:     log,
	}
}

// -----------------------------------------------------------------------------

func (m *MultiSourceManager) Name() string {
	return "multi"
}

// -----------------------------------------------------------------------------

// AddSource appends a source to the failover order.
func (m *MultiSourceManager) AddSource(source interfaces.IMarketData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.Sources {
		if s.Name() == source.Name() {
			return fmt.Errorf("source %s already exists", source.Name())
		}
	}
	m.Sources = append(m.Sources, source)
	m.Logger.Info("Added source: %s", source.Name())
	return nil
}

// -----------------------------------------------------------------------------

// SourceNames lists the sources in failover order.
func (m *MultiSourceManager) SourceNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, len(m.Sources))
	for i, s := range m.Sources {
		names[i] = s.Name()
	}
	return names
}

// -----------------------------------------------------------------------------

func (m *MultiSourceManager) FetchHistory(ctx context.Context, ticker, period string) ([]models.MBar, error) {
	m.mu.RLock()
	sources := append([]interfaces.IMarketData(nil), m.Sources...)
	m.mu.RUnlock()

	if len(sources) == 0 {
		return nil, &helpers.ConfigurationError{StockPredictorError: helpers.StockPredictorError{Message: "no market data source configured"}}
	}

	var errs []error
	for _, src := range sources {
		bars, err := helpers.RetryWithBackoff(ctx, m.Logger, src.Name()+" history "+ticker, m.MaxRetries, m.RetryDelay,
			func() ([]models.MBar, error) { return src.FetchHistory(ctx, ticker, period) })
		if err == nil {
			return bars, nil
		}

		if helpers.IsInvalidTicker(err) || helpers.IsValidation(err) || ctx.Err() != nil {
			return nil, err
		}
		m.Logger.Warning("Source %s failed for %s: %v", src.Name(), ticker, err)
		errs = append(errs, err)
	}

	if len(errs) == 1 {
		return nil, errs[0]
	}
	return nil, helpers.NewUpstreamError("all market data sources failed", errors.Join(errs...))
}

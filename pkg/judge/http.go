package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	judgeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kidlearn",
		Subsystem: "judge",
		Name:      "run_duration_seconds",
		Help:      "Duration of judge requests",
		Buckets:   prometheus.DefBuckets,
	}, []string{"language"})

	judgeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kidlearn",
		Subsystem: "judge",
		Name:      "run_failures_total",
		Help:      "Number of judge requests that failed",
	}, []string{"language"})
)

// HTTPConfig defines configuration options for the HTTP judge client.
type HTTPConfig struct {
	BaseURL string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// HTTPJudge implements Judge against a remote judging service.
type HTTPJudge struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewHTTPJudge builds a judge client using the provided configuration.
func NewHTTPJudge(cfg HTTPConfig) (*HTTPJudge, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("judge base url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &HTTPJudge{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  cfg.Logger.With().Str("component", "judge_client").Logger(),
	}, nil
}

type runResponse struct {
	Results []TestCaseResult `json:"results"`
}

// Run posts the submission to the judge's /run endpoint and decodes the
// per-case verdicts.
func (j *HTTPJudge) Run(ctx context.Context, req Request) ([]TestCaseResult, error) {
	started := time.Now()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode judge request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, j.baseURL+"/run", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build judge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := j.client.Do(httpReq)
	if err != nil {
		judgeFailures.WithLabelValues(req.Language).Inc()
		return nil, fmt.Errorf("call judge: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		judgeFailures.WithLabelValues(req.Language).Inc()
		return nil, fmt.Errorf("judge returned status %d", resp.StatusCode)
	}

	var decoded runResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		judgeFailures.WithLabelValues(req.Language).Inc()
		return nil, fmt.Errorf("decode judge response: %w", err)
	}

	judgeDuration.WithLabelValues(req.Language).Observe(time.Since(started).Seconds())
	j.logger.Debug().
		Str("language", req.Language).
		Int("test_cases", len(req.TestCases)).
		Dur("elapsed", time.Since(started)).
		Msg("judge run completed")

	return decoded.Results, nil
}

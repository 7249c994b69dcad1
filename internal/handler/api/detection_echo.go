package api

import (
	"time"

	models "PolyWatch/internal/domain/models"
	domrepo "PolyWatch/internal/domain/repository"
	"PolyWatch/internal/service/ratelimit"
	"PolyWatch/internal/services/evaluate"
	"PolyWatch/internal/usecase"
	xhttp "PolyWatch/pkg/http"
	xlogger "PolyWatch/pkg/logger"
	"PolyWatch/pkg/util"

	"github.com/labstack/echo/v4"
)

// DetectionEchoHandler exposes the detection pipeline over HTTP.
type DetectionEchoHandler struct {
	logger     *xlogger.Logger
	pipeline   *usecase.Pipeline
	tradeStore domrepo.TradeStorage
	alertStore domrepo.AlertStorage
	scores     domrepo.ScoreCache
	limiter    *ratelimit.Limiter
	runRate    float64 // runs per minute for the run/backtest endpoints
}

func NewDetectionEchoHandler(
	logger *xlogger.Logger,
	pipeline *usecase.Pipeline,
	tradeStore domrepo.TradeStorage,
	alertStore domrepo.AlertStorage,
	scores domrepo.ScoreCache,
	runRatePerMinute float64,
) *DetectionEchoHandler {
	if runRatePerMinute <= 0 {
		runRatePerMinute = 6
	}
	return &DetectionEchoHandler{
		logger:     logger,
		pipeline:   pipeline,
		tradeStore: tradeStore,
		alertStore: alertStore,
		scores:     scores,
		limiter:    ratelimit.New(),
		runRate:    runRatePerMinute,
	}
}

func (h *DetectionEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/detection")
	g.POST("/run", h.Run)
	g.POST("/backtest", h.Backtest)
	g.POST("/evaluate", h.Evaluate)
	g.GET("/alerts", h.Alerts)
	g.GET("/alerts/history", h.AlertHistory)
	g.GET("/explanations", h.Explanations)
	g.GET("/anomalies", h.Anomalies)
	g.GET("/scores/:entity", h.Score)
	e.GET("/healthz", h.Health)
}

// Run triggers one inference run over the recent trade window.
func (h *DetectionEchoHandler) Run(c echo.Context) error {
	if !h.limiter.Allow("run", h.runRate, h.runRate/60.0) {
		return xhttp.TooManyRequestsResponse(c)
	}
	req := &models.InferenceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	alerts, err := h.pipeline.RunInferenceFiltered(c.Request().Context(), req.Markets)
	if err != nil {
		h.logger.Error("inference run error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, alerts)
}

// Backtest replays a historical window from storage through the scoring path.
func (h *DetectionEchoHandler) Backtest(c echo.Context) error {
	if !h.limiter.Allow("backtest", h.runRate, h.runRate/60.0) {
		return xhttp.TooManyRequestsResponse(c)
	}
	req := &models.BacktestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	now := time.Now()
	from := util.ParseTimeDefault(req.From, now.Add(-24*time.Hour))
	to := util.ParseTimeDefault(req.To, now)

	trades, err := h.tradeStore.Query(c.Request().Context(), req.Market, from, to, req.Limit)
	if err != nil {
		h.logger.Error("backtest query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	metrics, err := h.pipeline.RunBacktest(c.Request().Context(), trades)
	if err != nil {
		h.logger.Error("backtest run error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, metrics)
}

// Evaluate scores the last run's combined scores against caller ground truth.
func (h *DetectionEchoHandler) Evaluate(c echo.Context) error {
	req := &models.EvaluationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	scores := h.pipeline.LastScores()
	result := evaluate.ClassificationMetrics(scores, req.GroundTruth, req.Threshold)
	return xhttp.SuccessResponse(c, result)
}

// Alerts returns the alerts from the most recent inference run.
func (h *DetectionEchoHandler) Alerts(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.pipeline.LastAlerts())
}

// AlertHistory returns recently persisted alerts.
func (h *DetectionEchoHandler) AlertHistory(c echo.Context) error {
	limit := util.ParseIntDefault(c.QueryParam("limit"), 100)
	alerts, err := h.alertStore.Recent(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("alert history error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, alerts, int64(len(alerts)))
}

// Explanations returns per-entity explanations from the last run.
func (h *DetectionEchoHandler) Explanations(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.pipeline.LastExplanations())
}

// Anomalies returns detector scores from the last run.
func (h *DetectionEchoHandler) Anomalies(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.pipeline.LastAnomalyScores())
}

// Score returns the cached combined score for one entity.
func (h *DetectionEchoHandler) Score(c echo.Context) error {
	entity := c.Param("entity")
	score, ok, err := h.scores.GetScore(c.Request().Context(), entity)
	if err != nil {
		h.logger.Error("score lookup error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"entity_id": entity,
		"score":     score,
		"found":     ok,
	})
}

// Health checks storage reachability.
func (h *DetectionEchoHandler) Health(c echo.Context) error {
	if h.tradeStore != nil {
		if err := h.tradeStore.Health(c.Request().Context()); err != nil {
			return xhttp.AppErrorResponse(c, err)
		}
	}
	return xhttp.SuccessResponse(c, "ok")
}

var _ xhttp.Handler = (*DetectionEchoHandler)(nil)

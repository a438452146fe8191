package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"airline-analytics/internal/models"
	"airline-analytics/internal/services"
	"airline-analytics/pkg/logging"
	"airline-analytics/pkg/metrics"
)

// RequestIDHeader carries the request id in and out.
const RequestIDHeader = "X-Request-ID"

// Query parameters accepted by the aggregated endpoints.
const (
	ParamMetric   = "metric"
	ParamRegion   = "region"
	ParamYear     = "year"
	ParamQuarter  = "quarter"
	ParamCategory = "category"
	ParamRange    = "range"
)

// AnalyticsHandler handles airline analytics API endpoints
type AnalyticsHandler struct {
	analytics *services.AnalyticsService
	health    func(ctx context.Context) error
	logger    *logging.StructuredLogger
	metrics   *metrics.Collector
	version   string
}

// NewAnalyticsHandler creates a new analytics handler. health backs GET /health.
func NewAnalyticsHandler(
	analyticsService *services.AnalyticsService,
	health func(ctx context.Context) error,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
	version string,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: analyticsService,
		health:    health,
		logger:    logger,
		metrics:   metricsCollector,
		version:   version,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Code      int    `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// endpointFunc computes the response body for one request.
type endpointFunc func(r *http.Request) (interface{}, error)

// route describes one GET endpoint for registration and documentation.
type route struct {
	path    string
	summary string
	tag     string
	params  []string
	fn      endpointFunc
}

func (h *AnalyticsHandler) routes() []route {
	return []route{
		{"/api/airlines", "List tracked airlines", "catalog", nil, h.listAirlines},
		{"/api/stock-kpis", "Stock KPIs for every airline with stock data", "catalog", nil, h.allStockKPIs},

		{"/api/airline-data/{id}", "Raw traffic and financial records", "datasets", nil, h.dataset(models.DatasetAirlineData)},
		{"/api/operating-data/{id}", "Raw operating expense records", "datasets", nil, h.dataset(models.DatasetOperatingData)},
		{"/api/operatingdataextended/{id}", "Raw extended operating records", "datasets", nil, h.dataset(models.DatasetOperatingDataExtended)},
		{"/api/balance-sheets/{id}", "Raw balance sheet records", "datasets", nil, h.dataset(models.DatasetBalanceSheets)},
		{"/api/stock-data/{id}", "Raw daily stock records", "datasets", nil, h.dataset(models.DatasetStockData)},

		{"/api/airlines/{id}/traffic/yearly", "Metric summed per year", "traffic", []string{ParamMetric, ParamRegion}, h.trafficYearly},
		{"/api/airlines/{id}/traffic/quarterly", "Metric summed per year and quarter", "traffic", []string{ParamMetric, ParamRegion}, h.trafficQuarterly},
		{"/api/airlines/{id}/traffic/load-factor", "Yearly load factor", "traffic", []string{ParamRegion}, h.loadFactor},
		{"/api/airlines/{id}/traffic/casm-rasm", "Yearly CASM and RASM", "traffic", []string{ParamRegion}, h.casmRASM},
		{"/api/airlines/{id}/traffic/yield", "Yearly average yield", "traffic", []string{ParamRegion}, h.yield},
		{"/api/airlines/{id}/traffic/kpis", "Traffic headline figures", "traffic", []string{ParamRegion, ParamYear}, h.trafficKPIs},

		{"/api/airlines/{id}/operating/kpis", "Fleet and expense headline figures", "operating", []string{ParamYear, ParamCategory}, h.operatingKPIs},
		{"/api/airlines/{id}/operating/expenses/{expense}", "Expense category series", "operating", []string{ParamCategory}, h.expenses},
		{"/api/airlines/{id}/operating/fuel", "Fuel consumption and cost", "operating", []string{ParamCategory}, h.fuel},

		{"/api/airlines/{id}/stock/kpis", "Latest price and trailing returns", "stock", nil, h.stockKPIs},
		{"/api/airlines/{id}/stock/chart", "Price chart for a range", "stock", []string{ParamRange}, h.stockChart},
		{"/api/airlines/{id}/stock/seasonal", "Monthly average price per year", "stock", nil, h.stockSeasonal},
		{"/api/airlines/{id}/correlations", "Operating metrics against stock price", "stock", nil, h.correlations},

		{"/api/airlines/{id}/financial/kpis", "Margins and balance sheet ratios", "financial", []string{ParamYear, ParamQuarter}, h.financialKPIs},
		{"/api/airlines/{id}/financial/series", "Yearly income and balance sheet series", "financial", nil, h.financialSeries},
		{"/api/airlines/{id}/financial/income-flow", "Income statement flow", "financial", []string{ParamYear}, h.incomeFlow},
	}
}

// RegisterRoutes registers all analytics API routes
func (h *AnalyticsHandler) RegisterRoutes(router *mux.Router) {
	router.Use(h.requestContext)

	for _, rt := range h.routes() {
		router.HandleFunc(rt.path, h.handle(rt.path, rt.fn)).Methods(http.MethodGet)
	}

	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc(DocsPath, h.SwaggerUI).Methods(http.MethodGet)
	router.HandleFunc(OpenAPIPath, h.OpenAPISpec).Methods(http.MethodGet)
}

// requestContext attaches a request id and, when the path names one, the
// airline id to the request context.
func (h *AnalyticsHandler) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		ctx := logging.WithRequestID(r.Context(), requestID)
		if id := mux.Vars(r)["id"]; id != "" {
			ctx = logging.WithAirlineID(ctx, id)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// handle wraps fn with timing, metrics and error mapping.
func (h *AnalyticsHandler) handle(endpoint string, fn endpointFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()
		defer func() {
			h.metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
		}()

		body, err := fn(r)
		if err != nil {
			h.sendFailure(w, r, endpoint, err)
			return
		}

		h.metrics.RecordAPIRequest(endpoint, r.Method, "200")
		h.sendJSON(w, body, http.StatusOK)
	}
}

func (h *AnalyticsHandler) sendFailure(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	ctx := r.Context()

	var (
		notFound   *models.NotFoundError
		validation *models.ValidationError
		fetch      *services.FetchError
	)
	switch {
	case errors.As(err, &notFound):
		h.metrics.RecordAPIError("not_found", endpoint)
		h.sendError(w, r, endpoint, err.Error(), http.StatusNotFound)
	case errors.As(err, &validation):
		h.metrics.RecordAPIError("validation_error", endpoint)
		h.sendError(w, r, endpoint, err.Error(), http.StatusBadRequest)
	case errors.Is(err, context.Canceled):
		h.metrics.RecordAPIError("canceled", endpoint)
	case errors.As(err, &fetch):
		h.logger.Error(ctx, "[API_FETCH_ERROR] Failed to fetch data", logging.Fields{
			"endpoint": endpoint,
			"dataset":  string(fetch.Dataset),
		}, fetch.Err)
		h.metrics.RecordAPIError("repository_error", endpoint)
		h.sendError(w, r, endpoint, fetch.Error(), http.StatusInternalServerError)
	default:
		h.logger.Error(ctx, "[API_INTERNAL_ERROR] Request failed", logging.Fields{
			"endpoint": endpoint,
		}, err)
		h.metrics.RecordAPIError("internal_error", endpoint)
		h.sendError(w, r, endpoint, "internal server error", http.StatusInternalServerError)
	}
}

func (h *AnalyticsHandler) listAirlines(*http.Request) (interface{}, error) {
	return h.analytics.Airlines(), nil
}

func (h *AnalyticsHandler) allStockKPIs(r *http.Request) (interface{}, error) {
	return h.analytics.AllStockKPIs(r.Context())
}

func (h *AnalyticsHandler) dataset(dataset models.Dataset) endpointFunc {
	return func(r *http.Request) (interface{}, error) {
		return h.analytics.Dataset(r.Context(), dataset, airlineID(r))
	}
}

func (h *AnalyticsHandler) trafficYearly(r *http.Request) (interface{}, error) {
	return h.analytics.YearlySeries(r.Context(), airlineID(r), r.URL.Query().Get(ParamMetric), query(r, ParamRegion))
}

func (h *AnalyticsHandler) trafficQuarterly(r *http.Request) (interface{}, error) {
	return h.analytics.QuarterlySeries(r.Context(), airlineID(r), r.URL.Query().Get(ParamMetric), query(r, ParamRegion))
}

func (h *AnalyticsHandler) loadFactor(r *http.Request) (interface{}, error) {
	return h.analytics.LoadFactor(r.Context(), airlineID(r), query(r, ParamRegion))
}

func (h *AnalyticsHandler) casmRASM(r *http.Request) (interface{}, error) {
	return h.analytics.CASMvsRASM(r.Context(), airlineID(r), query(r, ParamRegion))
}

func (h *AnalyticsHandler) yield(r *http.Request) (interface{}, error) {
	return h.analytics.Yield(r.Context(), airlineID(r), query(r, ParamRegion))
}

func (h *AnalyticsHandler) trafficKPIs(r *http.Request) (interface{}, error) {
	return h.analytics.TrafficKPIs(r.Context(), airlineID(r), query(r, ParamRegion), query(r, ParamYear))
}

func (h *AnalyticsHandler) operatingKPIs(r *http.Request) (interface{}, error) {
	return h.analytics.OperatingKPIs(r.Context(), airlineID(r), query(r, ParamYear), query(r, ParamCategory))
}

func (h *AnalyticsHandler) expenses(r *http.Request) (interface{}, error) {
	return h.analytics.Expenses(r.Context(), airlineID(r), mux.Vars(r)["expense"], query(r, ParamCategory))
}

func (h *AnalyticsHandler) fuel(r *http.Request) (interface{}, error) {
	return h.analytics.Fuel(r.Context(), airlineID(r), query(r, ParamCategory))
}

func (h *AnalyticsHandler) stockKPIs(r *http.Request) (interface{}, error) {
	return h.analytics.StockKPIs(r.Context(), airlineID(r))
}

func (h *AnalyticsHandler) stockChart(r *http.Request) (interface{}, error) {
	rangeKey := r.URL.Query().Get(ParamRange)
	if rangeKey == "" {
		rangeKey = "1Y"
	}
	return h.analytics.StockChart(r.Context(), airlineID(r), rangeKey)
}

func (h *AnalyticsHandler) stockSeasonal(r *http.Request) (interface{}, error) {
	return h.analytics.SeasonalStock(r.Context(), airlineID(r))
}

func (h *AnalyticsHandler) correlations(r *http.Request) (interface{}, error) {
	return h.analytics.Correlations(r.Context(), airlineID(r))
}

func (h *AnalyticsHandler) financialKPIs(r *http.Request) (interface{}, error) {
	return h.analytics.FinancialKPIs(r.Context(), airlineID(r), query(r, ParamYear), query(r, ParamQuarter))
}

func (h *AnalyticsHandler) financialSeries(r *http.Request) (interface{}, error) {
	return h.analytics.FinancialSeries(r.Context(), airlineID(r))
}

func (h *AnalyticsHandler) incomeFlow(r *http.Request) (interface{}, error) {
	return h.analytics.IncomeFlow(r.Context(), airlineID(r), query(r, ParamYear))
}

// HealthCheck handles GET /health
func (h *AnalyticsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"version":   h.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	code := http.StatusOK

	if h.health != nil {
		if err := h.health(ctx); err != nil {
			h.logger.Warn(ctx, "[HEALTH_CHECK_FAILED] Dependency unhealthy", logging.Fields{
				"error": err.Error(),
			})
			status["status"] = "unhealthy"
			code = http.StatusServiceUnavailable
		}
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, code)
}

// sendJSON sends a JSON response
func (h *AnalyticsHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn(context.Background(), "[API_ENCODE_WARNING] Failed to write response", logging.Fields{
			"error": err.Error(),
		})
	}
}

// sendError sends an error response
func (h *AnalyticsHandler) sendError(w http.ResponseWriter, r *http.Request, endpoint, message string, statusCode int) {
	h.metrics.RecordAPIRequest(endpoint, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:     http.StatusText(statusCode),
		Message:   message,
		Code:      statusCode,
		RequestID: logging.RequestIDFromContext(r.Context()),
	}

	h.sendJSON(w, response, statusCode)
}

func airlineID(r *http.Request) string {
	return mux.Vars(r)["id"]
}

// query returns the named parameter, or All when it is absent.
func query(r *http.Request, name string) string {
	if v := r.URL.Query().Get(name); v != "" {
		return v
	}
	return models.All
}

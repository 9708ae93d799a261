package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/BarkinBalci/customer-scoring-engine/docs"
	"github.com/BarkinBalci/customer-scoring-engine/internal/domain"
	"github.com/BarkinBalci/customer-scoring-engine/internal/dto"
	"github.com/BarkinBalci/customer-scoring-engine/internal/service"
)

type Handler struct {
	ingestService service.IngestServicer
	engineService service.EngineServicer
	adminKey      string
	router        *gin.Engine
	log           *zap.Logger
}

func NewHandler(ingestService service.IngestServicer, engineService service.EngineServicer, adminKey string, log *zap.Logger) *Handler {
	h := &Handler{
		ingestService: ingestService,
		engineService: engineService,
		adminKey:      adminKey,
		router:        gin.Default(),
		log:           log,
	}

	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/health", h.healthCheck)
	h.router.POST("/events", h.publishEvent)
	h.router.POST("/events/bulk", h.publishEventsBulk)
	h.router.POST("/touchpoints", h.publishTouchpoint)
	h.router.POST("/conversions", h.publishConversion)
	h.router.GET("/scores/:customer_id", h.getScore)
	h.router.POST("/attribution/:conversion_id", h.runAttribution)
	h.router.GET("/anomalies/:metric_name", h.getAnomalies)
	h.router.POST("/models/:model_type/retrain", h.requireAdminKey, h.retrainModel)
	h.router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func (h *Handler) requireAdminKey(c *gin.Context) {
	if h.adminKey == "" || c.GetHeader("X-Admin-Key") != h.adminKey {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "unauthorized",
		})
		return
	}
	c.Next()
}

// writeServiceError maps known error kinds to their status codes. Anything
// unrecognized is an internal error and gets logged at error level.
func (h *Handler) writeServiceError(c *gin.Context, err error) {
	var unknownModel *domain.UnknownModelError
	var noActive *domain.NoActiveModelError
	var insufficient *domain.InsufficientHistoryError
	var emptyPath *domain.EmptyPathError
	var notFound *domain.ConversionNotFoundError
	var threshold *domain.ValidationThresholdNotMetError
	var inProgress *domain.RetrainInProgressError
	var mismatch *domain.SchemaMismatchError

	switch {
	case errors.As(err, &unknownModel):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "unknown_model",
			Message: err.Error(),
		})
	case errors.As(err, &noActive):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error:   "no_active_model",
			Message: err.Error(),
		})
	case errors.As(err, &insufficient):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{
			Error:   "insufficient_history",
			Message: err.Error(),
		})
	case errors.As(err, &emptyPath):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{
			Error:   "empty_path",
			Message: err.Error(),
		})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "conversion_not_found",
			Message: err.Error(),
		})
	case errors.As(err, &threshold):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error:   "validation_threshold_not_met",
			Message: err.Error(),
		})
	case errors.As(err, &inProgress):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error:   "retrain_in_progress",
			Message: err.Error(),
		})
	case errors.As(err, &mismatch):
		h.log.Error("Feature schema mismatch", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "schema_mismatch",
			Message: err.Error(),
		})
	default:
		h.log.Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
	}
}

// healthCheck handles health check requests
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// publishEvent handles POST /events
// @Summary Publish a single customer event
// @Description Publish a single customer event to the ingestion queue
// @Tags ingestion
// @Accept json
// @Produce json
// @Param event body dto.PublishEventRequest true "Event data"
// @Success 202 {object} dto.PublishRecordResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /events [post]
func (h *Handler) publishEvent(c *gin.Context) {
	var req dto.PublishEventRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid event request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	eventID, err := h.ingestService.ProcessEvent(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to process event",
			zap.Error(err),
			zap.String("customer_id", req.CustomerID),
			zap.String("event_type", req.EventType))
		h.writeServiceError(c, err)
		return
	}

	h.log.Info("Event accepted",
		zap.String("event_id", eventID),
		zap.String("event_type", req.EventType))

	c.JSON(http.StatusAccepted, dto.PublishRecordResponse{
		RecordID: eventID,
		Status:   "accepted",
	})
}

// publishEventsBulk handles POST /events/bulk
// @Summary Publish multiple customer events
// @Description Publish multiple customer events in bulk to the ingestion queue
// @Tags ingestion
// @Accept json
// @Produce json
// @Param events body dto.PublishEventsBulkRequest true "Bulk events data"
// @Success 202 {object} dto.PublishBulkEventsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /events/bulk [post]
func (h *Handler) publishEventsBulk(c *gin.Context) {
	var bulkRequest dto.PublishEventsBulkRequest

	if err := c.ShouldBindJSON(&bulkRequest); err != nil {
		h.log.Warn("Invalid bulk event request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	eventIDs, rejections, err := h.ingestService.ProcessBulkEvents(c.Request.Context(), bulkRequest.Events)
	if err != nil {
		h.log.Error("Failed to process bulk events",
			zap.Error(err),
			zap.Int("event_count", len(bulkRequest.Events)))
		h.writeServiceError(c, err)
		return
	}

	h.log.Info("Bulk events processed",
		zap.Int("accepted", len(eventIDs)),
		zap.Int("rejected", len(rejections)))

	c.JSON(http.StatusAccepted, dto.PublishBulkEventsResponse{
		Accepted: len(eventIDs),
		Rejected: len(rejections),
		EventIDs: eventIDs,
		Errors:   rejections,
	})
}

// publishTouchpoint handles POST /touchpoints
// @Summary Publish a marketing touchpoint
// @Description Publish a marketing touchpoint to the ingestion queue
// @Tags ingestion
// @Accept json
// @Produce json
// @Param touchpoint body dto.PublishTouchpointRequest true "Touchpoint data"
// @Success 202 {object} dto.PublishRecordResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /touchpoints [post]
func (h *Handler) publishTouchpoint(c *gin.Context) {
	var req dto.PublishTouchpointRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid touchpoint request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	touchpointID, err := h.ingestService.ProcessTouchpoint(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to process touchpoint",
			zap.Error(err),
			zap.String("customer_id", req.CustomerID),
			zap.String("channel", req.Channel))
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.PublishRecordResponse{
		RecordID: touchpointID,
		Status:   "accepted",
	})
}

// publishConversion handles POST /conversions
// @Summary Publish a conversion event
// @Description Publish a revenue conversion event to the ingestion queue
// @Tags ingestion
// @Accept json
// @Produce json
// @Param conversion body dto.PublishConversionRequest true "Conversion data"
// @Success 202 {object} dto.PublishRecordResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /conversions [post]
func (h *Handler) publishConversion(c *gin.Context) {
	var req dto.PublishConversionRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid conversion request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	conversionID, err := h.ingestService.ProcessConversion(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to process conversion",
			zap.Error(err),
			zap.String("customer_id", req.CustomerID))
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.PublishRecordResponse{
		RecordID: conversionID,
		Status:   "accepted",
	})
}

// getScore handles GET /scores/:customer_id
// @Summary Score a customer
// @Description Compute a CLV, churn or lead score for one customer using the active model, or a pinned version
// @Tags scoring
// @Produce json
// @Param customer_id path string true "Customer ID" example:"cust_123"
// @Param model query string true "Model type (clv, churn, lead)" Enums(clv, churn, lead) example:"churn"
// @Param version query string false "Pin a specific model version"
// @Success 200 {object} dto.ScoreResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /scores/{customer_id} [get]
func (h *Handler) getScore(c *gin.Context) {
	var req dto.GetScoreRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		h.log.Warn("Invalid score request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	customerID := c.Param("customer_id")
	prediction, err := h.engineService.Score(c.Request.Context(), customerID, req.Model, req.Version)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.log.Info("Score computed",
		zap.String("customer_id", customerID),
		zap.String("model", req.Model),
		zap.String("model_version", prediction.ModelVersion))

	c.JSON(http.StatusOK, dto.ScoreResponse{
		CustomerID:   prediction.CustomerID,
		Model:        prediction.ModelType,
		Value:        prediction.Value,
		ModelVersion: prediction.ModelVersion,
		ProducedAt:   prediction.ProducedAt.Unix(),
	})
}

// runAttribution handles POST /attribution/:conversion_id
// @Summary Attribute a conversion
// @Description Run all attribution models over the conversion's touchpoint path
// @Tags attribution
// @Produce json
// @Param conversion_id path string true "Conversion ID" example:"conv_42"
// @Success 200 {object} dto.AttributionResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /attribution/{conversion_id} [post]
func (h *Handler) runAttribution(c *gin.Context) {
	conversionID := c.Param("conversion_id")

	conv, results, err := h.engineService.Attribute(c.Request.Context(), conversionID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	credits := make([]dto.AttributionCredit, len(results))
	for i, res := range results {
		credits[i] = dto.AttributionCredit{
			TouchpointID:    res.TouchpointID,
			ModelName:       res.ModelName,
			CreditedRevenue: res.CreditedRevenue,
			Fallback:        res.Fallback,
		}
	}

	h.log.Info("Attribution computed",
		zap.String("conversion_id", conversionID),
		zap.Int("credits", len(credits)))

	c.JSON(http.StatusOK, dto.AttributionResponse{
		ConversionID:  conv.ConversionID,
		RevenueAmount: conv.RevenueAmount,
		Credits:       credits,
	})
}

// getAnomalies handles GET /anomalies/:metric_name
// @Summary Check a metric for anomalies
// @Description Run 3-sigma detection over the trailing window of a daily metric series
// @Tags anomalies
// @Produce json
// @Param metric_name path string true "Metric name" Enums(daily_conversions, daily_revenue) example:"daily_conversions"
// @Param window query int false "Window size in days" example:"30"
// @Success 200 {object} dto.GetAnomaliesResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /anomalies/{metric_name} [get]
func (h *Handler) getAnomalies(c *gin.Context) {
	var req dto.GetAnomaliesRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		h.log.Warn("Invalid anomaly request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	metricName := c.Param("metric_name")
	flags, err := h.engineService.Anomalies(c.Request.Context(), metricName, req.Window)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	points := make([]dto.AnomalyPoint, len(flags))
	for i, f := range flags {
		points[i] = dto.AnomalyPoint{
			Timestamp:   f.Timestamp,
			Value:       f.Value,
			ZScore:      f.ZScore,
			IsAnomalous: f.IsAnomalous,
		}
	}

	c.JSON(http.StatusOK, dto.GetAnomaliesResponse{
		MetricName: metricName,
		Window:     req.Window,
		Flags:      points,
	})
}

// retrainModel handles POST /models/:model_type/retrain
// @Summary Retrain a model
// @Description Train a new model version on fresh data and promote it if validation passes
// @Tags models
// @Produce json
// @Param model_type path string true "Model type (clv, churn, lead)" Enums(clv, churn, lead) example:"churn"
// @Param X-Admin-Key header string true "Admin API key"
// @Success 200 {object} dto.RetrainResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /models/{model_type}/retrain [post]
func (h *Handler) retrainModel(c *gin.Context) {
	modelType := c.Param("model_type")

	artifact, err := h.engineService.Retrain(c.Request.Context(), modelType)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.log.Info("Model retrained",
		zap.String("model_type", modelType),
		zap.String("version", artifact.Version))

	c.JSON(http.StatusOK, dto.RetrainResponse{
		Status:            "promoted",
		NewVersion:        artifact.Version,
		ValidationMetrics: artifact.Metrics,
	})
}

package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/rupamthxt/symptomrank/internal/history"
	"github.com/rupamthxt/symptomrank/internal/metrics"
	"github.com/rupamthxt/symptomrank/internal/predict"
)

const (
	serviceName      = "symptomrank prediction service"
	defaultListLimit = 20
)

// Handler serves the prediction API on top of a predict.Service.
type Handler struct {
	service *predict.Service
	logger  logrus.FieldLogger

	recorder history.Recorder
	reader   history.Reader
	maxList  int

	reload func(ctx context.Context) error
	join   func(nodeID, addr string) error
}

type Option func(*Handler)

// WithHistory records every successful prediction and enables the
// /predictions endpoints.
func WithHistory(recorder history.Recorder, reader history.Reader, maxList int) Option {
	return func(h *Handler) {
		h.recorder = recorder
		h.reader = reader
		h.maxList = maxList
	}
}

// WithReload enables POST /admin/reload.
func WithReload(fn func(ctx context.Context) error) Option {
	return func(h *Handler) { h.reload = fn }
}

// WithJoin enables POST /admin/join for history replicas.
func WithJoin(fn func(nodeID, addr string) error) Option {
	return func(h *Handler) { h.join = fn }
}

func NewHandler(service *predict.Service, logger logrus.FieldLogger, opts ...Option) *Handler {
	h := &Handler{service: service, logger: logger, maxList: 100}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Status(c *fiber.Ctx) error {
	st := h.service.Status()
	return c.JSON(StatusResponse{
		Service:       serviceName,
		Status:        "running",
		ModelLoaded:   st.ModelLoaded,
		ModelVersion:  st.ModelVersion,
		SymptomsCount: st.SymptomCount,
		DiseasesCount: st.CategoryCount,
	})
}

func (h *Handler) Symptoms(c *fiber.Ctx) error {
	symptoms := h.service.ListKnownSymptoms()
	return c.JSON(SymptomsResponse{Symptoms: symptoms, Count: len(symptoms)})
}

func (h *Handler) Diseases(c *fiber.Ctx) error {
	diseases, err := h.service.ListKnownCategories()
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(DiseasesResponse{Diseases: diseases, Count: len(diseases)})
}

func (h *Handler) Predict(c *fiber.Ctx) error {
	var req PredictRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "cannot parse json"})
	}

	resp, err := h.service.Predict(c.UserContext(), req.Symptoms)
	if err != nil {
		return h.writeError(c, err)
	}

	out := newPredictResponse(resp)
	if h.recorder != nil {
		rec := newRecord(req.Symptoms, resp)
		if err := h.recorder.Record(rec); err != nil {
			// the prediction itself succeeded, history is best effort
			metrics.HistoryWriteErrors.Inc()
			h.logger.WithError(err).WithField("prediction_id", rec.ID).Warn("failed to record prediction")
		} else {
			out.PredictionID = rec.ID
		}
	}

	return c.JSON(out)
}

func (h *Handler) GetPrediction(c *fiber.Ctx) error {
	rec, err := h.reader.Get(c.Params("id"))
	if errors.Is(err, history.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: err.Error()})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}
	return c.JSON(rec)
}

func (h *Handler) ListPredictions(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultListLimit)
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > h.maxList {
		limit = h.maxList
	}

	recs, err := h.reader.Recent(limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}
	return c.JSON(PredictionsResponse{Predictions: recs, Count: len(recs)})
}

func (h *Handler) Reload(c *fiber.Ctx) error {
	if err := h.reload(c.UserContext()); err != nil {
		h.logger.WithError(err).Error("model reload failed")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}
	return c.JSON(fiber.Map{"status": "reloaded", "model_version": h.service.Status().ModelVersion})
}

func (h *Handler) Join(c *fiber.Ctx) error {
	var req JoinRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "cannot parse json"})
	}
	if req.NodeID == "" || req.Addr == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "node_id and addr are required"})
	}

	if err := h.join(req.NodeID, req.Addr); err != nil {
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: err.Error()})
	}
	return c.JSON(fiber.Map{"status": "joined", "node_id": req.NodeID})
}

func (h *Handler) writeError(c *fiber.Ctx, err error) error {
	var (
		invalid     *predict.InvalidInputError
		unavailable *predict.ClassifierUnavailableError
		inference   *predict.InferenceError
	)
	switch {
	case errors.As(err, &invalid):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:             invalid.Error(),
			UnmatchedSymptoms: invalid.Unmatched,
		})
	case errors.As(err, &unavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: unavailable.Error()})
	case errors.As(err, &inference):
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: inference.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}
}

// Package server exposes registry-built networks over a JSON HTTP API.
//
//	GET    /v1/types                     registered type ids with their shape integers
//	GET    /v1/models                    hosted models in creation order
//	POST   /v1/models                    build a model from a weights document
//	GET    /v1/models/:id                model description and current parameters
//	DELETE /v1/models/:id                stop hosting a model
//	PUT    /v1/models/:id/parameters     replace the flat parameter list
//	POST   /v1/models/:id/forward        run one forward pass
//
// Request bodies that fail a length check are rejected with 400 and the model
// keeps its previous parameters.
package server

import (
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/YuminosukeSato/polyinfer/core/model"
	"github.com/YuminosukeSato/polyinfer/metrics"
	"github.com/YuminosukeSato/polyinfer/pkg/errors"
	"github.com/YuminosukeSato/polyinfer/pkg/log"
	"github.com/YuminosukeSato/polyinfer/registry"
)

// Server serves the models of a Store.
type Server struct {
	store  *Store
	logger log.Logger
}

// New returns a server over store.
func New(store *Store) *Server {
	return &Server{
		store:  store,
		logger: log.GetLoggerWithName("server"),
	}
}

// Register mounts the API routes on e.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/v1/types", s.handleListTypes)
	e.GET("/v1/models", s.handleListModels)
	e.POST("/v1/models", s.handleCreateModel)
	e.GET("/v1/models/:id", s.handleGetModel)
	e.DELETE("/v1/models/:id", s.handleDeleteModel)
	e.PUT("/v1/models/:id/parameters", s.handleSetParameters)
	e.POST("/v1/models/:id/forward", s.handleForward)
}

// TypeInfo describes one registered model type.
type TypeInfo struct {
	ID    string `json:"id"`
	Arity int    `json:"arity"`
	Usage string `json:"usage"`
}

// ModelInfo describes a hosted model.
type ModelInfo struct {
	ID             string    `json:"id"`
	TypeID         string    `json:"type_id"`
	ModelType      string    `json:"model_type"`
	Shape          []int     `json:"shape"`
	InputSize      int       `json:"input_size"`
	OutputSize     int       `json:"output_size"`
	ParameterCount int       `json:"parameter_count"`
	Hash           string    `json:"hash"`
	Created        time.Time `json:"created"`
	Parameters     []float64 `json:"parameters,omitempty"`
}

// ForwardRequest is the body of a forward call.
type ForwardRequest struct {
	Input []float64 `json:"input"`
}

// ForwardResponse is the result of a forward call. PredictedClass is set
// for networks with more than one output.
type ForwardResponse struct {
	ID             string    `json:"id"`
	Output         []float64 `json:"output"`
	PredictedClass *int      `json:"predicted_class,omitempty"`
}

// ParametersRequest is the body of a parameter update.
type ParametersRequest struct {
	Parameters []float64 `json:"parameters"`
}

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (s *Server) handleListTypes(c *echo.Context) error {
	ids := registry.RegisteredTypes()
	data := make([]TypeInfo, 0, len(ids))
	for _, id := range ids {
		arity, _ := registry.Arity(id)
		usage, _ := registry.Usage(id)
		data = append(data, TypeInfo{ID: id, Arity: arity, Usage: usage})
	}
	return c.JSON(http.StatusOK, map[string]any{"data": data})
}

func (s *Server) handleListModels(c *echo.Context) error {
	models := s.store.List()
	data := make([]ModelInfo, 0, len(models))
	for _, m := range models {
		data = append(data, describe(m, false))
	}
	return c.JSON(http.StatusOK, map[string]any{"data": data})
}

func (s *Server) handleCreateModel(c *echo.Context) error {
	mw, err := decodeJSON[model.ModelWeights](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if mw.Version == "" {
		mw.Version = model.WeightsFormatVersion
	}

	net, err := registry.Build(&mw)
	if err != nil {
		return s.writeModelError(c, err, log.OperationCreate, "")
	}
	m := s.store.Add(mw.TypeID, mw.Shape, net)
	s.logger.Info("model hosted",
		log.OperationKey, log.OperationCreate,
		log.ModelIDKey, m.ID,
		log.TypeIDKey, m.TypeID,
		log.ShapeKey, m.Shape,
	)
	return c.JSON(http.StatusCreated, describe(m, false))
}

func (s *Server) handleGetModel(c *echo.Context) error {
	m, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "model not found")
	}
	return c.JSON(http.StatusOK, describe(m, true))
}

func (s *Server) handleDeleteModel(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "model not found")
	}
	s.logger.Info("model removed", log.OperationKey, log.OperationDelete, log.ModelIDKey, id)
	return c.JSON(http.StatusOK, map[string]any{"id": id, "deleted": true})
}

func (s *Server) handleSetParameters(c *echo.Context) error {
	m, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "model not found")
	}
	req, err := decodeJSON[ParametersRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if err := m.Net.SetParameters(req.Parameters); err != nil {
		return s.writeModelError(c, err, log.OperationSetParameters, m.ID)
	}
	return c.JSON(http.StatusOK, describe(m, false))
}

func (s *Server) handleForward(c *echo.Context) error {
	m, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "model not found")
	}
	req, err := decodeJSON[ForwardRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	out, err := m.Net.Forward(req.Input)
	if err != nil {
		return s.writeModelError(c, err, log.OperationForward, m.ID)
	}
	resp := ForwardResponse{ID: m.ID, Output: out}
	if len(out) > 1 {
		best, err := metrics.ArgMax(out)
		if err != nil {
			return s.writeModelError(c, err, log.OperationForward, m.ID)
		}
		resp.PredictedClass = &best
	}
	return c.JSON(http.StatusOK, resp)
}

func describe(m *Model, withParams bool) ModelInfo {
	mw := m.Snapshot()
	info := ModelInfo{
		ID:             m.ID,
		TypeID:         m.TypeID,
		ModelType:      m.Net.ModelType(),
		Shape:          m.Shape,
		InputSize:      m.Net.InputSize(),
		OutputSize:     m.Net.OutputSize(),
		ParameterCount: m.Net.ParameterCount(),
		Hash:           mw.Hash(),
		Created:        m.Created,
	}
	if withParams {
		info.Parameters = mw.Parameters
	}
	return info
}

// writeModelError maps library errors to 400 and anything else to 500.
func (s *Server) writeModelError(c *echo.Context, err error, op, id string) error {
	code := log.ErrorCode(err)
	var valueErr *errors.ValueError
	switch {
	case code == log.ErrorDimensionMismatch:
		s.logger.Debug("request rejected", log.OperationKey, op, log.ModelIDKey, id, log.ErrorCodeKey, code)
		return writeError(c, http.StatusBadRequest, "dimension_mismatch", err.Error())
	case code == log.ErrorUnknownModelType:
		s.logger.Debug("request rejected", log.OperationKey, op, log.ErrorCodeKey, code)
		return writeError(c, http.StatusBadRequest, "unknown_model_type", err.Error())
	case errors.As(err, &valueErr):
		return writeBadRequest(c, err.Error())
	}
	s.logger.Error("request failed", err, log.OperationKey, op, log.ModelIDKey, id)
	return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg)
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg)
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{
		"error": ErrorBody{Message: msg, Type: errType},
	})
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return out, errors.Wrap(err, "decode request body")
	}
	return out, nil
}

// Package api implements the REST API for evaluating expressions and
// browsing the evaluation history.
package api

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/lemonberrylabs/arith/pkg/batch"
	"github.com/lemonberrylabs/arith/pkg/expr"
	"github.com/lemonberrylabs/arith/pkg/store"
	"github.com/lemonberrylabs/arith/pkg/types"
)

// DefaultMaxExpressionLength is used when Config.MaxExpressionLength is zero.
const DefaultMaxExpressionLength = expr.DefaultMaxExpressionLength

// Config holds the API server settings.
type Config struct {
	// MaxExpressionLength is the longest expression, in bytes, the server
	// accepts.
	MaxExpressionLength int
}

// Server is the API server.
type Server struct {
	app    *fiber.App
	store  *store.Store
	logger zerolog.Logger
	cfg    Config
}

// New creates a new API server.
func New(s *store.Store, logger zerolog.Logger, cfg Config) *Server {
	if cfg.MaxExpressionLength <= 0 {
		cfg.MaxExpressionLength = DefaultMaxExpressionLength
	}
	srv := &Server{
		store:  s,
		logger: logger,
		cfg:    cfg,
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})
	app.Use(recover.New())
	app.Use(srv.logRequests)

	app.Get("/healthz", srv.health)

	// Evaluation API
	app.Post("/v1/evaluate", srv.evaluate)
	app.Post("/v1/evaluate\\:batch", srv.evaluateBatch)

	// History API
	app.Get("/v1/evaluations", srv.listEvaluations)
	app.Get("/v1/evaluations/:id", srv.getEvaluation)
	app.Delete("/v1/evaluations", srv.clearEvaluations)

	srv.app = app
	return srv
}

// Listen starts the HTTP server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Debug().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Dur("latency", time.Since(start)).
		Msg("request")
	return err
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// --- Evaluation Handlers ---

type evaluateRequest struct {
	Expression string `json:"expression"`
	Tree       bool   `json:"tree"`
}

func (s *Server) evaluate(c *fiber.Ctx) error {
	var req evaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return apiError(c, 400, "INVALID_ARGUMENT", fmt.Sprintf("invalid request body: %v", err))
	}

	if req.Expression == "" {
		return apiError(c, 400, "INVALID_ARGUMENT", "expression is required")
	}
	if len(req.Expression) > s.cfg.MaxExpressionLength {
		return apiError(c, 400, "INVALID_ARGUMENT",
			fmt.Sprintf("expression exceeds maximum length of %d characters", s.cfg.MaxExpressionLength))
	}

	value, err := expr.Evaluate(req.Expression)
	ev := s.store.Record("http", req.Expression, value, err)
	if err != nil {
		s.logger.Debug().Str("expression", req.Expression).Err(err).Msg("evaluation failed")
		return evaluationError(c, ev.ID, err)
	}

	resp := evaluationToJSON(ev)
	if req.Tree {
		// The expression already evaluated, so it parses.
		if node, err := expr.Parse(req.Expression); err == nil {
			resp["tree"] = node.String()
		}
	}
	return c.JSON(resp)
}

func (s *Server) evaluateBatch(c *fiber.Ctx) error {
	sheet, err := batch.Parse(c.Body())
	if err != nil {
		return apiError(c, 400, "INVALID_ARGUMENT", err.Error())
	}
	for _, e := range sheet.Expressions {
		if len(e.Expr) > s.cfg.MaxExpressionLength {
			return apiError(c, 400, "INVALID_ARGUMENT",
				fmt.Sprintf("expression %q exceeds maximum length of %d characters", e.Name, s.cfg.MaxExpressionLength))
		}
	}

	results := batch.Run(c.UserContext(), sheet, batch.Options{})

	items := make([]fiber.Map, len(results))
	for i, r := range results {
		ev := s.store.Record("batch", r.Expression, r.Value, r.Err)
		item := evaluationToJSON(ev)
		item["name"] = r.Name
		items[i] = item
	}

	s.logger.Info().
		Str("sheet", sheet.Name).
		Int("expressions", len(results)).
		Int("failures", batch.Failures(results)).
		Msg("batch evaluated")

	return c.JSON(fiber.Map{
		"name":     sheet.Name,
		"results":  items,
		"failures": batch.Failures(results),
	})
}

// --- History Handlers ---

func (s *Server) listEvaluations(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return apiError(c, 400, "INVALID_ARGUMENT", "limit must not be negative")
	}

	evaluations := s.store.List(limit)
	items := make([]fiber.Map, len(evaluations))
	for i, ev := range evaluations {
		items[i] = evaluationToJSON(ev)
	}

	return c.JSON(fiber.Map{
		"evaluations": items,
	})
}

func (s *Server) getEvaluation(c *fiber.Ctx) error {
	ev, err := s.store.Get(c.Params("id"))
	if err != nil {
		return apiError(c, 404, "NOT_FOUND", err.Error())
	}
	return c.JSON(evaluationToJSON(ev))
}

func (s *Server) clearEvaluations(c *fiber.Ctx) error {
	n := s.store.Len()
	s.store.Clear()
	s.logger.Info().Int("count", n).Msg("evaluation history cleared")
	return c.JSON(fiber.Map{"deleted": n})
}

// --- Helpers ---

func apiError(c *fiber.Ctx, code int, status, message string) error {
	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
			"status":  status,
		},
	})
}

func evaluationError(c *fiber.Ctx, id string, err error) error {
	body := fiber.Map{
		"code":    400,
		"message": err.Error(),
		"status":  "INVALID_ARGUMENT",
		"id":      id,
	}
	var ee *types.EvaluationError
	if errors.As(err, &ee) {
		for k, v := range ee.ToMap() {
			if k != "message" {
				body[k] = v
			}
		}
	}
	return c.Status(400).JSON(fiber.Map{"error": body})
}

func evaluationToJSON(ev *store.Evaluation) fiber.Map {
	result := fiber.Map{
		"id":         ev.ID,
		"expression": ev.Expression,
		"source":     ev.Source,
		"state":      ev.State,
		"createTime": ev.CreateTime.Format(time.RFC3339),
	}

	if ev.Error != nil {
		errMap := fiber.Map{"message": ev.Error.Message}
		if ev.Error.Kind != "" {
			errMap["kind"] = ev.Error.Kind
		}
		if ev.Error.Position != types.NoPosition {
			errMap["position"] = ev.Error.Position
		}
		result["error"] = errMap
	} else {
		result["result"] = FormatResult(ev.Result)
	}

	return result
}

// FormatResult returns v as a JSON-encodable value. NaN and infinities,
// which JSON numbers cannot represent, become the strings "NaN", "+Inf"
// and "-Inf".
func FormatResult(v float64) interface{} {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	default:
		return v
	}
}

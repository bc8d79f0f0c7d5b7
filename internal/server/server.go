package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rezonia/einvoice/internal/codec"
	"github.com/rezonia/einvoice/internal/logger"
	"github.com/rezonia/einvoice/internal/model"
	"github.com/rezonia/einvoice/internal/pdf"
	"github.com/rezonia/einvoice/internal/processor"
)

// RequestIDHeader carries the request ID in and out
const RequestIDHeader = "X-Request-ID"

// Config holds server configuration
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	Debug           bool
	AmountPrecision int
	Indent          int
	AttachmentName  string
	Concurrency     int
	// Logger defaults to the global logger with component=server
	Logger *zerolog.Logger
}

// Server represents the HTTP API server
type Server struct {
	config   *Config
	router   *gin.Engine
	pipeline *processor.Pipeline
	logger   zerolog.Logger
}

// NewServer creates a new API server
func NewServer(config *Config) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	log := logger.WithComponent("server")
	if config.Logger != nil {
		log = *config.Logger
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))

	registry := codec.NewRegistryWithOptions(codec.Options{
		AmountPrecision: config.AmountPrecision,
		Indent:          config.Indent,
	})

	pipeline := processor.NewPipeline(
		processor.WithRegistry(registry),
		processor.WithEmbedder(pdf.NewEmbedder(pdf.WithAttachmentName(config.AttachmentName))),
		processor.WithConcurrency(config.Concurrency),
		processor.WithLogger(log.With().Str("component", "pipeline").Logger()),
	)

	s := &Server{
		config:   config,
		router:   router,
		pipeline: pipeline,
		logger:   log,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/convert", s.handleConvert)
		v1.POST("/read", s.handleRead)
		v1.POST("/write", s.handleWrite)
		v1.POST("/check", s.handleCheck)
		v1.POST("/info", s.handleInfo)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	s.logger.Info().Str("address", s.config.Address).Msg("starting server")
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

// requestLogger tags each request with an ID and logs it on completion
func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		event := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"time":     time.Now().UTC().Format(time.RFC3339),
		"syntaxes": s.pipeline.Registry().Syntaxes(),
	})
}

func (s *Server) handleConvert(c *gin.Context) {
	target := model.ParseSyntax(c.Query("to"))
	if target == model.SyntaxUnknown {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "query parameter 'to' must be ubl or cii"})
		return
	}

	body, ok := readBody(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	conv, err := s.pipeline.Convert(ctx, body, target)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.Header("X-Source-Syntax", string(conv.Source))
	c.Data(http.StatusOK, "application/xml; charset=utf-8", conv.Output)
}

func (s *Server) handleRead(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	result := s.pipeline.Process(ctx, body)
	if result.Error != nil {
		s.fail(c, result.Error)
		return
	}

	c.JSON(http.StatusOK, ReadResponse{
		Document: result.Document,
		Syntax:   string(result.Syntax),
		Method:   string(result.Method),
		Warnings: result.Warnings,
	})
}

func (s *Server) handleWrite(c *gin.Context) {
	syntax := model.ParseSyntax(c.Query("syntax"))
	if syntax == model.SyntaxUnknown {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "query parameter 'syntax' must be ubl or cii"})
		return
	}

	body, ok := readBody(c)
	if !ok {
		return
	}

	var doc model.Document
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid document JSON", Details: err.Error()})
		return
	}

	out, err := s.pipeline.Write(&doc, syntax)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.Data(http.StatusOK, "application/xml; charset=utf-8", out)
}

func (s *Server) handleCheck(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	report, err := s.pipeline.Check(ctx, body)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, CheckResponse{
		Syntax:      string(report.Syntax),
		Stable:      report.Stable,
		CrossStable: report.CrossStable,
		Warnings:    report.Warnings,
	})
}

func (s *Server) handleInfo(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}

	format := processor.DetectFormat(body)
	info := InfoResponse{
		Format:   format.String(),
		MimeType: format.MimeType(),
		Size:     len(body),
	}

	if format != processor.FormatUnknown {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		result := s.pipeline.Process(ctx, body)
		if result.Error != nil {
			info.Error = result.Error.Error()
		} else {
			info.Syntax = string(result.Syntax)
			info.Number = result.Document.Number
			info.TypeCode = string(result.Document.TypeCode)
			info.Variant = result.Document.TypeCode.Name()
			info.LineCount = len(result.Document.LineItems)
		}
	}

	c.JSON(http.StatusOK, info)
}

// Helper functions

func readBody(c *gin.Context) ([]byte, bool) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return nil, false
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
		return nil, false
	}
	return body, true
}

func (s *Server) fail(c *gin.Context, err error) {
	status := errorStatus(err)
	resp := ErrorResponse{Error: err.Error()}

	var parseErr *model.ParseError
	if errors.As(err, &parseErr) {
		if parseErr.Kind != nil {
			resp.Kind = parseErr.Kind.Error()
		}
		resp.Field = parseErr.Field
	}
	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		resp.Field = validationErr.Field
	}

	c.JSON(status, resp)
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, processor.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, processor.ErrUnsupportedTarget):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		// parse, validation and extraction errors
		return http.StatusUnprocessableEntity
	}
}

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/dasmlab/myanlang/pkg/langid"
	"github.com/dasmlab/myanlang/pkg/service"
)

// HTTPConfig configures an HTTPServer.
type HTTPConfig struct {
	Port           int
	AllowedOrigins []string
}

// HTTPServer exposes the language service as JSON over HTTP.
type HTTPServer struct {
	svc    *service.LanguageService
	logger *logrus.Logger
	cfg    HTTPConfig
	srv    *http.Server
}

type textRequest struct {
	Text string `json:"text"`
}

type translateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type classifyResponse struct {
	Language   string   `json:"language"`
	Confidence *float64 `json:"confidence"`
}

type errorBody struct {
	Error string `json:"error"`
}

// NewHTTPServer creates an HTTPServer.
func NewHTTPServer(svc *service.LanguageService, logger *logrus.Logger, cfg HTTPConfig) *HTTPServer {
	if logger == nil {
		logger = logrus.New()
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	return &HTTPServer{svc: svc, logger: logger, cfg: cfg}
}

// Router builds the gin engine with all routes and middleware.
func (s *HTTPServer) Router() *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.Use(Logger(s.logger))
	r.Use(Recovery(s.logger))
	r.Use(Metrics())
	r.Use(CORS(s.cfg.AllowedOrigins))

	r.GET("/", s.handleRoot)
	r.GET("/health", s.handleHealth)
	r.GET("/ready", s.handleReady)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/classify", s.handleClassify)
	r.POST("/detect", s.handleDetect)
	r.POST("/normalize", s.handleNormalize)
	r.POST("/translate", s.handleTranslate)

	return r
}

// Start serves HTTP until Shutdown is called. It returns nil after a clean
// shutdown.
func (s *HTTPServer) Start() error {
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.WithFields(logrus.Fields{
		"port": s.cfg.Port,
	}).Info("Starting HTTP server")

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *HTTPServer) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Translation backend is running."})
}

func (s *HTTPServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *HTTPServer) handleReady(c *gin.Context) {
	if err := s.svc.NotReadyReason(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "model not loaded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *HTTPServer) handleClassify(c *gin.Context) {
	var req textRequest
	if !s.bind(c, &req) {
		return
	}

	res, err := s.svc.Classify(c.Request.Context(), req.Text)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, classifyResponse{Language: res.Label, Confidence: res.Confidence})
}

func (s *HTTPServer) handleDetect(c *gin.Context) {
	var req textRequest
	if !s.bind(c, &req) {
		return
	}

	out, err := s.svc.Detect(c.Request.Context(), req.Text)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out.Decision)
}

func (s *HTTPServer) handleNormalize(c *gin.Context) {
	var req textRequest
	if !s.bind(c, &req) {
		return
	}

	res, err := s.svc.Normalize(req.Text)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *HTTPServer) handleTranslate(c *gin.Context) {
	var req translateRequest
	if !s.bind(c, &req) {
		return
	}

	out, err := s.svc.Translate(c.Request.Context(), service.TranslateInput{
		Text:       req.Text,
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *HTTPServer) bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

// mapError returns the HTTP status and client-facing message for err.
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, langid.ErrModelUnavailable):
		return http.StatusInternalServerError, "Language classification model not loaded"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func (s *HTTPServer) respondError(c *gin.Context, err error) {
	status, msg := mapError(err)
	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.Request.URL.Path,
		}).Error("Request failed")
	}
	c.JSON(status, errorBody{Error: msg})
}

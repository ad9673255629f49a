package api

import (
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/david/govfeed/internal/ai"
	"github.com/david/govfeed/internal/feed"
	"github.com/david/govfeed/internal/models"
	"github.com/david/govfeed/internal/profiles"
	"github.com/david/govfeed/internal/providers"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	Feed     *feed.Service
	Ranker   *ai.Ranker
	Creds    *ai.Credentials
	Profiles profiles.Store
	Registry *providers.Registry
	Echo     *echo.Echo
}

func NewServer(svc *feed.Service, ranker *ai.Ranker, creds *ai.Credentials, store profiles.Store, registry *providers.Registry) *Server {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// CORS: allow frontend origins from env or default to localhost
	allowedOrigins := []string{"http://localhost:3000"}
	if extra := os.Getenv("CORS_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	s := &Server{
		Feed:     svc,
		Ranker:   ranker,
		Creds:    creds,
		Profiles: store,
		Registry: registry,
		Echo:     e,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)

	api := s.Echo.Group("/api")
	api.GET("/feed", s.handleGetFeed)
	api.GET("/feed/sources", s.handleGetSources)
	api.POST("/profile/update", s.handleUpdateProfile)
	api.POST("/profile/from-text", s.handleProfileFromText)
	api.GET("/profile/:user_id", s.handleGetProfile)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleGetFeed always answers 200 with a full envelope: upstream and
// scoring failures degrade content, never availability.
func (s *Server) handleGetFeed(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		userID = "default"
	}

	sources := c.QueryParam("sources")
	if sources == "" {
		sources = "sam,usaspending,grants"
	}

	limit := 15
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= providers.MaxPageSize {
		limit = l
	}
	page := 1
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p >= 1 {
		page = p
	}

	if key := c.QueryParam("openai_key"); key != "" {
		s.Creds.Set(key)
	}

	profile := s.Profiles.Get(userID)
	envelope := s.Feed.GetFeed(c.Request().Context(), profile, splitCSV(sources), limit, page)

	return c.JSON(http.StatusOK, envelope)
}

func (s *Server) handleGetSources(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"sources": s.Registry.Sources()})
}

type profileFromTextRequest struct {
	UserID       string `json:"user_id"`
	RawInput     string `json:"raw_input"`
	OpenAIAPIKey string `json:"openai_api_key"`
}

func (s *Server) handleProfileFromText(c echo.Context) error {
	var req profileFromTextRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if strings.TrimSpace(req.RawInput) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "raw_input is required"})
	}
	if req.UserID == "" {
		req.UserID = "default"
	}
	if req.OpenAIAPIKey != "" {
		s.Creds.Set(req.OpenAIAPIKey)
	}

	profile := s.Ranker.ParseProfile(c.Request().Context(), req.RawInput)
	profile.RawInput = req.RawInput
	s.Profiles.Set(req.UserID, profile)

	return c.JSON(http.StatusOK, map[string]any{"profile": profile})
}

type profileUpdateRequest struct {
	UserID       string `json:"user_id"`
	Keywords     string `json:"keywords"`
	Focus        string `json:"focus"`
	OrgType      string `json:"org_type"`
	OpenAIAPIKey string `json:"openai_api_key"`
}

func (s *Server) handleUpdateProfile(c echo.Context) error {
	var req profileUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if strings.TrimSpace(req.Keywords) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "keywords is required"})
	}
	if req.UserID == "" {
		req.UserID = "default"
	}
	if req.OpenAIAPIKey != "" {
		s.Creds.Set(req.OpenAIAPIKey)
	}

	focus := req.Focus
	if focus == "" {
		focus = req.Keywords
	}
	profile := models.UserProfile{
		Keywords: req.Keywords,
		Focus:    focus,
		OrgType:  req.OrgType,
		Agencies: []string{},
	}
	s.Profiles.Set(req.UserID, profile)

	return c.JSON(http.StatusOK, map[string]any{"profile": profile})
}

func (s *Server) handleGetProfile(c echo.Context) error {
	profile := s.Profiles.Get(c.Param("user_id"))
	return c.JSON(http.StatusOK, map[string]any{"profile": profile})
}

// splitCSV splits a comma-separated query parameter into trimmed non-empty strings.
func splitCSV(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

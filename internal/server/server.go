package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"net/http"

	"github.com/labstack/echo/v4"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"fevergolang/internal/auth"
	"fevergolang/internal/device"
	"fevergolang/internal/jobs"
)

// Response is the envelope shared by every endpoint. Domain failures ride in
// it with success=false; only authentication and internal faults change the
// HTTP status.
type Response struct {
	Success bool   `json:"success"`
	Result  any    `json:"result"`
	Message string `json:"message"`
}

type Server struct {
	Jobs        *jobs.Orchestrator
	Credentials *auth.Credentials
}

const userContextKey = "fever.username"

func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.Use(s.authenticate)
	e.GET("/prints", s.listPrints)
	e.GET("/prints/:printId", s.getPrint)
	e.POST("/prints-new/text", s.printText)
	e.POST("/prints-new/image", s.printImage)
	e.POST("/prints/:printId", s.reprint)
}

// authenticate resolves the request identity before any handler runs.
// Requests without usable Basic credentials proceed as anonymous and succeed
// only when anonymous login is enabled.
func (s *Server) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		username, password := auth.AnonymousUser, auth.AnonymousUser
		if u, p, ok := c.Request().BasicAuth(); ok {
			username, password = u, p
		}
		ok, err := s.Credentials.Authorize(username, password)
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, Response{Message: "Authentication unavailable."})
		}
		if !ok {
			return c.JSON(http.StatusUnauthorized, Response{Message: "Authentication failed."})
		}
		c.Set(userContextKey, username)
		return next(c)
	}
}

func username(c echo.Context) string {
	if u, ok := c.Get(userContextKey).(string); ok {
		return u
	}
	return auth.AnonymousUser
}

func (s *Server) listPrints(c echo.Context) error {
	views, err := s.Jobs.List(c.Request().Context(), 0)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, Response{Success: true, Result: views})
}

func (s *Server) getPrint(c echo.Context) error {
	printID := c.Param("printId")
	view, err := s.Jobs.Get(c.Request().Context(), printID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, Response{Success: true, Result: view})
}

type printTextRequest struct {
	Text string `json:"text"`
	Tags string `json:"tags"`
}

func (s *Server) printText(c echo.Context) error {
	var req printTextRequest
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return c.JSON(http.StatusBadRequest, Response{Message: "Invalid request body."})
	}

	printID, err := s.Jobs.PrintText(c.Request().Context(), username(c), req.Text, req.Tags)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, Response{Success: true, Result: map[string]string{"printId": printID}})
}

func (s *Server) printImage(c echo.Context) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, Response{Message: "Missing image file."})
	}
	f, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, Response{Message: "Unreadable image file."})
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return c.JSON(http.StatusBadRequest, Response{Message: "Unsupported image format."})
	}

	printID, err := s.Jobs.PrintImage(c.Request().Context(), username(c), img, c.FormValue("tags"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, Response{Success: true, Result: map[string]string{"printId": printID}})
}

func (s *Server) reprint(c echo.Context) error {
	printID := c.Param("printId")
	newID, err := s.Jobs.Reprint(c.Request().Context(), username(c), printID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, Response{Success: true, Result: map[string]string{"printId": newID}})
}

// fail maps pipeline errors onto the envelope. Handled domain failures keep a
// 200 status; device and internal faults surface as hard errors.
func (s *Server) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, jobs.ErrJobNotFound):
		return c.JSON(http.StatusOK, Response{Message: fmt.Sprintf("Print not found (%s)", c.Param("printId"))})
	case errors.Is(err, jobs.ErrForbidden):
		return c.JSON(http.StatusOK, Response{Message: fmt.Sprintf("Print is owned by another user (%s)", c.Param("printId"))})
	case errors.Is(err, device.ErrDevice):
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, Response{Message: "Printer device failure."})
	}
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, Response{Message: "Internal error."})
}

package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/randalmurphal/changelogify/pkg/changelogify"
	"github.com/randalmurphal/changelogify/pkg/changelogify/config"
	"github.com/randalmurphal/changelogify/pkg/changelogify/event"
	"github.com/randalmurphal/changelogify/pkg/changelogify/release"
	"github.com/randalmurphal/changelogify/pkg/changelogify/section"
	"github.com/randalmurphal/changelogify/pkg/changelogify/source"
)

type handlers struct {
	deps Deps
}

type errorResponse struct {
	Error string `json:"error"`
}

type createRequest struct {
	Version       string `json:"version"`
	DateRangeType string `json:"date_range_type"`
	DateFrom      string `json:"date_from"`
	DateTo        string `json:"date_to"`
}

type createResponse struct {
	ID string `json:"id"`
}

type versionResponse struct {
	Version string `json:"version"`
}

type notificationResponse struct {
	Recorded bool `json:"recorded"`
}

func (h *handlers) fail(c echo.Context, status int, err error) error {
	if status >= http.StatusInternalServerError && h.deps.Logger != nil {
		h.deps.Logger.Error("request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return c.JSON(status, errorResponse{Error: err.Error()})
}

func (h *handlers) createRelease(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return h.fail(c, http.StatusBadRequest, errors.New("invalid body"))
	}

	gen := changelogify.GenerateRequest{Version: strings.TrimSpace(req.Version)}

	if req.DateRangeType != "" {
		rt := config.RangeType(req.DateRangeType)
		switch rt {
		case config.RangeSinceLastRelease, config.RangeCustom, config.RangeLast7Days, config.RangeLast30Days:
			gen.RangeType = rt
		default:
			return h.fail(c, http.StatusBadRequest, errors.New("unknown date_range_type: "+req.DateRangeType))
		}
	}

	var err error
	if req.DateFrom != "" {
		if gen.From, err = event.ParseDate(req.DateFrom); err != nil {
			return h.fail(c, http.StatusBadRequest, errors.New("invalid date_from"))
		}
	}
	if req.DateTo != "" {
		if gen.To, err = event.ParseDate(req.DateTo); err != nil {
			return h.fail(c, http.StatusBadRequest, errors.New("invalid date_to"))
		}
	}

	id, err := h.deps.Pipeline().GenerateForRange(c.Request().Context(), gen)
	if err != nil {
		return h.fail(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusCreated, createResponse{ID: id})
}

func (h *handlers) listReleases(c echo.Context) error {
	f := release.ListFilter{
		Version: c.QueryParam("version"),
		Status:  release.Status(c.QueryParam("status")),
		Limit:   DefaultListLimit,
	}
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < -1 {
			return h.fail(c, http.StatusBadRequest, errors.New("invalid limit"))
		}
		// -1 and 0 both mean every release.
		f.Limit = n
	}

	list, err := h.deps.Pipeline().Store().List(c.Request().Context(), f)
	if err != nil {
		return h.fail(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *handlers) latestRelease(c echo.Context) error {
	r, err := h.deps.Pipeline().LastRelease(c.Request().Context())
	if err != nil {
		return h.fail(c, http.StatusInternalServerError, err)
	}
	if r == nil {
		return h.fail(c, http.StatusNotFound, release.ErrNotFound)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *handlers) lookup(c echo.Context) (*release.Release, error) {
	r, err := h.deps.Pipeline().Store().Get(c.Request().Context(), c.Param("id"))
	if errors.Is(err, release.ErrNotFound) {
		return nil, h.fail(c, http.StatusNotFound, err)
	}
	if err != nil {
		return nil, h.fail(c, http.StatusInternalServerError, err)
	}
	return r, nil
}

func (h *handlers) getRelease(c echo.Context) error {
	r, err := h.lookup(c)
	if r == nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (h *handlers) releaseContent(c echo.Context) error {
	r, err := h.lookup(c)
	if r == nil {
		return err
	}

	switch c.QueryParam("format") {
	case "", string(config.FormatHTML):
		return c.HTML(http.StatusOK, section.RenderHTML(r.Sections))
	case "display":
		return c.HTML(http.StatusOK, section.RenderDisplay(r.Sections))
	case string(config.FormatMarkdown):
		return c.Blob(http.StatusOK, "text/markdown; charset=UTF-8", []byte(section.RenderMarkdown(r.Sections)))
	default:
		return h.fail(c, http.StatusBadRequest, errors.New("unknown format"))
	}
}

func (h *handlers) nextVersion(c echo.Context) error {
	v, err := h.deps.Pipeline().SuggestVersion(c.Request().Context())
	if err != nil {
		return h.fail(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, versionResponse{Version: v})
}

func (h *handlers) postNotification(c echo.Context) error {
	if h.deps.Recorder == nil {
		return h.fail(c, http.StatusServiceUnavailable, source.ErrNotConfigured)
	}

	var n source.Notification
	if err := c.Bind(&n); err != nil {
		return h.fail(c, http.StatusBadRequest, errors.New("invalid body"))
	}

	written, err := h.deps.Recorder.Record(c.Request().Context(), n)
	if errors.Is(err, source.ErrUnknownNotification) {
		return h.fail(c, http.StatusBadRequest, err)
	}
	if err != nil {
		return h.fail(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusAccepted, notificationResponse{Recorded: written})
}

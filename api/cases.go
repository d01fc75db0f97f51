package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/sparsh1616/MedHistoryApp/domain"
)

type caseRequest struct {
	CaseTitle string          `json:"case_title"`
	CaseData  json.RawMessage `json:"case_data"`
}

// deriveTitle applies the title policy: explicit title, then the patient
// name from the document, then a timestamped default.
func deriveTitle(explicit string, doc domain.FormDocument, verb string) string {
	if explicit != "" {
		return explicit
	}
	if name := doc.PatientName(); name != "" {
		return name
	}
	return fmt.Sprintf("Case %s on %s", verb, time.Now().Format("1/2/2006"))
}

// CreateCase saves a new case for the authenticated user.
// POST /api/cases
func (h *Handler) CreateCase(c echo.Context) error {
	ctx := c.Request().Context()
	claims := currentUser(c)

	var body caseRequest
	if err := c.Bind(&body); err != nil || len(body.CaseData) == 0 {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Case data is required."})
	}
	var doc domain.FormDocument
	if err := json.Unmarshal(body.CaseData, &doc); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Case data is required."})
	}

	record := &domain.CaseRecord{
		UserID: claims.UserID,
		Title:  deriveTitle(body.CaseTitle, doc, "saved"),
		Data:   doc,
	}
	if err := h.store.CreateCase(ctx, record); err != nil {
		log.WithError(err).Error("failed to save case")
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Error saving case."})
	}

	return c.JSON(http.StatusCreated, domain.CaseSummary{
		ID:        record.ID,
		Title:     record.Title,
		UpdatedAt: record.UpdatedAt,
	})
}

// ListCases returns summaries of the user's cases, newest first.
// GET /api/cases
func (h *Handler) ListCases(c echo.Context) error {
	ctx := c.Request().Context()
	claims := currentUser(c)

	summaries, err := h.store.ListCases(ctx, claims.UserID)
	if err != nil {
		log.WithError(err).Error("failed to list cases")
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Error fetching cases."})
	}
	return c.JSON(http.StatusOK, summaries)
}

// GetCase returns one full case record.
// GET /api/cases/:id
func (h *Handler) GetCase(c echo.Context) error {
	ctx := c.Request().Context()
	claims := currentUser(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid case ID."})
	}

	record, err := h.store.GetCase(ctx, id, claims.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return c.JSON(http.StatusNotFound, messageResponse{Message: "Case not found or access denied."})
	}
	if err != nil {
		log.WithError(err).Error("failed to fetch case")
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Error fetching case."})
	}
	return c.JSON(http.StatusOK, record)
}

// UpdateCase rewrites an existing case.
// PUT /api/cases/:id
func (h *Handler) UpdateCase(c echo.Context) error {
	ctx := c.Request().Context()
	claims := currentUser(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid case ID."})
	}

	var body caseRequest
	if err := c.Bind(&body); err != nil || len(body.CaseData) == 0 {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Case data is required."})
	}
	var doc domain.FormDocument
	if err := json.Unmarshal(body.CaseData, &doc); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Case data is required."})
	}

	record := &domain.CaseRecord{
		ID:     id,
		UserID: claims.UserID,
		Title:  deriveTitle(body.CaseTitle, doc, "updated"),
		Data:   doc,
	}
	err = h.store.UpdateCase(ctx, record)
	if errors.Is(err, domain.ErrNotFound) {
		return c.JSON(http.StatusNotFound, messageResponse{Message: "Case not found or access denied."})
	}
	if err != nil {
		log.WithError(err).Error("failed to update case")
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Error updating case."})
	}

	return c.JSON(http.StatusOK, domain.CaseSummary{
		ID:        record.ID,
		Title:     record.Title,
		UpdatedAt: record.UpdatedAt,
	})
}

// DeleteCase removes a case.
// DELETE /api/cases/:id
func (h *Handler) DeleteCase(c echo.Context) error {
	ctx := c.Request().Context()
	claims := currentUser(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid case ID."})
	}

	err = h.store.DeleteCase(ctx, id, claims.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return c.JSON(http.StatusNotFound, messageResponse{Message: "Case not found or access denied."})
	}
	if err != nil {
		log.WithError(err).Error("failed to delete case")
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Error deleting case."})
	}
	return c.JSON(http.StatusOK, messageResponse{Message: fmt.Sprintf("Case %d deleted successfully.", id)})
}

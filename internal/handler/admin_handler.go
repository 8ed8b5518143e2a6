package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/forum-inscriptions-api/internal/dashboard"
	"github.com/noah-isme/forum-inscriptions-api/internal/middleware"
	"github.com/noah-isme/forum-inscriptions-api/internal/models"
	appErrors "github.com/noah-isme/forum-inscriptions-api/pkg/errors"
	"github.com/noah-isme/forum-inscriptions-api/pkg/response"
)

type adminService interface {
	List(ctx context.Context, view dashboard.View) (*models.InscriptionList, error)
	Stats(ctx context.Context) models.Stats
	UpdateStatus(ctx context.Context, id string, update models.StatusUpdate) (*models.StatusUpdate, error)
	Delete(ctx context.Context, id string) error
	NotificationEmail(ctx context.Context) models.Configuration
	SetNotificationEmail(ctx context.Context, req models.NotificationEmailRequest) (*models.Configuration, error)
	SendTestNotification(ctx context.Context, req models.TestNotificationRequest) (*models.TestNotificationResult, error)
	Export(ctx context.Context, view dashboard.View, format string) (*models.ExportFile, error)
}

// AdminHandler serves the dashboard endpoints. Routes are behind middleware.Session.
type AdminHandler struct {
	service adminService
}

func NewAdminHandler(svc adminService) *AdminHandler {
	return &AdminHandler{service: svc}
}

func bindView(c *gin.Context) (dashboard.View, bool) {
	var view dashboard.View
	if err := c.ShouldBindQuery(&view); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return view, false
	}
	return view, true
}

// List godoc
// @Summary List inscriptions
// @Description Filter by status, search name/code/unit, sort by date_desc, date_asc, nom_asc, nom_desc or statut.
// @Tags Admin
// @Produce json
// @Param status query string false "Workflow status"
// @Param search query string false "Search text"
// @Param sort query string false "Sort key"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/inscriptions [get]
func (h *AdminHandler) List(c *gin.Context) {
	view, ok := bindView(c)
	if !ok {
		return
	}
	list, err := h.service.List(c.Request.Context(), view)
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["stats"] = list.Stats
	meta["total"] = list.Total
	response.JSON(c, http.StatusOK, list.Items, meta)
}

// Stats godoc
// @Summary Dashboard counters
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Stats(c.Request.Context()), middleware.ExtractMeta(c))
}

// UpdateStatus godoc
// @Summary Update status and comment
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Inscription ID"
// @Param payload body models.StatusUpdate true "Status update"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/inscriptions/{id}/status [patch]
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	var req models.StatusUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	update, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, update)
}

// Delete godoc
// @Summary Delete an inscription
// @Tags Admin
// @Param id path string true "Inscription ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /admin/inscriptions/{id} [delete]
func (h *AdminHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export the filtered list
// @Tags Admin
// @Produce octet-stream
// @Param format query string false "csv, pdf or xlsx"
// @Success 200 {file} file
// @Router /admin/inscriptions/export [get]
func (h *AdminHandler) Export(c *gin.Context) {
	view, ok := bindView(c)
	if !ok {
		return
	}
	file, err := h.service.Export(c.Request.Context(), view, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// NotificationEmail godoc
// @Summary Current notification recipient
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/configuration/notification-email [get]
func (h *AdminHandler) NotificationEmail(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.NotificationEmail(c.Request.Context()))
}

// UpdateNotificationEmail godoc
// @Summary Change the notification recipient
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.NotificationEmailRequest true "Recipient"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/configuration/notification-email [put]
func (h *AdminHandler) UpdateNotificationEmail(c *gin.Context) {
	var req models.NotificationEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid configuration payload"))
		return
	}
	cfg, err := h.service.SetNotificationEmail(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg)
}

// SendTestNotification godoc
// @Summary Send a test email
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.TestNotificationRequest true "Recipient"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /admin/notifications/test [post]
func (h *AdminHandler) SendTestNotification(c *gin.Context) {
	var req models.TestNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid test payload"))
		return
	}
	result, err := h.service.SendTestNotification(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/forum-inscriptions-api/internal/catalog"
	"github.com/noah-isme/forum-inscriptions-api/internal/middleware"
	"github.com/noah-isme/forum-inscriptions-api/internal/models"
	appErrors "github.com/noah-isme/forum-inscriptions-api/pkg/errors"
	"github.com/noah-isme/forum-inscriptions-api/pkg/response"
)

type registrationService interface {
	Event() catalog.Event
	CheckCode(ctx context.Context, raw string) models.CodeCheck
	Submit(ctx context.Context, req models.Registration) (*models.Receipt, error)
}

// RegistrationHandler serves the public registration form.
type RegistrationHandler struct {
	service registrationService
	msgs    catalog.RegistrationMessages
}

func NewRegistrationHandler(svc registrationService, cat *catalog.Catalog) *RegistrationHandler {
	if cat == nil {
		cat = catalog.Default()
	}
	return &RegistrationHandler{service: svc, msgs: cat.Messages.Registration}
}

// Event godoc
// @Summary Event information
// @Tags Registration
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /event [get]
func (h *RegistrationHandler) Event(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Event())
}

// CheckCode godoc
// @Summary Check whether a registration code is already registered
// @Description Storage errors report the code as available.
// @Tags Registration
// @Produce json
// @Param code query string true "Registration code"
// @Success 200 {object} response.Envelope
// @Router /inscriptions/check [get]
func (h *RegistrationHandler) CheckCode(c *gin.Context) {
	result := h.service.CheckCode(c.Request.Context(), c.Query("code"))
	response.JSON(c, http.StatusOK, result, middleware.ExtractMeta(c))
}

// Submit godoc
// @Summary Submit a registration
// @Tags Registration
// @Accept json
// @Produce json
// @Param payload body models.Registration true "Registration"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /inscriptions [post]
func (h *RegistrationHandler) Submit(c *gin.Context) {
	var req models.Registration
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}

	receipt, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["title"] = h.msgs.SuccessTitle
	meta["message"] = h.msgs.SuccessText
	meta["contact"] = h.msgs.SuccessContact
	response.Created(c, receipt, meta)
}

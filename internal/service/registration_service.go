package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/forum-inscriptions-api/internal/catalog"
	"github.com/noah-isme/forum-inscriptions-api/internal/models"
	"github.com/noah-isme/forum-inscriptions-api/internal/registration"
	"github.com/noah-isme/forum-inscriptions-api/internal/repository"
	appErrors "github.com/noah-isme/forum-inscriptions-api/pkg/errors"
)

type registrationGateway interface {
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, inscription *models.Inscription) error
	NotificationEmail(ctx context.Context) string
}

type registrationNotifier interface {
	NotifyNewInscription(ctx context.Context, recipient string, inscription models.Inscription) models.NotificationStatus
}

// RegistrationService serves the public form: duplicate checks and submissions.
type RegistrationService struct {
	gateway   registrationGateway
	notifier  registrationNotifier
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	catalog   *catalog.Catalog
	logger    *zap.Logger
	now       func() time.Time
}

func NewRegistrationService(gateway registrationGateway, notifier registrationNotifier, cache *CacheService, metrics *MetricsService, validate *validator.Validate, cat *catalog.Catalog, logger *zap.Logger) *RegistrationService {
	if validate == nil {
		validate = NewValidator()
	}
	if cat == nil {
		cat = catalog.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		gateway:   gateway,
		notifier:  notifier,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		catalog:   cat,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *RegistrationService) Event() catalog.Event {
	return s.catalog.Event
}

// CheckCode validates the shape of raw and asks storage whether it is
// taken. A storage error counts as available.
func (s *RegistrationService) CheckCode(ctx context.Context, raw string) models.CodeCheck {
	msgs := s.catalog.Messages.Registration
	code := registration.NormalizeCode(raw)
	result := models.CodeCheck{Code: code}

	if shape := registration.ClassifyCode(raw); shape != registration.ShapeValid {
		result.Message = registration.CodeShapeMessage(shape, msgs)
		s.metrics.ObserveCodeCheck("invalid")
		return result
	}
	result.Valid = true

	exists, err := s.gateway.ExistsByCode(ctx, code)
	switch {
	case err != nil:
		s.logger.Warn("code check failed, treating as available", zap.String("code", code), zap.Error(err))
		result.Available = true
		result.Message = msgs.CPAvailable
		s.metrics.ObserveCodeCheck("error")
	case exists:
		result.Verified = true
		result.Message = msgs.CPTaken
		s.metrics.ObserveCodeCheck("taken")
	default:
		result.Verified = true
		result.Available = true
		result.Message = msgs.CPAvailable
		s.metrics.ObserveCodeCheck("available")
	}
	return result
}

// Submit validates and stores a registration, then sends the best-effort
// notification. The notification outcome never fails the submission.
func (s *RegistrationService) Submit(ctx context.Context, req models.Registration) (*models.Receipt, error) {
	msgs := s.catalog.Messages.Registration
	req = sanitizeRegistration(req)

	if err := s.validator.Struct(req); err != nil {
		s.metrics.ObserveRegistration("invalid")
		return nil, firstFieldError(err, s.registrationMessage)
	}

	exists, err := s.gateway.ExistsByCode(ctx, req.Code)
	if err != nil {
		s.logger.Warn("duplicate check failed before insert", zap.String("code", req.Code), zap.Error(err))
	}
	if exists {
		s.metrics.ObserveRegistration("conflict")
		return nil, codeConflict(msgs)
	}

	inscription := models.Inscription{
		Code:      req.Code,
		LastName:  req.LastName,
		FirstName: req.FirstName,
		FullName:  models.FullNameOf(req.LastName, req.FirstName),
		Unit:      req.Unit,
		Status:    models.StatusReceived,
		CreatedAt: s.now().UTC(),
	}
	if err := s.gateway.Create(ctx, &inscription); err != nil {
		if errors.Is(err, repository.ErrDuplicateCode) {
			s.metrics.ObserveRegistration("conflict")
			return nil, codeConflict(msgs)
		}
		s.metrics.ObserveRegistration("error")
		s.logger.Error("create inscription failed", zap.String("code", req.Code), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, msgs.SubmissionError)
	}
	s.metrics.ObserveRegistration("created")
	s.cache.Invalidate(ctx, cachePatternAll)
	s.logger.Info("inscription created", zap.String("id", inscription.ID), zap.String("code", inscription.Code))

	status := models.NotificationDisabled
	if s.notifier != nil {
		status = s.notifier.NotifyNewInscription(ctx, s.gateway.NotificationEmail(ctx), inscription)
	}
	s.metrics.ObserveNotification(status)

	return &models.Receipt{Inscription: inscription, Notification: status}, nil
}

func (s *RegistrationService) registrationMessage(field, tag, value string) string {
	msgs := s.catalog.Messages.Registration
	switch field {
	case "nom":
		return pick(tag, msgs.NomRequired, msgs.NomMinLength, msgs.NomMaxLength)
	case "prenom":
		return pick(tag, msgs.PrenomRequired, msgs.PrenomMinLength, msgs.PrenomMaxLength)
	case "lieu_affectation_uo":
		return pick(tag, msgs.UORequired, msgs.UOMinLength, msgs.UOMaxLength)
	case "numero_cp":
		return registration.CodeShapeMessage(registration.ClassifyCode(value), msgs)
	}
	return ""
}

func pick(tag, required, short, long string) string {
	switch tag {
	case "required":
		return required
	case "min":
		return short
	case "max":
		return long
	}
	return ""
}

func codeConflict(msgs catalog.RegistrationMessages) error {
	err := appErrors.Clone(appErrors.ErrConflict, msgs.CPExists)
	err.Field = "numero_cp"
	return err
}

func sanitizeRegistration(req models.Registration) models.Registration {
	return models.Registration{
		LastName:  catalog.SanitizeString(req.LastName),
		FirstName: catalog.SanitizeString(req.FirstName),
		Code:      registration.NormalizeCode(req.Code),
		Unit:      catalog.SanitizeString(req.Unit),
	}
}

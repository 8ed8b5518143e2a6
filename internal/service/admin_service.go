package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/forum-inscriptions-api/internal/catalog"
	"github.com/noah-isme/forum-inscriptions-api/internal/dashboard"
	"github.com/noah-isme/forum-inscriptions-api/internal/models"
	appErrors "github.com/noah-isme/forum-inscriptions-api/pkg/errors"
	"github.com/noah-isme/forum-inscriptions-api/pkg/export"
)

type adminGateway interface {
	Fetch(ctx context.Context) ([]models.Inscription, bool)
	UpdateStatus(ctx context.Context, id string, update models.StatusUpdate) error
	Delete(ctx context.Context, id string) error
	NotificationEmail(ctx context.Context) string
	SaveNotificationEmail(ctx context.Context, email string) error
}

type testSender interface {
	SendTest(ctx context.Context, recipient string) (models.NotificationStatus, error)
}

type tableRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// Export formats.
const (
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

var exportHeaders = []string{"Nom", "Prénom", "Numéro CP", "Lieu d'affectation", "Statut", "Date d'inscription", "Commentaires"}

// AdminService backs the dashboard endpoints.
type AdminService struct {
	gateway   adminGateway
	sender    testSender
	cache     *CacheService
	validator *validator.Validate
	catalog   *catalog.Catalog
	logger    *zap.Logger
	now       func() time.Time

	csv  tableRenderer
	xlsx tableRenderer
	pdf  pdfRenderer
}

func NewAdminService(gateway adminGateway, sender testSender, cache *CacheService, validate *validator.Validate, cat *catalog.Catalog, logger *zap.Logger) *AdminService {
	if validate == nil {
		validate = NewValidator()
	}
	if cat == nil {
		cat = catalog.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		gateway:   gateway,
		sender:    sender,
		cache:     cache,
		validator: validate,
		catalog:   cat,
		logger:    logger,
		now:       time.Now,
		csv:       export.NewCSVExporter(),
		xlsx:      export.NewXLSXExporter(),
		pdf:       export.NewPDFExporter(),
	}
}

// records returns the working set. Only reads served by storage are cached.
func (s *AdminService) records(ctx context.Context) []models.Inscription {
	var cached []models.Inscription
	if s.cache.Get(ctx, cacheKeyInscriptions, &cached) {
		return cached
	}
	records, live := s.gateway.Fetch(ctx)
	if live {
		s.cache.Set(ctx, cacheKeyInscriptions, records)
	}
	return records
}

func (s *AdminService) checkView(view dashboard.View) error {
	if view.Status != "" && !view.Status.Valid() {
		return appErrors.FieldError("status", s.catalog.Messages.Admin.InvalidStatus)
	}
	if view.Sort != "" && !dashboard.ValidSort(view.Sort) {
		return appErrors.FieldError("sort", fmt.Sprintf("unknown sort %q", view.Sort))
	}
	return nil
}

// List applies view to the working set. Counters cover every record.
func (s *AdminService) List(ctx context.Context, view dashboard.View) (*models.InscriptionList, error) {
	if err := s.checkView(view); err != nil {
		return nil, err
	}
	records := s.records(ctx)
	items := dashboard.Apply(records, view)
	return &models.InscriptionList{Items: items, Stats: dashboard.Count(records), Total: len(items)}, nil
}

func (s *AdminService) Stats(ctx context.Context) models.Stats {
	return dashboard.Count(s.records(ctx))
}

// UpdateStatus writes status, comment and modification time together.
func (s *AdminService) UpdateStatus(ctx context.Context, id string, update models.StatusUpdate) (*models.StatusUpdate, error) {
	msgs := s.catalog.Messages.Admin
	update.Comment = strings.TrimSpace(update.Comment)
	if err := s.validator.Struct(update); err != nil {
		return nil, firstFieldError(err, func(field, _, _ string) string {
			if field == "statut" {
				return msgs.InvalidStatus
			}
			return ""
		})
	}
	update.ModifiedAt = s.now().UTC()

	if err := s.gateway.UpdateStatus(ctx, id, update); err != nil {
		return nil, s.writeError(err, msgs.UpdateError, "update status", id)
	}
	s.cache.Invalidate(ctx, cachePatternAll)
	s.logger.Info("inscription status updated", zap.String("id", id), zap.String("status", string(update.Status)))
	return &update, nil
}

func (s *AdminService) Delete(ctx context.Context, id string) error {
	if err := s.gateway.Delete(ctx, id); err != nil {
		return s.writeError(err, s.catalog.Messages.Admin.DeleteError, "delete", id)
	}
	s.cache.Invalidate(ctx, cachePatternAll)
	s.logger.Info("inscription deleted", zap.String("id", id))
	return nil
}

func (s *AdminService) writeError(err error, message, op, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, s.catalog.Messages.Admin.NotFound)
	}
	s.logger.Error(op+" failed", zap.String("id", id), zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func (s *AdminService) NotificationEmail(ctx context.Context) models.Configuration {
	return models.Configuration{ID: models.ConfigurationID, NotificationEmail: s.gateway.NotificationEmail(ctx)}
}

func (s *AdminService) SetNotificationEmail(ctx context.Context, req models.NotificationEmailRequest) (*models.Configuration, error) {
	msgs := s.catalog.Messages.Admin
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, firstFieldError(err, func(_, _, _ string) string { return msgs.InvalidEmail })
	}
	if err := s.gateway.SaveNotificationEmail(ctx, req.Email); err != nil {
		s.logger.Error("save notification email failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, msgs.UpdateError)
	}
	now := s.now().UTC()
	return &models.Configuration{ID: models.ConfigurationID, NotificationEmail: req.Email, UpdatedAt: &now}, nil
}

// SendTestNotification sends the test template and returns the inline status line.
func (s *AdminService) SendTestNotification(ctx context.Context, req models.TestNotificationRequest) (*models.TestNotificationResult, error) {
	msgs := s.catalog.Messages.Admin
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, firstFieldError(err, func(_, _, _ string) string { return msgs.InvalidEmail })
	}
	status, err := s.sender.SendTest(ctx, req.Email)
	if err != nil {
		s.logger.Warn("test notification failed", zap.String("to", req.Email), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, msgs.TestError)
	}
	message := catalog.Interpolate(msgs.TestSent, map[string]string{"email": req.Email})
	if status == models.NotificationSimulated {
		message = msgs.EmailSimulation
	}
	return &models.TestNotificationResult{Status: status, Message: message}, nil
}

// Export renders the view in the requested format.
func (s *AdminService) Export(ctx context.Context, view dashboard.View, format string) (*models.ExportFile, error) {
	if err := s.checkView(view); err != nil {
		return nil, err
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}

	data := exportDataset(dashboard.Apply(s.records(ctx), view))
	stamp := s.now().Format("20060102")
	file := &models.ExportFile{Filename: fmt.Sprintf("inscriptions-forum-%s.%s", stamp, format)}

	var err error
	switch format {
	case FormatCSV:
		file.ContentType = "text/csv; charset=utf-8"
		file.Body, err = s.csv.Render(data)
	case FormatXLSX:
		file.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		file.Body, err = s.xlsx.Render(data)
	case FormatPDF:
		file.ContentType = "application/pdf"
		file.Body, err = s.pdf.Render(data, s.catalog.Event.Name+" - Inscriptions")
	default:
		return nil, appErrors.FieldError("format", fmt.Sprintf("unsupported format %q", format))
	}
	if err != nil {
		s.logger.Error("export failed", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "export failed")
	}
	return file, nil
}

func exportDataset(records []models.Inscription) export.Dataset {
	rows := make([]map[string]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, map[string]string{
			"Nom":                r.LastName,
			"Prénom":             r.FirstName,
			"Numéro CP":          r.Code,
			"Lieu d'affectation": r.Unit,
			"Statut":             string(r.Status),
			"Date d'inscription": catalog.FormatDate(r.CreatedAt),
			"Commentaires":       r.CommentText(),
		})
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}

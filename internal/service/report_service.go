package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/campus-events-console/internal/models"
	appErrors "github.com/noah-isme/campus-events-console/pkg/errors"
	"github.com/noah-isme/campus-events-console/pkg/export"
)

type reportRepository interface {
	Registrations(ctx context.Context) ([]models.RegistrationReportRow, error)
	TopStudents(ctx context.Context) ([]models.TopStudentRow, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

const reportsOverviewKey = reportsCachePrefix + "overview"

// ReportFile is a rendered report ready for download.
type ReportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ReportService serves the reports screen and its downloads.
type ReportService struct {
	repo      reportRepository
	cache     *CacheService
	renderers map[models.ReportFormat]datasetRenderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewReportService constructs a report service with CSV and PDF renderers.
func NewReportService(repo reportRepository, cache *CacheService, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		repo:  repo,
		cache: cache,
		renderers: map[models.ReportFormat]datasetRenderer{
			models.ReportFormatCSV: export.NewCSVExporter(),
			models.ReportFormatPDF: export.NewPDFExporter(),
		},
		logger: logger,
		now:    time.Now,
	}
}

// Overview returns both reports, from cache when possible. The bool reports a cache hit.
func (s *ReportService) Overview(ctx context.Context) (models.ReportsOverview, bool, error) {
	var cached models.ReportsOverview
	if hit, _ := s.cache.Get(ctx, reportsOverviewKey, &cached); hit {
		return cached, true, nil
	}

	var overview models.ReportsOverview
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		overview.Registrations, err = s.repo.Registrations(gctx)
		return err
	})
	g.Go(func() (err error) {
		overview.TopStudents, err = s.repo.TopStudents(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.ReportsOverview{}, false, err
	}
	if overview.Registrations == nil {
		overview.Registrations = []models.RegistrationReportRow{}
	}
	if overview.TopStudents == nil {
		overview.TopStudents = []models.TopStudentRow{}
	}
	_ = s.cache.Set(ctx, reportsOverviewKey, overview, 0)
	return overview, false, nil
}

// Export renders the registrations report in the requested format.
func (s *ReportService) Export(ctx context.Context, format string) (*ReportFile, error) {
	f := models.ReportFormat(strings.ToLower(strings.TrimSpace(format)))
	if f == "" {
		f = models.ReportFormatCSV
	}
	renderer, ok := s.renderers[f]
	if !ok {
		return nil, appErrors.NewValidationError("format", "must be one of csv, pdf")
	}

	overview, _, err := s.Overview(ctx)
	if err != nil {
		return nil, err
	}

	generatedAt := s.now().UTC()
	dataset := export.Dataset{
		Title:       "Event Registrations",
		Headers:     []string{"Event", "Total Registrations"},
		GeneratedAt: generatedAt,
	}
	for _, row := range overview.Registrations {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Event":               row.EventName,
			"Total Registrations": strconv.Itoa(row.TotalRegistrations),
		})
	}

	payload, err := renderer.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}
	s.logger.Info("report exported", zap.String("format", string(f)), zap.Int("rows", len(dataset.Rows)))
	return &ReportFile{
		Filename:    fmt.Sprintf("registrations-%s.%s", generatedAt.Format("20060102-150405"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Payload:     payload,
	}, nil
}

// OnMutationSettled drops cached reports after any successful write.
func (s *ReportService) OnMutationSettled(ctx context.Context, _ string) error {
	return s.cache.Invalidate(ctx, reportsCachePrefix+"*")
}

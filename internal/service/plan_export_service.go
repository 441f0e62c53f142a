package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/accompaniment-planner-api/internal/dto"
	appErrors "github.com/noah-isme/accompaniment-planner-api/pkg/errors"
	"github.com/noah-isme/accompaniment-planner-api/pkg/export"
)

type weekPlanReader interface {
	WeekPlan(ctx context.Context, specialistID, weekID string) (*dto.WeekPlanResponse, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// PlanExport is a rendered weekly plan ready to stream.
type PlanExport struct {
	Filename    string
	ContentType string
	Data        []byte
}

var (
	planExportHeaders = []string{"Teacher", "Course", "Site", "Day", "Date", "Start", "End", "Status"}
	planExportWidths  = []float64{3, 3, 2, 1.5, 1.5, 1, 1, 1.5}
)

// PlanExportService renders a week's selected and confirmed visits as CSV or PDF.
type PlanExportService struct {
	plans  weekPlanReader
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewPlanExportService constructs the exporter; nil renderers use the pkg/export defaults.
func NewPlanExportService(plans weekPlanReader, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *PlanExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &PlanExportService{plans: plans, csv: csv, pdf: pdf, logger: logger}
}

// Export renders weekID in format ("csv" or "pdf").
func (s *PlanExportService) Export(ctx context.Context, specialistID, weekID, format string) (*PlanExport, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "pdf" {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	plan, err := s.plans.WeekPlan(ctx, specialistID, weekID)
	if err != nil {
		return nil, err
	}
	data := planDataset(plan)

	var (
		body        []byte
		contentType string
	)
	switch format {
	case "pdf":
		body, err = s.pdf.Render(data)
		contentType = "application/pdf"
	default:
		body, err = s.csv.Render(data)
		contentType = "text/csv"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render plan export")
	}
	s.logger.Debug("plan exported", zap.String("specialist_id", specialistID), zap.String("week", plan.WeekID), zap.String("format", format), zap.Int("rows", len(data.Rows)))

	return &PlanExport{
		Filename:    fmt.Sprintf("plan-%s.%s", plan.WeekID, format),
		ContentType: contentType,
		Data:        body,
	}, nil
}

func planDataset(plan *dto.WeekPlanResponse) export.Dataset {
	rows := make([][]string, 0, len(plan.Selected)+len(plan.Committed))
	add := func(session dto.SessionDTO, status string) {
		teacher := session.TeacherName
		if teacher == "" {
			teacher = session.TeacherID
		}
		rows = append(rows, []string{
			teacher, session.Course, session.Site, session.DayName, session.Date,
			session.StartTime, session.EndTime, status,
		})
	}
	for _, session := range plan.Committed {
		add(session, "CONFIRMED")
	}
	for _, session := range plan.Selected {
		add(session, "SELECTED")
	}
	budget := plan.Budget
	return export.Dataset{
		Title:   fmt.Sprintf("Accompaniment plan %s (week of %s)", plan.WeekID, plan.Monday),
		Headers: planExportHeaders,
		Rows:    rows,
		Widths:  planExportWidths,
		Footer:  fmt.Sprintf("%s: %.1f of %.1f hours used, %.1f remaining", budget.Month, budget.UsedHours, budget.LimitHours, budget.RemainingHours),
	}
}

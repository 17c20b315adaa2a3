package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/icl-edu/course-inquiry-api/internal/models"
	appErrors "github.com/icl-edu/course-inquiry-api/pkg/errors"
	"github.com/icl-edu/course-inquiry-api/pkg/export"
)

type exportInquiryRepository interface {
	List(ctx context.Context, filter models.InquiryFilter) ([]models.Inquiry, int, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult is a rendered export ready for streaming to the client.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders filtered inquiry listings as downloadable files.
type ExportService struct {
	repo   exportInquiryRepository
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(repo exportInquiryRepository, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{repo: repo, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// Generate renders every inquiry matching the filter in the requested
// format. Pagination is bypassed so the export covers the full result set.
func (s *ExportService) Generate(ctx context.Context, filter models.InquiryFilter, format ExportFormat) (*ExportResult, error) {
	filter.Page = 1
	filter.PageSize = 10000

	inquiries, _, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load inquiries for export")
	}

	dataset := buildInquiryDataset(inquiries)
	stamp := s.now().Format("20060102_150405")

	switch format {
	case ExportFormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render CSV")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("inquiries_%s.csv", stamp),
			ContentType: "text/csv",
			Payload:     payload,
		}, nil
	case ExportFormatPDF:
		payload, err := s.pdf.Render(dataset, "Course Inquiries")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render PDF")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("inquiries_%s.pdf", stamp),
			ContentType: "application/pdf",
			Payload:     payload,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func buildInquiryDataset(inquiries []models.Inquiry) export.Dataset {
	rows := make([]map[string]string, 0, len(inquiries))
	for _, q := range inquiries {
		rows = append(rows, map[string]string{
			"ID":             q.ID,
			"Name":           q.Name,
			"Email":          q.Email,
			"Phone":          q.Phone,
			"Course":         q.CourseName,
			"Organization":   q.Organization,
			"Degree":         q.Degree,
			"Department":     q.Department,
			"Year":           q.Year,
			"Status":         string(q.Status),
			"Payment Status": string(q.PaymentStatus),
			"Created At":     q.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return export.Dataset{
		Headers: []string{"ID", "Name", "Email", "Phone", "Course", "Organization", "Degree", "Department", "Year", "Status", "Payment Status", "Created At"},
		Rows:    rows,
	}
}

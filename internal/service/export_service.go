package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/enroll-wizard-api/internal/models"
	"github.com/noah-isme/enroll-wizard-api/pkg/export"
)

// ExportFormat selects the review summary rendering.
type ExportFormat string

// Supported export formats.
const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type recordSource interface {
	Record(ctx context.Context, draftID string) (models.EnrollmentRecord, error)
}

type csvRenderer interface {
	Render(summary export.Summary) ([]byte, error)
}

type pdfRenderer interface {
	Render(summary export.Summary) ([]byte, error)
}

// ExportResult carries a rendered review summary.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders the review summary of a draft.
type ExportService struct {
	records recordSource
	csv     csvRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(records recordSource, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		records: records,
		csv:     csv,
		pdf:     pdf,
		logger:  logger,
	}
}

// Generate renders the review summary of draftID in format.
func (s *ExportService) Generate(ctx context.Context, draftID string, format ExportFormat) (*ExportResult, error) {
	record, err := s.records.Record(ctx, draftID)
	if err != nil {
		return nil, err
	}
	summary := BuildReviewSummary(record)

	var (
		data        []byte
		contentType string
	)
	switch format {
	case ExportFormatCSV:
		data, err = s.csv.Render(summary)
		contentType = "text/csv"
	case ExportFormatPDF:
		data, err = s.pdf.Render(summary)
		contentType = "application/pdf"
	default:
		err = fmt.Errorf("unsupported format %s", format)
	}
	if err != nil {
		s.logger.Warn("review export failed", zap.String("draft_id", draftID), zap.String("format", string(format)), zap.Error(err))
		return nil, err
	}
	return &ExportResult{
		Filename:    fmt.Sprintf("enrollment_review_%s.%s", sanitizeFilename(draftID), format),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// BuildReviewSummary lays out record the way the review screen shows it: one
// section per step, mobiles with the +91 prefix, and the scholarship details
// only when a scholarship is requested.
func BuildReviewSummary(record models.EnrollmentRecord) export.Summary {
	student := export.Section{
		Title: sectionTitle(models.Step1),
		Rows: []export.Row{
			{Label: "Full Name", Value: displayText(record.FullName)},
			{Label: "Email", Value: displayText(record.Email)},
			{Label: "Mobile", Value: displayPhone(record.Mobile)},
			{Label: "Class", Value: displayText(record.ClassLevel)},
			{Label: "Board", Value: displayText(record.Board)},
			{Label: "Preferred Language", Value: displayText(record.PreferredLanguage)},
		},
	}

	scholarship := record.Scholarship != nil && *record.Scholarship
	academic := export.Section{
		Title: sectionTitle(models.Step2),
		Rows: []export.Row{
			{Label: "Subjects", Value: strings.Join(record.UniqueSubjects(), ", ")},
			{Label: "Exam Goal", Value: displayText(record.ExamGoal)},
			{Label: "Weekly Study Hours", Value: displayNumber(record.WeeklyStudyHours)},
			{Label: "Scholarship", Value: yesNo(scholarship)},
		},
	}
	if scholarship {
		academic.Rows = append(academic.Rows,
			export.Row{Label: "Last Exam %", Value: displayPercent(record.LastExamPercentage)},
			export.Row{Label: "Achievements", Value: displayText(record.Achievements)},
		)
	}

	logistics := export.Section{
		Title: sectionTitle(models.Step3),
		Rows: []export.Row{
			{Label: "PIN Code", Value: displayText(record.PinCode)},
			{Label: "State", Value: displayText(record.State)},
			{Label: "City", Value: displayText(record.City)},
			{Label: "Address", Value: displayText(record.AddressLine)},
			{Label: "Guardian Name", Value: displayText(record.GuardianName)},
			{Label: "Guardian Mobile", Value: displayPhone(record.GuardianMobile)},
			{Label: "Payment Plan", Value: displayText(record.PaymentPlan)},
			{Label: "Payment Mode", Value: displayText(record.PaymentMode)},
		},
	}

	return export.Summary{
		Title:    "Enrollment Review",
		Sections: []export.Section{student, academic, logistics},
	}
}

func sectionTitle(step models.Step) string {
	def, _ := step.Definition()
	return def.Title
}

func displayText[T ~string](v *T) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(string(*v))
}

func displayPhone(v *string) string {
	s := displayText(v)
	if s == "" {
		return ""
	}
	return "+91 " + s
}

func displayNumber(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func displayPercent(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/legnamegusta-ctrl/apporgania/internal/domain/models"
	"github.com/legnamegusta-ctrl/apporgania/internal/repository/sheets"
)

const (
	topMargin    = 20.0
	leftMargin   = 20.0
	bottomGuard  = 30.0
	lineHeight   = 7.0
	detailHeight = 5.0
	dateLayout   = "02/01/2006"
)

// Exporter renders the property report as a paginated PDF and, when a
// spreadsheet sink is configured, appends the activity rows to it.
type Exporter struct {
	maxActivities int
	sheets        sheets.Repository
	logger        *zap.Logger
}

// NewExporter wires a report exporter. sheetsRepo may be nil when the
// spreadsheet sink is disabled.
func NewExporter(maxActivities int, sheetsRepo sheets.Repository, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{
		maxActivities: maxActivities,
		sheets:        sheetsRepo,
		logger:        logger,
	}
}

// TypeCount is one bar of the activity-type histogram.
type TypeCount struct {
	Type  models.ActivityType
	Label string
	Count int
}

// Histogram counts activities per type, in the fixed display order.
func Histogram(activities []models.Activity) []TypeCount {
	counts := map[models.ActivityType]int{}
	for _, activity := range activities {
		counts[activity.Type]++
	}

	ordered := []TypeCount{
		{Type: models.ActivitySoilAnalysis, Label: "Análises de Solo"},
		{Type: models.ActivityManagement, Label: "Atividades de Manejo"},
		{Type: models.ActivityTask, Label: "Tarefas"},
	}

	result := make([]TypeCount, 0, len(ordered))
	for _, entry := range ordered {
		if n := counts[entry.Type]; n > 0 {
			entry.Count = n
			result = append(result, entry)
		}
	}
	return result
}

// TruncationNotice names how many activities were left out of the detailed
// listing, or "" when none were.
func TruncationNotice(total, capN int) string {
	if total <= capN {
		return ""
	}
	return fmt.Sprintf("... e mais %d atividades", total-capN)
}

// BuildPDF renders the report document: title block, property metadata, KPI
// snapshot, activity-type histogram and the first maxActivities detailed
// entries with a truncation notice for the rest. Failures, including drawing
// panics, are returned as errors and never escape the caller boundary.
func (e *Exporter) BuildPDF(property models.Property, kpis models.KPIData, activities []models.Activity, from, to time.Time) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("pdf rendering panicked", zap.Any("cause", r))
			out, err = nil, fmt.Errorf("render report: %v", r)
		}
	}()

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageWidth, pageHeight := pdf.GetPageSize()

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Página %d de {nb}", pdf.PageNo())), "", 0, "C", false, 0, "")
	})
	pdf.AliasNbPages("")
	pdf.AddPage()

	y := topMargin

	// Title block
	pdf.SetFont("Helvetica", "B", 20)
	pdf.Text(pageWidth/2-pdf.GetStringWidth("AppOrgania - Relatório da Propriedade")/2, y,
		tr("AppOrgania - Relatório da Propriedade"))
	y += 15

	pdf.SetFont("Helvetica", "", 12)
	period := fmt.Sprintf("Período: %s - %s", from.Format(dateLayout), to.Format(dateLayout))
	pdf.Text(pageWidth/2-pdf.GetStringWidth(period)/2, y, tr(period))
	y += 20

	// Property metadata
	y = e.sectionTitle(pdf, tr, "Informações da Propriedade", y)
	pdf.SetFont("Helvetica", "", 12)
	for _, line := range []string{
		fmt.Sprintf("Nome: %s", property.Name),
		fmt.Sprintf("Localização: %s", property.Location),
		fmt.Sprintf("Área Total: %.1f hectares", property.AreaHa),
	} {
		pdf.Text(leftMargin, y, tr(line))
		y += lineHeight
	}
	y += 8

	// KPI snapshot
	y = e.sectionTitle(pdf, tr, "Indicadores de Performance", y)
	pdf.SetFont("Helvetica", "", 12)
	for _, line := range []string{
		fmt.Sprintf("- Área Total: %.1f ha", kpis.TotalArea),
		fmt.Sprintf("- Total de Atividades: %d", kpis.TotalActivities),
		fmt.Sprintf("- Próximas Tarefas: %d", kpis.UpcomingTasks),
		fmt.Sprintf("- Irrigação Ativa: %.0f%%", kpis.ActiveIrrigation),
	} {
		pdf.Text(leftMargin+5, y, tr(line))
		y += lineHeight
	}
	y += 8

	// Activity-type histogram
	y = e.sectionTitle(pdf, tr, "Resumo de Atividades", y)
	pdf.SetFont("Helvetica", "", 12)
	for _, bar := range Histogram(activities) {
		pdf.Text(leftMargin+5, y, tr(fmt.Sprintf("- %s: %d", bar.Label, bar.Count)))
		y += lineHeight
	}
	y += 10

	// Detailed activities, first maxActivities only
	if len(activities) > 0 {
		y = e.sectionTitle(pdf, tr, "Atividades Detalhadas", y)

		capN := e.maxActivities
		if capN > len(activities) {
			capN = len(activities)
		}

		for i, activity := range activities[:capN] {
			if y > pageHeight-bottomGuard {
				pdf.AddPage()
				y = topMargin
			}

			pdf.SetFont("Helvetica", "B", 12)
			pdf.Text(leftMargin, y, tr(fmt.Sprintf("%d. %s", i+1, activity.Title)))
			y += lineHeight

			pdf.SetFont("Helvetica", "", 12)
			for _, line := range []string{
				fmt.Sprintf("   Data: %s", activity.Date.Format(dateLayout)),
				fmt.Sprintf("   Local: %s", activity.Location),
				fmt.Sprintf("   Responsável: %s", activity.Responsible),
			} {
				pdf.Text(leftMargin, y, tr(line))
				y += detailHeight
			}

			description := fmt.Sprintf("   Descrição: %s", activity.Description)
			lines := pdf.SplitText(tr(description), pageWidth-2*leftMargin)
			for _, line := range lines {
				if y > pageHeight-bottomGuard {
					pdf.AddPage()
					y = topMargin
				}
				pdf.Text(leftMargin, y, line)
				y += detailHeight
			}
			y += detailHeight
		}

		if notice := TruncationNotice(len(activities), e.maxActivities); notice != "" {
			if y > pageHeight-bottomGuard {
				pdf.AddPage()
				y = topMargin
			}
			pdf.Text(leftMargin, y, tr(notice))
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// sectionTitle draws a bold section heading and returns the advanced cursor.
func (e *Exporter) sectionTitle(pdf *fpdf.Fpdf, tr func(string) string, title string, y float64) float64 {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(leftMargin, y, tr(title))
	return y + 10
}

// ExportToSheet appends the activity rows to the configured spreadsheet.
func (e *Exporter) ExportToSheet(ctx context.Context, property models.Property, activities []models.Activity) error {
	if e.sheets == nil {
		return fmt.Errorf("spreadsheet export is not configured")
	}
	if err := e.sheets.AppendActivities(ctx, property, activities); err != nil {
		return fmt.Errorf("export activities to sheet: %w", err)
	}
	e.logger.Info("activities exported to sheet",
		zap.String("property", property.ID),
		zap.Int("count", len(activities)))
	return nil
}

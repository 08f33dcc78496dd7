package report

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legnamegusta-ctrl/apporgania/internal/domain/models"
)

type fakeSheetRepo struct {
	appended int
	err      error
}

func (f *fakeSheetRepo) AppendActivities(_ context.Context, _ models.Property, activities []models.Activity) error {
	if f.err != nil {
		return f.err
	}
	f.appended += len(activities)
	return nil
}

func manyActivities(n int) []models.Activity {
	activities := make([]models.Activity, 0, n)
	for i := 0; i < n; i++ {
		typ := models.ActivityManagement
		if i%3 == 0 {
			typ = models.ActivitySoilAnalysis
		}
		activities = append(activities, models.Activity{
			ID:          fmt.Sprintf("act-%d", i),
			Title:       fmt.Sprintf("Atividade %d", i),
			Description: "Aplicação de calcário no talhão norte, conforme recomendação da última análise.",
			Type:        typ,
			Status:      models.StatusCompleted,
			Date:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour),
			Location:    "Talhão Norte",
			Responsible: "Maria",
		})
	}
	return activities
}

func TestTruncationNotice(t *testing.T) {
	assert.Equal(t, "... e mais 15 atividades", TruncationNotice(25, 10))
	assert.Equal(t, "... e mais 1 atividades", TruncationNotice(11, 10))
	assert.Equal(t, "", TruncationNotice(10, 10))
	assert.Equal(t, "", TruncationNotice(3, 10))
	assert.Equal(t, "", TruncationNotice(0, 10))
}

func TestHistogram(t *testing.T) {
	activities := []models.Activity{
		{Type: models.ActivityTask},
		{Type: models.ActivitySoilAnalysis},
		{Type: models.ActivityTask},
	}

	bars := Histogram(activities)
	require.Len(t, bars, 2)

	// Fixed display order, zero-count types omitted.
	assert.Equal(t, "Análises de Solo", bars[0].Label)
	assert.Equal(t, 1, bars[0].Count)
	assert.Equal(t, "Tarefas", bars[1].Label)
	assert.Equal(t, 2, bars[1].Count)
}

func TestHistogram_Empty(t *testing.T) {
	assert.Empty(t, Histogram(nil))
}

func TestBuildPDF(t *testing.T) {
	exporter := NewExporter(10, nil, nil)

	property := models.Property{
		ID:       "p1",
		Name:     "Fazenda Santa Rita",
		Location: "Uberlândia, MG",
		AreaHa:   120,
	}
	kpis := models.KPIData{
		TotalArea:        120,
		TotalActivities:  25,
		UpcomingTasks:    4,
		ActiveIrrigation: 80,
	}
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	out, err := exporter.BuildPDF(property, kpis, manyActivities(25), from, to)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestBuildPDF_NoActivities(t *testing.T) {
	exporter := NewExporter(10, nil, nil)

	out, err := exporter.BuildPDF(models.Property{Name: "Sítio Boa Vista"}, models.KPIData{}, nil, time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestExportToSheet(t *testing.T) {
	sheet := &fakeSheetRepo{}
	exporter := NewExporter(10, sheet, nil)

	err := exporter.ExportToSheet(context.Background(), models.Property{ID: "p1"}, manyActivities(3))
	require.NoError(t, err)
	assert.Equal(t, 3, sheet.appended)
}

func TestExportToSheet_NotConfigured(t *testing.T) {
	exporter := NewExporter(10, nil, nil)

	err := exporter.ExportToSheet(context.Background(), models.Property{ID: "p1"}, nil)
	assert.Error(t, err)
}

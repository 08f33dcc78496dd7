package sheets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/legnamegusta-ctrl/apporgania/internal/config"
	"github.com/legnamegusta-ctrl/apporgania/internal/domain/models"
)

const (
	activitiesRange = "Activities!A:H"
	dateLayout      = "2006-01-02"
)

// Repository defines the spreadsheet sink operations used by the report
// service.
type Repository interface {
	AppendActivities(ctx context.Context, property models.Property, activities []models.Activity) error
}

// GoogleSheetRepository implements the Repository interface using the
// official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// AppendActivities appends one row per activity to the export sheet.
func (r *GoogleSheetRepository) AppendActivities(ctx context.Context, property models.Property, activities []models.Activity) error {
	if len(activities) == 0 {
		return nil
	}

	rows := make([][]interface{}, 0, len(activities))
	for _, activity := range activities {
		rows = append(rows, []interface{}{
			property.Name,
			activity.Date.Format(dateLayout),
			activity.Title,
			string(activity.Type),
			string(activity.Status),
			activity.Location,
			activity.Responsible,
			activity.Description,
		})
	}

	payload := &sheetsapi.ValueRange{Values: rows}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, activitiesRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append activities into range %s: %w", activitiesRange, err)
	}

	r.logger.Debug("activities appended to sheet",
		zap.String("property", property.ID),
		zap.Int("rows", len(rows)),
		zap.Time("at", time.Now()))
	return nil
}

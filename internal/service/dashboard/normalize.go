package dashboard

import (
	"time"

	"github.com/legnamegusta-ctrl/apporgania/internal/domain/models"
)

// Normalize maps a raw stored record into an Activity. Missing audit
// timestamps default to now; the type discriminant must be one of the three
// known kinds and the populated payload (if any) must match it. Normalizing
// an already normalized record is a no-op.
func Normalize(raw models.RawActivity, now time.Time) (models.Activity, error) {
	typ := models.ActivityType(raw.Type)
	if !typ.Valid() {
		return models.Activity{}, &models.UnknownActivityTypeError{Type: raw.Type}
	}

	status := models.ActivityStatus(raw.Status)
	if !status.Valid() {
		return models.Activity{}, &models.ValidationError{Field: "status", Reason: "unknown status " + raw.Status}
	}

	if err := checkPayload(typ, raw); err != nil {
		return models.Activity{}, err
	}

	createdAt := now
	if raw.CreatedAt != nil {
		createdAt = *raw.CreatedAt
	}
	updatedAt := now
	if raw.UpdatedAt != nil {
		updatedAt = *raw.UpdatedAt
	}

	return models.Activity{
		ID:          raw.ID,
		Title:       raw.Title,
		Description: raw.Description,
		Type:        typ,
		Status:      status,
		Date:        raw.Date,
		Location:    raw.Location,
		Responsible: raw.Responsible,
		PropertyID:  raw.PropertyID,
		Photos:      raw.Photos,
		Files:       raw.Files,
		Soil:        raw.Soil,
		Management:  raw.Management,
		Task:        raw.Task,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

// checkPayload enforces the payload/type invariant: at most one populated
// payload, and never the wrong one for the discriminant.
func checkPayload(typ models.ActivityType, raw models.RawActivity) error {
	populated := 0
	if raw.Soil != nil {
		populated++
	}
	if raw.Management != nil {
		populated++
	}
	if raw.Task != nil {
		populated++
	}
	if populated > 1 {
		return &models.ValidationError{Field: "payload", Reason: "more than one payload populated"}
	}
	if populated == 0 {
		return nil
	}

	mismatch := (raw.Soil != nil && typ != models.ActivitySoilAnalysis) ||
		(raw.Management != nil && typ != models.ActivityManagement) ||
		(raw.Task != nil && typ != models.ActivityTask)
	if mismatch {
		return &models.ValidationError{Field: "payload", Reason: "payload does not match type " + string(typ)}
	}
	return nil
}

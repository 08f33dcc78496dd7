package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/legnamegusta-ctrl/apporgania/internal/domain/models"
)

func sampleActivities() []models.Activity {
	return []models.Activity{
		{ID: "a1", Title: "Soil Test A", Type: models.ActivitySoilAnalysis, Status: models.StatusCompleted},
		{ID: "a2", Title: "Irrigation Check", Description: "Checar linhas de gotejamento", Type: models.ActivityManagement, Status: models.StatusPending},
		{ID: "a3", Title: "Harvest Planning", Responsible: "Carlos", Type: models.ActivityTask, Status: models.StatusPending},
	}
}

func TestFilter_QueryMatchesTitleOnly(t *testing.T) {
	got := Filter(sampleActivities(), "soil", FilterAll, FilterAll)

	assert.Len(t, got, 1)
	assert.Equal(t, "Soil Test A", got[0].Title)
}

func TestFilter_QueryIsCaseInsensitive(t *testing.T) {
	got := Filter(sampleActivities(), "SOIL", FilterAll, FilterAll)
	assert.Len(t, got, 1)

	got = Filter(sampleActivities(), "  carlos ", FilterAll, FilterAll)
	assert.Len(t, got, 1)
	assert.Equal(t, "a3", got[0].ID)
}

func TestFilter_Conjunctive(t *testing.T) {
	activities := sampleActivities()

	pending := Filter(activities, "", string(models.StatusPending), FilterAll)
	assert.Len(t, pending, 2)

	pendingTasks := Filter(activities, "", string(models.StatusPending), string(models.ActivityTask))
	assert.Len(t, pendingTasks, 1)
	assert.Equal(t, "a3", pendingTasks[0].ID)

	// Tightening the query can only shrink the result set.
	narrowed := Filter(activities, "harvest", string(models.StatusPending), string(models.ActivityTask))
	assert.Len(t, narrowed, 1)

	none := Filter(activities, "soil", string(models.StatusPending), string(models.ActivityTask))
	assert.Empty(t, none)
}

func TestFilter_WildcardsReturnEverything(t *testing.T) {
	activities := sampleActivities()

	assert.Len(t, Filter(activities, "", FilterAll, FilterAll), 3)
	assert.Len(t, Filter(activities, "", "", ""), 3)
}

func TestFilter_PreservesOrderWithoutMutating(t *testing.T) {
	activities := sampleActivities()

	got := Filter(activities, "", string(models.StatusPending), FilterAll)
	assert.Equal(t, []string{"a2", "a3"}, []string{got[0].ID, got[1].ID})

	// Input slice is untouched.
	assert.Equal(t, "a1", activities[0].ID)
	assert.Len(t, activities, 3)
}

package mongodb

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/legnamegusta-ctrl/apporgania/internal/domain/models"
)

func TestChecklistItemSets(t *testing.T) {
	assert.Equal(t,
		[]string{"ordemGerada", "impressaoEtiqueta", "amostra", "contraprova", "ordemCompleta"},
		checklistItems[models.ChecklistProduction])
	assert.Equal(t,
		[]string{"pedidoPreenchido", "pedidoAgendado", "emissaoNotaFiscal", "pedidoPronto"},
		checklistItems[models.ChecklistSale])
}

func TestChecklistProgress(t *testing.T) {
	production := checklistItems[models.ChecklistProduction]

	assert.Equal(t, 0, checklistProgress(map[string]bool{}, production))
	assert.Equal(t, 20, checklistProgress(map[string]bool{"ordemGerada": true}, production))
	assert.Equal(t, 40, checklistProgress(map[string]bool{"ordemGerada": true, "amostra": true}, production))
	assert.Equal(t, 100, checklistProgress(map[string]bool{
		"ordemGerada": true, "impressaoEtiqueta": true, "amostra": true, "contraprova": true, "ordemCompleta": true,
	}, production))
}

func TestChecklistProgress_IgnoresStrayKeys(t *testing.T) {
	sale := checklistItems[models.ChecklistSale]

	state := map[string]bool{
		"pedidoPreenchido": true,
		"legacyField":      true,
	}
	assert.Equal(t, 25, checklistProgress(state, sale))
}

func TestChecklistProgress_UncheckedItemsDoNotCount(t *testing.T) {
	sale := checklistItems[models.ChecklistSale]

	state := map[string]bool{
		"pedidoPreenchido":  true,
		"pedidoAgendado":    false,
		"emissaoNotaFiscal": true,
	}
	assert.Equal(t, 50, checklistProgress(state, sale))
}

func TestChecklistDone(t *testing.T) {
	assert.False(t, models.Checklist{Progress: 99}.Done())
	assert.True(t, models.Checklist{Progress: 100}.Done())
}

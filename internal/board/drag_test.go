package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDragEndOntoColumn(t *testing.T) {
	gw := new(mockGateway)
	store := loadedStore(gw, leadAt("lead-1", "Acme Corp", stageNew))
	drag := NewDragController(store)

	drag.DragStart("lead-1")
	intent, ok := drag.DragEnd(stageContacted)

	assert.True(t, ok)
	assert.Equal(t, MoveIntent{LeadID: "lead-1", FromStageID: stageNew, ToStageID: stageContacted}, intent)

	_, dragging := drag.Dragging()
	assert.False(t, dragging)
}

// Dropping onto a card resolves to that card's owning stage, same as
// dropping on the column itself.
func TestDragEndOntoCardResolvesOwningStage(t *testing.T) {
	gw := new(mockGateway)
	store := loadedStore(gw,
		leadAt("lead-1", "Acme Corp", stageNew),
		leadAt("lead-2", "Globex", stageContacted),
	)
	drag := NewDragController(store)

	drag.DragStart("lead-1")
	intent, ok := drag.DragEnd("lead-2")

	assert.True(t, ok)
	assert.Equal(t, stageContacted, intent.ToStageID)
}

func TestDragEndSameStageIsNoOp(t *testing.T) {
	gw := new(mockGateway)
	store := loadedStore(gw,
		leadAt("lead-1", "Acme Corp", stageNew),
		leadAt("lead-2", "Globex", stageNew),
	)
	drag := NewDragController(store)

	// onto own column
	drag.DragStart("lead-1")
	_, ok := drag.DragEnd(stageNew)
	assert.False(t, ok)

	// onto a sibling card in the same column
	drag.DragStart("lead-1")
	_, ok = drag.DragEnd("lead-2")
	assert.False(t, ok)
}

func TestDragStateClearedOnEveryExitPath(t *testing.T) {
	gw := new(mockGateway)
	store := loadedStore(gw, leadAt("lead-1", "Acme Corp", stageNew))
	drag := NewDragController(store)

	cases := []struct {
		name   string
		lead   string
		target string
	}{
		{"unknown target", "lead-1", "not-a-stage-or-card"},
		{"empty target", "lead-1", ""},
		{"unknown lead", "lead-ghost", stageContacted},
		{"same stage", "lead-1", stageNew},
		{"valid move", "lead-1", stageContacted},
	}

	for _, tc := range cases {
		drag.DragStart(tc.lead)
		drag.DragEnd(tc.target)
		_, dragging := drag.Dragging()
		assert.False(t, dragging, tc.name)
	}
}

func TestDragEndWithoutDragStart(t *testing.T) {
	gw := new(mockGateway)
	store := loadedStore(gw, leadAt("lead-1", "Acme Corp", stageNew))
	drag := NewDragController(store)

	_, ok := drag.DragEnd(stageContacted)
	assert.False(t, ok)
}

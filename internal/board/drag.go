package board

import "sync"

// MoveIntent is a resolved drag gesture: move one lead between two
// distinct stages of the current pipeline.
type MoveIntent struct {
	LeadID      string
	FromStageID string
	ToStageID   string
}

// DragController translates a pointer-drag session into a MoveIntent.
// It never touches the store beyond read-only lookups.
type DragController struct {
	store *StateStore

	mu       sync.Mutex
	dragging string
}

func NewDragController(store *StateStore) *DragController {
	return &DragController{store: store}
}

func (d *DragController) DragStart(leadID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dragging = leadID
}

// Dragging reports the lead currently held by the gesture, if any.
func (d *DragController) Dragging() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dragging, d.dragging != ""
}

// DragEnd resolves the drop target and returns the move intent, if the
// gesture amounts to one. The target may be a stage id (dropped on empty
// column space) or another lead's id (dropped on a card), which normalizes
// to that card's owning stage. Dropping on the lead's own stage, on an
// unknown target, or without an active drag is a no-op.
//
// Drag state is cleared on every exit path so the UI can never get stuck
// in a dragging state.
func (d *DragController) DragEnd(overTargetID string) (MoveIntent, bool) {
	d.mu.Lock()
	leadID := d.dragging
	d.dragging = ""
	d.mu.Unlock()

	if leadID == "" || overTargetID == "" {
		return MoveIntent{}, false
	}

	fromStageID, ok := d.store.StageOf(leadID)
	if !ok {
		return MoveIntent{}, false
	}

	toStageID := overTargetID
	if !d.store.hasStage(toStageID) {
		// dropped onto a card: resolve to the stage owning that card
		owner, ok := d.store.StageOf(overTargetID)
		if !ok {
			return MoveIntent{}, false
		}
		toStageID = owner
	}

	if toStageID == fromStageID {
		return MoveIntent{}, false
	}

	return MoveIntent{LeadID: leadID, FromStageID: fromStageID, ToStageID: toStageID}, true
}

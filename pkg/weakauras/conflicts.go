package weakauras

import (
	"fmt"
	"strings"
)

// ImportConflict records that an incoming aura collides with an existing
// display and which categories the collision touches. Conflicts exist
// only for the duration of one import cycle.
type ImportConflict struct {
	// AuraID is the colliding display's ID.
	AuraID string
	// Incoming is the prepared incoming body.
	Incoming LuaValue
	// ChangedCategories holds every category with at least one differing
	// field.
	ChangedCategories map[Category]bool
	// IsGroup reports whether the incoming aura controls children.
	IsGroup bool
	// ChildCount is the incoming child count, for display.
	ChildCount int
}

// NewImportConflict diffs incoming against existing and records the
// changed categories. Internal bookkeeping fields are invisible to the
// diff in both directions: a field only present in existing counts as a
// change too, since a replace would remove it.
func NewImportConflict(auraID string, incoming, existing LuaValue, isGroup bool, childCount int) *ImportConflict {
	return &ImportConflict{
		AuraID:            auraID,
		Incoming:          incoming,
		ChangedCategories: detectChangedCategories(incoming, existing),
		IsGroup:           isGroup,
		ChildCount:        childCount,
	}
}

// HasChanges reports whether any category differs.
func (c *ImportConflict) HasChanges() bool {
	return len(c.ChangedCategories) > 0
}

func detectChangedCategories(incoming, existing LuaValue) map[Category]bool {
	changed := make(map[Category]bool)

	incomingTable, inOK := incoming.AsTable()
	existingTable, exOK := existing.AsTable()
	if !inOK || !exOK {
		return changed
	}

	for field, incomingValue := range incomingTable {
		if IsInternalField(field) {
			continue
		}
		existingValue, ok := existingTable[field]
		if !ok || !existingValue.Equal(incomingValue) {
			changed[FieldCategory(field)] = true
		}
	}

	for field := range existingTable {
		if IsInternalField(field) {
			continue
		}
		if _, ok := incomingTable[field]; !ok {
			changed[FieldCategory(field)] = true
		}
	}

	return changed
}

// ConflictAction selects how a single conflict resolves.
type ConflictAction int

const (
	// ActionSkip keeps the existing display untouched.
	ActionSkip ConflictAction = iota
	// ActionReplaceAll overwrites the display with the incoming body.
	ActionReplaceAll
	// ActionUpdateSelected replaces only the fields of selected
	// categories.
	ActionUpdateSelected
)

// String returns the dialog label.
func (a ConflictAction) String() string {
	switch a {
	case ActionSkip:
		return "Skip"
	case ActionReplaceAll:
		return "Replace"
	case ActionUpdateSelected:
		return "Update"
	default:
		return "Unknown"
	}
}

// ConflictResolution is the user's decision for one conflicting aura.
type ConflictResolution struct {
	// AuraID names the conflict this resolves.
	AuraID string
	// Action selects skip, replace or selective update.
	Action ConflictAction
	// Categories holds the categories to update when Action is
	// ActionUpdateSelected.
	Categories map[Category]bool
}

// NewConflictResolution returns the default resolution for an aura:
// selective update over the default-enabled categories.
func NewConflictResolution(auraID string) ConflictResolution {
	return ConflictResolution{
		AuraID:     auraID,
		Action:     ActionUpdateSelected,
		Categories: DefaultCategories(),
	}
}

// ConflictDetectionResult partitions the prepared bodies of an import
// into brand-new displays and conflicts needing resolution.
type ConflictDetectionResult struct {
	// NewAuras holds (id, body) pairs absent from the display map, in
	// detection order.
	NewAuras []NewAura
	// Conflicts holds one entry per colliding display with a non-empty
	// category diff.
	Conflicts []*ImportConflict
}

// NewAura is one display absent from the on-disk state.
type NewAura struct {
	ID   string
	Data LuaValue
}

// ImportResult reports what an import changed.
type ImportResult struct {
	Added    []string
	Skipped  []string
	Replaced []string
}

// Summary renders the result as a one-line string.
func (r ImportResult) Summary() string {
	var parts []string
	if len(r.Added) > 0 {
		parts = append(parts, fmt.Sprintf("%d added", len(r.Added)))
	}
	if len(r.Replaced) > 0 {
		parts = append(parts, fmt.Sprintf("%d replaced", len(r.Replaced)))
	}
	if len(r.Skipped) > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", len(r.Skipped)))
	}
	if len(parts) == 0 {
		return "No changes"
	}
	return strings.Join(parts, ", ")
}

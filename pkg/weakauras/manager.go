package weakauras

import (
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Manager owns the on-disk SavedVariables state: the displays map and
// every other top-level field, preserved verbatim across a round-trip.
// All mutation goes through the manager, single-threaded; hosts wanting
// background execution wrap whole operations.
type Manager struct {
	fs   afero.Fs
	log  *zap.Logger
	path string

	displays    map[string]LuaValue
	otherFields map[string]LuaValue
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithFs runs the manager against fs instead of the host filesystem.
func WithFs(fs afero.Fs) ManagerOption {
	return func(m *Manager) { m.fs = fs }
}

// WithLogger routes manager diagnostics to log.
func WithLogger(log *zap.Logger) ManagerOption {
	return func(m *Manager) { m.log = log }
}

// NewManager returns a manager for the SavedVariables file at path, with
// empty in-memory state until Load.
func NewManager(path string, opts ...ManagerOption) *Manager {
	m := &Manager{
		fs:          afero.NewOsFs(),
		log:         zap.NewNop(),
		path:        path,
		displays:    make(map[string]LuaValue),
		otherFields: make(map[string]LuaValue),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Path returns the SavedVariables path the manager reads and writes.
func (m *Manager) Path() string { return m.path }

// Displays exposes the display map. The manager owns it; callers treat
// it as read-only and route changes through the Add/Apply/Remove
// operations.
func (m *Manager) Displays() map[string]LuaValue { return m.displays }

// OtherFields exposes the non-display top-level entries.
func (m *Manager) OtherFields() map[string]LuaValue { return m.otherFields }

// Load reads and parses the file, replacing the in-memory state. A
// missing file surfaces as *FileNotFoundError, which callers may treat
// as empty state.
func (m *Manager) Load() error {
	content, err := afero.ReadFile(m.fs, m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &FileNotFoundError{Path: m.path}
		}
		return errors.Wrap(err, "reading saved variables")
	}

	saved, err := ParseSavedVariables(string(content))
	if err != nil {
		return err
	}
	m.displays = saved.Displays
	m.otherFields = saved.Other
	m.log.Debug("loaded saved variables",
		zap.String("path", m.path),
		zap.Int("displays", len(m.displays)))
	return nil
}

// Save writes the current state back to the file. An existing file is
// copied to <path>.backup first; the new content goes to a temporary
// sibling and moves into place with a rename, so a failure at any point
// leaves the original untouched.
func (m *Manager) Save() error {
	exists, err := afero.Exists(m.fs, m.path)
	if err != nil {
		return errors.Wrap(err, "checking saved variables")
	}
	if exists {
		original, err := afero.ReadFile(m.fs, m.path)
		if err != nil {
			return errors.Wrap(err, "reading saved variables for backup")
		}
		if err := afero.WriteFile(m.fs, m.path+".backup", original, 0o644); err != nil {
			return errors.Wrap(err, "writing backup")
		}
	}

	tmp := m.path + ".tmp"
	if err := afero.WriteFile(m.fs, tmp, []byte(m.GenerateLua()), 0o644); err != nil {
		return errors.Wrap(err, "writing saved variables")
	}
	if err := m.fs.Rename(tmp, m.path); err != nil {
		_ = m.fs.Remove(tmp)
		return errors.Wrap(err, "replacing saved variables")
	}
	m.log.Debug("saved variables written", zap.String("path", m.path))
	return nil
}

// GenerateLua renders the full SavedVariables file: leading blank line,
// the WeakAurasSaved assignment, non-display fields first, then the
// displays block, all keys sorted.
func (m *Manager) GenerateLua() string {
	var b strings.Builder
	b.WriteString("\nWeakAurasSaved = {\n")

	for _, key := range sortedKeys(m.otherFields) {
		b.WriteString("\t[\"")
		b.WriteString(escapeLuaString(key))
		b.WriteString("\"] = ")
		b.WriteString(Serialize(m.otherFields[key], 1))
		b.WriteString(",\n")
	}

	b.WriteString("\t[\"displays\"] = {\n")
	for _, id := range sortedKeys(m.displays) {
		b.WriteString("\t\t[\"")
		b.WriteString(escapeLuaString(id))
		b.WriteString("\"] = ")
		b.WriteString(Serialize(m.displays[id], 2))
		b.WriteString(",\n")
	}
	b.WriteString("\t},\n}\n")
	return b.String()
}

// AddAuras inserts every prepared body of the given auras into the
// display map, overwriting collisions. It is the fast path for imports
// with no conflicts to resolve.
func (m *Manager) AddAuras(auras []*WeakAura) ImportResult {
	var result ImportResult

	for _, aura := range auras {
		hierarchy := BuildChildrenHierarchy(aura)

		for _, childID := range hierarchy.ChildOrder {
			if _, ok := m.displays[childID]; ok {
				result.Replaced = append(result.Replaced, childID)
			} else {
				result.Added = append(result.Added, childID)
			}
			m.displays[childID] = hierarchy.PreparedChildren[childID]
		}

		parentData := aura.Data.Clone()
		if direct, ok := hierarchy.ChildrenByParent[aura.ID]; ok {
			SetControlledChildren(parentData, direct)
		}
		if _, ok := m.displays[aura.ID]; ok {
			result.Replaced = append(result.Replaced, aura.ID)
		} else {
			result.Added = append(result.Added, aura.ID)
		}
		m.displays[aura.ID] = parentData
	}

	return result
}

// DetectConflicts diffs the given auras — root and every prepared
// descendant — against the display map. Bodies absent from the map come
// back as new; colliding bodies with at least one non-internal differing
// field come back as conflicts.
func (m *Manager) DetectConflicts(auras []*WeakAura) *ConflictDetectionResult {
	result := &ConflictDetectionResult{}

	for _, aura := range auras {
		hierarchy := BuildChildrenHierarchy(aura)

		parentData := aura.Data.Clone()
		if direct, ok := hierarchy.ChildrenByParent[aura.ID]; ok {
			SetControlledChildren(parentData, direct)
		}

		if existing, ok := m.displays[aura.ID]; ok {
			conflict := NewImportConflict(aura.ID, parentData, existing,
				aura.IsGroup, len(hierarchy.PreparedChildren))
			if conflict.HasChanges() {
				result.Conflicts = append(result.Conflicts, conflict)
			}
		} else {
			result.NewAuras = append(result.NewAuras, NewAura{ID: aura.ID, Data: parentData})
		}

		for _, childID := range hierarchy.ChildOrder {
			childValue := hierarchy.PreparedChildren[childID]
			directChildren := hierarchy.ChildrenByParent[childID]

			if existing, ok := m.displays[childID]; ok {
				conflict := NewImportConflict(childID, childValue, existing,
					len(directChildren) > 0, len(directChildren))
				if conflict.HasChanges() {
					result.Conflicts = append(result.Conflicts, conflict)
				}
			} else {
				result.NewAuras = append(result.NewAuras, NewAura{ID: childID, Data: childValue})
			}
		}
	}

	return result
}

// ApplyResolutions inserts the new auras from a detection result, then
// applies the resolutions in input order.
func (m *Manager) ApplyResolutions(result *ConflictDetectionResult, resolutions []ConflictResolution) ImportResult {
	var applied ImportResult

	for _, entry := range result.NewAuras {
		m.displays[entry.ID] = entry.Data
		applied.Added = append(applied.Added, entry.ID)
	}

	conflictByID := make(map[string]*ImportConflict, len(result.Conflicts))
	for _, c := range result.Conflicts {
		conflictByID[c.AuraID] = c
	}

	for _, resolution := range resolutions {
		switch resolution.Action {
		case ActionSkip:
			applied.Skipped = append(applied.Skipped, resolution.AuraID)
		case ActionReplaceAll:
			if conflict, ok := conflictByID[resolution.AuraID]; ok {
				m.displays[resolution.AuraID] = conflict.Incoming
				applied.Replaced = append(applied.Replaced, resolution.AuraID)
			}
		case ActionUpdateSelected:
			if conflict, ok := conflictByID[resolution.AuraID]; ok {
				m.selectiveMerge(conflict, resolution.Categories)
				applied.Replaced = append(applied.Replaced, resolution.AuraID)
			}
		}
	}

	return applied
}

// selectiveMerge replaces the fields of the selected categories on the
// existing body with the incoming values. A field the incoming body lost
// is removed. Display, having no field list, copies every incoming field
// that resolves to it; internal fields never move.
func (m *Manager) selectiveMerge(conflict *ImportConflict, categories map[Category]bool) {
	existing, ok := m.displays[conflict.AuraID]
	if !ok {
		m.log.Warn("selective merge target missing", zap.String("id", conflict.AuraID))
		return
	}
	incomingTable, inOK := conflict.Incoming.AsTable()
	existingTable, exOK := existing.AsTable()
	if !inOK || !exOK {
		m.log.Warn("selective merge on non-table body", zap.String("id", conflict.AuraID))
		return
	}

	for category := range categories {
		if category == CategoryDisplay {
			for field, value := range incomingTable {
				if IsInternalField(field) {
					continue
				}
				if FieldCategory(field) == CategoryDisplay {
					existingTable[field] = value
				}
			}
			continue
		}
		for _, field := range CategoryFields(category) {
			if value, ok := incomingTable[field]; ok {
				existingTable[field] = value
			} else {
				delete(existingTable, field)
			}
		}
	}
}

// RemoveAuras removes each target and all its descendants, following
// controlledChildren recursively, and filters the target out of its
// former parent's sibling list. Missing targets are skipped. Returns the
// IDs actually removed.
func (m *Manager) RemoveAuras(ids []string) []string {
	var removed []string

	for _, id := range ids {
		toRemove := m.collectDescendants(id)

		parentID := ""
		if data, ok := m.displays[id]; ok {
			parentID, _ = data.StringField("parent")
		}

		for _, removeID := range toRemove {
			if _, ok := m.displays[removeID]; ok {
				delete(m.displays, removeID)
				removed = append(removed, removeID)
			}
		}

		if parentID == "" {
			continue
		}
		parentData, ok := m.displays[parentID]
		if !ok {
			continue
		}
		if cc, ok := parentData.Field("controlledChildren"); ok {
			if siblings, ok := cc.AsArray(); ok {
				kept := siblings[:0:0]
				for _, sibling := range siblings {
					if sibID, ok := sibling.AsString(); ok && sibID == id {
						continue
					}
					kept = append(kept, sibling)
				}
				parentData.SetField("controlledChildren", ArrayOf(kept))
			}
		}
	}

	return removed
}

// collectDescendants returns id plus everything reachable through
// controlledChildren, depth first.
func (m *Manager) collectDescendants(id string) []string {
	result := []string{id}
	data, ok := m.displays[id]
	if !ok {
		return result
	}
	if cc, ok := data.Field("controlledChildren"); ok {
		if children, ok := cc.AsArray(); ok {
			for _, child := range children {
				if childID, ok := child.AsString(); ok {
					result = append(result, m.collectDescendants(childID)...)
				}
			}
		}
	}
	return result
}

func sortedKeys(m map[string]LuaValue) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

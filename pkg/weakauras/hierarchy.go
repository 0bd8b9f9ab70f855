package weakauras

// ChildrenHierarchy is the reconstruction of a group's parent/child
// relations from the flat descendant list of a transmission payload.
type ChildrenHierarchy struct {
	// ChildrenByParent maps a parent ID to its direct child IDs, in
	// discovery order.
	ChildrenByParent map[string][]string
	// PreparedChildren maps each descendant ID to its body, with the
	// parent field ensured and controlledChildren set on subgroups.
	PreparedChildren map[string]LuaValue
	// ChildOrder lists the descendant IDs in discovery order, so
	// iteration over PreparedChildren can be reproducible.
	ChildOrder []string
}

// BuildChildrenHierarchy reconstructs parent-to-direct-children relations
// from an aura's flat descendant list. A descendant without a parent
// field is attached to the root and gets the field set on its prepared
// body. Subgroups get their controlledChildren overwritten to match the
// reconstruction; the root's own body is left to the caller.
func BuildChildrenHierarchy(aura *WeakAura) *ChildrenHierarchy {
	h := &ChildrenHierarchy{
		ChildrenByParent: make(map[string][]string),
		PreparedChildren: make(map[string]LuaValue),
	}

	for _, childData := range aura.ChildData {
		childID, ok := childData.StringField("id")
		if !ok {
			continue
		}

		parentID, ok := childData.StringField("parent")
		if !ok {
			parentID = aura.ID
		}
		h.ChildrenByParent[parentID] = append(h.ChildrenByParent[parentID], childID)

		prepared := childData.Clone()
		if _, ok := prepared.Field("parent"); !ok {
			prepared.SetField("parent", String(aura.ID))
		}
		if _, seen := h.PreparedChildren[childID]; !seen {
			h.ChildOrder = append(h.ChildOrder, childID)
		}
		h.PreparedChildren[childID] = prepared
	}

	for groupID, childIDs := range h.ChildrenByParent {
		if groupID == aura.ID {
			continue
		}
		if group, ok := h.PreparedChildren[groupID]; ok {
			SetControlledChildren(group, childIDs)
		}
	}

	return h
}

// SetControlledChildren replaces the controlledChildren field on a table
// body with an array of the given IDs.
func SetControlledChildren(data LuaValue, childIDs []string) {
	elems := make([]LuaValue, len(childIDs))
	for i, id := range childIDs {
		elems[i] = String(id)
	}
	data.SetField("controlledChildren", ArrayOf(elems))
}

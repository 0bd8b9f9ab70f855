package weakauras

import (
	"sort"
	"strings"
)

// AuraTreeNode is the derived hierarchical view of one display, built on
// demand from the parent fields in the display map.
type AuraTreeNode struct {
	// ID is the display name.
	ID string
	// IsGroup reports whether the display's regionType marks a container.
	IsGroup bool
	// Children holds the direct children, sorted case-insensitively.
	Children []AuraTreeNode
}

// TotalCount counts this node and everything below it.
func (n AuraTreeNode) TotalCount() int {
	total := 1
	for _, child := range n.Children {
		total += child.TotalCount()
	}
	return total
}

// AuraTree builds the forest of top-level displays. Top-level nodes sort
// groups first, then case-insensitively by name; child levels sort
// case-insensitively by name.
func (m *Manager) AuraTree() []AuraTreeNode {
	childrenOf := make(map[string][]string)
	for id, data := range m.displays {
		if parentID, ok := data.StringField("parent"); ok {
			childrenOf[parentID] = append(childrenOf[parentID], id)
		}
	}

	var roots []AuraTreeNode
	for id, data := range m.displays {
		if _, ok := data.StringField("parent"); ok {
			continue
		}
		roots = append(roots, m.buildTreeNode(id, childrenOf))
	}

	sort.Slice(roots, func(i, j int) bool {
		if roots[i].IsGroup != roots[j].IsGroup {
			return roots[i].IsGroup
		}
		return strings.ToLower(roots[i].ID) < strings.ToLower(roots[j].ID)
	})
	return roots
}

func (m *Manager) buildTreeNode(id string, childrenOf map[string][]string) AuraTreeNode {
	node := AuraTreeNode{ID: id}

	if data, ok := m.displays[id]; ok {
		if rt, ok := data.StringField("regionType"); ok {
			node.IsGroup = rt == "group" || rt == "dynamicgroup"
		}
	}

	if node.IsGroup {
		for _, childID := range childrenOf[id] {
			node.Children = append(node.Children, m.buildTreeNode(childID, childrenOf))
		}
		sort.Slice(node.Children, func(i, j int) bool {
			return strings.ToLower(node.Children[i].ID) < strings.ToLower(node.Children[j].ID)
		})
	}
	return node
}

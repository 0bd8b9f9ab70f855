package weakauras

import (
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func memManager(t *testing.T, path string) *Manager {
	t.Helper()
	return NewManager(path, WithFs(afero.NewMemMapFs()))
}

func TestLoadMissingFileIsFileNotFound(t *testing.T) {
	m := memManager(t, "WeakAuras.lua")
	err := m.Load()
	require.Error(t, err)
	var notFound *FileNotFoundError
	require.True(t, errors.As(err, &notFound))
	require.Equal(t, "WeakAuras.lua", notFound.Path)
}

func TestLoadParsesDisplaysAndOtherFields(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := "\nWeakAurasSaved = {\n\t[\"dbVersion\"] = 78,\n\t[\"displays\"] = {\n\t\t[\"A\"] = {\n\t\t\t[\"id\"] = \"A\",\n\t\t},\n\t},\n}\n"
	require.NoError(t, afero.WriteFile(fs, "WeakAuras.lua", []byte(content), 0o644))

	m := NewManager("WeakAuras.lua", WithFs(fs))
	require.NoError(t, m.Load())
	require.Len(t, m.Displays(), 1)
	require.True(t, m.OtherFields()["dbVersion"].Equal(Number(78)))
}

func TestSaveCreatesBackupAndIsAtomicishOnRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	m := NewManager("WeakAuras.lua", WithFs(fs))
	m.displays["A"] = Table(map[string]LuaValue{"id": String("A")})

	// First save: no original, no backup.
	require.NoError(t, m.Save())
	exists, _ := afero.Exists(fs, "WeakAuras.lua.backup")
	require.False(t, exists)

	original, err := afero.ReadFile(fs, "WeakAuras.lua")
	require.NoError(t, err)

	// Second save: the previous content lands in the backup, byte for
	// byte.
	m.displays["B"] = Table(map[string]LuaValue{"id": String("B")})
	require.NoError(t, m.Save())

	backup, err := afero.ReadFile(fs, "WeakAuras.lua.backup")
	require.NoError(t, err)
	require.Equal(t, original, backup)

	// No temp file left behind.
	exists, _ = afero.Exists(fs, "WeakAuras.lua.tmp")
	require.False(t, exists)

	// And the new content reloads.
	m2 := NewManager("WeakAuras.lua", WithFs(fs))
	require.NoError(t, m2.Load())
	require.Len(t, m2.Displays(), 2)
}

// buildGroupImport builds a decoded group: root with nDirect direct
// children, the first of which ("Buffs") is a subgroup carrying
// nGrandchildren leaves.
func buildGroupImport(root string, nDirect, nGrandchildren int) *WeakAura {
	aura := &WeakAura{
		ID:      root,
		IsGroup: true,
		Data:    groupBody(root, ""),
	}
	aura.ChildData = append(aura.ChildData, groupBody("Buffs", root))
	for i := 1; i < nDirect; i++ {
		aura.ChildData = append(aura.ChildData, childBody(fmt.Sprintf("Direct %d", i), root))
	}
	for i := 0; i < nGrandchildren; i++ {
		aura.ChildData = append(aura.ChildData, childBody(fmt.Sprintf("Buff %d", i+1), "Buffs"))
	}
	return aura
}

func TestAddAurasPreservesHierarchy(t *testing.T) {
	// 1 root + 56 descendants: 10 direct children, one of which is the
	// subgroup "Buffs" holding the other 46.
	aura := buildGroupImport("Root Group", 10, 46)
	m := memManager(t, "WeakAuras.lua")
	result := m.AddAuras([]*WeakAura{aura})

	require.Len(t, m.Displays(), 57)
	require.Len(t, result.Added, 57)
	require.Empty(t, result.Replaced)

	root := m.Displays()["Root Group"]
	cc, ok := root.Field("controlledChildren")
	require.True(t, ok)
	rootChildren, _ := cc.AsArray()
	require.Len(t, rootChildren, 10)

	buffs := m.Displays()["Buffs"]
	bcc, ok := buffs.Field("controlledChildren")
	require.True(t, ok)
	buffsChildren, _ := bcc.AsArray()
	require.NotEmpty(t, buffsChildren)

	grandchild := m.Displays()["Buff 13"]
	parent, _ := grandchild.StringField("parent")
	require.Equal(t, "Buffs", parent, "grandchild must hang off the subgroup, not the root")
}

func TestAddAurasClassifiesReplacements(t *testing.T) {
	m := memManager(t, "WeakAuras.lua")
	m.displays["Solo"] = Table(map[string]LuaValue{"id": String("Solo")})

	aura := &WeakAura{ID: "Solo", Data: Table(map[string]LuaValue{"id": String("Solo"), "icon": Bool(true)})}
	result := m.AddAuras([]*WeakAura{aura})
	require.Equal(t, []string{"Solo"}, result.Replaced)
	require.Empty(t, result.Added)
}

func TestDetectConflictsSecondImportIsDuplicateSafe(t *testing.T) {
	aura := buildGroupImport("Root Group", 5, 7)
	m := memManager(t, "WeakAuras.lua")
	m.AddAuras([]*WeakAura{aura})

	// Re-detect with a fresh copy of the same import. Everything exists
	// and is bit-identical, so nothing is new and nothing conflicts.
	again := buildGroupImport("Root Group", 5, 7)
	result := m.DetectConflicts([]*WeakAura{again})
	require.Empty(t, result.NewAuras)
	require.Empty(t, result.Conflicts)
}

func TestDetectConflictsSplitsNewFromConflicting(t *testing.T) {
	m := memManager(t, "WeakAuras.lua")
	m.displays["Existing"] = Table(map[string]LuaValue{
		"id":       String("Existing"),
		"triggers": Table(map[string]LuaValue{"disjunctive": String("all")}),
	})

	incoming := &WeakAura{
		ID: "Existing",
		Data: Table(map[string]LuaValue{
			"id":       String("Existing"),
			"triggers": Table(map[string]LuaValue{"disjunctive": String("any")}),
		}),
	}
	brandNew := &WeakAura{ID: "Fresh", Data: Table(map[string]LuaValue{"id": String("Fresh")})}

	result := m.DetectConflicts([]*WeakAura{incoming, brandNew})
	require.Len(t, result.NewAuras, 1)
	require.Equal(t, "Fresh", result.NewAuras[0].ID)
	require.Len(t, result.Conflicts, 1)
	require.Equal(t, "Existing", result.Conflicts[0].AuraID)
	require.True(t, result.Conflicts[0].ChangedCategories[CategoryTrigger])
}

func TestApplyResolutionsSkipReplaceUpdate(t *testing.T) {
	m := memManager(t, "WeakAuras.lua")
	tOld := Table(map[string]LuaValue{"disjunctive": String("all")})
	tNew := Table(map[string]LuaValue{"disjunctive": String("any")})

	for _, id := range []string{"skipme", "replaceme", "updateme"} {
		m.displays[id] = Table(map[string]LuaValue{
			"id":       String(id),
			"triggers": tOld.Clone(),
			"xOffset":  Number(0),
		})
	}

	var auras []*WeakAura
	for _, id := range []string{"skipme", "replaceme", "updateme"} {
		auras = append(auras, &WeakAura{ID: id, Data: Table(map[string]LuaValue{
			"id":       String(id),
			"triggers": tNew.Clone(),
			"xOffset":  Number(100),
		})})
	}

	result := m.DetectConflicts(auras)
	require.Len(t, result.Conflicts, 3)

	applied := m.ApplyResolutions(result, []ConflictResolution{
		{AuraID: "skipme", Action: ActionSkip},
		{AuraID: "replaceme", Action: ActionReplaceAll},
		{AuraID: "updateme", Action: ActionUpdateSelected, Categories: map[Category]bool{CategoryTrigger: true}},
	})
	require.Equal(t, []string{"skipme"}, applied.Skipped)
	require.ElementsMatch(t, []string{"replaceme", "updateme"}, applied.Replaced)

	// Skip: untouched.
	skipped, _ := m.displays["skipme"].Field("triggers")
	require.True(t, skipped.Equal(tOld))

	// Replace: whole body swapped.
	replacedOffset, _ := m.displays["replaceme"].Field("xOffset")
	require.True(t, replacedOffset.Equal(Number(100)))

	// Selective update over {Trigger}: triggers move, xOffset stays.
	updatedTriggers, _ := m.displays["updateme"].Field("triggers")
	require.True(t, updatedTriggers.Equal(tNew))
	updatedOffset, _ := m.displays["updateme"].Field("xOffset")
	require.True(t, updatedOffset.Equal(Number(0)))
}

func TestSelectiveMergeRemovesFieldsAbsentFromIncoming(t *testing.T) {
	m := memManager(t, "WeakAuras.lua")
	m.displays["A"] = Table(map[string]LuaValue{
		"id":   String("A"),
		"load": Table(map[string]LuaValue{"class": String("PRIEST")}),
	})
	incoming := Table(map[string]LuaValue{"id": String("A")})
	conflict := NewImportConflict("A", incoming, m.displays["A"], false, 0)
	m.selectiveMerge(conflict, map[Category]bool{CategoryLoad: true})

	if _, ok := m.displays["A"].Field("load"); ok {
		t.Fatal("load must be removed when the incoming body lacks it")
	}
}

func TestSelectiveMergeDisplayCatchAllSkipsInternalFields(t *testing.T) {
	m := memManager(t, "WeakAuras.lua")
	m.displays["A"] = Table(map[string]LuaValue{
		"id":   String("A"),
		"icon": String("old-icon"),
		"uid":  String("keepThisUID"),
	})
	incoming := Table(map[string]LuaValue{
		"id":    String("A"),
		"icon":  String("new-icon"),
		"color": String("red"),
		"uid":   String("incomingUID"),
	})
	conflict := NewImportConflict("A", incoming, m.displays["A"], false, 0)
	m.selectiveMerge(conflict, map[Category]bool{CategoryDisplay: true})

	icon, _ := m.displays["A"].StringField("icon")
	require.Equal(t, "new-icon", icon)
	color, _ := m.displays["A"].StringField("color")
	require.Equal(t, "red", color)
	uid, _ := m.displays["A"].StringField("uid")
	require.Equal(t, "keepThisUID", uid, "internal field must not move")
}

func TestRemoveAurasRecursive(t *testing.T) {
	m := memManager(t, "WeakAuras.lua")
	m.displays["G"] = Table(map[string]LuaValue{
		"id":                 String("G"),
		"regionType":         String("group"),
		"controlledChildren": Array(String("C1"), String("C2")),
	})
	m.displays["C1"] = childBody("C1", "G")
	m.displays["C2"] = Table(map[string]LuaValue{
		"id":                 String("C2"),
		"regionType":         String("group"),
		"parent":             String("G"),
		"controlledChildren": Array(String("C3"), String("C4")),
	})
	m.displays["C3"] = childBody("C3", "C2")
	m.displays["C4"] = childBody("C4", "C2")
	m.displays["Bystander"] = childBody("Bystander", "")

	removed := m.RemoveAuras([]string{"G"})
	require.ElementsMatch(t, []string{"G", "C1", "C2", "C3", "C4"}, removed)
	require.Len(t, m.Displays(), 1)
	_, ok := m.Displays()["Bystander"]
	require.True(t, ok)
}

func TestRemoveAurasUpdatesParentSiblingList(t *testing.T) {
	m := memManager(t, "WeakAuras.lua")
	m.displays["G"] = Table(map[string]LuaValue{
		"id":                 String("G"),
		"regionType":         String("group"),
		"controlledChildren": Array(String("A"), String("B")),
	})
	m.displays["A"] = childBody("A", "G")
	m.displays["B"] = childBody("B", "G")

	removed := m.RemoveAuras([]string{"A"})
	require.Equal(t, []string{"A"}, removed)

	cc, _ := m.displays["G"].Field("controlledChildren")
	arr, _ := cc.AsArray()
	require.Len(t, arr, 1)
	require.True(t, arr[0].Equal(String("B")))
}

func TestRemoveAurasSkipsMissingIDs(t *testing.T) {
	m := memManager(t, "WeakAuras.lua")
	m.displays["A"] = childBody("A", "")
	removed := m.RemoveAuras([]string{"missing", "A", "also-missing"})
	require.Equal(t, []string{"A"}, removed)
}

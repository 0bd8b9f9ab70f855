package weakauras

// Category is one of the twelve semantic buckets a display body's
// top-level fields partition into. Selective merges replace fields one
// category at a time, matching the game's "Categories to Update" dialog.
type Category int

const (
	// CategoryName covers the aura id.
	CategoryName Category = iota
	// CategoryDisplay is the catch-all for fields no other category claims.
	CategoryDisplay
	// CategoryTrigger covers trigger configuration.
	CategoryTrigger
	// CategoryLoad covers load conditions.
	CategoryLoad
	// CategoryAction covers on-show/on-hide/on-init actions.
	CategoryAction
	// CategoryAnimation covers animations.
	CategoryAnimation
	// CategoryConditions covers dynamic state changes.
	CategoryConditions
	// CategoryAuthorOptions covers custom author options.
	CategoryAuthorOptions
	// CategoryArrangement covers group layout (grow, space, sort, …).
	CategoryArrangement
	// CategoryAnchor covers position and size.
	CategoryAnchor
	// CategoryUserConfig covers user configuration values.
	CategoryUserConfig
	// CategoryMetadata covers url, desc, version and friends.
	CategoryMetadata
)

// String returns the dialog display name.
func (c Category) String() string {
	switch c {
	case CategoryName:
		return "Name"
	case CategoryDisplay:
		return "Display"
	case CategoryTrigger:
		return "Trigger"
	case CategoryLoad:
		return "Load"
	case CategoryAction:
		return "Actions"
	case CategoryAnimation:
		return "Animations"
	case CategoryConditions:
		return "Conditions"
	case CategoryAuthorOptions:
		return "Author Options"
	case CategoryArrangement:
		return "Arrangement"
	case CategoryAnchor:
		return "Anchor"
	case CategoryUserConfig:
		return "User Config"
	case CategoryMetadata:
		return "Metadata"
	default:
		return "Unknown"
	}
}

// DefaultEnabled reports whether the category is selected by default for
// new imports. Anchor and UserConfig start off so user positioning and
// configuration survive an update.
func (c Category) DefaultEnabled() bool {
	switch c {
	case CategoryAnchor, CategoryUserConfig:
		return false
	default:
		return true
	}
}

// AllCategories lists every category in dialog order.
func AllCategories() []Category {
	return []Category{
		CategoryName,
		CategoryDisplay,
		CategoryTrigger,
		CategoryLoad,
		CategoryAction,
		CategoryAnimation,
		CategoryConditions,
		CategoryAuthorOptions,
		CategoryArrangement,
		CategoryAnchor,
		CategoryUserConfig,
		CategoryMetadata,
	}
}

// DefaultCategories returns the set of categories enabled by default.
func DefaultCategories() map[Category]bool {
	defaults := make(map[Category]bool)
	for _, c := range AllCategories() {
		if c.DefaultEnabled() {
			defaults[c] = true
		}
	}
	return defaults
}

// categoryFields is the authoritative field list per category. Display
// has no list of its own; it claims every field left over.
var categoryFields = map[Category][]string{
	CategoryName:          {"id"},
	CategoryTrigger:       {"triggers"},
	CategoryLoad:          {"load"},
	CategoryAction:        {"actions"},
	CategoryAnimation:     {"animation"},
	CategoryConditions:    {"conditions"},
	CategoryAuthorOptions: {"authorOptions"},
	CategoryArrangement: {
		"grow", "space", "stagger", "sort", "sortHybridTable", "radius",
		"align", "rotation", "constantFactor", "gridType", "gridWidth",
		"rowSpace", "columnSpace", "fullCircle", "arcLength", "animate",
		"useLimit", "limit", "centerType",
	},
	CategoryAnchor: {
		"xOffset", "yOffset", "selfPoint", "anchorPoint", "anchorFrameType",
		"anchorFrameFrame", "anchorFrameParent", "frameStrata", "width",
		"height", "scale", "fontSize",
	},
	CategoryUserConfig: {"config"},
	CategoryMetadata:   {"url", "desc", "version", "semver", "wagoID"},
}

// internalFields are bookkeeping fields excluded from both conflict
// comparison and category-based replacement. Touching them during a merge
// either resurrects removed state or produces spurious conflicts.
var internalFields = map[string]bool{
	"uid":                true,
	"internalVersion":    true,
	"tocversion":         true,
	"parent":             true,
	"controlledChildren": true,
	"source":             true,
	"preferToUpdate":     true,
	"skipWagoUpdate":     true,
	"ignoreWagoUpdate":   true,
}

var fieldCategory = func() map[string]Category {
	m := make(map[string]Category)
	for category, fields := range categoryFields {
		for _, f := range fields {
			m[f] = category
		}
	}
	return m
}()

// FieldCategory maps a field name to its category; unmapped fields fall
// into Display.
func FieldCategory(field string) Category {
	if c, ok := fieldCategory[field]; ok {
		return c
	}
	return CategoryDisplay
}

// CategoryFields returns the fields a category owns. Display returns nil:
// its membership is defined by exclusion, via FieldCategory.
func CategoryFields(c Category) []string {
	return categoryFields[c]
}

// IsInternalField reports whether the field is excluded from comparison
// and replacement.
func IsInternalField(field string) bool {
	return internalFields[field]
}

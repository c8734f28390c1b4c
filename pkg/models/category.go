package models

// Category classifies a photo. The pseudo categories below the concrete
// ones are filter predicates only and are never stored on a photo.
type Category string

const (
	CategoryLandscape Category = "landscape"
	CategoryMacro     Category = "macro"
	CategoryStreet    Category = "street"
	CategoryPortrait  Category = "portrait"

	FilterAll        Category = "all"
	FilterHorizontal Category = "horizontal"
	FilterVertical   Category = "vertical"
)

// DefaultCategory is the filter selected after a new photo is inserted.
const DefaultCategory = FilterAll

// Storable reports whether the category may be stored on a photo.
func (c Category) Storable() bool {
	switch c {
	case CategoryLandscape, CategoryMacro, CategoryStreet, CategoryPortrait:
		return true
	}
	return false
}

// ValidFilter reports whether the category is usable as a filter predicate.
func (c Category) ValidFilter() bool {
	switch c {
	case FilterAll, FilterHorizontal, FilterVertical:
		return true
	}
	return c.Storable()
}

// TabMode selects the ordering of the composed view. Exactly one tab is
// active at a time.
type TabMode string

const (
	TabCurated TabMode = "curated"
	TabLatest  TabMode = "latest"
	TabShuffle TabMode = "shuffle"
	TabNearby  TabMode = "nearby"
	TabFaraway TabMode = "faraway"
)

// DefaultTab is the tab selected after a new photo is inserted.
const DefaultTab = TabLatest

// Valid reports whether the tab mode is one of the known tabs.
func (t TabMode) Valid() bool {
	switch t {
	case TabCurated, TabLatest, TabShuffle, TabNearby, TabFaraway:
		return true
	}
	return false
}

// RequiresLocation reports whether the tab orders by distance and needs a
// resolved origin to do so.
func (t TabMode) RequiresLocation() bool {
	return t == TabNearby || t == TabFaraway
}

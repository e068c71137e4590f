package types

// CapabilityDefinition is static reference data for one capability
// area, supplied by the content catalog. Read-only at runtime.
type CapabilityDefinition struct {
	AreaID     string                         `yaml:"areaId"`
	AreaName   string                         `yaml:"areaName"`
	DomainID   string                         `yaml:"domainId"`
	DomainName string                         `yaml:"domainName"`
	Dimensions map[string]DimensionDefinition `yaml:"dimensions"`
}

// DimensionDefinition describes one ORBIT dimension of a capability
// area: prose description, the five maturity level descriptions, and
// the checklist items defined per level (levels with no checklist are
// simply absent from the map).
type DimensionDefinition struct {
	Description    string           `yaml:"description"`
	MaturityLevels []string         `yaml:"maturityLevels"`
	ChecklistItems map[int][]string `yaml:"checklistItems"`
}

// ChecklistItemsForLevel returns the checklist items of the selected
// maturity level, or nil when the level defines none.
func (d DimensionDefinition) ChecklistItemsForLevel(level int) []string {
	if d.ChecklistItems == nil {
		return nil
	}
	return d.ChecklistItems[level]
}

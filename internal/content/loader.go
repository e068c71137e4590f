// Package content loads the static capability catalog: per-area YAML
// files describing dimensions, maturity levels and checklist items.
// The catalog is reference data for scoring; the store never writes
// to it.
package content

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/orbitlabs/orbit-assess/internal/pkg/errors"
	"github.com/orbitlabs/orbit-assess/internal/platform/logger"
	"github.com/orbitlabs/orbit-assess/internal/types"
)

// Catalog is the loaded, immutable set of capability definitions,
// indexed by area id.
type Catalog struct {
	byArea map[string]*types.CapabilityDefinition
}

// Load reads every .yaml/.yml file under dir (one definition per
// file). A file that fails to parse or validate fails the whole load:
// a partially loaded catalog would silently degrade every score
// computed against it.
func Load(dir string, log *logger.Logger) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read catalog dir: %w", err)
	}

	cat := &Catalog{byArea: map[string]*types.CapabilityDefinition{}}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}

		var def types.CapabilityDefinition
		if err := yaml.Unmarshal(raw, &def); err != nil {
			return nil, fmt.Errorf("parse %s: %w", entry.Name(), err)
		}
		if err := validate(&def); err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		if _, dup := cat.byArea[def.AreaID]; dup {
			return nil, fmt.Errorf("%s: duplicate definition for area %q", entry.Name(), def.AreaID)
		}
		cat.byArea[def.AreaID] = &def
	}

	log.Info("capability catalog loaded", "areas", len(cat.byArea), "dir", dir)
	return cat, nil
}

func validate(def *types.CapabilityDefinition) error {
	if def.AreaID == "" {
		return fmt.Errorf("missing areaId: %w", apperrors.ErrInvalidArgument)
	}
	if def.AreaName == "" {
		return fmt.Errorf("area %q: missing areaName: %w", def.AreaID, apperrors.ErrInvalidArgument)
	}

	known := map[string]bool{}
	for _, d := range types.OrbitDimensions {
		known[d] = true
	}
	for name, dim := range def.Dimensions {
		if !known[name] {
			return fmt.Errorf("area %q: unknown dimension %q: %w", def.AreaID, name, apperrors.ErrInvalidArgument)
		}
		for level := range dim.ChecklistItems {
			if level < 1 || level > 5 {
				return fmt.Errorf("area %q: dimension %q: checklist level %d out of range: %w",
					def.AreaID, name, level, apperrors.ErrInvalidArgument)
			}
		}
	}
	return nil
}

// Get returns the definition for an area, or nil when the catalog
// does not know it. Scoring treats a nil definition as degraded
// (base-level scores only), so a missing entry is not an error here.
func (c *Catalog) Get(areaID string) *types.CapabilityDefinition {
	return c.byArea[areaID]
}

// AreaIDs lists the known areas in sorted order.
func (c *Catalog) AreaIDs() []string {
	ids := make([]string, 0, len(c.byArea))
	for id := range c.byArea {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (c *Catalog) Len() int { return len(c.byArea) }

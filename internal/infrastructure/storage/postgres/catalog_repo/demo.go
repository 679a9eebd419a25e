package catalog_repo

import (
	"encoding/json"
	"fmt"
	"os"

	"hydrostock/internal/core/entity"
	"hydrostock/internal/core/id"
)

// LoadCatalog reads a catalog from a JSON file.
func LoadCatalog(path string) (Catalog, error) {
	var c Catalog
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read catalog: %w", err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	return c, nil
}

// DemoCatalog builds a small utility: one organization with two branches,
// a treatment plant and a network per branch, and a handful of products.
func DemoCatalog() Catalog {
	org := Organization{ID: id.New(), Code: "VODOKANAL", Name: "City Water Utility"}

	c := Catalog{
		Organizations: []Organization{org},
		Products:      map[entity.ProductKind][]Product{},
	}

	for _, b := range []struct{ code, name string }{
		{"NORTH", "North Branch"},
		{"SOUTH", "South Branch"},
	} {
		branch := Branch{ID: id.New(), OrganizationID: org.ID, Code: b.code, Name: b.name}
		c.Branches = append(c.Branches, branch)

		for _, s := range []struct{ code, name string }{
			{"WTP", "Water Treatment Plant"},
			{"NET", "Distribution Network"},
		} {
			sys := System{ID: id.New(), BranchID: branch.ID, Code: b.code + "-" + s.code, Name: b.name + " " + s.name}
			c.Systems = append(c.Systems, sys)
			c.Locations = append(c.Locations, StorageLocation{
				ID:       id.New(),
				SystemID: sys.ID,
				Code:     sys.Code + "-WH1",
				Name:     sys.Name + " Warehouse",
			})
		}
	}

	add := func(kind entity.ProductKind, code, name, unit string) {
		c.Products[kind] = append(c.Products[kind], Product{ID: id.New(), Code: code, Name: name, Unit: unit})
	}
	add(entity.ProductKindChemical, "CL2", "Liquid chlorine", "kg")
	add(entity.ProductKindChemical, "PAC", "Polyaluminium chloride", "kg")
	add(entity.ProductKindPipe, "PE100-110", "PE100 pipe DN110", "m")
	add(entity.ProductKindPipe, "DI-200", "Ductile iron pipe DN200", "m")
	add(entity.ProductKindPump, "CR-32", "Centrifugal pump CR 32", "pcs")
	add(entity.ProductKindAccessory, "GV-100", "Gate valve DN100", "pcs")
	add(entity.ProductKindEquipment, "FM-150", "Electromagnetic flow meter DN150", "pcs")

	return c
}

// LedgerLocations resolves storage locations to ledger locations with their branch
// and organization.
func (c Catalog) LedgerLocations() []entity.Location {
	branchOrg := make(map[id.ID]id.ID, len(c.Branches))
	for _, b := range c.Branches {
		branchOrg[b.ID] = b.OrganizationID
	}
	systemBranch := make(map[id.ID]id.ID, len(c.Systems))
	for _, s := range c.Systems {
		systemBranch[s.ID] = s.BranchID
	}

	out := make([]entity.Location, 0, len(c.Locations))
	for _, l := range c.Locations {
		branchID := systemBranch[l.SystemID]
		out = append(out, entity.Location{
			ID:             l.ID,
			Code:           l.Code,
			Name:           l.Name,
			SystemID:       l.SystemID,
			BranchID:       branchID,
			OrganizationID: branchOrg[branchID],
		})
	}
	return out
}

// ProductRefs lists every product of the catalog.
func (c Catalog) ProductRefs() []entity.ProductRef {
	var out []entity.ProductRef
	for _, kind := range entity.ProductKinds() {
		for _, p := range c.Products[kind] {
			out = append(out, entity.NewProductRef(kind, p.ID))
		}
	}
	return out
}

package domain

import "slices"

// CatalogEntry is a permission the console can grant. ID is local to the
// console and never leaves it; Name is what the API understands.
type CatalogEntry struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type CatalogCategory struct {
	Name        string         `json:"name"`
	Permissions []CatalogEntry `json:"permissions"`
}

type Catalog struct {
	entries []CatalogEntry
	byID    map[int]CatalogEntry
	byName  map[string]CatalogEntry
}

func NewCatalog(entries []CatalogEntry) Catalog {
	c := Catalog{
		entries: slices.Clone(entries),
		byID:    make(map[int]CatalogEntry, len(entries)),
		byName:  make(map[string]CatalogEntry, len(entries)),
	}
	for _, e := range entries {
		c.byID[e.ID] = e
		c.byName[e.Name] = e
	}
	return c
}

// DefaultCatalog is the set of permissions the console exposes.
func DefaultCatalog() Catalog {
	return NewCatalog(defaultEntries)
}

func (c Catalog) Entries() []CatalogEntry { return slices.Clone(c.entries) }

func (c Catalog) ByID(id int) (CatalogEntry, bool) {
	e, ok := c.byID[id]
	return e, ok
}

func (c Catalog) Knows(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Grouped returns categories in first-seen order, entries in catalog order.
func (c Catalog) Grouped() []CatalogCategory {
	var out []CatalogCategory
	index := map[string]int{}
	for _, e := range c.entries {
		i, ok := index[e.Category]
		if !ok {
			i = len(out)
			index[e.Category] = i
			out = append(out, CatalogCategory{Name: e.Category})
		}
		out[i].Permissions = append(out[i].Permissions, e)
	}
	return out
}

// IDsForNames maps server permission names to catalog ids by exact match.
// Names the catalog does not know are dropped.
func (c Catalog) IDsForNames(names []string) []int {
	ids := make([]int, 0, len(names))
	for _, n := range names {
		if e, ok := c.byName[n]; ok && !slices.Contains(ids, e.ID) {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// NamesForIDs maps catalog ids back to permission names. Unknown ids are dropped.
func (c Catalog) NamesForIDs(ids []int) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if e, ok := c.byID[id]; ok && !slices.Contains(names, e.Name) {
			names = append(names, e.Name)
		}
	}
	return names
}

// PermissionDiff is the set of grant and revoke calls needed to move a user
// from their current permissions to the selected ones.
type PermissionDiff struct {
	Grant  []string `json:"grant"`
	Revoke []string `json:"revoke"`
}

func (d PermissionDiff) Empty() bool { return len(d.Grant) == 0 && len(d.Revoke) == 0 }

// Diff compares by exact name. Held names the catalog does not know are
// preserved: they are never revoked because the console cannot show them.
func (c Catalog) Diff(current, selected []string) PermissionDiff {
	held := map[string]bool{}
	for _, n := range current {
		held[n] = true
	}
	wanted := map[string]bool{}
	for _, n := range selected {
		wanted[n] = true
	}
	var diff PermissionDiff
	for _, n := range selected {
		if !held[n] && !slices.Contains(diff.Grant, n) {
			diff.Grant = append(diff.Grant, n)
		}
	}
	for _, n := range current {
		if !wanted[n] && c.Knows(n) && !slices.Contains(diff.Revoke, n) {
			diff.Revoke = append(diff.Revoke, n)
		}
	}
	return diff
}

var defaultEntries = []CatalogEntry{
	{ID: 1, Name: "view domains", Description: "Voir la liste et les détails des domaines", Category: "Domaines"},
	{ID: 2, Name: "create domains", Description: "Créer de nouveaux domaines", Category: "Domaines"},
	{ID: 3, Name: "edit domains", Description: "Mettre à jour les domaines existants", Category: "Domaines"},
	{ID: 4, Name: "delete domains", Description: "Supprimer des domaines", Category: "Domaines"},

	{ID: 5, Name: "view families", Description: "Voir la liste et les détails des familles", Category: "Familles"},
	{ID: 6, Name: "create families", Description: "Créer de nouvelles familles", Category: "Familles"},
	{ID: 7, Name: "edit families", Description: "Mettre à jour les familles existantes", Category: "Familles"},
	{ID: 8, Name: "delete families", Description: "Supprimer des familles", Category: "Familles"},

	{ID: 9, Name: "view equipment_types", Description: "Voir la liste et les détails des types d'équipements", Category: "Types d'équipements"},
	{ID: 10, Name: "create equipment_types", Description: "Créer de nouveaux types d'équipements", Category: "Types d'équipements"},
	{ID: 11, Name: "edit equipment_types", Description: "Mettre à jour les types d'équipements existants", Category: "Types d'équipements"},
	{ID: 12, Name: "delete equipment_types", Description: "Supprimer des types d'équipements", Category: "Types d'équipements"},

	{ID: 13, Name: "view brands", Description: "Voir la liste et les détails des marques", Category: "Marques"},
	{ID: 14, Name: "create brands", Description: "Créer de nouvelles marques", Category: "Marques"},
	{ID: 15, Name: "edit brands", Description: "Mettre à jour les marques existantes", Category: "Marques"},
	{ID: 16, Name: "delete brands", Description: "Supprimer des marques", Category: "Marques"},

	{ID: 17, Name: "view document_types", Description: "Voir la liste et les détails des types de documents", Category: "Types de documents"},
	{ID: 18, Name: "create document_types", Description: "Créer de nouveaux types de documents", Category: "Types de documents"},
	{ID: 19, Name: "edit document_types", Description: "Mettre à jour les types de documents existants", Category: "Types de documents"},
	{ID: 20, Name: "delete document_types", Description: "Supprimer des types de documents", Category: "Types de documents"},

	{ID: 21, Name: "view documents", Description: "Voir la liste et les détails des documents", Category: "Documents"},
	{ID: 22, Name: "create documents", Description: "Créer de nouveaux documents", Category: "Documents"},
	{ID: 23, Name: "edit documents", Description: "Mettre à jour les documents existants", Category: "Documents"},
	{ID: 24, Name: "delete documents", Description: "Supprimer des documents", Category: "Documents"},
	{ID: 25, Name: "archive documents", Description: "Archiver/désarchiver des documents", Category: "Documents"},

	{ID: 26, Name: "view products", Description: "Voir la liste et les détails des produits", Category: "Produits"},
	{ID: 27, Name: "create products", Description: "Créer de nouveaux produits", Category: "Produits"},
	{ID: 28, Name: "edit products", Description: "Mettre à jour les produits existants", Category: "Produits"},
	{ID: 29, Name: "delete products", Description: "Supprimer des produits", Category: "Produits"},
	{ID: 30, Name: "associate products", Description: "Associer/dissocier des produits", Category: "Produits"},

	{ID: 31, Name: "view inventories", Description: "Voir la liste et les détails des inventaires", Category: "Inventaires"},
	{ID: 32, Name: "create inventories", Description: "Créer de nouveaux inventaires", Category: "Inventaires"},
	{ID: 33, Name: "edit inventories", Description: "Mettre à jour les inventaires existants", Category: "Inventaires"},
	{ID: 34, Name: "delete inventories", Description: "Supprimer des inventaires", Category: "Inventaires"},

	{ID: 35, Name: "view users", Description: "Voir la liste et les détails des utilisateurs", Category: "Utilisateurs"},
	{ID: 36, Name: "create users", Description: "Créer de nouveaux utilisateurs", Category: "Utilisateurs"},
	{ID: 37, Name: "edit users", Description: "Mettre à jour les utilisateurs existants", Category: "Utilisateurs"},
	{ID: 38, Name: "delete users", Description: "Supprimer des utilisateurs", Category: "Utilisateurs"},
	{ID: 39, Name: "manage permissions", Description: "Attribuer/retirer des rôles et des permissions", Category: "Utilisateurs"},
}

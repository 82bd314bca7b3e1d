package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"equipment-console/internal/domain"
)

type Domains struct {
	*Resource[domain.Domain, domain.DomainCreate, domain.DomainUpdate]
}

// Families lists the families of one domain.
func (d *Domains) Families(ctx context.Context, domainID int64) (domain.Collection[domain.Family], error) {
	return getCollection[domain.Family](ctx, d.c, fmt.Sprintf("/domains/%d/families", domainID), nil)
}

type Families struct {
	*Resource[domain.Family, domain.FamilyCreate, domain.FamilyUpdate]
}

func (f *Families) EquipmentTypes(ctx context.Context, familyID int64) (domain.Collection[domain.EquipmentType], error) {
	return getCollection[domain.EquipmentType](ctx, f.c, fmt.Sprintf("/families/%d/equipment-types", familyID), nil)
}

type EquipmentTypes struct {
	*Resource[domain.EquipmentType, domain.EquipmentTypeCreate, domain.EquipmentTypeUpdate]
}

func (e *EquipmentTypes) Products(ctx context.Context, equipmentTypeID int64) (domain.Collection[domain.Product], error) {
	return getCollection[domain.Product](ctx, e.c, fmt.Sprintf("/equipment-types/%d/products", equipmentTypeID), nil)
}

type Brands struct {
	*Resource[domain.Brand, domain.BrandCreate, domain.BrandUpdate]
}

func (b *Brands) Products(ctx context.Context, brandID int64) (domain.Collection[domain.Product], error) {
	return getCollection[domain.Product](ctx, b.c, fmt.Sprintf("/brands/%d/products", brandID), nil)
}

type DocumentTypes struct {
	*Resource[domain.DocumentType, domain.DocumentTypeCreate, domain.DocumentTypeUpdate]
}

// Products is the only paginated resource.
type Products struct {
	*Resource[domain.Product, domain.ProductCreate, domain.ProductUpdate]
}

// Page fetches one page of products. Zero fields of req are not sent.
func (p *Products) Page(ctx context.Context, req domain.PageRequest) (domain.Collection[domain.Product], error) {
	query := map[string]string{}
	if req.Page > 0 {
		query["page"] = strconv.Itoa(req.Page)
	}
	if req.PerPage > 0 {
		query["per_page"] = strconv.Itoa(req.PerPage)
	}
	return getCollection[domain.Product](ctx, p.c, p.path, query)
}

func (p *Products) Associated(ctx context.Context, productID int64) (domain.Collection[domain.Product], error) {
	return getCollection[domain.Product](ctx, p.c, fmt.Sprintf("/products/%d/associated-products", productID), nil)
}

func (p *Products) Documents(ctx context.Context, productID int64) (domain.Collection[domain.Document], error) {
	return getCollection[domain.Document](ctx, p.c, fmt.Sprintf("/products/%d/documents", productID), nil)
}

func (p *Products) Inventories(ctx context.Context, productID int64) (domain.Collection[domain.Inventory], error) {
	return getCollection[domain.Inventory](ctx, p.c, fmt.Sprintf("/products/%d/inventories", productID), nil)
}

func (p *Products) Associate(ctx context.Context, productID, otherID int64) error {
	body := map[string]int64{"associated_product_id": otherID}
	return sendAction(ctx, p.c, http.MethodPost, fmt.Sprintf("/products/%d/associate", productID), body)
}

func (p *Products) Dissociate(ctx context.Context, productID, otherID int64) error {
	return sendAction(ctx, p.c, http.MethodDelete, fmt.Sprintf("/products/%d/dissociate/%d", productID, otherID), nil)
}

func (p *Products) AttachDocument(ctx context.Context, productID, documentID int64) error {
	return sendAction(ctx, p.c, http.MethodPost, fmt.Sprintf("/products/%d/documents/%d", productID, documentID), nil)
}

func (p *Products) DetachDocument(ctx context.Context, productID, documentID int64) error {
	return sendAction(ctx, p.c, http.MethodDelete, fmt.Sprintf("/products/%d/documents/%d", productID, documentID), nil)
}

type Inventories struct {
	*Resource[domain.Inventory, domain.InventoryCreate, domain.InventoryUpdate]
}

// Create sends a quantity of 1 when none is given.
func (i *Inventories) Create(ctx context.Context, payload domain.InventoryCreate) (domain.Inventory, error) {
	if payload.Quantity <= 0 {
		payload.Quantity = 1
	}
	if payload.AdditionalFields == nil {
		payload.AdditionalFields = domain.Attributes{}
	}
	return i.Resource.Create(ctx, payload)
}

type Users struct {
	*Resource[domain.User, domain.UserCreate, domain.UserUpdate]
}

func (u *Users) AssignPermission(ctx context.Context, userID int64, permission string) error {
	return u.userAction(ctx, userID, "assign-permission", "permission", permission)
}

func (u *Users) RemovePermission(ctx context.Context, userID int64, permission string) error {
	return u.userAction(ctx, userID, "remove-permission", "permission", permission)
}

func (u *Users) AssignRole(ctx context.Context, userID int64, role string) error {
	return u.userAction(ctx, userID, "assign-role", "role", role)
}

func (u *Users) RemoveRole(ctx context.Context, userID int64, role string) error {
	return u.userAction(ctx, userID, "remove-role", "role", role)
}

func (u *Users) userAction(ctx context.Context, userID int64, action, field, value string) error {
	if value == "" {
		return fmt.Errorf("%s: %w", field, domain.ErrInvalidInput)
	}
	return sendAction(ctx, u.c, http.MethodPost, fmt.Sprintf("/users/%d/%s", userID, action), map[string]string{field: value})
}

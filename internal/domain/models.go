package domain

import (
	"io"
	"time"
)

// Undefined is rendered in place of a reference the API could not resolve.
const Undefined = "non défini"

type Domain struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type DomainCreate struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type DomainUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type Family struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	DomainID    int64     `json:"domain_id"`
	Domain      *Domain   `json:"domain,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type FamilyCreate struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	DomainID    int64  `json:"domain_id"`
}

type FamilyUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	DomainID    *int64  `json:"domain_id,omitempty"`
}

type EquipmentType struct {
	ID                int64       `json:"id"`
	Title             string      `json:"title"`
	Subtitle          string      `json:"subtitle,omitempty"`
	FamilyID          int64       `json:"family_id"`
	Family            *Family     `json:"family,omitempty"`
	InventoryRequired bool        `json:"inventory_required"`
	AdditionalFields  FieldSchema `json:"additional_fields"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

type EquipmentTypeCreate struct {
	Title             string      `json:"title"`
	Subtitle          string      `json:"subtitle,omitempty"`
	FamilyID          int64       `json:"family_id"`
	InventoryRequired bool        `json:"inventory_required"`
	AdditionalFields  FieldSchema `json:"additional_fields"`
}

type EquipmentTypeUpdate struct {
	Title             *string      `json:"title,omitempty"`
	Subtitle          *string      `json:"subtitle,omitempty"`
	FamilyID          *int64       `json:"family_id,omitempty"`
	InventoryRequired *bool        `json:"inventory_required,omitempty"`
	AdditionalFields  *FieldSchema `json:"additional_fields,omitempty"`
}

type Brand struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type BrandCreate struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type BrandUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type DocumentType struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type DocumentTypeCreate struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type DocumentTypeUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type ProductStatus string

const (
	ProductActive      ProductStatus = "active"
	ProductInactive    ProductStatus = "inactive"
	ProductMaintenance ProductStatus = "maintenance"
)

// Product is the catalog definition of an equipment model.
type Product struct {
	ID                 int64          `json:"id"`
	Name               string         `json:"name"`
	Reference          string         `json:"reference,omitempty"`
	Description        string         `json:"description,omitempty"`
	BrandID            int64          `json:"brand_id"`
	Brand              *Brand         `json:"brand,omitempty"`
	EquipmentTypeID    int64          `json:"equipment_type_id"`
	EquipmentType      *EquipmentType `json:"equipment_type,omitempty"`
	Status             ProductStatus  `json:"status,omitempty"`
	AssociatedProducts []Product      `json:"associated_products,omitempty"`
	Documents          []Document     `json:"documents,omitempty"`
	Inventories        []Inventory    `json:"inventories,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// IsActive treats an unset status as active.
func (p Product) IsActive() bool {
	return p.Status == ProductActive || p.Status == ""
}

type ProductCreate struct {
	Name            string        `json:"name"`
	BrandID         int64         `json:"brand_id"`
	EquipmentTypeID int64         `json:"equipment_type_id"`
	Status          ProductStatus `json:"status,omitempty"`
	DocumentIDs     []int64       `json:"document_ids,omitempty"`
}

type ProductUpdate struct {
	Name            *string        `json:"name,omitempty"`
	BrandID         *int64         `json:"brand_id,omitempty"`
	EquipmentTypeID *int64         `json:"equipment_type_id,omitempty"`
	Status          *ProductStatus `json:"status,omitempty"`
}

type Document struct {
	ID             int64         `json:"id"`
	Name           string        `json:"name"`
	FileName       string        `json:"file_name"`
	FilePath       string        `json:"file_path"`
	FileSize       int64         `json:"file_size"`
	MimeType       string        `json:"mime_type"`
	DocumentTypeID int64         `json:"document_type_id"`
	DocumentType   *DocumentType `json:"document_type,omitempty"`
	Version        string        `json:"version"`
	IssueDate      Date          `json:"issue_date"`
	ExpiryDate     *Date         `json:"expiry_date,omitempty"`
	Reference      string        `json:"reference"`
	IsArchived     bool          `json:"is_archived"`
	Products       []Product     `json:"products,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// DocumentUpload is the multipart payload of a document create or update.
// A nil File on update keeps the stored file.
type DocumentUpload struct {
	Name           string
	DocumentTypeID int64
	Reference      string
	Version        string
	IssueDate      Date
	ExpiryDate     *Date
	ProductIDs     []int64
	File           *FileAttachment
}

type FileAttachment struct {
	Name    string
	Content io.Reader
}

// DocumentFile is the raw content returned by a document download.
type DocumentFile struct {
	ContentType string
	FileName    string
	Content     []byte
}

// Inventory is a physical, located instance of a Product.
type Inventory struct {
	ID                int64      `json:"id"`
	ProductID         int64      `json:"product_id"`
	Product           *Product   `json:"product,omitempty"`
	Quantity          int        `json:"quantity"`
	Location          string     `json:"location"`
	BrandID           *int64     `json:"brand_id,omitempty"`
	CommissioningDate *Date      `json:"commissioning_date,omitempty"`
	AdditionalFields  Attributes `json:"additional_fields"`
	Notes             string     `json:"notes,omitempty"`
	LastUpdated       *time.Time `json:"last_updated,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type InventoryCreate struct {
	ProductID         int64      `json:"product_id"`
	BrandID           *int64     `json:"brand_id,omitempty"`
	Location          string     `json:"location"`
	CommissioningDate *Date      `json:"commissioning_date,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	AdditionalFields  Attributes `json:"additional_fields"`
	Quantity          int        `json:"quantity"`
}

type InventoryUpdate struct {
	ProductID         *int64      `json:"product_id,omitempty"`
	BrandID           *int64      `json:"brand_id,omitempty"`
	Location          *string     `json:"location,omitempty"`
	CommissioningDate *Date       `json:"commissioning_date,omitempty"`
	Notes             *string     `json:"notes,omitempty"`
	AdditionalFields  *Attributes `json:"additional_fields,omitempty"`
	Quantity          *int        `json:"quantity,omitempty"`
}

type Role struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	GuardName string    `json:"guard_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Permission is a grant held server-side. Only Name is meaningful to the client.
type Permission struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	GuardName string    `json:"guard_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type User struct {
	ID              int64        `json:"id"`
	Name            string       `json:"name"`
	Email           string       `json:"email"`
	EmailVerifiedAt *time.Time   `json:"email_verified_at,omitempty"`
	Roles           []Role       `json:"roles,omitempty"`
	Permissions     []Permission `json:"permissions,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// PermissionNames returns the names of the permissions the user holds, in server order.
func (u User) PermissionNames() []string {
	names := make([]string, 0, len(u.Permissions))
	for _, p := range u.Permissions {
		names = append(names, p.Name)
	}
	return names
}

type UserCreate struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Role                 string `json:"role,omitempty"`
}

type UserUpdate struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// AuthResult is the payload returned by login and register.
type AuthResult struct {
	User        User     `json:"user"`
	Token       string   `json:"token"`
	Permissions []string `json:"permissions"`
	Roles       []string `json:"roles"`
	Message     string   `json:"-"`
}

func (f Family) DomainName() string {
	if f.Domain == nil || f.Domain.Name == "" {
		return Undefined
	}
	return f.Domain.Name
}

func (t EquipmentType) FamilyName() string {
	if t.Family == nil || t.Family.Name == "" {
		return Undefined
	}
	return t.Family.Name
}

func (p Product) BrandName() string {
	if p.Brand == nil || p.Brand.Name == "" {
		return Undefined
	}
	return p.Brand.Name
}

func (p Product) EquipmentTypeTitle() string {
	if p.EquipmentType == nil || p.EquipmentType.Title == "" {
		return Undefined
	}
	return p.EquipmentType.Title
}

func (d Document) DocumentTypeName() string {
	if d.DocumentType == nil || d.DocumentType.Name == "" {
		return Undefined
	}
	return d.DocumentType.Name
}

func (i Inventory) ProductName() string {
	if i.Product == nil || i.Product.Name == "" {
		return Undefined
	}
	return i.Product.Name
}

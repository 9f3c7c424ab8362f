package dto

import (
	"strings"

	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/pkg/util"
)

// TenantRequest payload for tenant create/update.
type TenantRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Normalize trims whitespace on all fields.
func (r *TenantRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Address = strings.TrimSpace(r.Address)
}

// Validate reports field-level failures.
func (r *TenantRequest) Validate() []util.FieldError {
	var fields []util.FieldError
	if r.Name == "" {
		fields = append(fields, util.FieldError{Path: "name", Message: "tenant name is required"})
	}
	if r.Address == "" {
		fields = append(fields, util.FieldError{Path: "address", Message: "tenant address is required"})
	}
	return fields
}

// TenantResponse is the wire shape for a tenant.
type TenantResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// NewTenantResponse maps a domain tenant onto the wire shape.
func NewTenantResponse(tenant *domain.Tenant) TenantResponse {
	return TenantResponse{ID: tenant.ID, Name: tenant.Name, Address: tenant.Address}
}

package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/dto"
	"github.com/spec-kit/auth-service/internal/service"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// TenantsHandler exposes tenant management endpoints.
type TenantsHandler struct {
	tenants *service.TenantService
}

// NewTenantsHandler constructs handler.
func NewTenantsHandler(tenantService *service.TenantService) *TenantsHandler {
	return &TenantsHandler{tenants: tenantService}
}

// Create handles POST /tenants.
func (h *TenantsHandler) Create(c *fiber.Ctx) error {
	req, err := parseTenantBody(c)
	if err != nil {
		return err
	}

	tenant, err := h.tenants.Create(c.Context(), req.Name, req.Address)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"id": tenant.ID})
}

// List handles GET /tenants.
func (h *TenantsHandler) List(c *fiber.Ctx) error {
	tenants, err := h.tenants.List(c.Context())
	if err != nil {
		return err
	}

	out := make([]dto.TenantResponse, 0, len(tenants))
	for _, tenant := range tenants {
		out = append(out, dto.NewTenantResponse(tenant))
	}
	return c.JSON(fiber.Map{"tenants": out})
}

// GetByID handles GET /tenants/:id.
func (h *TenantsHandler) GetByID(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	tenant, err := h.tenants.GetByID(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"tenant": dto.NewTenantResponse(tenant)})
}

// Update handles PATCH /tenants/:id.
func (h *TenantsHandler) Update(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	req, err := parseTenantBody(c)
	if err != nil {
		return err
	}

	tenant, err := h.tenants.Update(c.Context(), id, req.Name, req.Address)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"id": tenant.ID})
}

// Delete handles DELETE /tenants/:id.
func (h *TenantsHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	if err := h.tenants.Delete(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"id": id})
}

func parseTenantBody(c *fiber.Ctx) (*dto.TenantRequest, error) {
	var req dto.TenantRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, apperrors.NewValidationError(apperrors.FieldError{Path: "body", Message: "invalid payload"})
	}
	req.Normalize()
	if fields := req.Validate(); len(fields) > 0 {
		return nil, apperrors.NewValidationError(fields...)
	}
	return &req, nil
}

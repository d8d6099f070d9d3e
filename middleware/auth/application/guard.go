package application

import (
	"slices"

	"restaurant-gateway/middleware/auth/domain"
)

// Guard decide acesso a partir de uma Identity já verificada.
type Guard struct {
	// GlobalRoles acessam qualquer recurso de tenant.
	GlobalRoles []string
	// TenantRole só acessa recursos de tenant se tiver TenantID.
	TenantRole string
}

func NewGuard() Guard {
	return Guard{
		GlobalRoles: []string{domain.RoleAdmin, domain.RoleSuperAdmin},
		TenantRole:  domain.RoleTenantAdmin,
	}
}

// Authorize exige que o papel da identidade esteja em allowed.
func (g Guard) Authorize(id *domain.Identity, allowed ...string) error {
	if id == nil {
		return domain.NewError(domain.ErrCodeMissingUserInfo, nil)
	}
	if !slices.Contains(allowed, id.Role) {
		return domain.NewError(domain.ErrCodeInsufficientPermissions, nil)
	}
	return nil
}

// AuthorizeResourceAccess aplica a regra dos recursos por tenant (restaurante).
func (g Guard) AuthorizeResourceAccess(id *domain.Identity) error {
	if id == nil {
		return domain.NewError(domain.ErrCodeMissingUserInfo, nil)
	}
	if slices.Contains(g.GlobalRoles, id.Role) {
		return nil
	}
	if g.TenantRole != "" && id.Role == g.TenantRole {
		if !id.HasTenant() {
			return domain.NewError(domain.ErrCodeMissingTenantAssociation, nil)
		}
		return nil
	}
	return domain.NewError(domain.ErrCodeInsufficientPermissions, nil)
}

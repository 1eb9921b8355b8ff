package hiddencontent

import "context"

// RolePermissions grants page edits by role: administrators and editors may
// edit every page, authors and contributors only pages they wrote.
type RolePermissions struct {
	repository Repository
}

// NewRolePermissions creates a role-based checker that looks up page authors in repo.
func NewRolePermissions(repo Repository) *RolePermissions {
	return &RolePermissions{repository: repo}
}

// CanEditPage reports whether user may edit the page with the given id.
// Unknown pages and lookup failures deny.
func (p *RolePermissions) CanEditPage(ctx context.Context, user User, pageID int64) bool {
	switch user.Role {
	case RoleAdministrator, RoleEditor:
		return true
	case RoleAuthor, RoleContributor:
		page, err := p.repository.GetPage(ctx, pageID)
		if err != nil {
			return false
		}
		return page.AuthorID == user.ID
	default:
		return false
	}
}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdministrator, RoleEditor, RoleAuthor, RoleContributor, RoleSubscriber:
		return true
	}
	return false
}

package menu

import "github.com/debate-club/portal/internal/domain/auth"

// Entry keys. Handlers and templates refer to entries by key.
const (
	KeyOverview        = "overview"
	KeyProfile         = "profile"
	KeyMyPayments      = "my-payments"
	KeyMemberEvents    = "member-events"
	KeyManageUsers     = "manage-users"
	KeyManagePayments  = "manage-payments"
	KeyManageEvents    = "manage-events"
	KeyManageGallery   = "manage-gallery"
	KeyAdminConsole    = "admin-console"
	KeyAdminRoleAssign = "admin-roles"
)

// dashboardEntries is the club's navigation policy. Order here is menu order.
//
//nolint:funlen // declarative table
func dashboardEntries() []Entry {
	everyone := auth.Roles()
	members := []auth.Role{
		auth.RoleMember, auth.RoleExecutiveMember, auth.RoleGeneralSecretary,
		auth.RolePresident, auth.RoleModerator, auth.RoleAdmin,
	}
	leadership := []auth.Role{auth.RoleGeneralSecretary, auth.RolePresident, auth.RoleAdmin}

	return []Entry{
		{
			Key:   KeyOverview,
			Label: "Overview",
			Path:  "/dashboard",
			Icon:  "home",
			Roles: everyone,
		},
		{
			Key:   KeyProfile,
			Label: "My Profile",
			Path:  "/dashboard/profile",
			Icon:  "user",
			Roles: everyone,
		},
		{
			Key:   KeyMyPayments,
			Label: "My Payments",
			Path:  "/dashboard/payments",
			Icon:  "credit-card",
			Roles: everyone,
		},
		{
			Key:   KeyMemberEvents,
			Label: "Club Events",
			Path:  "/dashboard/events",
			Icon:  "calendar",
			Roles: members,
		},
		{
			Key:   KeyManageUsers,
			Label: "Manage Users",
			Path:  "/dashboard/manage/users",
			Icon:  "users",
			Roles: leadership,
		},
		{
			Key:   KeyManagePayments,
			Label: "Manage Payments",
			Path:  "/dashboard/manage/payments",
			Icon:  "wallet",
			Roles: []auth.Role{auth.RoleExecutiveMember, auth.RoleGeneralSecretary, auth.RolePresident, auth.RoleAdmin},
		},
		{
			Key:   KeyManageEvents,
			Label: "Manage Events",
			Path:  "/dashboard/manage/events",
			Icon:  "megaphone",
			Roles: []auth.Role{
				auth.RoleExecutiveMember, auth.RoleGeneralSecretary, auth.RolePresident,
				auth.RoleModerator, auth.RoleAdmin,
			},
		},
		{
			Key:   KeyManageGallery,
			Label: "Manage Gallery",
			Path:  "/dashboard/manage/gallery",
			Icon:  "image",
			Roles: []auth.Role{auth.RolePresident, auth.RoleModerator, auth.RoleAdmin},
		},
		{
			Key:   KeyAdminConsole,
			Label: "Admin Console",
			Path:  "/admin",
			Icon:  "shield",
			Roles: []auth.Role{auth.RolePresident, auth.RoleAdmin},
		},
		{
			Key:   KeyAdminRoleAssign,
			Label: "Assign Roles",
			Path:  "/admin/roles",
			Icon:  "key",
			Roles: []auth.Role{auth.RolePresident, auth.RoleAdmin},
		},
	}
}

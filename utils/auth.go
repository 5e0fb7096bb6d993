package utils

import (
	"slices"

	"timeout-helper/model"
)

// Permission levels
const (
	DeveloperPermission = "developer"
	AdminPermission     = "admin"
	ModeratorPermission = "moderator"
	GuestPermission     = "guest"
)

var permissionRank = map[string]int{
	GuestPermission:     0,
	ModeratorPermission: 1,
	AdminPermission:     2,
	DeveloperPermission: 3,
}

// CheckPermission returns the highest permission level a member holds in guild.
func CheckPermission(memberRoleIDs []string, userID string, guild model.GuildConfig, developerUserIDs []string) string {
	if slices.Contains(developerUserIDs, userID) {
		return DeveloperPermission
	}

	// Admin check
	for _, roleID := range memberRoleIDs {
		if slices.Contains(guild.AdminRoleIDs, roleID) {
			return AdminPermission
		}
	}

	// Moderator check
	for _, roleID := range memberRoleIDs {
		if slices.Contains(guild.ModeratorRoleIDs, roleID) {
			return ModeratorPermission
		}
	}

	return GuestPermission
}

// HasPermission reports whether level is at least required.
func HasPermission(level, required string) bool {
	return permissionRank[level] >= permissionRank[required]
}

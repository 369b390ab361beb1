// Package access computes the effective rights a user holds on a memory.
package access

import "github.com/dmitrijs2005/remotetm/internal/server/models"

// Resolve returns the rights of user on memory. perm is the stored grant
// row for the pair, or nil when there is none. The first matching rule wins:
// administrators get everything, then the owner gets everything, then the
// stored row applies. Without a row nothing is granted.
func Resolve(user *models.User, memory *models.Memory, perm *models.Permission) models.Rights {
	if user == nil || memory == nil {
		return models.NoRights
	}

	switch user.Role {
	case models.SystemAdministrator:
		return models.AllRights
	case models.ProjectManager, models.Translator:
	default:
		return models.NoRights
	}

	if memory.Owner == user.ID {
		return models.AllRights
	}

	if perm == nil || perm.UserID != user.ID || perm.MemoryID != memory.ID {
		return models.NoRights
	}
	return perm.Rights
}

// Visible reports whether user may see memory in listings.
func Visible(user *models.User, memory *models.Memory, perm *models.Permission) bool {
	return Resolve(user, memory, perm).Any()
}

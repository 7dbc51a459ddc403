package cmd

import "strings"

// Permission names a platform permission a command can require.
type Permission string

const (
	PermissionAdministrator   Permission = "administrator"
	PermissionBanMembers      Permission = "ban_members"
	PermissionKickMembers     Permission = "kick_members"
	PermissionModerateMembers Permission = "moderate_members"
	PermissionManageMessages  Permission = "manage_messages"
	PermissionManageRoles     Permission = "manage_roles"
	PermissionManageChannels  Permission = "manage_channels"
	PermissionManageGuild     Permission = "manage_guild"
	PermissionManageNicknames Permission = "manage_nicknames"
	PermissionManageWebhooks  Permission = "manage_webhooks"
	PermissionMentionEveryone Permission = "mention_everyone"
	PermissionSendMessages    Permission = "send_messages"
	PermissionViewAuditLog    Permission = "view_audit_log"
)

var permissionTitles = map[Permission]string{
	PermissionAdministrator:   "Administrator",
	PermissionBanMembers:      "Ban Members",
	PermissionKickMembers:     "Kick Members",
	PermissionModerateMembers: "Moderate Members",
	PermissionManageMessages:  "Manage Messages",
	PermissionManageRoles:     "Manage Roles",
	PermissionManageChannels:  "Manage Channels",
	PermissionManageGuild:     "Manage Server",
	PermissionManageNicknames: "Manage Nicknames",
	PermissionManageWebhooks:  "Manage Webhooks",
	PermissionMentionEveryone: "Mention Everyone",
	PermissionSendMessages:    "Send Messages",
	PermissionViewAuditLog:    "View Audit Log",
}

// Title is the human name of the permission, e.g. "Ban Members".
func (p Permission) Title() string {
	if t, ok := permissionTitles[p]; ok {
		return t
	}
	words := strings.Split(string(p), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func (p Permission) String() string { return string(p) }

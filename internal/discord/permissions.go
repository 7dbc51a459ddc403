package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/detache/pkg/cmd"
)

var permissionBits = map[cmd.Permission]int64{
	cmd.PermissionAdministrator:   discordgo.PermissionAdministrator,
	cmd.PermissionBanMembers:      discordgo.PermissionBanMembers,
	cmd.PermissionKickMembers:     discordgo.PermissionKickMembers,
	cmd.PermissionModerateMembers: discordgo.PermissionModerateMembers,
	cmd.PermissionManageMessages:  discordgo.PermissionManageMessages,
	cmd.PermissionManageRoles:     discordgo.PermissionManageRoles,
	cmd.PermissionManageChannels:  discordgo.PermissionManageChannels,
	cmd.PermissionManageGuild:     discordgo.PermissionManageGuild,
	cmd.PermissionManageNicknames: discordgo.PermissionManageNicknames,
	cmd.PermissionManageWebhooks:  discordgo.PermissionManageWebhooks,
	cmd.PermissionMentionEveryone: discordgo.PermissionMentionEveryone,
	cmd.PermissionSendMessages:    discordgo.PermissionSendMessages,
	cmd.PermissionViewAuditLog:    discordgo.PermissionViewAuditLogs,
}

// permissionChecker computes channel permissions from cached state. If the
// state can't (member or channel not cached) it asks the API.
type permissionChecker struct {
	state   *discordgo.State
	session *discordgo.Session
}

func (c *permissionChecker) HasPermission(ctx context.Context, actorID, channelID string, p cmd.Permission) (bool, error) {
	bit, ok := permissionBits[p]
	if !ok {
		return false, fmt.Errorf("unknown permission %q", p)
	}

	perms, err := c.channelPermissions(ctx, actorID, channelID)
	if err != nil {
		return false, fmt.Errorf("failed to get user permissions: %w", err)
	}
	if perms&discordgo.PermissionAdministrator != 0 {
		return true, nil
	}
	return perms&bit == bit, nil
}

func (c *permissionChecker) channelPermissions(ctx context.Context, userID, channelID string) (int64, error) {
	if c.state != nil {
		perms, err := c.state.UserChannelPermissions(userID, channelID)
		if err == nil {
			return perms, nil
		}
		if c.session == nil {
			return 0, err
		}
	}
	if c.session == nil {
		return 0, fmt.Errorf("no session to query permissions")
	}
	return c.session.UserChannelPermissions(userID, channelID, discordgo.WithContext(ctx))
}

package command

import (
	"slices"

	"cheatbot/internal/domain"
)

// Access restricts where and by whom a command may be used.
// A nil or empty list places no restriction on that dimension.
type Access struct {
	Roles      []string // member must hold at least one
	Categories []string // channel categories the command is open in
	Channels   []string // individual channels, regardless of category
}

// Check returns nil when msg satisfies the policy. The role requirement and
// the location requirement must both hold; the location requirement is met
// by either an allowed category or a whitelisted channel.
func (a Access) Check(msg domain.InboundMessage) error {
	if len(a.Roles) > 0 && !slices.ContainsFunc(msg.RoleIDs, func(id string) bool {
		return slices.Contains(a.Roles, id)
	}) {
		return domain.NewDomainError("command.Access", domain.ErrPermissionDenied, "missing allowed role")
	}

	if len(a.Categories) == 0 && len(a.Channels) == 0 {
		return nil
	}
	if msg.CategoryID != "" && slices.Contains(a.Categories, msg.CategoryID) {
		return nil
	}
	if slices.Contains(a.Channels, msg.SessionID) {
		return nil
	}
	return domain.NewDomainError("command.Access", domain.ErrPermissionDenied, "channel not allowed")
}

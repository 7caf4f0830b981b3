package workspace

import (
	"context"
	"fmt"
	"strings"

	"github.com/Marga-Ghale/ora-casework/internal/apperr"
	"github.com/Marga-Ghale/ora-casework/internal/types"
)

// Action types guarded by the Authorizer.
type Action string

const (
	ActionPinMessage     Action = "pin"
	ActionVerifyEvidence Action = "verify"
	ActionDeleteEvidence Action = "delete_evidence"
	ActionDeleteDocument Action = "delete_document"
	ActionManageMembers  Action = "manage_members"
)

var knownActions = []Action{
	ActionPinMessage, ActionVerifyEvidence, ActionDeleteEvidence,
	ActionDeleteDocument, ActionManageMembers,
}

// Subject identifies who attempts an action and where.
type Subject struct {
	WorkspaceID string
	ActorID     string
	Role        types.Role
}

// Authorizer decides whether a subject may perform an action. The store
// never grants anything on its own: every guarded intent goes through it.
type Authorizer interface {
	Authorize(ctx context.Context, action Action, subject Subject) error
}

// AllowAll permits every action. Use it only where an outer layer has
// already authorized the request.
type AllowAll struct{}

func (AllowAll) Authorize(context.Context, Action, Subject) error { return nil }

// RolePolicy grants each action to an explicit list of roles. Actions that
// are not listed are denied to everyone.
type RolePolicy map[Action][]types.Role

func (p RolePolicy) Authorize(_ context.Context, action Action, subject Subject) error {
	for _, role := range p[action] {
		if role == subject.Role {
			return nil
		}
	}
	return fmt.Errorf("%s may not %s in workspace %s: %w", subject.ActorID, action, subject.WorkspaceID, apperr.ErrForbidden)
}

// ParseRolePolicy reads a policy such as
// "pin=owner,admin;verify=owner,admin,investigator".
func ParseRolePolicy(raw string) (RolePolicy, error) {
	policy := RolePolicy{}
	for _, clause := range strings.Split(raw, ";") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		name, roles, ok := strings.Cut(clause, "=")
		if !ok {
			return nil, fmt.Errorf("policy clause %q: missing '='", clause)
		}
		action := Action(strings.TrimSpace(name))
		if !isKnownAction(action) {
			return nil, fmt.Errorf("policy clause %q: unknown action %q", clause, action)
		}
		for _, r := range strings.Split(roles, ",") {
			role := types.Role(strings.TrimSpace(r))
			if role == "" {
				continue
			}
			if !types.IsValidRole(role) {
				return nil, fmt.Errorf("policy clause %q: unknown role %q", clause, role)
			}
			policy[action] = append(policy[action], role)
		}
	}
	return policy, nil
}

func isKnownAction(a Action) bool {
	for _, known := range knownActions {
		if known == a {
			return true
		}
	}
	return false
}

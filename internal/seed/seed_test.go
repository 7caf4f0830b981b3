package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marga-Ghale/ora-casework/internal/types"
	"github.com/Marga-Ghale/ora-casework/internal/workspace"
)

func newStore(t *testing.T) *workspace.Store {
	t.Helper()
	policy, err := workspace.ParseRolePolicy("pin=owner,admin,investigator;verify=owner,admin,investigator;delete_evidence=owner,admin;delete_document=owner,admin;manage_members=owner,admin")
	require.NoError(t, err)
	return workspace.NewStore(policy, zerolog.Nop())
}

func TestDefaultFixture_Applies(t *testing.T) {
	f, err := Default()
	require.NoError(t, err)

	store := newStore(t)
	sum, err := Apply(context.Background(), store, f, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, Summary{Workspaces: 1, Members: 3, Messages: 4, Evidence: 3, Documents: 3, Milestones: 3}, sum)

	ctx := context.Background()
	ws := store.ListWorkspaces(ctx)
	require.Len(t, ws, 1)
	id := ws[0].ID

	pinned, err := store.PinnedMessages(ctx, id)
	require.NoError(t, err)
	require.Len(t, pinned, 1)

	stats, err := store.EvidenceStats(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Verified)
	assert.Equal(t, 1, stats.Disputed)
	assert.Equal(t, 1, stats.Pending)

	view, err := store.DocumentsByFolder(ctx, id, "")
	require.NoError(t, err)
	assert.Len(t, view.All, 3)
	assert.Equal(t, []string{"Invoices", "Terminal"}, view.Folders)

	progress, err := store.Progress(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.Completed)
	assert.Equal(t, "33.33", progress.Percent().String())

	owner, err := store.Member(ctx, id, "ana")
	require.NoError(t, err)
	assert.Equal(t, types.RoleOwner, owner.Role)
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	_, err := Load(strings.NewReader("workspaces:\n  - name: x\n    colour: red\n"))
	assert.Error(t, err)
}

func TestApply_UnknownReplyKey(t *testing.T) {
	f, err := Load(strings.NewReader(`
workspaces:
  - name: Broken
    owner: {id: u1, displayName: U, role: owner}
    messages:
      - authorId: u1
        content: hi
        replyTo: missing
`))
	require.NoError(t, err)

	sum, err := Apply(context.Background(), newStore(t), f, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown replyTo key")
	assert.Equal(t, 1, sum.Workspaces)
}

func TestApply_StopsOnRejectedIntent(t *testing.T) {
	f, err := Load(strings.NewReader(`
workspaces:
  - name: Viewer pin
    owner: {id: u1, displayName: U, role: owner}
    members:
      - {id: u2, displayName: V, role: viewer}
    messages:
      - authorId: u1
        content: hi
        pinnedBy: u2
`))
	require.NoError(t, err)

	_, err = Apply(context.Background(), newStore(t), f, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pin message 0")
}

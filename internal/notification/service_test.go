package notification

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marga-Ghale/ora-casework/internal/models"
	"github.com/Marga-Ghale/ora-casework/internal/socket"
	"github.com/Marga-Ghale/ora-casework/internal/types"
	"github.com/Marga-Ghale/ora-casework/internal/workspace"
)

type sentFrame struct {
	memberID string
	note     Notification
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentFrame
}

func (r *recordingSender) SendToMember(memberID string, msg socket.Message) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentFrame{memberID: memberID, note: msg.Payload.(Notification)})
	return true
}

func (r *recordingSender) recipients() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, f := range r.sent {
		ids = append(ids, f.memberID)
	}
	return ids
}

func TestParseMentions(t *testing.T) {
	assert.Equal(t, []string{"ben", "chloe.park"}, ParseMentions("@ben see @chloe.park. and @ben again"))
	assert.Empty(t, ParseMentions("mail ana@example.com"))
	assert.Empty(t, ParseMentions("no mentions"))
}

// The notifier is exercised against a real store so payload types match
// what the store emits.
func TestService_NotifiesConcernedMembers(t *testing.T) {
	sender := &recordingSender{}
	var store *workspace.Store
	svc := NewService(sender,
		func(ctx context.Context, ws, id string) (models.WorkspaceMember, error) { return store.Member(ctx, ws, id) },
		func(ctx context.Context, ws, id string) (models.WorkspaceMessage, error) { return store.Message(ctx, ws, id) },
		zerolog.Nop(),
	)
	store = workspace.NewStore(workspace.AllowAll{}, zerolog.Nop(), workspace.WithSinks(svc))
	ctx := context.Background()

	ws, err := store.CreateWorkspace(ctx, models.CreateWorkspaceRequest{
		Name:  "Harbor",
		Owner: models.AddMemberRequest{ID: "ana", DisplayName: "Ana", Role: types.RoleOwner},
	})
	require.NoError(t, err)
	assert.Empty(t, sender.recipients(), "owner is not notified of its own workspace")

	for _, id := range []string{"ben", "chloe"} {
		_, err := store.AddMember(ctx, ws.ID, "ana", models.AddMemberRequest{ID: id, DisplayName: id, Role: types.RoleInvestigator})
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"ben", "chloe"}, sender.recipients())

	root, err := store.SendMessage(ctx, ws.ID, models.SendMessageRequest{AuthorID: "ben", Content: "gate logs are in"})
	require.NoError(t, err)

	sender.sent = nil
	_, err = store.SendMessage(ctx, ws.ID, models.SendMessageRequest{
		AuthorID:  "ana",
		Content:   "thanks @ben, @chloe please cross-check, cc @ghost @ana",
		ReplyToID: &root.ID,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"ben", "chloe"}, sender.recipients())
	assert.Equal(t, TypeReply, sender.sent[0].note.Type)
	assert.Equal(t, TypeMention, sender.sent[1].note.Type)

	ev, err := store.AddEvidence(ctx, ws.ID, models.CreateEvidenceRequest{Type: types.EvidenceDocument, Title: "Gate logs", AddedBy: "ben"})
	require.NoError(t, err)
	sender.sent = nil
	_, err = store.SetEvidenceStatus(ctx, ws.ID, "chloe", ev.ID, types.StatusDisputed)
	require.NoError(t, err)
	require.Equal(t, []string{"ben"}, sender.recipients())
	assert.Equal(t, TypeEvidenceReviewed, sender.sent[0].note.Type)
	assert.Equal(t, types.StatusDisputed, sender.sent[0].note.Data["status"])
}

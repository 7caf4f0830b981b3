// Package seed loads development fixtures and applies them through the
// workspace store, so seeded data passes the same validation and emits the
// same events as live traffic.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/Marga-Ghale/ora-casework/internal/models"
	"github.com/Marga-Ghale/ora-casework/internal/types"
	"github.com/Marga-Ghale/ora-casework/internal/workspace"
)

//go:embed fixtures/harbor.yaml
var defaultFixture []byte

type Fixture struct {
	Workspaces []WorkspaceFixture `yaml:"workspaces"`
}

type WorkspaceFixture struct {
	models.CreateWorkspaceRequest `yaml:",inline"`

	Members    []models.AddMemberRequest      `yaml:"members"`
	Messages   []MessageFixture               `yaml:"messages"`
	Evidence   []EvidenceFixture              `yaml:"evidence"`
	Documents  []models.UploadDocumentRequest `yaml:"documents"`
	Milestones []MilestoneFixture             `yaml:"milestones"`
}

// MessageFixture refers to other fixture messages by Key because ids are
// generated on insert.
type MessageFixture struct {
	models.SendMessageRequest `yaml:",inline"`

	Key      string `yaml:"key"`
	ReplyTo  string `yaml:"replyTo"`
	PinnedBy string `yaml:"pinnedBy"`
}

type EvidenceFixture struct {
	models.CreateEvidenceRequest `yaml:",inline"`

	Key        string                   `yaml:"key"`
	Status     types.VerificationStatus `yaml:"status"`
	ReviewedBy string                   `yaml:"reviewedBy"`
	Links      []string                 `yaml:"links"`
}

type MilestoneFixture struct {
	models.CreateMilestoneRequest `yaml:",inline"`

	Completed bool `yaml:"completed"`
}

// Summary counts what Apply created.
type Summary struct {
	Workspaces int
	Members    int
	Messages   int
	Evidence   int
	Documents  int
	Milestones int
}

// Load decodes a fixture. Unknown keys are rejected.
func Load(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &f, nil
}

// LoadFile reads a fixture from path.
func LoadFile(path string) (*Fixture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer file.Close()
	return Load(file)
}

// Default returns the built-in development fixture.
func Default() (*Fixture, error) {
	return Load(bytes.NewReader(defaultFixture))
}

// Apply creates every fixture workspace through store intents. It stops at
// the first rejected intent.
func Apply(ctx context.Context, store *workspace.Store, f *Fixture, logger zerolog.Logger) (Summary, error) {
	log := logger.With().Str("component", "seed").Logger()

	var sum Summary
	for _, wf := range f.Workspaces {
		ws, err := applyWorkspace(ctx, store, wf, &sum)
		if err != nil {
			return sum, fmt.Errorf("seed workspace %q: %w", wf.Name, err)
		}
		log.Info().Str("workspace_id", ws.ID).Str("name", ws.Name).Msg("seeded workspace")
	}
	return sum, nil
}

func applyWorkspace(ctx context.Context, store *workspace.Store, wf WorkspaceFixture, sum *Summary) (models.Workspace, error) {
	ws, err := store.CreateWorkspace(ctx, wf.CreateWorkspaceRequest)
	if err != nil {
		return ws, err
	}
	sum.Workspaces++
	owner := wf.Owner.ID

	for _, m := range wf.Members {
		if _, err := store.AddMember(ctx, ws.ID, owner, m); err != nil {
			return ws, fmt.Errorf("member %s: %w", m.ID, err)
		}
		sum.Members++
	}

	messages := map[string]string{}
	for i, mf := range wf.Messages {
		req := mf.SendMessageRequest
		if mf.ReplyTo != "" {
			id, ok := messages[mf.ReplyTo]
			if !ok {
				return ws, fmt.Errorf("message %d: unknown replyTo key %q", i, mf.ReplyTo)
			}
			req.ReplyToID = &id
		}
		msg, err := store.SendMessage(ctx, ws.ID, req)
		if err != nil {
			return ws, fmt.Errorf("message %d: %w", i, err)
		}
		if mf.Key != "" {
			messages[mf.Key] = msg.ID
		}
		if mf.PinnedBy != "" {
			if _, err := store.TogglePin(ctx, ws.ID, mf.PinnedBy, msg.ID); err != nil {
				return ws, fmt.Errorf("pin message %d: %w", i, err)
			}
		}
		sum.Messages++
	}

	evidence := map[string]string{}
	for i, ef := range wf.Evidence {
		req := ef.CreateEvidenceRequest
		req.Connections = nil
		ev, err := store.AddEvidence(ctx, ws.ID, req)
		if err != nil {
			return ws, fmt.Errorf("evidence %d: %w", i, err)
		}
		if ef.Key != "" {
			evidence[ef.Key] = ev.ID
		}
		if ef.Status != "" && ef.Status != types.StatusPending {
			reviewer := ef.ReviewedBy
			if reviewer == "" {
				reviewer = owner
			}
			if _, err := store.SetEvidenceStatus(ctx, ws.ID, reviewer, ev.ID, ef.Status); err != nil {
				return ws, fmt.Errorf("evidence %d status: %w", i, err)
			}
		}
		sum.Evidence++
	}
	for _, ef := range wf.Evidence {
		for _, link := range ef.Links {
			to, ok := evidence[link]
			if !ok {
				return ws, fmt.Errorf("evidence %q: unknown link key %q", ef.Key, link)
			}
			if _, err := store.ConnectEvidence(ctx, ws.ID, owner, evidence[ef.Key], to); err != nil {
				return ws, fmt.Errorf("link %s->%s: %w", ef.Key, link, err)
			}
		}
	}

	for i, d := range wf.Documents {
		if _, err := store.UploadDocument(ctx, ws.ID, d); err != nil {
			return ws, fmt.Errorf("document %d: %w", i, err)
		}
		sum.Documents++
	}

	for i, mf := range wf.Milestones {
		m, err := store.AddMilestone(ctx, ws.ID, owner, mf.CreateMilestoneRequest)
		if err != nil {
			return ws, fmt.Errorf("milestone %d: %w", i, err)
		}
		if mf.Completed {
			if _, err := store.CompleteMilestone(ctx, ws.ID, owner, m.ID, true); err != nil {
				return ws, fmt.Errorf("milestone %d: %w", i, err)
			}
		}
		sum.Milestones++
	}
	return ws, nil
}

// Package gateway emulates the hosting replication runtime around the
// policy engine: it resolves principals from config and the grant ledger,
// feeds the engine the prior accepted revision, and persists accepted
// writes with their declarations.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/writegate/internal/core/config"
	"github.com/colonyops/writegate/internal/core/ledger"
	"github.com/colonyops/writegate/internal/core/logging"
	"github.com/colonyops/writegate/internal/core/policy"
)

// ErrDocumentDeleted is returned for proposals against a tombstoned id.
// The document lifecycle ends at the tombstone; no further revisions are
// evaluated.
var ErrDocumentDeleted = errors.New("document is deleted")

// Service orchestrates write proposals against the local ledger.
type Service struct {
	engine *policy.Engine
	ledger ledger.Store
	cfg    *config.Config
	log    zerolog.Logger
}

// NewService creates a gateway service over the given ledger and config.
func NewService(engine *policy.Engine, store ledger.Store, cfg *config.Config, log zerolog.Logger) *Service {
	return &Service{
		engine: engine,
		ledger: store,
		cfg:    cfg,
		log:    log,
	}
}

// Propose evaluates a proposed write for the named actor and, on
// acceptance, persists the new revision together with its channel
// memberships, grants, and role assignments in one transaction.
//
// Policy rejections come back as the engine's typed errors; check them
// with policy.IsRejection and friends.
func (s *Service) Propose(ctx context.Context, actor string, doc *policy.Document) (*policy.Result, error) {
	ctx = logging.WithDocID(ctx, doc.ID)
	ctx = logging.WithActor(ctx, actor)

	var (
		oldDoc *policy.Document
		oldRev int64
	)

	current, err := s.ledger.Revision(ctx, doc.ID)
	switch {
	case err == nil:
		if current.Deleted {
			return nil, ErrDocumentDeleted
		}
		oldDoc = current.Doc
		oldRev = current.Rev
	case errors.Is(err, ledger.ErrNotFound):
		// First revision of this id.
	default:
		return nil, fmt.Errorf("load prior revision: %w", err)
	}

	p, err := s.Principal(ctx, actor)
	if err != nil {
		return nil, err
	}

	res, err := s.engine.Evaluate(p, doc, oldDoc)
	if err != nil {
		s.log.Debug().Ctx(ctx).Err(err).Msg("write rejected")
		return nil, err
	}

	now := time.Now()
	_, effType := policy.Classify(doc, oldDoc)

	w := ledger.AcceptedWrite{
		Revision: ledger.Revision{
			ID:        doc.ID,
			Rev:       oldRev + 1,
			Type:      effType,
			Deleted:   doc.Deleted,
			Doc:       doc,
			UpdatedAt: now,
		},
		Channels: res.Channels,
	}
	for _, g := range res.Grants {
		w.Grants = append(w.Grants, ledger.ChannelGrant{
			User:      g.User,
			Channel:   g.Channel,
			GrantedBy: doc.ID,
			CreatedAt: now,
		})
	}
	for _, r := range res.Roles {
		w.Roles = append(w.Roles, ledger.RoleGrant{
			User:      r.User,
			Role:      r.Role,
			GrantedBy: doc.ID,
			CreatedAt: now,
		})
	}

	if err := s.ledger.ApplyWrite(ctx, w); err != nil {
		return nil, fmt.Errorf("apply accepted write: %w", err)
	}

	s.log.Info().Ctx(ctx).
		Int64("rev", w.Revision.Rev).
		Str("op", opString(doc, oldDoc)).
		Msg("write accepted")

	return res, nil
}

// Principal resolves the named actor's effective roles and read set: the
// static config entry unioned with everything the grant ledger has
// accumulated for them.
func (s *Service) Principal(ctx context.Context, actor string) (policy.Principal, error) {
	entry := s.cfg.User(actor)

	roles, err := s.ledger.RolesForUser(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	channels, err := s.ledger.ChannelsForUser(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("load channel grants: %w", err)
	}

	allRoles := make([]string, 0, len(entry.Roles)+len(roles))
	allRoles = append(allRoles, entry.Roles...)
	allRoles = append(allRoles, roles...)

	return NewPrincipal(actor, allRoles, channels, entry.Channels), nil
}

func opString(doc, oldDoc *policy.Document) string {
	op, _ := policy.Classify(doc, oldDoc)
	return op.String()
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	auditdomain "github.com/ayz7879/fg-plant/internal/audit/domain"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  auditdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  auditdomain.Repository
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Write(ctx context.Context, rec auditdomain.Record) error {
	return s.WriteTx(ctx, s.db, rec)
}

func (s *Service) WriteTx(ctx context.Context, tx *gorm.DB, rec auditdomain.Record) error {
	if tx == nil {
		return errors.New("missing_transaction")
	}
	entry, err := buildEntry(s.genID, rec)
	if err != nil {
		return err
	}
	return s.repo.Insert(ctx, tx, entry)
}

func (s *Service) List(ctx context.Context, filter auditdomain.ListFilter) ([]*auditdomain.AuditLog, error) {
	return s.repo.List(ctx, s.db, filter)
}

func buildEntry(genID *snowflake.Node, rec auditdomain.Record) (*auditdomain.AuditLog, error) {
	action := strings.TrimSpace(rec.Action)
	if action == "" {
		return nil, errors.New("missing_audit_action")
	}
	targetType := strings.TrimSpace(rec.TargetType)
	if targetType == "" {
		return nil, errors.New("missing_audit_target_type")
	}

	actorType := rec.ActorType
	if actorType == "" {
		actorType = auditdomain.ActorTypeSystem
	}

	metadata := datatypes.JSONMap{}
	for key, value := range rec.Metadata {
		if strings.TrimSpace(key) == "" {
			continue
		}
		metadata[key] = value
	}

	var targetID *string
	if trimmed := strings.TrimSpace(rec.TargetID); trimmed != "" {
		targetID = &trimmed
	}

	return &auditdomain.AuditLog{
		ID:         genID.Generate(),
		ActorType:  string(actorType),
		ActorID:    rec.ActorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Metadata:   metadata,
		IPAddress:  rec.IPAddress,
		UserAgent:  rec.UserAgent,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

package domain

import (
	"context"

	"gorm.io/gorm"
)

// Record is the write-side view of an audit entry. System actions leave
// ActorID nil.
type Record struct {
	ActorType  ActorType
	ActorID    *string
	Action     string
	TargetType string
	TargetID   string
	Metadata   map[string]any
	IPAddress  *string
	UserAgent  *string
}

type Service interface {
	Write(ctx context.Context, rec Record) error
	WriteTx(ctx context.Context, tx *gorm.DB, rec Record) error
	List(ctx context.Context, filter ListFilter) ([]*AuditLog, error)
}

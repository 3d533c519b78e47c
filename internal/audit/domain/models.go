package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	TargetTypeVoucher = "voucher"
)

// AuditLog is one committed change to a company's books.
type AuditLog struct {
	ID            snowflake.ID      `gorm:"primaryKey" json:"id"`
	CompanyID     snowflake.ID      `gorm:"not null;index:ix_audit_logs_company_created,priority:1" json:"company_id"`
	Action        string            `gorm:"not null" json:"action"`
	TargetType    string            `gorm:"not null" json:"target_type"`
	TargetID      string            `gorm:"not null;index" json:"target_id"`
	Revision      int               `gorm:"not null;default:0" json:"revision"`
	RequestID     *string           `json:"request_id,omitempty"`
	CorrelationID *string           `json:"correlation_id,omitempty"`
	Metadata      datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt     time.Time         `gorm:"not null;index:ix_audit_logs_company_created,priority:2" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }

type AuditCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

type ListFilter struct {
	CompanyID  snowflake.ID
	Action     string
	TargetType string
	TargetID   string
	StartAt    *time.Time
	EndAt      *time.Time
	Cursor     *AuditCursor
	Limit      int
}

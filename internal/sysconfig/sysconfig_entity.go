package sysconfig

import "time"

// Config keys stored in the system_configs table.
const (
	KeyApprovalGroup   = "approvalGroup"
	KeyApplicationType = "applicationType"
)

// Application type formats.
const (
	FormatDay  = "day"
	FormatTime = "time"
)

// Classification keys inside an application type definition.
const (
	ClassificationAllDays    = "ALL_DAYS"
	ClassificationHalfDaysAM = "HALF_DAYS_AM"
	ClassificationHalfDaysPM = "HALF_DAYS_PM"
	ClassificationTimeUnit   = "TIME"
)

// SystemConfig is one settings row; Value holds an opaque JSON blob whose
// schema depends on Key. Rows may be effective-dated via StartDate/EndDate.
type SystemConfig struct {
	ID        int64 `gorm:"primaryKey"`
	CompanyID int64 `gorm:"not null;index:idx_system_configs_company_key"`
	Key       string `gorm:"type:varchar(50);not null;index:idx_system_configs_company_key"`
	Value     string `gorm:"type:text;not null"`
	StartDate *time.Time
	EndDate   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy int64
	UpdatedBy int64
}

func (SystemConfig) TableName() string {
	return "system_configs"
}

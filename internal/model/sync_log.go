package model

import (
	"gorm.io/datatypes"
)

// 同步触发来源常量
const (
	SyncTriggerRead   = "read"   // 读路径按需触发
	SyncTriggerCron   = "cron"   // 每日定时扫描
	SyncTriggerManual = "manual" // 手动接口触发
)

// SyncLog 单次同步运行的记录（可观测性用，一次运行一行）
type SyncLog struct {
	BaseModel

	RunID   string `gorm:"size:36;uniqueIndex"`
	StoreID int64  `gorm:"index"`
	Trigger string `gorm:"size:20"`

	// 结果：success / not_found / feed_error / persistence_error
	Outcome string `gorm:"size:32;index"`

	// 对账统计
	Created int `gorm:"default:0"`
	Updated int `gorm:"default:0"`
	Deleted int `gorm:"default:0"`
	Skipped int `gorm:"default:0"`

	DurationMs int64          `gorm:"default:0"`
	ErrorMsg   string         `gorm:"size:1024"`
	Detail     datatypes.JSON `gorm:"type:jsonb"`
}

func (SyncLog) TableName() string {
	return "sync_logs"
}

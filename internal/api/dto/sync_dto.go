package dto

import (
	"time"

	"foodwaste_dev_v1_202608/internal/model"
)

// SyncLogResp 同步日志
type SyncLogResp struct {
	RunID      string    `json:"run_id"`
	StoreID    int64     `json:"store_id"`
	Trigger    string    `json:"trigger"`
	Outcome    string    `json:"outcome"`
	Created    int       `json:"created"`
	Updated    int       `json:"updated"`
	Deleted    int       `json:"deleted"`
	Skipped    int       `json:"skipped"`
	DurationMs int64     `json:"duration_ms"`
	ErrorMsg   string    `json:"error_msg,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// SyncLogListResp 同步日志列表响应
type SyncLogListResp struct {
	Code    int           `json:"code"`
	Message string        `json:"message"`
	Data    []SyncLogResp `json:"data"`
}

// ToSyncLogResp 日志模型转响应
func ToSyncLogResp(l *model.SyncLog) SyncLogResp {
	return SyncLogResp{
		RunID:      l.RunID,
		StoreID:    l.StoreID,
		Trigger:    l.Trigger,
		Outcome:    l.Outcome,
		Created:    l.Created,
		Updated:    l.Updated,
		Deleted:    l.Deleted,
		Skipped:    l.Skipped,
		DurationMs: l.DurationMs,
		ErrorMsg:   l.ErrorMsg,
		CreatedAt:  l.CreatedAt,
	}
}

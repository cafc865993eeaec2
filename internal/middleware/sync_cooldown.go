package middleware

import (
	"sync"
	"time"
)

// ==================== SyncCooldown 手动同步冷却限流 ====================

// SyncCooldown 手动触发同步的冷却限流器
// 防止前端反复点同步按钮打爆 Salling API 配额
type SyncCooldown struct {
	locks sync.Map // key -> *cooldownEntry
}

type cooldownEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

// NewSyncCooldown 创建限流器（由依赖容器持有并注入）
func NewSyncCooldown() *SyncCooldown {
	return &SyncCooldown{}
}

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Check 检查是否允许执行，允许时记录本次执行时间
// key: 限流键，如 "store:123:sync"
func (c *SyncCooldown) Check(key string, interval time.Duration) CheckResult {
	actual, _ := c.locks.LoadOrStore(key, &cooldownEntry{})
	entry := actual.(*cooldownEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(entry.lastTime)

	if elapsed < interval {
		return CheckResult{
			Allowed:    false,
			RetryAfter: interval - elapsed,
		}
	}

	entry.lastTime = now
	return CheckResult{Allowed: true}
}

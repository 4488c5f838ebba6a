package handler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/calendar"
)

// 只有持有者本人才能释放锁，避免锁过期后误删别人的锁
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func generationLockKey(month calendar.Month) string {
	return fmt.Sprintf("schedule:generate:%s", month)
}

// acquireGenerationLock 保证同一个月份同时只有一次批量生成在进行。
// 获取失败时 acquired 为 false，release 为 nil。
func (h *Handler) acquireGenerationLock(month calendar.Month) (release func(), acquired bool, err error) {
	key := generationLockKey(month)
	token := uuid.NewString()
	ttl := time.Duration(h.config.Redis.GenerationLockTTL) * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.ConnectTimeout)*time.Second)
	defer cancel()

	acquired, err = h.redisClient.SetNX(ctx, key, token, ttl).Result()
	if err != nil || !acquired {
		return nil, false, err
	}

	release = func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.ConnectTimeout)*time.Second)
		defer cancel()

		if err := releaseLockScript.Run(ctx, h.redisClient, []string{key}, token).Err(); err != nil {
			// 释放失败时锁会在 ttl 之后自动过期
			slog.Warn("释放生成锁失败", "key", key, "error", err)
		}
	}

	return release, true, nil
}

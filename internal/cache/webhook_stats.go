package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	webhookFailureWindow = time.Hour
	alertDedupTTL        = 6 * time.Hour
)

func webhookFailureKey(reason string) string {
	return fmt.Sprintf("webhook:failure:%s", reason)
}

func reviewAlertKey(sessionID string) string {
	return fmt.Sprintf("alert:review:%s", sessionID)
}

// IncrWebhookFailure 按失败原因累计回调失败次数（小时窗口）
func IncrWebhookFailure(ctx context.Context, reason string) (int64, error) {
	return IncrWindow(ctx, webhookFailureKey(reason), webhookFailureWindow)
}

// MarkReviewAlerted 标记某个 Session 的人工复核告警已发送
// 返回 true 表示本次为首次标记，调用方据此决定是否发送告警
func MarkReviewAlerted(ctx context.Context, sessionID string) (bool, error) {
	if !Enabled() || sessionID == "" {
		return true, nil
	}
	return redisClient.SetNX(ctx, buildKey(reviewAlertKey(sessionID)), time.Now().Unix(), alertDedupTTL).Result()
}

// Package deadline - бюджет времени на обработку одного запроса к forum-store.
package deadline

import (
	"context"
	"time"
)

// Ensure ограничивает обработку запроса сроком budget от текущего момента.
// Если у ctx уже есть более ранний дедлайн (клиент спешит), он сохраняется;
// более поздний дедлайн клиента урезается до budget. budget <= 0 - без ограничения.
func Ensure(ctx context.Context, budget time.Duration) (context.Context, context.CancelFunc) {
	if budget <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, budget)
}

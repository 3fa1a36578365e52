// Package requestid - сквозной id запроса, общий для HTTP и gRPC.
//
// HTTP-клиент передаёт его в заголовке X-Request-Id, gRPC-клиент - в metadata
// x-request-id. Внутри сервиса id живёт в контексте и попадает в логи и ответы с ошибкой.
package requestid

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

const (
	// Header - HTTP-заголовок с id запроса.
	Header = "X-Request-Id"
	// MetadataKey - ключ gRPC metadata (ключи metadata всегда в нижнем регистре).
	MetadataKey = "x-request-id"
)

// maxLen - более длинные id от клиента отбрасываются и заменяются своими.
const maxLen = 128

type ctxKey struct{}

// Resolve возвращает id клиента, если он пригоден, иначе новый UUID.
func Resolve(given string) string {
	given = strings.TrimSpace(given)
	if given == "" || len(given) > maxLen {
		return uuid.NewString()
	}

	return given
}

// Into кладёт id в контекст.
func Into(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// From достаёт id из контекста ("" если нет).
func From(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

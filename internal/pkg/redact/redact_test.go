package redact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Пакет unit-тестов для internal/pkg/redact.
//
// Покрытие (табличные тесты):
//   - URL: DSN с паролем, без пароля, без userinfo, пустая строка, мусор без схемы;
//   - литерал Secret.

func TestURL_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "postgres_with_password", in: "postgres://forum:s3cret@db:5432/forum?sslmode=disable",
			want: "postgres://forum:***@db:5432/forum?sslmode=disable"},
		{name: "redis_password_only", in: "redis://:s3cret@cache:6379/0", want: "redis://:***@cache:6379/0"},
		{name: "mongo_user_without_password", in: "mongodb://forum@mongo:27017/forum",
			want: "mongodb://forum@mongo:27017/forum"},
		{name: "no_userinfo", in: "http://localhost:9000", want: "http://localhost:9000"},
		{name: "empty", in: "", want: ""},
		{name: "garbage", in: "::not a url", want: "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, URL(tt.in))
		})
	}
}

func TestSecret(t *testing.T) {
	t.Parallel()
	require.Equal(t, "[REDACTED]", Secret())
}

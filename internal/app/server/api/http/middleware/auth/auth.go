package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"log/slog"

	"github.com/danielgtaylor/huma/v2"
)

// Auth checks the shared technician bearer token and puts the
// announcing device into the request context. An empty configured
// token disables the check for local runs.
type Auth struct {
	token string
	log   *slog.Logger
}

func New(token string, log *slog.Logger) *Auth {
	return &Auth{
		token: token,
		log:   log.With("component", "auth_middleware"),
	}
}

type contextKey string

const DeviceKey contextKey = "deviceID"

func (a *Auth) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if a.token != "" {
			header := ctx.Header("Authorization")
			if len(header) < 7 || header[:7] != "Bearer " || header[7:] != a.token {
				a.log.Warn("rejected request with bad bearer token",
					"remote_addr", ctx.RemoteAddr())
				ctx.SetStatus(http.StatusUnauthorized)
				ctx.SetHeader("Content-Type", "application/json")

				w := ctx.BodyWriter()
				if err := json.NewEncoder(w).Encode(map[string]string{
					"error": "Unauthorized",
				}); err != nil {
					a.log.Error("failed to encode error response", "error", err)
				}
				return
			}
		}

		device := ctx.Header("X-Device-ID")
		if device == "" {
			next(ctx)
			return
		}

		newCtx := context.WithValue(ctx.Context(), DeviceKey, device)
		next(huma.WithContext(ctx, newCtx))
	}
}

// GetDeviceID returns the device announced on the request, if any.
func GetDeviceID(ctx context.Context) (string, bool) {
	device, ok := ctx.Value(DeviceKey).(string)
	return device, ok
}

package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/lynk-ai/lynk-backend/api/responses"
	pkgerrors "github.com/lynk-ai/lynk-backend/pkg/errors"
	"github.com/lynk-ai/lynk-backend/pkg/logger"
	"github.com/lynk-ai/lynk-backend/pkg/redis"
)

// RateLimitPolicy throttles one endpoint by client IP and by the recipient
// named in the JSON body.
type RateLimitPolicy struct {
	name           string
	window         time.Duration
	ipLimit        int
	recipientLimit int
}

func NewRateLimitPolicy(name string, window time.Duration, ipLimit, recipientLimit int) RateLimitPolicy {
	return RateLimitPolicy{
		name:           strings.ToLower(strings.TrimSpace(name)),
		window:         window,
		ipLimit:        ipLimit,
		recipientLimit: recipientLimit,
	}
}

func (p RateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.recipientLimit > 0)
}

// RateLimit counts requests in fixed windows and answers 429 once a limit is passed.
// A store failure is a 503; requests are never let through unmetered.
func RateLimit(policy RateLimitPolicy, store redis.RateLimitStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if policy.ipLimit > 0 {
				ip := clientIP(r)
				if ip != "" && !checkLimit(ctx, w, logg, store, policy, "ip", ip, policy.ipLimit) {
					return
				}
			}

			if policy.recipientLimit > 0 {
				body, err := io.ReadAll(io.LimitReader(r.Body, maxBufferedBody))
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))

				if recipient := extractRecipient(body); recipient != "" {
					if !checkLimit(ctx, w, logg, store, policy, "recipient", hashValue(recipient), policy.recipientLimit) {
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// checkLimit reports whether the request may continue; otherwise the response is already written.
func checkLimit(ctx context.Context, w http.ResponseWriter, logg *logger.Logger, store redis.RateLimitStore, policy RateLimitPolicy, scope, subject string, limit int) bool {
	key := store.RateLimitKey(policy.name, scope+":"+subject)
	count, err := store.IncrWithTTL(ctx, key, policy.window)
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
		return false
	}
	if count <= int64(limit) {
		return true
	}

	if logg != nil {
		logCtx := logg.WithFields(ctx, map[string]any{
			"scope":          scope,
			"policy":         policy.name,
			"attempts":       count,
			"limit":          limit,
			"window_seconds": int(policy.window.Seconds()),
		})
		logg.Warn(logCtx, "rate_limit.blocked")
	}
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
	return false
}

func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func extractRecipient(payload []byte) string {
	var body struct {
		Recipient string `json:"recipient"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(body.Recipient))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

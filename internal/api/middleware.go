package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"gorm.io/gorm"

	log "github.com/sirupsen/logrus"

	"github.com/satspoint/SatsPoint/internal/auth"
	"github.com/satspoint/SatsPoint/internal/database"
	"github.com/satspoint/SatsPoint/internal/metrics"
	"github.com/satspoint/SatsPoint/internal/rate"
)

// maxTokenAge is how far an authorization event's timestamp may drift
// from the server clock in either direction.
const maxTokenAge = 60 * time.Second

type contextKey string

const pubkeyKey contextKey = "pubkey"

// PubkeyFromContext returns the authenticated pubkey set by
// NostrAuthMiddleware, or "" on an unauthorized route.
func PubkeyFromContext(ctx context.Context) string {
	v, _ := ctx.Value(pubkeyKey).(string)
	return v
}

func LoggingMiddleware(prefix string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics.RequestsTotal.WithLabelValues(r.Method, r.URL.Path).Inc()
		log.Tracef("[%s] %s %s", prefix, r.Method, r.URL.Path)
		log.Tracef("[%s]\n%s", prefix, dump(r))
		next.ServeHTTP(w, r)
	}
}

// NostrAuthMiddleware verifies the signed-event authorization header
// (NIP-98) before forwarding the request. The event must be a kind
// 27235 event with a valid signature, a recent timestamp, and url and
// method tags matching the request. The signer's pubkey lands in the
// request context.
func NostrAuthMiddleware(db *gorm.DB, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		event, reason := verifyAuthHeader(r)
		if event == nil {
			metrics.AuthFailures.Inc()
			log.Warnf("[api] rejected %s %s: %s", r.Method, r.URL.Path, reason)
			http.Error(w, reason, http.StatusUnauthorized)
			return
		}
		if !rate.Allow(event.PubKey) {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		if db != nil {
			database.EnsureUser(db, event.PubKey)
		}
		ctx := context.WithValue(r.Context(), pubkeyKey, event.PubKey)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func verifyAuthHeader(r *http.Request) (*nostr.Event, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, auth.Scheme) {
		return nil, "missing authorization header"
	}

	token := strings.TrimPrefix(authHeader, auth.Scheme)
	eventJSON, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, "invalid authorization token"
	}

	var event nostr.Event
	if err := json.Unmarshal(eventJSON, &event); err != nil {
		return nil, "invalid event format"
	}

	if event.Kind != auth.KindHTTPAuth {
		return nil, "invalid event kind"
	}

	ok, err := event.CheckSignature()
	if err != nil || !ok {
		return nil, "invalid signature"
	}

	eventTime := time.Unix(int64(event.CreatedAt), 0)
	if time.Since(eventTime).Abs() > maxTokenAge {
		return nil, "event too old"
	}

	urlTag := event.Tags.GetFirst([]string{"u"})
	if urlTag == nil || len(*urlTag) < 2 {
		return nil, "missing url tag"
	}
	signed, err := url.Parse((*urlTag)[1])
	if err != nil || signed.Path != r.URL.Path {
		return nil, "url mismatch"
	}

	methodTag := event.Tags.GetFirst([]string{"method"})
	if methodTag == nil || len(*methodTag) < 2 {
		return nil, "missing method tag"
	}
	if strings.ToUpper((*methodTag)[1]) != r.Method {
		return nil, "method mismatch"
	}

	return &event, ""
}

func dump(r *http.Request) string {
	x, err := httputil.DumpRequest(r, true)
	if err != nil {
		return ""
	}
	return string(x)
}

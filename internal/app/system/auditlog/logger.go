// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/dalemusser/influencerhub/internal/app/store/audit"
	"github.com/dalemusser/influencerhub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Destinations for a category of events.
const (
	ModeAll = "all" // store + zap
	ModeDB  = "db"  // store only
	ModeLog = "log" // zap only
	ModeOff = "off"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls sign-in and sign-out events.
	Auth string
	// Roster controls record create/update/delete and backfill events.
	Roster string
}

// ValidMode reports whether s is a recognized destination.
func ValidMode(s string) bool {
	switch s {
	case ModeAll, ModeDB, ModeLog, ModeOff:
		return true
	}
	return false
}

// Logger writes audit events to the audit store and/or zap.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.TargetID != "" {
		fields = append(fields, zap.String("target_id", event.TargetID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event according to its category's mode.
// A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryRoster:
		setting = l.config.Roster
	default:
		setting = ModeAll
	}
	if setting == ModeOff {
		return
	}

	if setting == ModeAll || setting == ModeLog {
		l.logToZap(event)
	}
	if (setting == ModeAll || setting == ModeDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func fromRequest(r *http.Request, e audit.Event) audit.Event {
	if r != nil {
		e.IP = ratelimit.ClientIP(r)
		e.UserAgent = r.UserAgent()
	}
	return e
}

// --- Authentication Events ---

// LoginSuccess logs a successful sign-in.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, operatorID, email string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		ActorID:   operatorID,
		Success:   true,
		Details:   map[string]string{"email": email},
	}))
}

// LoginFailed logs a rejected sign-in. eventType is one of the
// audit.EventLoginFailed* constants.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, eventType, email, reason string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     eventType,
		Success:       false,
		FailureReason: reason,
		Details:       map[string]string{"email": email},
	}))
}

// Logout logs a sign-out.
func (l *Logger) Logout(ctx context.Context, r *http.Request, operatorID string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		ActorID:   operatorID,
		Success:   true,
	}))
}

// --- Roster Events ---

// InfluencerCreated logs a new roster record.
func (l *Logger) InfluencerCreated(ctx context.Context, r *http.Request, actorID, recordID string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryRoster,
		EventType: audit.EventInfluencerCreated,
		ActorID:   actorID,
		TargetID:  recordID,
		Success:   true,
	}))
}

// InfluencerUpdated logs a patch; fields lists the keys it carried.
func (l *Logger) InfluencerUpdated(ctx context.Context, r *http.Request, actorID, recordID string, fields []string) {
	sorted := append([]string(nil), fields...)
	sort.Strings(sorted)
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryRoster,
		EventType: audit.EventInfluencerUpdated,
		ActorID:   actorID,
		TargetID:  recordID,
		Success:   true,
		Details:   map[string]string{"fields_changed": strings.Join(sorted, ",")},
	}))
}

// InfluencerDeleted logs a removal.
func (l *Logger) InfluencerDeleted(ctx context.Context, r *http.Request, actorID, recordID string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryRoster,
		EventType: audit.EventInfluencerDeleted,
		ActorID:   actorID,
		TargetID:  recordID,
		Success:   true,
	}))
}

// BackfillRun logs a derived-field backfill pass. r is nil for the
// background worker.
func (l *Logger) BackfillRun(ctx context.Context, r *http.Request, actorID string, scanned, updated int, err error) {
	e := audit.Event{
		Category:  audit.CategoryRoster,
		EventType: audit.EventBackfillRun,
		ActorID:   actorID,
		Success:   err == nil,
		Details: map[string]string{
			"scanned": strconv.Itoa(scanned),
			"updated": strconv.Itoa(updated),
		},
	}
	if err != nil {
		e.FailureReason = err.Error()
	}
	l.Log(ctx, fromRequest(r, e))
}

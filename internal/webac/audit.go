// SPDX-License-Identifier: Apache-2.0

package webac

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trellisldp/webac/internal/logging"
)

// AuditEvent records one Access Enforcement Filter decision for compliance
// and forensic review. It is logged asynchronously so request handling is
// never blocked on audit I/O.
type AuditEvent struct {
	ID        string
	Timestamp time.Time
	RequestID string
	Agent     IRI
	Delegator IRI
	Target    IRI
	Method    string
	Required  Mode
	Granted   ModeSet
	Decision  bool
	Duration  time.Duration
	CacheHit  bool
}

// AuditLoggerConfig configures the audit logger.
type AuditLoggerConfig struct {
	Enabled    bool
	LogAllowed bool
	LogDenied  bool
	BufferSize int
}

// DefaultAuditLoggerConfig returns sensible defaults: log denials always,
// allowed decisions only when explicitly requested, matching the Control
// mode's "access audit data" framing rather than a high-volume access log.
func DefaultAuditLoggerConfig() AuditLoggerConfig {
	return AuditLoggerConfig{
		Enabled:    true,
		LogAllowed: false,
		LogDenied:  true,
		BufferSize: 1000,
	}
}

// AuditLogger handles async logging of Access Enforcement Filter decisions,
// generalized from the teacher's authz.AuditLogger to this spec's four-mode
// vocabulary.
type AuditLogger struct {
	cfg      AuditLoggerConfig
	events   chan *AuditEvent
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewAuditLogger builds an AuditLogger from cfg, starting its background
// writer goroutine when enabled.
func NewAuditLogger(cfg AuditLoggerConfig) *AuditLogger {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
	}

	al := &AuditLogger{
		cfg:      cfg,
		events:   make(chan *AuditEvent, cfg.BufferSize),
		stopChan: make(chan struct{}),
	}
	if cfg.Enabled {
		al.wg.Add(1)
		go al.processEvents()
	}
	return al
}

// LogDecision records a decision asynchronously; it never blocks the
// caller. A full buffer drops the event and logs a warning instead.
func (al *AuditLogger) LogDecision(event *AuditEvent) {
	if al == nil || !al.cfg.Enabled {
		return
	}
	if event.Decision && !al.cfg.LogAllowed {
		return
	}
	if !event.Decision && !al.cfg.LogDenied {
		return
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case al.events <- event:
	default:
		logging.Warn().
			Str("target", string(event.Target)).
			Str("agent", string(event.Agent)).
			Msg("audit log buffer full, event dropped")
	}
}

func (al *AuditLogger) processEvents() {
	defer al.wg.Done()
	for {
		select {
		case <-al.stopChan:
			al.drainEvents()
			return
		case event := <-al.events:
			al.writeEvent(event)
		}
	}
}

func (al *AuditLogger) drainEvents() {
	for {
		select {
		case event := <-al.events:
			al.writeEvent(event)
		default:
			return
		}
	}
}

func (al *AuditLogger) writeEvent(event *AuditEvent) {
	logEvent := logging.Info()
	if !event.Decision {
		logEvent = logging.Warn()
	}
	logEvent.
		Str("event_type", "webac_decision").
		Str("audit_id", event.ID).
		Time("audit_timestamp", event.Timestamp).
		Str("request_id", event.RequestID).
		Str("agent", string(event.Agent)).
		Str("delegated_by", string(event.Delegator)).
		Str("target", string(event.Target)).
		Str("method", event.Method).
		Str("required_mode", event.Required.String()).
		Str("granted_modes", event.Granted.String()).
		Bool("decision", event.Decision).
		Dur("duration", event.Duration).
		Bool("cache_hit", event.CacheHit).
		Msg("access enforcement decision")
}

// Close stops the background writer and flushes any buffered events.
func (al *AuditLogger) Close() {
	if al == nil {
		return
	}
	al.stopOnce.Do(func() { close(al.stopChan) })
	al.wg.Wait()
}

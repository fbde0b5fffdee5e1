package core

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AuditLevel defines the verbosity of scan audit logging.
type AuditLevel string

const (
	// AuditLevelMinimal logs only warnings and above
	AuditLevelMinimal AuditLevel = "minimal"

	// AuditLevelStandard logs lifecycle events with moderate detail
	AuditLevelStandard AuditLevel = "standard"

	// AuditLevelVerbose logs all details
	AuditLevelVerbose AuditLevel = "verbose"
)

// AuditSeverity defines the severity of audit events.
type AuditSeverity string

const (
	AuditInfo     AuditSeverity = "info"
	AuditWarning  AuditSeverity = "warning"
	AuditError    AuditSeverity = "error"
	AuditCritical AuditSeverity = "critical"
)

// AuditEvent is one JSONL entry in the scan audit trail.
type AuditEvent struct {
	Timestamp string            `json:"timestamp"`
	EventType string            `json:"event_type"`
	Severity  AuditSeverity     `json:"severity"`
	ScanID    string            `json:"scan_id,omitempty"`
	FileID    string            `json:"file_id,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// AuditLogger writes the scan audit trail as JSON lines with size-based
// rotation and retention cleanup.
type AuditLogger struct {
	mu            sync.Mutex
	logPath       string
	level         AuditLevel
	writer        io.Writer
	rotationSize  int64
	currentSize   int64
	logRetention  int // days
	initialized   bool
	enableConsole bool
}

var defaultAuditLogger *AuditLogger
var auditLoggerOnce sync.Once

// GetAuditLogger returns the singleton audit logger instance.
func GetAuditLogger() *AuditLogger {
	auditLoggerOnce.Do(func() {
		defaultAuditLogger = &AuditLogger{
			logPath:      "phiscan_audit.log",
			level:        AuditLevelStandard,
			rotationSize: 100 * 1024 * 1024,
			logRetention: 90,
		}
		defaultAuditLogger.initialize()
	})
	return defaultAuditLogger
}

// ConfigureAuditLogger reconfigures the singleton logger.
func ConfigureAuditLogger(path string, level AuditLevel, rotationSize int64, retention int, enableConsole bool) error {
	logger := GetAuditLogger()

	logger.mu.Lock()
	defer logger.mu.Unlock()

	logger.logPath = path
	logger.level = level
	logger.rotationSize = rotationSize
	logger.logRetention = retention
	logger.enableConsole = enableConsole

	return logger.initialize()
}

func (l *AuditLogger) initialize() error {
	dir := filepath.Dir(l.logPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create audit log directory: %w", err)
		}
	}

	f, err := os.OpenFile(l.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to stat audit log: %w", err)
	}
	l.currentSize = info.Size()

	if l.enableConsole {
		l.writer = io.MultiWriter(f, os.Stderr)
	} else {
		l.writer = f
	}

	l.initialized = true
	return nil
}

func (l *AuditLogger) maybeRotate() error {
	if l.currentSize < l.rotationSize {
		return nil
	}

	if closer, ok := l.writer.(io.Closer); ok {
		closer.Close()
	}

	timestamp := time.Now().Format("20060102-150405")
	rotatedPath := fmt.Sprintf("%s.%s", l.logPath, timestamp)
	if err := os.Rename(l.logPath, rotatedPath); err != nil {
		return fmt.Errorf("failed to rotate audit log: %w", err)
	}

	l.cleanupOldLogs()
	return l.initialize()
}

func (l *AuditLogger) cleanupOldLogs() {
	dir := filepath.Dir(l.logPath)
	base := filepath.Base(l.logPath)
	cutoff := time.Now().AddDate(0, 0, -l.logRetention)

	files, err := filepath.Glob(filepath.Join(dir, base+".*"))
	if err != nil {
		return
	}
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.Remove(file)
		}
	}
}

// LogEvent appends an audit event, applying level filtering and rotation.
func (l *AuditLogger) LogEvent(event AuditEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.initialized {
		if err := l.initialize(); err != nil {
			return err
		}
	}
	if err := l.maybeRotate(); err != nil {
		return err
	}

	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if event.Severity == "" {
		event.Severity = AuditInfo
	}

	if l.level == AuditLevelMinimal && event.Severity == AuditInfo {
		return nil
	}
	if l.level != AuditLevelVerbose {
		// Metadata may carry masked samples; standard mode keeps entries
		// small by truncating long values.
		for k, v := range event.Metadata {
			if len(v) > 200 {
				event.Metadata[k] = v[:200] + "... [truncated]"
			}
		}
	}

	entry, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	n, err := fmt.Fprintln(l.writer, string(entry))
	if err != nil {
		return fmt.Errorf("failed to write audit event: %w", err)
	}
	l.currentSize += int64(n)
	return nil
}

// LogScanEvent records a scan lifecycle event on the default logger.
func LogScanEvent(scanID, eventType string, severity AuditSeverity, metadata map[string]string) error {
	return GetAuditLogger().LogEvent(AuditEvent{
		EventType: eventType,
		Severity:  severity,
		ScanID:    scanID,
		Metadata:  metadata,
	})
}

// LogFileEvent records a per-file event on the default logger.
func LogFileEvent(scanID, fileID, eventType string, severity AuditSeverity, metadata map[string]string) error {
	return GetAuditLogger().LogEvent(AuditEvent{
		EventType: eventType,
		Severity:  severity,
		ScanID:    scanID,
		FileID:    fileID,
		Metadata:  metadata,
	})
}

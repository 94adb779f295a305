package logger

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

var (
	logLevelNames = map[LogLevel]string{
		DEBUG: "DEBUG",
		INFO:  "INFO",
		WARN:  "WARN",
		ERROR: "ERROR",
		FATAL: "FATAL",
	}

	currentLevel = INFO
	sink         = &fileSink{}
	mu           sync.RWMutex
)

// fileSink is the optional JSON-lines mirror of everything written to stderr.
type fileSink struct {
	file        *os.File
	path        string
	rotate      bool
	maxBytes    int64
	maxAgeDays  int
	size        int64
	openedOnDay time.Time
}

type LogEntry struct {
	Level     string                 `json:"level"`
	Timestamp string                 `json:"timestamp"`
	Component string                 `json:"component,omitempty"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Caller    string                 `json:"caller,omitempty"`
}

func SetLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	currentLevel = level
}

func GetLevel() LogLevel {
	mu.RLock()
	defer mu.RUnlock()
	return currentLevel
}

// ParseLevel maps a config string such as "debug" or "WARN" to a level.
// Unknown values fall back to INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	}
	return INFO
}

func (l LogLevel) String() string {
	if name, ok := logLevelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

func EnableFileLogging(filePath string) error {
	return EnableFileLoggingWithRotation(filePath, false, 0, 0)
}

func EnableFileLoggingWithRotation(filePath string, rotationEnabled bool, maxSizeMB int, maxAgeDays int) error {
	mu.Lock()
	defer mu.Unlock()

	if strings.HasPrefix(filePath, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			filePath = filepath.Join(home, filePath[2:])
		}
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	var size int64
	if stat, err := file.Stat(); err == nil {
		size = stat.Size()
	}

	if sink.file != nil {
		sink.file.Close()
	}
	*sink = fileSink{
		file:        file,
		path:        filePath,
		rotate:      rotationEnabled,
		maxBytes:    int64(maxSizeMB) * 1024 * 1024,
		maxAgeDays:  maxAgeDays,
		size:        size,
		openedOnDay: time.Now(),
	}
	return nil
}

func DisableFileLogging() {
	mu.Lock()
	defer mu.Unlock()

	if sink.file != nil {
		sink.file.Close()
		sink.file = nil
	}
}

func (s *fileSink) shouldRotate(now time.Time) bool {
	if !s.rotate {
		return false
	}
	if s.maxBytes > 0 && s.size >= s.maxBytes {
		return true
	}
	if s.maxAgeDays > 0 {
		return now.YearDay() != s.openedOnDay.YearDay() || now.Year() != s.openedOnDay.Year()
	}
	return false
}

func (s *fileSink) rotateFile(now time.Time) error {
	s.file.Close()
	s.file = nil

	rotated := fmt.Sprintf("%s.%s", s.path, now.Format("20060102-150405"))
	renameErr := os.Rename(s.path, rotated)

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to reopen log file: %w", err)
	}
	s.file = file
	if renameErr != nil {
		return fmt.Errorf("failed to rotate log file: %w", renameErr)
	}
	s.size = 0
	s.openedOnDay = now

	go pruneRotated(s.path, s.maxAgeDays)
	return nil
}

func pruneRotated(path string, maxAgeDays int) {
	if maxAgeDays <= 0 {
		return
	}
	dir := filepath.Dir(path)
	prefix := filepath.Base(path) + "."
	cutoff := time.Now().AddDate(0, 0, -maxAgeDays)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.Remove(filepath.Join(dir, entry.Name()))
		}
	}
}

func logMessage(level LogLevel, component string, message string, fields map[string]interface{}) {
	if level < GetLevel() {
		return
	}

	now := time.Now()
	entry := LogEntry{
		Level:     level.String(),
		Timestamp: now.UTC().Format(time.RFC3339),
		Component: component,
		Message:   message,
		Fields:    fields,
	}

	if pc, file, line, ok := runtime.Caller(2); ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			entry.Caller = fmt.Sprintf("%s:%d (%s)", file, line, fn.Name())
		}
	}

	mu.Lock()
	if sink.file != nil {
		if sink.shouldRotate(now) {
			if err := sink.rotateFile(now); err != nil {
				log.Printf("log rotation: %v", err)
			}
		}
		if sink.file != nil {
			if data, err := json.Marshal(entry); err == nil {
				n, werr := sink.file.Write(append(data, '\n'))
				if werr == nil {
					sink.size += int64(n)
				}
			}
		}
	}
	mu.Unlock()

	var fieldStr string
	if len(fields) > 0 {
		fieldStr = " " + formatFields(fields)
	}
	log.Printf("[%s] [%s]%s %s%s",
		entry.Timestamp,
		entry.Level,
		formatComponent(component),
		message,
		fieldStr,
	)

	if level == FATAL {
		os.Exit(1)
	}
}

func formatComponent(component string) string {
	if component == "" {
		return ""
	}
	return fmt.Sprintf(" %s:", component)
}

// formatFields renders fields in key order so log lines are stable.
func formatFields(fields map[string]interface{}) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
}

func Debug(message string) {
	logMessage(DEBUG, "", message, nil)
}

func DebugC(component string, message string) {
	logMessage(DEBUG, component, message, nil)
}

func DebugCF(component string, message string, fields map[string]interface{}) {
	logMessage(DEBUG, component, message, fields)
}

func Info(message string) {
	logMessage(INFO, "", message, nil)
}

func InfoC(component string, message string) {
	logMessage(INFO, component, message, nil)
}

func InfoCF(component string, message string, fields map[string]interface{}) {
	logMessage(INFO, component, message, fields)
}

func Warn(message string) {
	logMessage(WARN, "", message, nil)
}

func WarnC(component string, message string) {
	logMessage(WARN, component, message, nil)
}

func WarnCF(component string, message string, fields map[string]interface{}) {
	logMessage(WARN, component, message, fields)
}

func Error(message string) {
	logMessage(ERROR, "", message, nil)
}

func ErrorC(component string, message string) {
	logMessage(ERROR, component, message, nil)
}

func ErrorCF(component string, message string, fields map[string]interface{}) {
	logMessage(ERROR, component, message, fields)
}

func FatalCF(component string, message string, fields map[string]interface{}) {
	logMessage(FATAL, component, message, fields)
}

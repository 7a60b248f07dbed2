package logs

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rywkoo/highlight-clipper/internal/logging"
)

// Entry is one decoded JSON log record.
type Entry struct {
	Time      time.Time
	Level     string
	Message   string
	RunID     string
	Recording string
	Stage     string
	Component string
	// Fields holds every other attribute.
	Fields map[string]any
}

// ParseEntry decodes one line of the JSON log.
func ParseEntry(line string) (Entry, error) {
	raw := map[string]any{}
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{}, fmt.Errorf("decode log line: %w", err)
	}
	entry := Entry{Fields: map[string]any{}}
	for key, value := range raw {
		text, _ := value.(string)
		switch key {
		case "ts", "time":
			if ts, err := time.Parse(time.RFC3339Nano, text); err == nil {
				entry.Time = ts
			}
		case "level":
			entry.Level = strings.ToLower(text)
		case "msg":
			entry.Message = text
		case logging.FieldRunID:
			entry.RunID = text
		case logging.FieldRecording:
			entry.Recording = text
		case logging.FieldStage:
			entry.Stage = text
		case logging.FieldComponent:
			entry.Component = text
		default:
			entry.Fields[key] = value
		}
	}
	return entry, nil
}

// MatchRun accepts JSON lines whose run_id starts with prefix. An empty
// prefix accepts every decodable line.
func MatchRun(prefix string) func(string) bool {
	prefix = strings.TrimSpace(prefix)
	return func(line string) bool {
		if prefix != "" && !strings.Contains(line, prefix) {
			return false
		}
		entry, err := ParseEntry(line)
		if err != nil {
			return false
		}
		return strings.HasPrefix(entry.RunID, prefix)
	}
}

// Format renders the entry as one console line: time, level, subject,
// message, then the remaining fields sorted by key.
func (e Entry) Format() string {
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("15:04:05"))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s", strings.ToUpper(e.Level))
	subject := e.Recording
	if e.Stage != "" {
		if subject != "" {
			subject += "/"
		}
		subject += e.Stage
	}
	if subject != "" {
		fmt.Fprintf(&b, " [%s]", subject)
	}
	b.WriteByte(' ')
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		if key == "source" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%v", key, e.Fields[key])
	}
	return b.String()
}

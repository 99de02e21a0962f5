package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestLogger_Log(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LevelInfo, &buf)

	tests := []struct {
		name    string
		level   Level
		message string
		fields  Fields
		err     error
		want    bool // should log
	}{
		{
			name:    "info message",
			level:   LevelInfo,
			message: "test message",
			fields:  Fields{"key": "value"},
			want:    true,
		},
		{
			name:    "debug below threshold",
			level:   LevelDebug,
			message: "debug message",
			want:    false, // won't log (below INFO)
		},
		{
			name:    "error with err",
			level:   LevelError,
			message: "error occurred",
			err:     errors.New("test error"),
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := buf.Len()

			logger.log(tt.level, tt.message, tt.fields, tt.err)

			logged := buf.Len() > before
			if logged != tt.want {
				t.Errorf("log() logged = %v, want %v", logged, tt.want)
			}
		})
	}
}

func TestLogger_WithBaseFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LevelDebug, &buf).With(Fields{"run_id": "abc", "unit": "base"})

	logger.Info("Fetching page", Fields{"url": "http://example.com", "unit": "call"})

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Unmarshal() error = %v (line %q)", err, buf.String())
	}

	if entry.Fields["run_id"] != "abc" {
		t.Errorf("run_id = %v, want abc", entry.Fields["run_id"])
	}
	if entry.Fields["url"] != "http://example.com" {
		t.Errorf("url = %v, want http://example.com", entry.Fields["url"])
	}
	if entry.Fields["unit"] != "call" {
		t.Errorf("unit = %v, want per-call value to win", entry.Fields["unit"])
	}
}

func TestLogger_ErrorField(t *testing.T) {
	var buf bytes.Buffer
	New(LevelInfo, &buf).Error("write failed", nil, errors.New("disk full"))

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if entry.Level != "ERROR" || entry.Error != "disk full" {
		t.Errorf("entry = %+v, want ERROR with disk full", entry)
	}
}

func TestLogger_ConcurrentWritesStayLineDelimited(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LevelInfo, &buf)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			logger.Info("worker", Fields{"n": n})
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 20 {
		t.Fatalf("got %d lines, want 20", len(lines))
	}
	for _, line := range lines {
		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Errorf("line %q is not valid JSON: %v", line, err)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{" INFO ", LevelInfo, false},
		{"Warn", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMetrics_Counter(t *testing.T) {
	m := NewMetrics()

	m.IncrCounter("tables.written")
	m.IncrCounter("tables.written")
	m.AddCounter("tables.written", 3)

	if got := m.Counter("tables.written"); got != 5 {
		t.Errorf("Counter = %v, want 5", got)
	}

	snapshot := m.GetSnapshot()
	if snapshot.Counters["tables.written"] != 5 {
		t.Errorf("snapshot counter = %v, want 5", snapshot.Counters["tables.written"])
	}
}

func TestMetrics_Timing(t *testing.T) {
	m := NewMetrics()

	m.RecordTiming("fetch", 100*time.Millisecond)
	m.RecordTiming("fetch", 200*time.Millisecond)
	m.RecordTiming("fetch", 150*time.Millisecond)

	fetch := m.GetSnapshot().Timings["fetch"]
	if fetch.Count != 3 {
		t.Errorf("Timing count = %v, want 3", fetch.Count)
	}
	if fetch.Min != "100ms" {
		t.Errorf("Min timing = %v, want 100ms", fetch.Min)
	}
	if fetch.Max != "200ms" {
		t.Errorf("Max timing = %v, want 200ms", fetch.Max)
	}
	if fetch.Average != "150ms" {
		t.Errorf("Average timing = %v, want 150ms", fetch.Average)
	}
}

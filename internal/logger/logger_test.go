package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func fixedNow() time.Time { return time.Date(2025, 1, 9, 12, 0, 0, 0, time.UTC) }

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"":        Info,
		"DEBUG":   Debug,
		"warning": Warn,
		" error ": Error,
		"bogus":   Info,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestText_SortedAndFiltered(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: Warn, Output: &buf, App: "gateway", Now: fixedNow})

	log.Info("ignored", nil)
	log.With(map[string]any{"policy": "login"}).Warn("key derivation failed", map[string]any{"err": errors.New("boom")})

	got := strings.TrimSpace(buf.String())
	want := "app=gateway err=boom level=warn msg=key derivation failed policy=login ts=2025-01-09T12:00:00Z"
	if got != want {
		t.Fatalf("unexpected line\n got: %s\nwant: %s", got, want)
	}
}

func TestJSON_Line(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: Debug, Format: FormatJSON, Output: &buf, Now: fixedNow})

	log.Debug("verify", map[string]any{"code": "VERIFICATION_ERROR", "": "dropped"})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "verify" || entry["code"] != "VERIFICATION_ERROR" || entry["level"] != "debug" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if _, ok := entry[""]; ok {
		t.Fatalf("empty keys must be dropped")
	}
}

func TestWith_DoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := New(Options{Output: &buf, Now: fixedNow})
	_ = parent.With(map[string]any{"request_id": "r1"})

	parent.Info("plain", nil)
	if strings.Contains(buf.String(), "request_id") {
		t.Fatalf("parent logger picked up child fields: %s", buf.String())
	}
}

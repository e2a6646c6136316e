package storage_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Tiliavir/clocktime/internal/model"
	"github.com/Tiliavir/clocktime/internal/storage"
)

func TestLoadNotExist(t *testing.T) {
	base := t.TempDir()
	_, ok, err := storage.Load[[]model.Alarm](base, storage.KeyAlarms)
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if ok {
		t.Error("Load reported data for a missing key")
	}
}

func TestSaveAndLoad(t *testing.T) {
	base := t.TempDir()
	now := time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC)
	alarms := []model.Alarm{{ID: "a1", Time: "07:30", Timezone: "Europe/Berlin", Label: "Wake", Enabled: true, Days: []string{"daily"}}}

	if err := storage.Save(base, storage.KeyAlarms, alarms, now); err != nil {
		t.Fatalf("Save: %v", err)
	}

	env, ok, err := storage.Load[[]model.Alarm](base, storage.KeyAlarms)
	if err != nil || !ok {
		t.Fatalf("Load after save: ok=%v err=%v", ok, err)
	}
	if env.Timestamp != now.UnixMilli() {
		t.Errorf("Timestamp = %d, want %d", env.Timestamp, now.UnixMilli())
	}
	if len(env.Data) != 1 || env.Data[0].Label != "Wake" {
		t.Errorf("Data = %+v", env.Data)
	}
	if _, err := os.Stat(filepath.Join(base, "alarms.json.tmp")); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}

func TestEnvelopeShape(t *testing.T) {
	base := t.TempDir()
	if err := storage.Save(base, storage.KeyTheme, "dark", time.UnixMilli(1700000000000)); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(filepath.Join(base, "theme.json"))
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"timestamp\": 1700000000000,\n  \"data\": \"dark\"\n}"
	if string(raw) != want {
		t.Errorf("envelope = %s, want %s", raw, want)
	}
}

func TestLoadCorruptBacksUp(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "alarms.json")
	if err := os.WriteFile(path, []byte("{bad json"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, _, err := storage.Load[[]model.Alarm](base, storage.KeyAlarms)
	if err == nil {
		t.Fatal("expected error for corrupt JSON, got nil")
	}
	if _, err2 := os.Stat(path + ".corrupt"); os.IsNotExist(err2) {
		t.Error("expected backup file to exist after corrupt JSON")
	}
}

func TestLocalFallsBackAndLogs(t *testing.T) {
	base := t.TempDir()
	if err := os.WriteFile(filepath.Join(base, "theme.json"), []byte("nope"), 0o600); err != nil {
		t.Fatal(err)
	}
	core, logs := observer.New(zap.ErrorLevel)

	l := storage.Open(base, storage.KeyTheme, "default", zap.New(core))
	if got := l.Get(); got != "default" {
		t.Errorf("Get = %q, want initial value", got)
	}
	if logs.Len() != 1 {
		t.Errorf("logged %d entries, want 1", logs.Len())
	}
	if !l.LastSync().IsZero() {
		t.Error("LastSync should be zero before any write")
	}
}

func TestLocalSetPersists(t *testing.T) {
	base := t.TempDir()
	l := storage.Open(base, storage.KeyTheme, "default", nil)
	if !l.Set("ocean") {
		t.Fatal("Set reported failure")
	}

	reopened := storage.Open(base, storage.KeyTheme, "default", nil)
	if got := reopened.Get(); got != "ocean" {
		t.Errorf("reopened Get = %q, want ocean", got)
	}
	if reopened.LastSync().IsZero() {
		t.Error("expected LastSync after reopen")
	}
}

func TestLocalSetFailureKeepsMemory(t *testing.T) {
	dir := t.TempDir()
	// A regular file where the base directory should be makes every write fail.
	base := filepath.Join(dir, "blocked")
	if err := os.WriteFile(base, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	core, logs := observer.New(zap.ErrorLevel)

	l := storage.Open(base, storage.KeyTheme, "default", zap.New(core))
	if l.Set("forest") {
		t.Fatal("expected Set to report failure")
	}
	if got := l.Get(); got != "forest" {
		t.Errorf("Get = %q, want in-memory value forest", got)
	}
	if logs.FilterMessage("error saving offline data").Len() != 1 {
		t.Error("expected save failure to be logged")
	}
}

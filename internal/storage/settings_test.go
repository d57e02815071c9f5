package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sayantanroy47/tasky-timeline/pkg/models"
)

func TestSettingsStore_MissingFileYieldsDefaults(t *testing.T) {
	store := NewSettingsStore(t.TempDir())
	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != models.DefaultTimelineSettings() {
		t.Errorf("missing file loaded %+v, want defaults", got)
	}
}

func TestSettingsStore_RoundTrip(t *testing.T) {
	store := NewSettingsStore(t.TempDir())

	want := models.DefaultTimelineSettings()
	want.ZoomLevel = models.ZoomWeeks
	want.PixelsPerUnit = 70
	want.ShowCriticalPath = true
	want.ColorTheme = "dark"

	if err := store.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestSettingsStore_PartialFileFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	partial := "zoom_level: months\npixels_per_unit: 80\n"
	if err := os.WriteFile(filepath.Join(dir, "timeline.yaml"), []byte(partial), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := NewSettingsStore(dir).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ZoomLevel != models.ZoomMonths || got.PixelsPerUnit != 80 {
		t.Errorf("explicit keys not honored: %+v", got)
	}
	def := models.DefaultTimelineSettings()
	if got.TaskRowHeight != def.TaskRowHeight || got.ColorTheme != def.ColorTheme {
		t.Errorf("missing keys did not default: %+v", got)
	}
}

func TestSettingsStore_InvalidValuesSurface(t *testing.T) {
	dir := t.TempDir()
	bad := "zoom_level: centuries\n"
	if err := os.WriteFile(filepath.Join(dir, "timeline.yaml"), []byte(bad), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := NewSettingsStore(dir).Load()
	if err == nil {
		t.Fatal("invalid zoom level loaded without error")
	}
	if !strings.Contains(err.Error(), "zoom_level") {
		t.Errorf("error %q does not name the bad field", err)
	}
	if got != models.DefaultTimelineSettings() {
		t.Errorf("fallback settings = %+v, want defaults", got)
	}
}

func TestSettingsStore_SaveRejectsInvalidSettings(t *testing.T) {
	dir := t.TempDir()
	store := NewSettingsStore(dir)

	bad := models.DefaultTimelineSettings()
	bad.TaskRowHeight = 0
	if err := store.Save(bad); err == nil {
		t.Fatal("Save accepted zero row height")
	}
	if _, err := os.Stat(filepath.Join(dir, "timeline.yaml")); !os.IsNotExist(err) {
		t.Error("invalid settings were written to disk")
	}
}

func TestSettingsStore_SaveCreatesBaseDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "config")
	store := NewSettingsStore(dir)
	if err := store.Save(models.DefaultTimelineSettings()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "timeline.yaml")); err != nil {
		t.Errorf("settings file missing after save: %v", err)
	}
}

package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func resetLoggingState() {
	CloseAll()
	CloseAudit()
	loggers = make(map[Category]*Logger)
	logsDir = ""
	dbRoot = ""
	configLoaded = false
	config = loggingConfig{}
}

func TestAllCategoriesLog(t *testing.T) {
	tempDir := t.TempDir()

	configContent := `{
		"logging": {
			"level": "debug",
			"debug_mode": true,
			"categories": {
				"boot": true,
				"history": true,
				"diff": true,
				"reorder": true,
				"indexer": true,
				"shard": true,
				"coordinator": true,
				"query": true
			}
		}
	}`
	if err := os.WriteFile(filepath.Join(tempDir, "config.json"), []byte(configContent), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	resetLoggingState()
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if !IsDebugMode() {
		t.Fatal("expected debug mode enabled")
	}

	categories := []Category{
		CategoryBoot, CategoryHistory, CategoryDiff, CategoryReorder,
		CategoryIndexer, CategoryShard, CategoryCoordinator, CategoryQuery,
	}
	for _, cat := range categories {
		if !IsCategoryEnabled(cat) {
			t.Errorf("category %s should be enabled", cat)
		}
		l := Get(cat)
		l.Info("info %s", cat)
		l.Debug("debug %s", cat)
		l.Warn("warn %s", cat)
		l.Error("error %s", cat)
	}

	Boot("boot convenience")
	History("history convenience")
	Diff("diff convenience")
	Reorder("reorder convenience")
	Indexer("indexer convenience")
	Shard("shard convenience")
	Coordinator("coordinator convenience")
	Query("query convenience")

	CloseAll()

	logsPath := filepath.Join(tempDir, "logs")
	entries, err := os.ReadDir(logsPath)
	if err != nil {
		t.Fatalf("read logs dir: %v", err)
	}
	for _, cat := range categories {
		found := false
		for _, e := range entries {
			if strings.Contains(e.Name(), string(cat)+".log") {
				found = true
				content, err := os.ReadFile(filepath.Join(logsPath, e.Name()))
				if err != nil {
					t.Errorf("read log for %s: %v", cat, err)
				}
				if len(content) == 0 {
					t.Errorf("log for %s is empty", cat)
				}
				break
			}
		}
		if !found {
			t.Errorf("no log file for category %s", cat)
		}
	}
}

func TestDebugModeDisabled(t *testing.T) {
	tempDir := t.TempDir()

	configContent := `{"logging": {"level": "debug", "debug_mode": false, "categories": {"boot": true}}}`
	if err := os.WriteFile(filepath.Join(tempDir, "config.json"), []byte(configContent), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	resetLoggingState()
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if IsDebugMode() {
		t.Fatal("expected debug mode disabled")
	}
	if IsCategoryEnabled(CategoryBoot) {
		t.Error("boot should be disabled in production mode")
	}

	Boot("should not be logged")
	Get(CategoryBoot).Info("should not be logged")
	CloseAll()

	logsPath := filepath.Join(tempDir, "logs")
	if _, err := os.Stat(logsPath); err == nil {
		entries, _ := os.ReadDir(logsPath)
		if len(entries) > 0 {
			t.Errorf("expected no log files, found %d", len(entries))
		}
	}
}

func TestCategoryToggle(t *testing.T) {
	tempDir := t.TempDir()

	configContent := `{
		"logging": {
			"level": "debug",
			"debug_mode": true,
			"categories": {"boot": true, "shard": false}
		}
	}`
	if err := os.WriteFile(filepath.Join(tempDir, "config.json"), []byte(configContent), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	resetLoggingState()
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	if !IsCategoryEnabled(CategoryBoot) {
		t.Error("boot should be enabled")
	}
	if IsCategoryEnabled(CategoryShard) {
		t.Error("shard should be disabled")
	}
	if !IsCategoryEnabled(CategoryQuery) {
		t.Error("query (not in config) should default to enabled")
	}

	Boot("should be logged")
	Shard("should not be logged")
	Query("should be logged, default enabled")
	CloseAll()

	logsPath := filepath.Join(tempDir, "logs")
	entries, _ := os.ReadDir(logsPath)
	var hasBoot, hasShard bool
	for _, e := range entries {
		if strings.Contains(e.Name(), "boot") {
			hasBoot = true
		}
		if strings.Contains(e.Name(), "shard.log") {
			hasShard = true
		}
	}
	if !hasBoot {
		t.Error("expected boot log file")
	}
	if hasShard {
		t.Error("shard log file should not exist")
	}
}

func TestTimerLogging(t *testing.T) {
	tempDir := t.TempDir()
	os.WriteFile(filepath.Join(tempDir, "config.json"), []byte(`{"logging": {"level": "debug", "debug_mode": true}}`), 0o644)

	resetLoggingState()
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	timer := StartTimer(CategoryIndexer, "TestOperation")
	time.Sleep(time.Millisecond)
	elapsed := timer.Stop()
	if elapsed <= 0 {
		t.Error("expected non-zero duration")
	}
	CloseAll()
}

package storage_test

import (
	"strings"
	"testing"

	"github.com/Jayden3422/voice-assistant/pkg/storage"
)

func TestFinalizeDefaults(t *testing.T) {
	cfg := storage.Config{ConnectionString: "conn"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.ContainerName != "artifacts" {
		t.Errorf("container_name: got %s, want artifacts", cfg.ContainerName)
	}
}

func TestFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_STORAGE_CONTAINER", "recordings")
	t.Setenv("TEST_STORAGE_CONN", "envconn")

	env := &storage.Env{
		ContainerName:    "TEST_STORAGE_CONTAINER",
		ConnectionString: "TEST_STORAGE_CONN",
	}

	cfg := storage.Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.ContainerName != "recordings" {
		t.Errorf("container_name: got %s, want recordings", cfg.ContainerName)
	}
	if cfg.ConnectionString != "envconn" {
		t.Errorf("connection_string: got %s, want envconn", cfg.ConnectionString)
	}
}

func TestFinalizeValidation(t *testing.T) {
	cfg := storage.Config{}
	err := cfg.Finalize(nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "connection_string required") {
		t.Errorf("error %q does not mention connection_string", err.Error())
	}
}

func TestMerge(t *testing.T) {
	base := storage.Config{ContainerName: "artifacts", ConnectionString: "base"}
	overlay := storage.Config{ConnectionString: "overlay"}
	base.Merge(&overlay)

	if base.ContainerName != "artifacts" {
		t.Errorf("container_name: got %s, want artifacts (unchanged)", base.ContainerName)
	}
	if base.ConnectionString != "overlay" {
		t.Errorf("connection_string: got %s, want overlay", base.ConnectionString)
	}
}

package configstore

import (
	"path/filepath"
	"testing"
)

func TestGetConfigPathPrefersXDG(t *testing.T) {
	t.Parallel()
	lockEnv(t)
	testSetEnv(t, homeEnv, "")
	base := t.TempDir()
	testSetEnv(t, "XDG_CONFIG_HOME", base)
	setHome(t, filepath.Join(t.TempDir(), "ignored"))

	dir, file, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath returned error: %v", err)
	}
	wantDir := filepath.Join(base, appDirName)
	if dir != wantDir {
		t.Fatalf("dir = %q, want %q", dir, wantDir)
	}
	if file != filepath.Join(wantDir, configFileName) {
		t.Fatalf("file = %q", file)
	}
}

func TestGetConfigPathFallsBackToHome(t *testing.T) {
	t.Parallel()
	lockEnv(t)
	testSetEnv(t, homeEnv, "")
	testSetEnv(t, "XDG_CONFIG_HOME", "")
	home := t.TempDir()
	setHome(t, home)

	dir, _, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath returned error: %v", err)
	}
	if want := filepath.Join(home, ".config", appDirName); dir != want {
		t.Fatalf("dir = %q, want %q", dir, want)
	}
}

func TestGetConfigPathMissingHomeErrors(t *testing.T) {
	t.Parallel()
	lockEnv(t)
	testSetEnv(t, homeEnv, "")
	testSetEnv(t, "XDG_CONFIG_HOME", "")
	unsetHome(t)

	if _, _, err := GetConfigPath(); err == nil {
		t.Fatal("expected error when home cannot be resolved")
	}
}

func TestGetConfigPathPrefersOverride(t *testing.T) {
	t.Parallel()
	lockEnv(t)
	base := filepath.Join(t.TempDir(), "fc-home")
	testSetEnv(t, homeEnv, base)
	testSetEnv(t, "XDG_CONFIG_HOME", filepath.Join(t.TempDir(), "xdg"))
	setHome(t, filepath.Join(t.TempDir(), "ignored"))

	dir, file, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath returned error: %v", err)
	}
	if dir != base {
		t.Fatalf("dir = %q, want %q", dir, base)
	}
	if file != filepath.Join(base, configFileName) {
		t.Fatalf("file = %q", file)
	}
}

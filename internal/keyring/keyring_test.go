package keyring

import (
	"path/filepath"
	"testing"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return &Manager{
		file:    newFileKeyring(filepath.Join(t.TempDir(), "keyring.json"), "test-master-password"),
		useFile: true,
	}
}

func TestFileKeyringRoundTrip(t *testing.T) {
	m := newTestManager(t)

	if err := m.Set("drift-cli", "alice:access_token", "secret-token"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	got, err := m.Get("drift-cli", "alice:access_token")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got != "secret-token" {
		t.Errorf("Get() = %q, want %q", got, "secret-token")
	}
}

func TestFileKeyringMissingEntry(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.Get("drift-cli", "nobody"); err == nil {
		t.Fatalf("expected error for missing entry")
	}
}

func TestFileKeyringDelete(t *testing.T) {
	m := newTestManager(t)

	if err := m.Set("drift-cli", "bob:access_token", "tok"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := m.Delete("drift-cli", "bob:access_token"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := m.Get("drift-cli", "bob:access_token"); err == nil {
		t.Fatalf("expected error after delete")
	}

	// Deleting from an empty keyring is a no-op.
	empty := newTestManager(t)
	if err := empty.Delete("drift-cli", "nobody"); err != nil {
		t.Fatalf("Delete() on empty keyring failed: %v", err)
	}
}

func TestSecretsAreEncryptedOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keyring.json")
	fk := newFileKeyring(path, "master")

	if err := fk.set("drift-cli", "carol:access_token", "plaintext-token"); err != nil {
		t.Fatalf("set() failed: %v", err)
	}

	entries := fk.load()
	entry, ok := entries["drift-cli:carol:access_token"]
	if !ok {
		t.Fatalf("entry missing from keyring file")
	}
	if entry.Data == "plaintext-token" {
		t.Fatalf("secret stored in the clear")
	}
}

func TestWrongMasterPasswordFailsDecryption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keyring.json")

	writer := newFileKeyring(path, "right-password")
	if err := writer.set("drift-cli", "dave", "tok"); err != nil {
		t.Fatalf("set() failed: %v", err)
	}

	reader := newFileKeyring(path, "wrong-password")
	if _, err := reader.get("drift-cli", "dave"); err == nil {
		t.Fatalf("expected decryption failure with wrong master password")
	}
}

package keyring

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/zalando/go-keyring"
)

// Manager stores session secrets in the system keyring when one is
// available, falling back to an AES-GCM encrypted file on headless hosts.
type Manager struct {
	file    *fileKeyring
	useFile bool
}

type fileKeyring struct {
	path      string
	masterKey []byte
}

type fileEntry struct {
	Service string `json:"service"`
	User    string `json:"user"`
	Data    string `json:"data"` // encrypted secret
}

// NewManager probes the system keyring and falls back to the file keyring
// when the probe fails or hangs (dbus-less environments block indefinitely).
func NewManager(filePath, masterPassword string) *Manager {
	probe := make(chan error, 1)
	go func() {
		err := keyring.Set("driftstream-probe", "probe", "probe")
		if err == nil {
			_ = keyring.Delete("driftstream-probe", "probe")
		}
		probe <- err
	}()

	select {
	case err := <-probe:
		if err == nil {
			return &Manager{}
		}
	case <-time.After(5 * time.Second):
	}

	return &Manager{
		file:    newFileKeyring(filePath, masterPassword),
		useFile: true,
	}
}

func newFileKeyring(path, masterPassword string) *fileKeyring {
	_ = os.MkdirAll(filepath.Dir(path), 0o700)
	key := sha256.Sum256([]byte(masterPassword))
	return &fileKeyring{path: path, masterKey: key[:]}
}

// Set stores a secret under service/user.
func (m *Manager) Set(service, user, secret string) error {
	if !m.useFile {
		return keyring.Set(service, user, secret)
	}
	return m.file.set(service, user, secret)
}

// Get retrieves a secret stored under service/user.
func (m *Manager) Get(service, user string) (string, error) {
	if !m.useFile {
		return keyring.Get(service, user)
	}
	return m.file.get(service, user)
}

// Delete removes the secret stored under service/user.
func (m *Manager) Delete(service, user string) error {
	if !m.useFile {
		return keyring.Delete(service, user)
	}
	return m.file.delete(service, user)
}

func (fk *fileKeyring) load() map[string]fileEntry {
	entries := make(map[string]fileEntry)
	if data, err := os.ReadFile(fk.path); err == nil {
		_ = json.Unmarshal(data, &entries)
	}
	return entries
}

func (fk *fileKeyring) store(entries map[string]fileEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return os.WriteFile(fk.path, data, 0o600)
}

func (fk *fileKeyring) set(service, user, secret string) error {
	entries := fk.load()

	sealed, err := fk.encrypt(secret)
	if err != nil {
		return err
	}

	entries[service+":"+user] = fileEntry{
		Service: service,
		User:    user,
		Data:    sealed,
	}
	return fk.store(entries)
}

func (fk *fileKeyring) get(service, user string) (string, error) {
	data, err := os.ReadFile(fk.path)
	if err != nil {
		return "", fmt.Errorf("keyring file not found")
	}

	entries := make(map[string]fileEntry)
	if err := json.Unmarshal(data, &entries); err != nil {
		return "", err
	}

	entry, ok := entries[service+":"+user]
	if !ok {
		return "", fmt.Errorf("entry not found")
	}
	return fk.decrypt(entry.Data)
}

func (fk *fileKeyring) delete(service, user string) error {
	data, err := os.ReadFile(fk.path)
	if err != nil {
		return nil // nothing stored yet
	}

	entries := make(map[string]fileEntry)
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}

	delete(entries, service+":"+user)
	return fk.store(entries)
}

func (fk *fileKeyring) encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(fk.masterKey)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (fk *fileKeyring) decrypt(ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(fk.masterKey)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	if len(data) < gcm.NonceSize() {
		return "", fmt.Errorf("ciphertext too short")
	}
	nonce, sealed := data[:gcm.NonceSize()], data[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// MasterPasswordFromEnv returns the file-keyring master password.
func MasterPasswordFromEnv() string {
	if password := os.Getenv("DRIFTSTREAM_KEYRING_PASSWORD"); password != "" {
		return password
	}
	// Development default; set DRIFTSTREAM_KEYRING_PASSWORD in production.
	return "driftstream-dev-keyring-password"
}

// DefaultFilePath returns the fallback keyring file location.
func DefaultFilePath() string {
	if path := os.Getenv("DRIFTSTREAM_KEYRING_PATH"); path != "" {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "driftstream-keyring.json")
	}
	return filepath.Join(homeDir, ".local", "share", "driftstream", "keyring.json")
}

package config

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "liftplan"
	apiKeyName     = "OPENROUTER_API_KEY"
)

// SecretStore хранилище секретов. Get возвращает "" без ошибки, если секрета нет.
type SecretStore interface {
	Get(name string) (string, error)
	Set(name, value string) error
}

// KeyringStore системное хранилище (macOS Keychain, Secret Service, Windows Credential Manager)
type KeyringStore struct {
	Service string
}

func (k KeyringStore) Get(name string) (string, error) {
	v, err := keyring.Get(k.Service, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return v, err
}

func (k KeyringStore) Set(name, value string) error {
	return keyring.Set(k.Service, name, value)
}

// FileStore файл с правами 600: base64 от JSON-объекта {name: value}
type FileStore struct {
	Path string
}

// DefaultCredentialsPath ~/.liftplan/credentials
func DefaultCredentialsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".liftplan", "credentials")
}

func (f FileStore) read() (map[string]string, error) {
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("ошибка декодирования %s: %w", f.Path, err)
	}
	values := map[string]string{}
	if err := json.Unmarshal(decoded, &values); err != nil {
		return nil, fmt.Errorf("ошибка парсинга %s: %w", f.Path, err)
	}
	return values, nil
}

func (f FileStore) Get(name string) (string, error) {
	values, err := f.read()
	if err != nil {
		return "", err
	}
	return values[name], nil
}

func (f FileStore) Set(name, value string) error {
	values, err := f.read()
	if err != nil {
		values = map[string]string{}
	}
	values[name] = value

	data, err := json.Marshal(values)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0700); err != nil {
		return err
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	if err := os.WriteFile(f.Path, []byte(encoded), 0600); err != nil {
		return err
	}
	// WriteFile не меняет права уже существующего файла
	return os.Chmod(f.Path, 0600)
}

// ChainStore читает из первого хранилища, где секрет есть; пишет в первое, где запись удалась
type ChainStore []SecretStore

func (c ChainStore) Get(name string) (string, error) {
	var lastErr error
	for _, s := range c {
		v, err := s.Get(name)
		if err != nil {
			lastErr = err
			continue
		}
		if v != "" {
			return v, nil
		}
	}
	return "", lastErr
}

func (c ChainStore) Set(name, value string) error {
	var errs []error
	for _, s := range c {
		err := s.Set(name, value)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// DefaultSecretStore keychain, затем файл в домашнем каталоге
func DefaultSecretStore() SecretStore {
	return ChainStore{
		KeyringStore{Service: keyringService},
		FileStore{Path: DefaultCredentialsPath()},
	}
}

// ResolveAPIKey ключ OpenRouter из хранилища, иначе из окружения/.env
func ResolveAPIKey(store SecretStore, envValue string) string {
	if store != nil {
		if v, err := store.Get(apiKeyName); err == nil && v != "" {
			return v
		}
	}
	return envValue
}

// StoreAPIKey сохраняет ключ OpenRouter
func StoreAPIKey(store SecretStore, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("пустой ключ")
	}
	return store.Set(apiKeyName, value)
}

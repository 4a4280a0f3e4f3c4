package database

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// TunnelConfig параметры SSH-подключения
type TunnelConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	KeyPath  string // приватный ключ; если пуст - авторизация по паролю

	KnownHostsPath        string // пусто - ~/.ssh/known_hosts
	InsecureIgnoreHostKey bool
}

// Tunnel SSH-клиент, через который открываются TCP-соединения до базы.
// Реализует pq.Dialer и pq.DialerContext.
type Tunnel struct {
	client *ssh.Client
}

// OpenTunnel подключается к SSH-хосту
func OpenTunnel(cfg TunnelConfig) (*Tunnel, error) {
	auth, err := authMethods(cfg)
	if err != nil {
		return nil, err
	}
	hostKey, err := hostKeyCallback(cfg)
	if err != nil {
		return nil, err
	}

	port := cfg.Port
	if port == "" {
		port = "22"
	}
	client, err := ssh.Dial("tcp", net.JoinHostPort(cfg.Host, port), &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auth,
		HostKeyCallback: hostKey,
		Timeout:         15 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к %s: %w", cfg.Host, err)
	}
	return &Tunnel{client: client}, nil
}

func authMethods(cfg TunnelConfig) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod
	if cfg.KeyPath != "" {
		pem, err := os.ReadFile(cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения ключа: %w", err)
		}
		var signer ssh.Signer
		if cfg.Password != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase(pem, []byte(cfg.Password))
		} else {
			signer, err = ssh.ParsePrivateKey(pem)
		}
		if err != nil {
			return nil, fmt.Errorf("ошибка разбора ключа: %w", err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	} else if cfg.Password != "" {
		methods = append(methods, ssh.Password(cfg.Password))
	}
	if len(methods) == 0 {
		return nil, fmt.Errorf("не задан ни SSH_PASSWORD, ни SSH_KEY_PATH")
	}
	return methods, nil
}

// hostKeyCallback проверяет ключ хоста по known_hosts. Без файла подключение запрещено,
// если явно не задан InsecureIgnoreHostKey.
func hostKeyCallback(cfg TunnelConfig) (ssh.HostKeyCallback, error) {
	if cfg.InsecureIgnoreHostKey {
		return ssh.InsecureIgnoreHostKey(), nil
	}

	path := cfg.KnownHostsPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("не удалось найти known_hosts: %w", err)
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("known_hosts недоступен (%s): добавьте ключ хоста или задайте SSH_INSECURE_IGNORE_HOST_KEY=true: %w", path, err)
	}
	cb, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения known_hosts: %w", err)
	}
	return cb, nil
}

// Dial открывает соединение с address со стороны SSH-хоста
func (t *Tunnel) Dial(network, address string) (net.Conn, error) {
	return t.client.Dial(network, address)
}

// DialTimeout как Dial, но с ограничением по времени
func (t *Tunnel) DialTimeout(network, address string, timeout time.Duration) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return t.DialContext(ctx, network, address)
}

// DialContext как Dial, но с контекстом
func (t *Tunnel) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	return t.client.DialContext(ctx, network, address)
}

// Close закрывает SSH-клиент
func (t *Tunnel) Close() error {
	return t.client.Close()
}

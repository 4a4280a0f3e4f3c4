package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"liftplan/internal/config"
	"liftplan/internal/logger"
)

// DB соединение с базой и (опционально) SSH-туннель под ним
type DB struct {
	*sql.DB
	tunnel *Tunnel
}

// Open открывает подключение к Postgres; при заданном SSH_HOST соединения идут через туннель
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*DB, error) {
	if log == nil {
		log = logger.Nop()
	}

	connector, err := pq.NewConnector(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("ошибка разбора DSN: %w", err)
	}

	var tunnel *Tunnel
	if cfg.UseSSH() {
		if cfg.SSHInsecureIgnoreHostKey {
			log.Warn("проверка ключа SSH-хоста отключена (SSH_INSECURE_IGNORE_HOST_KEY)", "ssh_host", cfg.SSHHost)
		}
		tunnel, err = OpenTunnel(TunnelConfig{
			Host:                  cfg.SSHHost,
			Port:                  cfg.SSHPort,
			User:                  cfg.SSHUser,
			Password:              cfg.SSHPassword,
			KeyPath:               cfg.SSHKeyPath,
			KnownHostsPath:        cfg.SSHKnownHosts,
			InsecureIgnoreHostKey: cfg.SSHInsecureIgnoreHostKey,
		})
		if err != nil {
			return nil, fmt.Errorf("ошибка SSH-туннеля: %w", err)
		}
		connector.Dialer(tunnel)
		log.Info("подключение к БД через SSH", "ssh_host", cfg.SSHHost, "db_host", cfg.DBHost)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		if tunnel != nil {
			tunnel.Close()
		}
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	log.Info("подключение к БД установлено", "host", cfg.DBHost, "db", cfg.DBName)
	return &DB{DB: db, tunnel: tunnel}, nil
}

// Close закрывает пул и туннель
func (d *DB) Close() error {
	err := d.DB.Close()
	if d.tunnel != nil {
		if tErr := d.tunnel.Close(); err == nil {
			err = tErr
		}
	}
	return err
}

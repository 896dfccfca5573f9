// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

package logging

import (
	"fmt"
	"net"
	"time"
)

// SyslogConfig configures an optional RFC-3164-style syslog sink for the
// control-path logger. Never consulted on the data path.
type SyslogConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Protocol string // "udp" or "tcp"
	Tag      string
	Facility int
}

// DefaultSyslogConfig returns the disabled-by-default syslog configuration.
func DefaultSyslogConfig() SyslogConfig {
	return SyslogConfig{
		Enabled:  false,
		Port:     514,
		Protocol: "udp",
		Tag:      "natgwd",
		Facility: 1, // user-level messages
	}
}

// syslogWriter is a minimal io.Writer that frames each Write as one
// RFC-3164 syslog datagram/stream message and forwards it over net.Conn.
// natgwd dials its own socket rather than relying on the deprecated
// stdlib log/syslog package, which is Unix-only and does not support a
// caller-supplied net.Conn for testing.
type syslogWriter struct {
	conn     net.Conn
	tag      string
	priority int
}

// NewSyslogWriter dials the configured syslog endpoint and returns a
// writer suitable for logging.New's syslog sink argument.
func NewSyslogWriter(cfg SyslogConfig) (*syslogWriter, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("logging: syslog host is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 514
	}
	if cfg.Protocol == "" {
		cfg.Protocol = "udp"
	}
	if cfg.Tag == "" {
		cfg.Tag = "natgwd"
	}

	addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))
	conn, err := net.DialTimeout(cfg.Protocol, addr, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("logging: dial syslog %s://%s: %w", cfg.Protocol, addr, err)
	}

	return &syslogWriter{
		conn:     conn,
		tag:      cfg.Tag,
		priority: cfg.Facility*8 + 6, // severity 6 = informational
	}, nil
}

func (w *syslogWriter) Write(p []byte) (int, error) {
	msg := fmt.Sprintf("<%d>%s %s[0]: %s", w.priority, time.Now().Format(time.Stamp), w.tag, p)
	if _, err := w.conn.Write([]byte(msg)); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *syslogWriter) Close() error {
	return w.conn.Close()
}

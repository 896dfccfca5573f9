// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

package admin

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/wish"
	bm "github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"

	natgwlog "github.com/natgw/natgw/internal/logging"
	"github.com/natgw/natgw/internal/stats"
)

// NewSSHServer builds the tertiary admin surface: an SSH server that
// drops any connecting client straight into the live dashboard, per
// SPEC_FULL.md §4.L. No authentication beyond network reachability is
// configured here — spec.md scopes the admin channel to a loopback/
// trusted-network control surface, same as the primary binary protocol.
func NewSSHServer(addr string, hostKeyPath string, statsFn func() stats.Snapshot, log *natgwlog.Logger) (*wish.Server, error) {
	return wish.NewServer(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithMiddleware(
			bm.Middleware(func(s wish.Session) (tea.Model, []tea.ProgramOption) {
				return NewDashboardModel(statsFn), []tea.ProgramOption{tea.WithAltScreen()}
			}),
			logging.Middleware(),
		),
	)
}

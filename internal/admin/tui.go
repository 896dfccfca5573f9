// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

package admin

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/natgw/natgw/internal/stats"
)

// tickMsg drives the dashboard's periodic stats refresh.
type tickMsg time.Time

// dashboardModel is the tertiary SSH-reachable TUI of SPEC_FULL.md
// §4.L: a live, read-only view of the same counters the primary
// protocol's `stats` command returns.
type dashboardModel struct {
	statsFn func() stats.Snapshot
	table   table.Model
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

// NewDashboardModel builds the bubbletea program model for one SSH
// session, sourcing its rows from statsFn on every tick.
func NewDashboardModel(statsFn func() stats.Snapshot) tea.Model {
	cols := []table.Column{
		{Title: "counter", Width: 28},
		{Title: "value", Width: 12},
	}
	t := table.New(table.WithColumns(cols), table.WithFocused(false), table.WithHeight(8))
	return dashboardModel{statsFn: statsFn, table: t}
}

func (m dashboardModel) Init() tea.Cmd { return tick() }

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tickMsg:
		m.table.SetRows(snapshotRows(m.statsFn()))
		return m, tick()
	}
	return m, nil
}

func (m dashboardModel) View() string {
	return headerStyle.Render("natgw — live counters (q to quit)") + "\n" + m.table.View()
}

func snapshotRows(s stats.Snapshot) []table.Row {
	return []table.Row{
		{"drop_no_rule", fmt.Sprint(s.DropNoRule)},
		{"drop_nat_condition", fmt.Sprint(s.DropNATCondition)},
		{"drop_bad_l3_checksum", fmt.Sprint(s.DropBadL3Checksum)},
		{"rx_bad_l4_checksum", fmt.Sprint(s.RxBadL4Checksum)},
		{"drop_unknown_icmp", fmt.Sprint(s.DropUnknownICMP)},
		{"drop_unhandled_ethertype", fmt.Sprint(s.DropUnhandledEthertype)},
		{"drop_tx_notsent", fmt.Sprint(s.DropTXNotSent)},
	}
}

// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

// Command natgwctl is the admin CLI client: one-shot primary-protocol
// commands (status/version/reload/stats/xstats/reset/exit), a `probe`
// reachability check, and `config dump` for inspecting a loaded
// configuration without starting the daemon.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	probing "github.com/prometheus-community/pro-bing"

	"github.com/natgw/natgw/internal/admin"
	"github.com/natgw/natgw/internal/config"
)

// destructive names the commands that zero state or shut the daemon
// down, prompted for confirmation before being sent (unless -y skips it).
var destructive = map[string]bool{"reset": true, "exit": true}

func main() {
	addr := flag.String("admin", "127.0.0.1:9999", "admin protocol address")
	yes := flag.Bool("y", false, "skip the confirmation prompt for destructive commands")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: natgwctl [-admin addr] <status|version|reload|stats|xstats|reset|exit|probe <host>|config dump <path>>")
		os.Exit(2)
	}

	switch args[0] {
	case "probe":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: natgwctl probe <host>")
			os.Exit(2)
		}
		if err := probe(args[1]); err != nil {
			fmt.Fprintln(os.Stderr, "probe failed:", err)
			os.Exit(1)
		}
		return

	case "config":
		if len(args) < 3 || args[1] != "dump" {
			fmt.Fprintln(os.Stderr, "usage: natgwctl config dump <path>")
			os.Exit(2)
		}
		if err := configDump(args[2]); err != nil {
			fmt.Fprintln(os.Stderr, "config dump failed:", err)
			os.Exit(1)
		}
		return

	default:
		cmd, ok := commandByName(args[0])
		if !ok {
			fmt.Fprintln(os.Stderr, "unknown command:", args[0])
			os.Exit(2)
		}
		if destructive[args[0]] && !*yes {
			confirmed, err := confirm(fmt.Sprintf("Send %q to %s?", args[0], *addr))
			if err != nil || !confirmed {
				fmt.Fprintln(os.Stderr, "aborted")
				os.Exit(1)
			}
		}
		if err := sendCommand(*addr, cmd); err != nil {
			fmt.Fprintln(os.Stderr, "command failed:", err)
			os.Exit(1)
		}
	}
}

func confirm(prompt string) (bool, error) {
	var ok bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title(prompt).Affirmative("Yes").Negative("No").Value(&ok),
	))
	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}

func commandByName(name string) (admin.Command, bool) {
	switch name {
	case "status":
		return admin.CmdStatus, true
	case "version":
		return admin.CmdVersion, true
	case "reload":
		return admin.CmdReload, true
	case "stats":
		return admin.CmdStats, true
	case "xstats":
		return admin.CmdXStats, true
	case "reset":
		return admin.CmdReset, true
	case "exit":
		return admin.CmdExit, true
	default:
		return 0, false
	}
}

func sendCommand(addr string, cmd admin.Command) error {
	conn, err := net.DialTimeout("tcp", addr, 3*time.Second)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := admin.WriteRequest(conn, admin.Request{Cmd: cmd}); err != nil {
		return err
	}
	resp, err := admin.ReadResponse(conn)
	if err != nil {
		return err
	}
	if resp.Status != admin.StatusOK {
		return fmt.Errorf("server returned error: %s", resp.Payload)
	}
	if len(resp.Payload) > 0 {
		fmt.Println(string(resp.Payload))
	} else {
		fmt.Println("OK")
	}
	return nil
}

func probe(host string) error {
	pinger, err := probing.NewPinger(host)
	if err != nil {
		return err
	}
	pinger.Count = 4
	pinger.Timeout = 5 * time.Second
	pinger.OnRecv = func(pkt *probing.Packet) {
		fmt.Printf("%d bytes from %s: icmp_seq=%d time=%v\n", pkt.Nbytes, pkt.IPAddr, pkt.Seq, pkt.Rtt)
	}
	if err := pinger.Run(); err != nil {
		return err
	}
	stats := pinger.Statistics()
	fmt.Printf("%d packets transmitted, %d received, %.1f%% loss\n", stats.PacketsSent, stats.PacketsRecv, stats.PacketLoss)
	return nil
}

func configDump(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	out, err := cfg.DumpYAML()
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}

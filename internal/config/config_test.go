// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const validHCL = `
config {
  port "testport0" {
    ip "10.0.0.1" {
      vlan = 10
    }
    mtu = 1500
  }
  port "testport1" {
    ip "212.47.0.1" {
    }
  }
}

nat {
  add "rule" {
    a = "10.0.0.5"
    b = "212.47.0.5"
  }
}

rules {
  stmt "if" {
    cond    = "src_in_net"
    network = "10.0.0.0/24"
    then "nat_rewrite" {
      field = "src"
    }
    then "out" {
      port = "testport1"
      vlan = 0
    }
    else "drop" {
    }
  }
}
`

func TestLoadBytes_ValidConfig(t *testing.T) {
	cfg, err := LoadBytes("test.hcl", []byte(validHCL))
	require.NoError(t, err)
	require.Len(t, cfg.Ports, 2)
	require.Equal(t, "testport0", cfg.Ports[0].Name)
	require.Equal(t, 1500, cfg.Ports[0].MTU)
	require.NotEmpty(t, cfg.Ports[0].MAC)
	require.Equal(t, 1, cfg.NAT.Pairs())
	require.NotNil(t, cfg.Rules)
	require.False(t, cfg.Used())
}

func TestLoadBytes_DuplicateAddressRejected(t *testing.T) {
	bad := `
config {
  port "testport0" {
    ip "10.0.0.1" { }
    ip "10.0.0.1" { }
  }
}
`
	_, err := LoadBytes("test.hcl", []byte(bad))
	require.Error(t, err)
}

func TestLoadBytes_ReservedNATTargetRejected(t *testing.T) {
	bad := `
config {
  port "testport0" {
    ip "10.0.0.1" { }
  }
}
nat {
  add "rule" {
    a = "10.0.0.5"
    b = "0.0.0.0"
  }
}
`
	_, err := LoadBytes("test.hcl", []byte(bad))
	require.Error(t, err)
}

func TestLoadBytes_PortWithNoAddressRejected(t *testing.T) {
	bad := `
config {
  port "testport0" {
  }
}
`
	_, err := LoadBytes("test.hcl", []byte(bad))
	require.Error(t, err)
}

func TestLoadBytes_MalformedHCLDoesNotPanic(t *testing.T) {
	_, err := LoadBytes("test.hcl", []byte("config { this is not valid hcl"))
	require.Error(t, err)
}

func TestConfig_HasAddressRespectsPortAndVLAN(t *testing.T) {
	cfg, err := LoadBytes("test.hcl", []byte(validHCL))
	require.NoError(t, err)

	require.True(t, cfg.HasAddress(0, 10, ipv4ToUint32("10.0.0.1")))
	require.False(t, cfg.HasAddress(0, 0, ipv4ToUint32("10.0.0.1")), "bound only on vlan 10")
	require.True(t, cfg.HasAddress(1, 0, ipv4ToUint32("212.47.0.1")))
	require.False(t, cfg.HasAddress(5, 0, ipv4ToUint32("212.47.0.1")), "no such port")
}

func TestConfig_DumpYAML(t *testing.T) {
	cfg, err := LoadBytes("test.hcl", []byte(validHCL))
	require.NoError(t, err)

	out, err := cfg.DumpYAML()
	require.NoError(t, err)
	require.Contains(t, string(out), "testport0")
	require.Contains(t, string(out), "nat_pairs: 1")
}

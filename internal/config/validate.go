// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

package config

import (
	"fmt"
	"strings"
)

// ValidationError is one configuration validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Message) }

// ValidationErrors collects every failure found in one pass, so a
// malformed file is reported completely rather than one error at a time.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

func (e ValidationErrors) HasErrors() bool { return len(e) > 0 }

// validateSchema checks the parsed HCL tree against spec.md §4.I's
// loader contract before any lookup table or rule tree is built: every
// port referenced has at least one IP, and addresses are unique within a
// (port, vlan) pair. A malformed file must be rejected without mutating
// anything, so this runs entirely over the parse tree.
func validateSchema(f *fileSchema) ValidationErrors {
	var errs ValidationErrors

	if len(f.Configs) == 0 {
		errs = append(errs, ValidationError{"config", "at least one config block is required"})
		return errs
	}
	if len(f.Configs) > 1 {
		errs = append(errs, ValidationError{"config", "only one config block is permitted"})
	}

	type key struct {
		port string
		vlan int
		ip   string
	}
	seen := map[key]bool{}

	for _, cfg := range f.Configs {
		if len(cfg.Ports) == 0 {
			errs = append(errs, ValidationError{"config.port", "at least one port is required"})
		}
		for _, p := range cfg.Ports {
			if p.Name == "" {
				errs = append(errs, ValidationError{"config.port", "port name must not be empty"})
				continue
			}
			if len(p.IPs) == 0 {
				errs = append(errs, ValidationError{
					fmt.Sprintf("config.port[%s]", p.Name),
					"port must have at least one ip binding",
				})
			}
			for _, ip := range p.IPs {
				k := key{p.Name, ip.VLAN, ip.Address}
				if seen[k] {
					errs = append(errs, ValidationError{
						fmt.Sprintf("config.port[%s].ip[%s]", p.Name, ip.Address),
						fmt.Sprintf("duplicate address on vlan %d", ip.VLAN),
					})
				}
				seen[k] = true
				if !isValidIPv4(ip.Address) {
					errs = append(errs, ValidationError{
						fmt.Sprintf("config.port[%s].ip[%s]", p.Name, ip.Address),
						"not a valid IPv4 address",
					})
				}
			}
		}
	}

	for _, nb := range f.NATs {
		for _, r := range nb.Rules {
			if !isValidIPv4(r.A) || !isValidIPv4(r.B) {
				errs = append(errs, ValidationError{"nat.add", fmt.Sprintf("invalid pair (%s, %s)", r.A, r.B)})
			}
			if r.A == "0.0.0.0" || r.B == "0.0.0.0" {
				errs = append(errs, ValidationError{"nat.add", "0.0.0.0 is a reserved NAT target"})
			}
		}
	}

	return errs
}

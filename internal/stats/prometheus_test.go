// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

package stats

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestExporter_CollectReflectsAggregate(t *testing.T) {
	b0 := &Block{}
	b1 := &Block{}
	b0.DropNoRule.Add(3)
	b1.DropNoRule.Add(4)
	b0.DropTXNotSent.Add(1)

	exp := NewExporter([]*Block{b0, b1})

	count := testutil.CollectAndCount(exp)
	require.Equal(t, 7, count)

	expected := `
# HELP natgw_drop_no_rule_total Packets dropped by action_nat_rewrite because the NAT table has no entry for the address.
# TYPE natgw_drop_no_rule_total counter
natgw_drop_no_rule_total 7
`
	require.NoError(t, testutil.CollectAndCompare(exp, strings.NewReader(expected), "natgw_drop_no_rule_total"))
}

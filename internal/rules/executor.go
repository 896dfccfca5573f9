// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

package rules

// Execute walks the rule AST per spec.md §3/§4.F: leftmost, short
// circuiting, reentrant, and side-effect-free except through the
// action/condition callbacks. An empty tree is equivalent to an
// implicit drop — the caller releases the packet without incrementing
// any counter beyond it never having reached an `out` action.
func Execute(node *Node, pkt *Packet, ctx Context) Verdict {
	if node == nil {
		return Continue
	}
	switch node.Tag {
	case TagAction:
		return node.Action(pkt, ctx, node.Param)

	case TagSeq:
		if v := Execute(node.Left, pkt, ctx); v == Terminal {
			return Terminal
		}
		return Execute(node.Right, pkt, ctx)

	case TagIf:
		matched, v := evalCond(node.Left, pkt, ctx)
		if matched {
			return v
		}
		return Execute(node.Right, pkt, ctx)

	case TagCond:
		matched, v := evalCond(node, pkt, ctx)
		if matched {
			return v
		}
		return Continue

	case TagAnd, TagOr:
		// AND/OR only compose predicates (see WrapPredicate); reached
		// directly here only if someone builds a tree with a bare AND/OR
		// body, which carries no action of its own.
		evalPredicate(node, pkt)
		return Continue

	default:
		return Continue
	}
}

// evalCond evaluates a COND node's predicate and, if true, executes its
// body, reporting (matched, verdict).
func evalCond(node *Node, pkt *Packet, ctx Context) (bool, Verdict) {
	if node == nil || node.Tag != TagCond {
		return false, Continue
	}
	if !node.Cond(pkt, node.Param) {
		return false, Continue
	}
	return true, Execute(node.Body, pkt, ctx)
}

// evalPredicate evaluates a boolean composition over COND/AND/OR nodes,
// short-circuiting. COND nodes contribute only their own predicate here
// — any Body they carry is ignored, since a COND used as an AND/OR
// operand is acting purely as a predicate leaf.
func evalPredicate(node *Node, pkt *Packet) bool {
	if node == nil {
		return true
	}
	switch node.Tag {
	case TagCond:
		return node.Cond(pkt, node.Param)
	case TagAnd:
		return evalPredicate(node.Left, pkt) && evalPredicate(node.Right, pkt)
	case TagOr:
		return evalPredicate(node.Left, pkt) || evalPredicate(node.Right, pkt)
	default:
		return false
	}
}

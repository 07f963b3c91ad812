package query

import (
	"reflect"
	"sort"
)

// Eval evaluates the compiled expression against data. Evaluation never
// fails: unresolvable paths produce nil, which callers render as an empty
// result.
func (e *Expression) Eval(data any) any {
	return eval(e.root, data)
}

func eval(n node, value any) any {
	switch n := n.(type) {
	case currentNode:
		return value
	case literalNode:
		return n.value
	case fieldNode:
		m, ok := value.(map[string]any)
		if !ok {
			return nil
		}
		return m[n.name]
	case indexNode:
		arr, ok := value.([]any)
		if !ok {
			return nil
		}
		idx := n.index
		if idx < 0 {
			idx += len(arr)
		}
		if idx < 0 || idx >= len(arr) {
			return nil
		}
		return arr[idx]
	case subNode:
		left := eval(n.left, value)
		if left == nil {
			return nil
		}
		return eval(n.right, left)
	case pipeNode:
		return eval(n.right, eval(n.left, value))
	case projectNode:
		return evalProjection(n, value)
	case filterNode:
		return evalFilter(n, value)
	case flattenNode:
		return flatten(eval(n.child, value))
	case compareNode:
		return compare(n.op, eval(n.left, value), eval(n.right, value))
	case andNode:
		left := eval(n.left, value)
		if !isTruthy(left) {
			return left
		}
		return eval(n.right, value)
	case orNode:
		left := eval(n.left, value)
		if isTruthy(left) {
			return left
		}
		return eval(n.right, value)
	case notNode:
		return !isTruthy(eval(n.child, value))
	case multiListNode:
		if value == nil {
			return nil
		}
		out := make([]any, 0, len(n.elems))
		for _, elem := range n.elems {
			out = append(out, eval(elem, value))
		}
		return out
	case multiHashNode:
		if value == nil {
			return nil
		}
		out := make(map[string]any, len(n.keys))
		for i, key := range n.keys {
			out[key] = eval(n.elems[i], value)
		}
		return out
	default:
		return nil
	}
}

func evalProjection(n projectNode, value any) any {
	left := eval(n.left, value)
	var elems []any
	if n.object {
		m, ok := left.(map[string]any)
		if !ok {
			return nil
		}
		// Iterate keys sorted so projections over objects render
		// deterministically.
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			elems = append(elems, m[k])
		}
	} else {
		arr, ok := left.([]any)
		if !ok {
			return nil
		}
		elems = arr
	}
	collected := []any{}
	for _, elem := range elems {
		if r := eval(n.right, elem); r != nil {
			collected = append(collected, r)
		}
	}
	return collected
}

func evalFilter(n filterNode, value any) any {
	left := eval(n.left, value)
	arr, ok := left.([]any)
	if !ok {
		return nil
	}
	collected := []any{}
	for _, elem := range arr {
		if !isTruthy(eval(n.cond, elem)) {
			continue
		}
		if r := eval(n.right, elem); r != nil {
			collected = append(collected, r)
		}
	}
	return collected
}

// flatten splices nested arrays one level deep, dropping nulls.
func flatten(value any) any {
	arr, ok := value.([]any)
	if !ok {
		return nil
	}
	out := []any{}
	for _, elem := range arr {
		if nested, ok := elem.([]any); ok {
			out = append(out, nested...)
			continue
		}
		if elem != nil {
			out = append(out, elem)
		}
	}
	return out
}

// compare implements == and != over any JSON value and the ordering
// operators over numbers only. An ordering comparison against a non-number
// yields nil, which is falsy.
func compare(op tokenType, left, right any) any {
	switch op {
	case tokEQ:
		return reflect.DeepEqual(left, right)
	case tokNE:
		return !reflect.DeepEqual(left, right)
	}
	lf, lok := left.(float64)
	rf, rok := right.(float64)
	if !lok || !rok {
		return nil
	}
	switch op {
	case tokLT:
		return lf < rf
	case tokLTE:
		return lf <= rf
	case tokGT:
		return lf > rf
	case tokGTE:
		return lf >= rf
	}
	return nil
}

// isTruthy follows the source language: null, false, empty strings, empty
// arrays and empty objects are false; everything else, including zero, is
// true.
func isTruthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

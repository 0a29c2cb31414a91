package main

import (
	"fmt"
	"strings"

	"github.com/hivekv/hivekv/wire"
)

func printStatus(resp wire.CommandResponse) error {
	if resp.Status != 200 {
		return fmt.Errorf("status=%d: %s", resp.Status, resp.Message)
	}
	fmt.Println("ok")
	return nil
}

func printValues(resp wire.CommandResponse) error {
	if resp.Status != 200 {
		return fmt.Errorf("status=%d: %s", resp.Status, resp.Message)
	}
	for _, v := range resp.Values {
		fmt.Println(formatValue(v))
	}
	return nil
}

func printPairs(resp wire.CommandResponse) error {
	if resp.Status != 200 {
		return fmt.Errorf("status=%d: %s", resp.Status, resp.Message)
	}
	for _, p := range resp.Pairs {
		fmt.Printf("%s=%s\n", p.Key, formatValue(p.Value))
	}
	return nil
}

func formatValue(v wire.Value) string {
	switch v.Kind {
	case wire.KindNone:
		return "<none>"
	case wire.KindString:
		return v.Str
	case wire.KindBytes:
		return string(v.Bytes)
	case wire.KindInt64:
		return fmt.Sprintf("%d", v.Int)
	case wire.KindFloat64:
		return fmt.Sprintf("%g", v.Float)
	case wire.KindBool:
		return fmt.Sprintf("%t", v.Bool)
	default:
		return "<unknown>"
	}
}

// parsePairs parses "key=value" arguments for hmset.
func parsePairs(args []string) ([]wire.KvPair, error) {
	pairs := make([]wire.KvPair, 0, len(args))
	for _, arg := range args {
		parts := strings.SplitN(arg, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid key=value pair %q", arg)
		}
		pairs = append(pairs, wire.KvPair{Key: parts[0], Value: wire.String(parts[1])})
	}
	return pairs, nil
}

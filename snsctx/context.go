// Package snsctx carries per-invocation settings through the context.
package snsctx

import (
	"context"
	"encoding/hex"
	"log/slog"
)

type ctxIndex int

const ctxIndexVerbose ctxIndex = iota

func IsVerbose(ctx context.Context) bool {
	verbose, _ := ctx.Value(ctxIndexVerbose).(bool)
	return verbose
}

func SetVerbose(ctx context.Context, value bool) context.Context {
	return context.WithValue(ctx, ctxIndexVerbose, value)
}

// Trace logs a hex dump of a bus transaction when verbose mode is on.
func Trace(ctx context.Context, op string, address byte, data []byte) {
	if !IsVerbose(ctx) {
		return
	}
	slog.DebugContext(ctx, "bus transaction", "op", op, "addr", slog.StringValue(hex.EncodeToString([]byte{address})), "len", len(data), "dump", hex.Dump(data))
}

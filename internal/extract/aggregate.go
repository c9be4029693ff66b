package extract

import (
	"context"
	"fmt"
	"strings"

	"pagecrafter/internal/port"
)

// Aggregate drains stream into a single string, preserving arrival order.
// A stream error or a cancelled ctx aborts aggregation; no partial text is
// returned in either case.
func Aggregate(ctx context.Context, stream port.FragmentStream) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf strings.Builder
	for frag, err := range stream {
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			return "", fmt.Errorf("extract.Aggregate: %w", err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		buf.WriteString(frag.Text)
	}
	return buf.String(), nil
}

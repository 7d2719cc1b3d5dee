package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// callLoggingMiddleware records one debug line per answered request: the
// method, the tool invoked for tools/call, the caller, the elapsed time and
// the encoded size of the result. Arguments and payloads are not logged.
func callLoggingMiddleware(logger *slog.Logger, direction string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if logger == nil || strings.HasPrefix(method, "notifications/") || !logger.Enabled(ctx, slog.LevelDebug) {
				return next(ctx, method, req)
			}

			start := time.Now()
			result, err := next(ctx, method, req)

			attrs := []slog.Attr{
				slog.String("direction", direction),
				slog.String("method", method),
				slog.String("user_id", getUserID(ctx)),
				slog.Duration("elapsed", time.Since(start)),
			}
			if method == "tools/call" {
				attrs = append(attrs, slog.String("tool", toolName(req)))
			}
			attrs = append(attrs, slog.Int("result_bytes", encodedSize(result)))
			if res, ok := result.(*sdkmcp.CallToolResult); ok && res != nil && res.IsError {
				attrs = append(attrs, slog.Bool("tool_error", true))
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
			}
			logger.LogAttrs(ctx, slog.LevelDebug, "mcp call", attrs...)
			return result, err
		}
	}
}

// toolName reads the tool name from either the raw or the decoded params.
func toolName(req sdkmcp.Request) (name string) {
	if req == nil {
		return ""
	}
	// GetParams panics on a typed nil request.
	defer func() {
		if recover() != nil {
			name = ""
		}
	}()
	data, err := json.Marshal(req.GetParams())
	if err != nil {
		return ""
	}
	var p struct {
		Name string `json:"name"`
	}
	if json.Unmarshal(data, &p) != nil {
		return ""
	}
	return p.Name
}

func encodedSize(result sdkmcp.Result) int {
	if result == nil {
		return 0
	}
	data, err := json.Marshal(result)
	if err != nil {
		return 0
	}
	return len(data)
}

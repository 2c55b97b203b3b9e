package pubstatic

import (
	"log/slog"
	"time"
)

// Canonical log field names.
const (
	KeyPath       = "path"
	KeySlug       = "slug"
	KeyTemplate   = "template"
	KeyCategory   = "category"
	KeyNodeID     = "node_id"
	KeyError      = "error"
	KeyDurationMS = "duration_ms"
	KeyCount      = "count"
)

func durationAttr(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}

func errorAttr(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

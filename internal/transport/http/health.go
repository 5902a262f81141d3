package http

import (
	"context"
	stdhttp "net/http"
	"sort"
	"strings"
	"time"
)

// Probe checks one dependency.
type Probe func(ctx context.Context) error

const probeTimeout = 2 * time.Second

// HandleHealth reports liveness. With probes it answers 503 and names the
// failing dependencies when any probe fails.
func HandleHealth(probes map[string]Probe) stdhttp.HandlerFunc {
	names := make([]string, 0, len(probes))
	for name := range probes {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		var failed []string
		for _, name := range names {
			if err := probes[name](ctx); err != nil {
				failed = append(failed, name)
			}
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if len(failed) > 0 {
			w.WriteHeader(stdhttp.StatusServiceUnavailable)
			_, _ = w.Write([]byte("unavailable: " + strings.Join(failed, ",")))
			return
		}
		w.WriteHeader(stdhttp.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

package matching

import (
	"go.uber.org/fx"

	"github.com/tradsys/matchcore/internal/audit"
)

// Module wires a *Router into an fx application. It depends on an
// audit.Sink and takes ownership of the process-wide liveness map and
// wall-clock for the lifetime of the app.
var Module = fx.Module("matching",
	fx.Provide(func(sink audit.Sink) *Router {
		return NewRouter(sink, nil)
	}),
)

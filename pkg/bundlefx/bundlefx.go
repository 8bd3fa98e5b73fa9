// Package bundlefx groups the cross-cutting middleware modules so server
// wiring pulls them in as one unit.
package bundlefx

import (
	"go.uber.org/fx"

	"github.com/ursais/web-api/pkg/middleware/auth"
	"github.com/ursais/web-api/pkg/middleware/logger"
	"github.com/ursais/web-api/pkg/middleware/metrics"
)

var Module = fx.Options(
	auth.Module,
	logger.Module,
	metrics.Module,
)

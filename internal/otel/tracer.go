package otel

import (
	"go.opentelemetry.io/otel"

	"github.com/ofblood/website/internal/common"
)

var Tracer = otel.Tracer(common.AppWebsite)

package engine

import (
	"context"
	"fmt"

	"github.com/cloudmap/cloudmap/internal/models"
)

// PlatformEngine routes a scan to the engine registered for its platform.
type PlatformEngine struct {
	engines map[models.Platform]Engine
}

// NewPlatformEngine returns a PlatformEngine dispatching to aws and az.
// Either may be nil when that platform is not wired.
func NewPlatformEngine(aws, az Engine) *PlatformEngine {
	engines := make(map[models.Platform]Engine, 2)
	if aws != nil {
		engines[models.PlatformAWS] = aws
	}
	if az != nil {
		engines[models.PlatformAzure] = az
	}
	return &PlatformEngine{engines: engines}
}

// RunScan implements Engine. opts.Platform is required.
func (p *PlatformEngine) RunScan(ctx context.Context, opts ScanOptions) (*models.FindingsReport, error) {
	eng, ok := p.engines[opts.Platform]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownPlatform, opts.Platform)
	}
	return eng.RunScan(ctx, opts)
}

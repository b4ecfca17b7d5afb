package interfaces

import (
	"context"

	"github.com/ternarybob/stocksense/internal/models"
)

// AnalysisEngine produces a full multi-stage analysis for a ticker. The
// orchestrator treats it as an external collaborator: invocation is
// synchronous and failures surface as models.ErrUpstreamAnalysis.
type AnalysisEngine interface {
	Analyze(ctx context.Context, ticker string) (*models.AnalysisResult, error)
}

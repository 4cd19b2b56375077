package router

import (
	"hostel-sync-service/internal/usecase"
	"hostel-sync-service/pkg/logger"
)

// SubjectRouter routes emails to pipelines by sender and subject
type SubjectRouter struct {
	pipelines []usecase.Pipeline
	logger    logger.Logger
}

// NewSubjectRouter creates a new subject router
func NewSubjectRouter(logger logger.Logger) *SubjectRouter {
	return &SubjectRouter{
		pipelines: make([]usecase.Pipeline, 0),
		logger:    logger,
	}
}

var _ usecase.SubjectRouter = (*SubjectRouter)(nil)

// Register registers a pipeline. Pipelines are consulted in registration
// order.
func (r *SubjectRouter) Register(pipeline usecase.Pipeline) {
	r.pipelines = append(r.pipelines, pipeline)
	r.logger.Info("Registered pipeline", "purpose", pipeline.Purpose().String())
}

// GetHandler returns the first pipeline accepting the email, or nil
func (r *SubjectRouter) GetHandler(from, subject string) usecase.Pipeline {
	for _, pipeline := range r.pipelines {
		if pipeline.CanHandle(from, subject) {
			return pipeline
		}
	}
	r.logger.Debug("No pipeline for email", "from", from, "subject", subject)
	return nil
}

// Pipelines returns the registered pipelines
func (r *SubjectRouter) Pipelines() []usecase.Pipeline {
	return r.pipelines
}

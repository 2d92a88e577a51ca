package generationlookup

import (
	"context"
	"fmt"
	"time"

	"solar-roi-workers/internal/common/config"
	apperrors "solar-roi-workers/internal/common/errors"
	"solar-roi-workers/internal/common/logger"
	"solar-roi-workers/internal/common/metrics"
	"solar-roi-workers/internal/common/observability"
	"solar-roi-workers/internal/common/validation"
	"solar-roi-workers/internal/models"
	"solar-roi-workers/internal/session"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType   = "solar.generation.lookup"
	WorkerName = "generation-lookup"
)

type Handler struct {
	config       *Config
	logger       logger.Logger
	service      *Service
	errorHandler *apperrors.ErrorHandler
	obs          *observability.Observability
}

type HandlerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
	Logger        logger.Logger
	Lookup        GenerationLookup
	Sessions      *session.Manager
	Observability *observability.Observability
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", WorkerName, err)
	}
	if opts.Lookup == nil {
		return nil, fmt.Errorf("%s requires a generation lookup client", WorkerName)
	}
	if opts.Sessions == nil {
		return nil, fmt.Errorf("%s requires a session manager", WorkerName)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.With(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config: workerConfig,
		logger: log,
		service: NewService(ServiceDependencies{
			Lookup:   opts.Lookup,
			Sessions: opts.Sessions,
			Logger:   log,
		}),
		errorHandler: apperrors.NewErrorHandler(log),
		obs:          opts.Observability,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := h.parseInput(job)
	if err != nil {
		h.failJob(ctx, client, job, err, startTime)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.failJob(ctx, client, job, err, startTime)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	h.obs.RecordJobProcessed(ctx, TaskType, "completed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(startTime), "completed")
}

// Execute runs the lookup outside the process engine.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.service.Execute(ctx, input)
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, apperrors.NewInputParsingError(err)
	}
	return parseVariables(variables)
}

// parseVariables fills optional site fields from the calculator defaults.
func parseVariables(variables map[string]interface{}) (*Input, error) {
	result := validation.ValidateInput(variables, GetInputSchema())
	if !result.Valid {
		return nil, apperrors.NewSchemaValidationError(fmt.Sprintf("Validation errors: %v", result.GetErrorMessages()))
	}

	site := models.DefaultSiteParameters()
	site.SystemCapacity = variables["system_capacity"].(float64)
	site.Latitude = variables["lat"].(float64)
	site.Longitude = variables["lon"].(float64)

	if v, ok := variables["module_type"].(float64); ok {
		site.ModuleType = int(v)
	}
	if v, ok := variables["losses"].(float64); ok {
		site.Losses = v
	}
	if v, ok := variables["array_type"].(float64); ok {
		site.ArrayType = int(v)
	}
	if v, ok := variables["tilt"].(float64); ok {
		site.Tilt = v
	}
	if v, ok := variables["azimuth"].(float64); ok {
		site.Azimuth = v
	}

	input := &Input{Site: site}
	if id, ok := variables["sessionId"].(string); ok {
		input.SessionID = id
	}
	return input, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromMap(output.ToVariables())
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	if _, err := request.Send(ctx); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":    job.GetKey(),
		"sessionId": output.SessionID,
		"acAnnual":  output.ACAnnual,
	})
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error, startTime time.Time) {
	stdErr := apperrors.ToStandardError(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.obs.RecordJobProcessed(ctx, TaskType, "failed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(startTime), "failed")

	// the job context may have expired with the failure itself
	reportCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	h.errorHandler.HandleJobError(reportCtx, client, job, err)
}

func (h *Handler) GetTaskType() string {
	return TaskType
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}

func (h *Handler) GetConfig() *Config {
	return h.config
}

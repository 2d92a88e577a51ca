package roicalculate

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
	TaskType   = "solar.roi.calculate"
	WorkerName = "roi-calculate"
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
	Analyzer      session.Analyzer
	Sessions      *session.Manager
	Observability *observability.Observability
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", WorkerName, err)
	}
	if opts.Analyzer == nil {
		return nil, fmt.Errorf("%s requires an analyzer", WorkerName)
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
			Analyzer: opts.Analyzer,
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
		h.failJob(client, job, err, startTime)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.failJob(client, job, err, startTime)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	h.obs.RecordJobProcessed(ctx, TaskType, "completed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(startTime), "completed")
	h.obs.RecordAnalysis(ctx, output.Analysis.Breakeven.Defined)
}

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

// parseVariables requires a session id or the capacity and generation pair.
func parseVariables(variables map[string]interface{}) (*Input, error) {
	result := validation.ValidateInput(variables, GetInputSchema())
	if !result.Valid {
		return nil, apperrors.NewSchemaValidationError(fmt.Sprintf("Validation errors: %v", result.GetErrorMessages()))
	}

	input := &Input{
		Financials: models.FinancialParameters{
			UpfrontCost:       variables["upfront_cost"].(float64),
			AnnualConsumption: variables["annual_consumption"].(float64),
			ElectricityRate:   variables["electricity_rate"].(float64),
		},
	}

	if id, ok := variables["sessionId"].(string); ok {
		input.SessionID = id
		return input, nil
	}

	capacity, hasCapacity := variables["system_capacity"].(float64)
	generation, hasGeneration := variables["annual_generation"].(float64)
	if !hasCapacity || !hasGeneration {
		return nil, apperrors.NewSchemaValidationError("Validation errors: sessionId or both system_capacity and annual_generation are required")
	}
	input.SystemCapacity = capacity
	input.AnnualGeneration = generation
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
		"jobKey":        job.GetKey(),
		"sessionId":     output.SessionID,
		"profit25Years": output.Analysis.Profit25Years,
	})
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error, startTime time.Time) {
	reportCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stdErr := apperrors.ToStandardError(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.obs.RecordJobProcessed(reportCtx, TaskType, "failed")
	h.obs.RecordJobDuration(reportCtx, TaskType, time.Since(startTime), "failed")

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

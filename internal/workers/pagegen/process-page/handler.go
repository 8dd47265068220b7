// internal/workers/pagegen/process-page/handler.go
package processpage

import (
	"context"
	"fmt"

	"pagegen-workers/internal/common/camunda"
	"pagegen-workers/internal/common/errors"
	"pagegen-workers/internal/common/logger"
	"pagegen-workers/internal/common/validation"
	"pagegen-workers/internal/pipeline"
	"pagegen-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "page.process"

// Processor is the part of the pipeline this worker drives.
type Processor interface {
	Process(ctx context.Context, prompt, callerID string) (*pipeline.Result, error)
}

type Handler struct {
	config       *Config
	processor    Processor
	schema       *validation.Schema
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, processor Processor, log logger.Logger) (*Handler, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}

	reg, err := registry.Default()
	if err != nil {
		return nil, err
	}
	raw, err := reg.InputSchema(TaskType)
	if err != nil {
		return nil, err
	}
	schema, err := validation.Compile(raw)
	if err != nil {
		return nil, err
	}

	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		processor:    processor,
		schema:       schema,
		errorHandler: errors.NewErrorHandler(log, config.MaxRetries),
		logger:       log,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	output, err := h.run(ctx, job)

	sendCtx, cancelSend := camunda.CommandContext(ctx)
	defer cancelSend()

	if err != nil {
		h.errorHandler.HandleJobError(sendCtx, client, job, err)
		return
	}
	h.completeJob(sendCtx, client, job, output)
}

func (h *Handler) run(ctx context.Context, job entities.Job) (*Output, error) {
	input, err := h.parseInput(job)
	if err != nil {
		return nil, err
	}
	return h.Execute(ctx, input)
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInputValidationError(fmt.Sprintf("parse job variables: %v", err))
	}

	result, err := h.schema.Validate(variables)
	if err != nil {
		return nil, errors.NewInputValidationError(err.Error())
	}
	if !result.Valid {
		return nil, errors.NewInputValidationError(result.Summary())
	}

	input := &Input{Prompt: variables["prompt"].(string)}
	if caller, ok := variables["callerId"].(string); ok {
		input.CallerID = caller
	}
	return input, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	res, err := h.processor.Process(ctx, input.Prompt, input.CallerID)
	if err != nil {
		return nil, err
	}

	out := &Output{
		RequestID:    res.RequestID,
		TemplateID:   res.TemplateID,
		Tier:         res.Tier,
		MatchScore:   res.MatchScore,
		Requirement:  res.Requirement,
		Narrative:    res.Narrative,
		Enhanced:     res.Enhanced,
		ProviderUsed: res.ProviderUsed,
		ArtifactPath: res.ArtifactPath,
		HTMLLength:   len(res.HTML),
		Degraded:     res.Degraded,
	}
	if res.ArtifactPath == "" {
		out.HTML = res.HTML
	}
	return out, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.GetKey()).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}
	err = camunda.Retry(ctx, camunda.DefaultBackoff, "complete job", func(ctx context.Context) error {
		_, err := cmd.Send(ctx)
		return err
	})
	if err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":       job.GetKey(),
		"requestId":    output.RequestID,
		"templateId":   output.TemplateID,
		"enhanced":     output.Enhanced,
		"providerUsed": output.ProviderUsed,
	})
}

// internal/workers/pagegen/match-template/handler.go
package matchtemplate

import (
	"context"
	"fmt"
	"strings"

	"pagegen-workers/internal/common/camunda"
	"pagegen-workers/internal/common/errors"
	"pagegen-workers/internal/common/logger"
	"pagegen-workers/internal/common/validation"
	"pagegen-workers/internal/models"
	"pagegen-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "page.match-template"

// Matcher analyzes a prompt and picks the best catalog template.
type Matcher interface {
	Match(prompt string) (models.RequirementRecord, models.MatchResult, string, error)
}

type Handler struct {
	config       *Config
	matcher      Matcher
	schema       *validation.Schema
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, matcher Matcher, log logger.Logger) (*Handler, error) {
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
		matcher:      matcher,
		schema:       schema,
		errorHandler: errors.NewErrorHandler(log, config.MaxRetries),
		logger:       log,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	output, err := h.run(job)

	sendCtx, cancelSend := camunda.CommandContext(context.Background())
	defer cancelSend()

	if err != nil {
		h.errorHandler.HandleJobError(sendCtx, client, job, err)
		return
	}

	cmd, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err.Error()})
		return
	}
	err = camunda.Retry(sendCtx, camunda.DefaultBackoff, "complete job", func(ctx context.Context) error {
		_, err := cmd.Send(ctx)
		return err
	})
	if err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Handler) run(job entities.Job) (*Output, error) {
	input, err := h.parseInput(job)
	if err != nil {
		return nil, err
	}
	return h.Execute(input)
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
	return &Input{Prompt: variables["prompt"].(string)}, nil
}

func (h *Handler) Execute(input *Input) (*Output, error) {
	if strings.TrimSpace(input.Prompt) == "" {
		return nil, errors.NewPromptRequiredError()
	}
	req, match, namespace, err := h.matcher.Match(input.Prompt)
	if err != nil {
		return nil, err
	}
	return &Output{
		TemplateID:  match.TemplateID,
		Tier:        match.Tier,
		MatchScore:  match.Score,
		Breakdown:   match.Breakdown,
		Description: match.Entry.Description,
		Namespace:   namespace,
		Requirement: req,
	}, nil
}

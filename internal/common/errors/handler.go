// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"

	"pagegen-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// ErrorHandler turns a failed job into either a fail command, which lets
// Zeebe redeliver it, or a thrown BPMN error the process model can catch.
type ErrorHandler struct {
	logger     Logger
	maxRetries int
}

// NewErrorHandler caps redeliveries at maxRetries on top of the per-code
// policy in GetRetryCount. Zero leaves the policy alone.
func NewErrorHandler(logger Logger, maxRetries int) *ErrorHandler {
	return &ErrorHandler{logger: logger, maxRetries: maxRetries}
}

// Disposition is the outcome chosen for one failed job.
type Disposition struct {
	Throw    bool
	Retries  int
	Standard *StandardError
	BPMN     *BPMNError
}

// Resolve decides what to send for err without touching the broker.
// A retry consumes one unit of the job's remaining budget; once it is
// spent the error is thrown.
func (h *ErrorHandler) Resolve(job entities.Job, err error) Disposition {
	stdErr, ok := AsStandardError(err)
	if !ok {
		stdErr = NewInternalError(err)
	}
	bpmnErr := ConvertToBPMNError(stdErr)

	allowed := bpmnErr.Retries
	if h.maxRetries > 0 && allowed > h.maxRetries {
		allowed = h.maxRetries
	}
	remaining := int(job.Retries) - 1
	if remaining > allowed {
		remaining = allowed
	}

	if allowed == 0 || remaining <= 0 {
		return Disposition{Throw: true, Standard: stdErr, BPMN: bpmnErr}
	}
	return Disposition{Retries: remaining, Standard: stdErr, BPMN: bpmnErr}
}

// HandleJobError resolves err and reports it to the broker.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) Disposition {
	d := h.Resolve(job, err)
	h.logError(job, d)
	metrics.WorkerJobsFailed.WithLabelValues(job.Type, d.BPMN.Code).Inc()

	vars, marshalErr := json.Marshal(d.BPMN.ToErrorVariables())
	if marshalErr != nil {
		vars = nil
	}

	var sendErr error
	if d.Throw {
		sendErr = h.throw(ctx, client, job, d.BPMN, vars)
	} else {
		sendErr = h.fail(ctx, client, job, d, vars)
	}
	if sendErr != nil {
		h.logger.Error("could not report job failure", map[string]interface{}{
			"jobKey": job.Key,
			"throw":  d.Throw,
			"error":  sendErr.Error(),
		})
	}
	return d
}

func (h *ErrorHandler) fail(ctx context.Context, client worker.JobClient, job entities.Job, d Disposition, vars []byte) error {
	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(int32(d.Retries)).
		ErrorMessage(d.BPMN.Message)

	if len(vars) > 0 {
		if withVars, err := cmd.VariablesFromString(string(vars)); err == nil {
			_, err = withVars.Send(ctx)
			return err
		}
	}
	_, err := cmd.Send(ctx)
	return err
}

func (h *ErrorHandler) throw(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError, vars []byte) error {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	if len(vars) > 0 {
		if withVars, err := cmd.VariablesFromString(string(vars)); err == nil {
			_, err = withVars.Send(ctx)
			return err
		}
	}
	_, err := cmd.Send(ctx)
	return err
}

func (h *ErrorHandler) logError(job entities.Job, d Disposition) {
	fields := map[string]interface{}{
		"jobKey":             job.Key,
		"jobType":            job.Type,
		"processInstanceKey": job.ProcessInstanceKey,
		"errorCode":          string(d.Standard.Code),
		"bpmnErrorCode":      d.BPMN.Code,
		"category":           GetErrorCategory(d.Standard.Code),
		"message":            d.Standard.Message,
		"details":            d.Standard.Details,
	}
	if d.Throw {
		h.logger.Error("job failed, throwing BPMN error", fields)
		return
	}
	fields["retriesLeft"] = d.Retries
	h.logger.Warn("job failed, will be retried", fields)
}

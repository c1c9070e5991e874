package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"BizPulse/internal/domain/models"
	domrepo "BizPulse/internal/domain/repository"
	pkgkafka "BizPulse/pkg/kafka"
	applogger "BizPulse/pkg/logger"
)

// RiskCommandsHandler applies risk commands consumed from Kafka.
// Malformed commands are reported with pkgkafka.Invalid and dead-lettered without retry;
// other errors are retried by the consumer.
type RiskCommandsHandler struct {
	topic    string
	manager  *RiskManager
	validate *validator.Validate
	metrics  domrepo.Metrics
	logger   *applogger.Logger
}

var _ pkgkafka.MessageHandler = (*RiskCommandsHandler)(nil)

func NewRiskCommandsHandler(topic string, manager *RiskManager, metrics domrepo.Metrics, logger *applogger.Logger) *RiskCommandsHandler {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &RiskCommandsHandler{
		topic:    topic,
		manager:  manager,
		validate: validator.New(),
		metrics:  metrics,
		logger:   logger,
	}
}

func (h *RiskCommandsHandler) Topic() string { return h.topic }

func (h *RiskCommandsHandler) Handle(ctx context.Context, b []byte) error {
	var cmd models.RiskCommand
	if err := json.Unmarshal(b, &cmd); err != nil {
		h.metrics.RecordError("command_decode")
		return pkgkafka.Invalid(fmt.Errorf("decode risk command: %w", err))
	}
	if err := h.validate.StructCtx(ctx, cmd); err != nil {
		h.metrics.RecordError("command_invalid")
		return pkgkafka.Invalid(fmt.Errorf("invalid risk command: %w", err))
	}

	var (
		affected []models.Risk
		err      error
	)
	switch cmd.Command {
	case models.CommandGenerate:
		affected, err = h.manager.GenerateAndStore(ctx)
	case models.CommandResolve:
		affected, err = h.manager.Resolve(ctx, cmd.RiskID, cmd.Reason)
	case models.CommandAutoResolve:
		maxAge := DefaultMaxAgeHours
		if cmd.MaxAgeHours != nil {
			maxAge = *cmd.MaxAgeHours
		}
		affected, err = h.manager.AutoResolveStale(ctx, maxAge)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.Command, err)
	}
	h.logger.Debug("risk command applied",
		applogger.String("command", cmd.Command),
		applogger.Int("affected", len(affected)),
		applogger.String("trace_id", pkgkafka.TraceID(ctx)),
	)
	return nil
}

package courier

import (
	"context"

	"github.com/krew-solutions/courier-go/courier/dedup"
	"github.com/krew-solutions/courier-go/courier/transport"
)

// HostConfig configures an activity host.
type HostConfig struct {
	Broker transport.Broker
	Dedup  dedup.Store
	Host   HostInfo
	Logger Logger
}

// ActivityHost binds one activity registration to the transport. It
// consumes routing slips from the registration's execute and compensate
// addresses and runs the executor or compensator for each, one hop at a
// time. Hops are sequential per host; the slip itself carries all state.
type ActivityHost struct {
	registration Registration
	broker       transport.Broker
	executor     *Executor
	compensator  *Compensator
	logger       Logger
}

// NewActivityHost creates a host for the given registration.
func NewActivityHost(reg Registration, cfg HostConfig) *ActivityHost {
	logger := cfg.Logger
	if logger == nil {
		logger = defaultLogger()
	}

	h := &ActivityHost{
		registration: reg,
		broker:       cfg.Broker,
		logger:       logger,
	}

	h.executor = NewExecutor(reg.NewExecute, ExecutorConfig{
		ActivityName:      reg.Name,
		CompensateAddress: reg.CompensateAddress,
		Sender:            cfg.Broker,
		Publisher:         cfg.Broker,
		Dedup:             cfg.Dedup,
		Host:              cfg.Host,
		Logger:            logger,
	})

	if reg.NewCompensate != nil {
		h.compensator = NewCompensator(reg.NewCompensate, CompensatorConfig{
			ActivityName: reg.Name,
			Sender:       cfg.Broker,
			Publisher:    cfg.Broker,
			Dedup:        cfg.Dedup,
			Host:         cfg.Host,
			Logger:       logger,
		})
	}

	return h
}

// Run consumes slips from the host's addresses until the context is
// canceled. Handler failures are logged and do not stop the host; the
// surrounding transport's redelivery applies.
func (h *ActivityHost) Run(ctx context.Context) error {
	execute := h.broker.Receive(ctx, h.registration.ExecuteAddress)

	var compensate <-chan *transport.Envelope
	if h.compensator != nil {
		compensate = h.broker.Receive(ctx, h.registration.CompensateAddress)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case env, ok := <-execute:
			if !ok {
				return nil
			}
			h.handleExecute(ctx, env)

		case env, ok := <-compensate:
			if !ok {
				compensate = nil
				continue
			}
			h.handleCompensate(ctx, env)
		}
	}
}

func (h *ActivityHost) handleExecute(ctx context.Context, env *transport.Envelope) {
	var msg ExecuteMessage
	if err := env.Bind(&msg); err != nil {
		h.logger.Error("malformed execute message",
			"activity", h.registration.Name,
			"messageId", env.MessageID,
			"error", err)
		return
	}
	if err := h.executor.Execute(ctx, &msg); err != nil {
		h.logger.Error("execute hop failed",
			"activity", h.registration.Name,
			"trackingNumber", msg.RoutingSlip.TrackingNumber,
			"error", err)
	}
}

func (h *ActivityHost) handleCompensate(ctx context.Context, env *transport.Envelope) {
	var msg CompensateMessage
	if err := env.Bind(&msg); err != nil {
		h.logger.Error("malformed compensate message",
			"activity", h.registration.Name,
			"messageId", env.MessageID,
			"error", err)
		return
	}
	if err := h.compensator.Compensate(ctx, &msg); err != nil {
		h.logger.Error("compensate hop failed",
			"activity", h.registration.Name,
			"trackingNumber", msg.RoutingSlip.TrackingNumber,
			"error", err)
	}
}

// Package payment wraps the external payment gateway. The gateway here is
// simulated, but callers see the same surface a real integration would
// expose: a charge that can decline, wrapped in a circuit breaker.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
)

// ErrChargeDeclined is returned when the gateway refuses the charge itself,
// as opposed to a transport or breaker failure.
var ErrChargeDeclined = errors.New("charge declined by gateway")

// ChargeDecider decides the outcome of a simulated charge attempt.
type ChargeDecider interface {
	Approve() bool
}

// RandomDecider approves roughly 95% of charges.
type RandomDecider struct{}

func (RandomDecider) Approve() bool {
	return rand.Intn(100) < 95
}

// SimulatedProvider stands in for the payment gateway. Charges run through a
// circuit breaker so a failing gateway sheds load fast instead of queueing
// checkouts behind timeouts.
type SimulatedProvider struct {
	decider ChargeDecider
	breaker *gobreaker.CircuitBreaker[string]
	logger  *slog.Logger
}

func NewSimulatedProvider(decider ChargeDecider, logger *slog.Logger) *SimulatedProvider {
	settings := gobreaker.Settings{
		Name:    "payment-gateway",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &SimulatedProvider{
		decider: decider,
		breaker: gobreaker.NewCircuitBreaker[string](settings),
		logger:  logger,
	}
}

// Charge attempts to capture the amount and returns a gateway transaction
// reference. Declines count as breaker failures.
func (p *SimulatedProvider) Charge(ctx context.Context, orderID string, amount decimal.Decimal) (string, error) {
	txnRef, err := p.breaker.Execute(func() (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if !p.decider.Approve() {
			return "", ErrChargeDeclined
		}
		return fmt.Sprintf("TXN-%d", time.Now().UnixNano()), nil
	})
	if err != nil {
		p.logger.Warn("charge failed",
			slog.String("order_id", orderID),
			slog.String("amount", amount.String()),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("charge order %s: %w", orderID, err)
	}

	return txnRef, nil
}

// Payout releases settled funds to a seller and returns a payout reference.
// The simulated gateway always succeeds here, matching a gateway whose payout
// API is fire-and-forget.
func (p *SimulatedProvider) Payout(ctx context.Context, shopID string, amount decimal.Decimal) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("PAYOUT-%d", time.Now().UnixNano()), nil
}

package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/simbarashe-m/musika/internal/domain"
)

// PendingProofURL is the placeholder linked to an order when the buyer's
// proof image could not be stored. The flow still advances to manual
// verification; the real URL is attached once a later upload succeeds.
const PendingProofURL = "pending-upload"

// ProofImage is a buyer-submitted proof-of-payment image.
type ProofImage struct {
	ContentType string
	Data        []byte
}

type PaymentResult struct {
	Payment              *domain.Payment
	RequiresVerification bool
}

// ProcessPayment captures funds for one created order. The gateway charge
// gates everything: if it fails, nothing is written and the order stays
// unpaid. Cash settles immediately; every other method leaves a pending
// payment awaiting proof verification.
func (s *Service) ProcessPayment(
	ctx context.Context,
	order *domain.Order,
	method domain.PaymentMethod,
	proof *ProofImage,
) (*PaymentResult, error) {
	txnRef, err := s.gateway.Charge(ctx, order.ID.String(), order.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("payment gateway: %w", err)
	}
	s.logger.Info("gateway charge accepted",
		slog.String("order_id", order.ID.String()),
		slog.String("txn_ref", txnRef))

	platformFee, sellerAmount := domain.SplitTotal(order.TotalAmount)
	now := time.Now().UTC()

	payment := &domain.Payment{
		ID:           uuid.New(),
		OrderID:      order.ID,
		ShopID:       order.ShopID,
		BuyerID:      order.BuyerID,
		TotalAmount:  order.TotalAmount,
		SellerAmount: sellerAmount,
		PlatformFee:  platformFee,
		Method:       method,
		Provider:     method.Provider(),
		Status:       domain.PaymentPending,
		ProcessedAt:  &now,
	}

	if method.RequiresProof() {
		return s.settleWithProof(ctx, order, payment, proof, now)
	}
	return s.settleCash(ctx, order, payment, now)
}

// settleCash completes the payment in one step: completed payment row,
// commission record, order advanced to paid/processing.
func (s *Service) settleCash(ctx context.Context, order *domain.Order, payment *domain.Payment, now time.Time) (*PaymentResult, error) {
	payment.Status = domain.PaymentCompleted
	payment.CompletedAt = &now

	if err := s.store.InsertPayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}

	txn := &domain.PlatformTransaction{
		ID:             uuid.New(),
		OrderID:        order.ID,
		ShopID:         order.ShopID,
		PaymentID:      payment.ID,
		Amount:         payment.PlatformFee,
		CommissionRate: domain.CommissionRate,
		OrderTotal:     order.TotalAmount,
	}
	if err := s.store.InsertPlatformTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("insert platform transaction: %w", err)
	}

	if err := s.store.UpdateOrderPayment(ctx, order.ID, domain.OrderStatusProcessing, domain.PaymentStatusPaid); err != nil {
		return nil, fmt.Errorf("advance order payment status: %w", err)
	}
	order.Status = domain.OrderStatusProcessing
	order.PaymentStatus = domain.PaymentStatusPaid

	s.publishOrderEvent(ctx, order, "payment.completed")
	s.notifier.OrderConfirmed(ctx, order)

	return &PaymentResult{Payment: payment}, nil
}

// settleWithProof records a pending payment and parks the order for manual
// verification. The commission record is deferred until verification. Proof
// upload failure is tolerated with a placeholder URL.
func (s *Service) settleWithProof(ctx context.Context, order *domain.Order, payment *domain.Payment, proof *ProofImage, now time.Time) (*PaymentResult, error) {
	proofURL := PendingProofURL
	if proof != nil {
		url, err := s.store.SaveProof(ctx, order.ID, proof.ContentType, proof.Data)
		if err != nil {
			s.logger.Warn("proof upload failed, continuing with placeholder",
				slog.String("order_id", order.ID.String()),
				slog.String("error", err.Error()))
		} else {
			proofURL = url
		}
	}
	if err := s.store.AttachPaymentProof(ctx, order.ID, proofURL, now); err != nil {
		s.logger.Warn("failed to link payment proof",
			slog.String("order_id", order.ID.String()),
			slog.String("error", err.Error()))
	}

	if err := s.store.InsertPayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}

	if err := s.store.UpdateOrderPayment(ctx, order.ID, domain.OrderStatusPendingVerification, domain.PaymentStatusProofSubmitted); err != nil {
		return nil, fmt.Errorf("advance order payment status: %w", err)
	}
	order.Status = domain.OrderStatusPendingVerification
	order.PaymentStatus = domain.PaymentStatusProofSubmitted
	order.PaymentProofURL = &proofURL
	order.PaymentProofUploadedAt = &now

	s.notifier.OrderConfirmed(ctx, order)

	return &PaymentResult{Payment: payment, RequiresVerification: true}, nil
}

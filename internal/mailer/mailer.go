// Package mailer defines the outbound email boundary. Actual delivery goes
// through an external provider; the service only depends on this interface.
package mailer

import (
	"context"

	"auroma-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Mailer interface {
	SendOrderConfirmation(ctx context.Context, to, orderID string, total decimal.Decimal) error
	SendOrderStatusUpdate(ctx context.Context, to, orderID, status string) error
	SendPointsAwarded(ctx context.Context, to string, points int) error
}

// LogMailer writes outbound mail to the log instead of sending it. Used in
// development and as the default until a provider is configured.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer() *LogMailer {
	return &LogMailer{logger: util.GetLogger()}
}

func (m *LogMailer) SendOrderConfirmation(ctx context.Context, to, orderID string, total decimal.Decimal) error {
	m.logger.Info("mail: order confirmation",
		zap.String("to", to),
		zap.String("order_id", orderID),
		zap.String("total", total.String()))
	return nil
}

func (m *LogMailer) SendOrderStatusUpdate(ctx context.Context, to, orderID, status string) error {
	m.logger.Info("mail: order status update",
		zap.String("to", to),
		zap.String("order_id", orderID),
		zap.String("status", status))
	return nil
}

func (m *LogMailer) SendPointsAwarded(ctx context.Context, to string, points int) error {
	m.logger.Info("mail: points awarded",
		zap.String("to", to),
		zap.Int("points", points))
	return nil
}

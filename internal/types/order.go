package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/ema-cross/pkg/errors"
)

type StopOrderType string

type OrderStatus string

const (
	OrderTypeBuyStop  StopOrderType = "BUY_STOP"
	OrderTypeSellStop StopOrderType = "SELL_STOP"
)

const (
	OrderStatusPending  OrderStatus = "PENDING"
	OrderStatusRejected OrderStatus = "REJECTED"
)

// StopOrderTypeFor maps a signal direction to the pending order type.
func StopOrderTypeFor(direction Direction) StopOrderType {
	if direction == DirectionBuy {
		return OrderTypeBuyStop
	}

	return OrderTypeSellStop
}

// StopOrderTypeForLevels picks the order type from the levels alone: an entry
// above the stop loss is a buy stop, anything else a sell stop.
func StopOrderTypeForLevels(stopPrice, stopLoss float64) StopOrderType {
	if stopPrice > stopLoss {
		return OrderTypeBuyStop
	}

	return OrderTypeSellStop
}

// StopOrder is a pending stop-entry order with attached stop loss and take profit.
type StopOrder struct {
	ID         string        `yaml:"id" json:"id" csv:"id" validate:"required,uuid"`
	Symbol     string        `yaml:"symbol" json:"symbol" csv:"symbol" validate:"required"`
	Type       StopOrderType `yaml:"type" json:"type" csv:"type" validate:"required,oneof=BUY_STOP SELL_STOP"`
	Volume     float64       `yaml:"volume" json:"volume" csv:"volume" validate:"gt=0"`
	StopPrice  float64       `yaml:"stop_price" json:"stop_price" csv:"stop_price" validate:"gt=0"`
	StopLoss   float64       `yaml:"stop_loss" json:"stop_loss" csv:"stop_loss" validate:"gt=0"`
	TakeProfit float64       `yaml:"take_profit" json:"take_profit" csv:"take_profit" validate:"gt=0"`
	Comment    string        `yaml:"comment" json:"comment" csv:"comment"`
	CreatedAt  time.Time     `yaml:"created_at" json:"created_at" csv:"created_at" validate:"required"`
	Status     OrderStatus   `yaml:"status" json:"status" csv:"status"`
}

// Validate validates the StopOrder struct and the side of its levels:
// a buy stop needs take_profit > stop_price > stop_loss, a sell stop the reverse.
func (o *StopOrder) Validate() error {
	validate := validator.New()
	if err := validate.Struct(o); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOrder, "invalid stop order", err)
	}

	switch o.Type {
	case OrderTypeBuyStop:
		if o.StopLoss >= o.StopPrice {
			return errors.Newf(errors.ErrCodeInvalidStopLoss, "buy stop loss %.4f must be below stop price %.4f", o.StopLoss, o.StopPrice)
		}

		if o.TakeProfit <= o.StopPrice {
			return errors.Newf(errors.ErrCodeInvalidTakeProfit, "buy take profit %.4f must be above stop price %.4f", o.TakeProfit, o.StopPrice)
		}
	case OrderTypeSellStop:
		if o.StopLoss <= o.StopPrice {
			return errors.Newf(errors.ErrCodeInvalidStopLoss, "sell stop loss %.4f must be above stop price %.4f", o.StopLoss, o.StopPrice)
		}

		if o.TakeProfit >= o.StopPrice {
			return errors.Newf(errors.ErrCodeInvalidTakeProfit, "sell take profit %.4f must be below stop price %.4f", o.TakeProfit, o.StopPrice)
		}
	}

	return nil
}

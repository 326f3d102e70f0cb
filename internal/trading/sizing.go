package trading

import (
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/ema-cross/internal/types"
	"github.com/rxtech-lab/ema-cross/internal/utils"
	"github.com/rxtech-lab/ema-cross/pkg/errors"
	"github.com/shopspring/decimal"
)

// RiskPositionSizer risks a fixed fraction of the balance per trade:
// volume = balance * risk / (|stop_price - stop_loss| * contract_size),
// floored to LotStep.
type RiskPositionSizer struct {
	Balance      float64 `yaml:"balance" json:"balance" validate:"gt=0"`
	RiskFraction float64 `yaml:"risk_fraction" json:"risk_fraction" validate:"gt=0,lte=1"`
	ContractSize float64 `yaml:"contract_size" json:"contract_size" validate:"gt=0"`
	LotStep      float64 `yaml:"lot_step" json:"lot_step" validate:"gte=0"`
	MinLot       float64 `yaml:"min_lot" json:"min_lot" validate:"gte=0"`
	MaxLot       float64 `yaml:"max_lot" json:"max_lot" validate:"gte=0"`
}

// NewRiskPositionSizer validates the parameters and returns the sizer.
func NewRiskPositionSizer(sizer RiskPositionSizer) (*RiskPositionSizer, error) {
	if err := validator.New().Struct(sizer); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid position sizer", err)
	}

	return &sizer, nil
}

// Size implements PositionSizer.
func (r *RiskPositionSizer) Size(signal types.TradeSignal) (float64, error) {
	stopPrice := utils.RoundToDecimalPrecision(signal.StopPrice, PricePrecision)
	stopLoss := utils.RoundToDecimalPrecision(signal.StopLoss, PricePrecision)

	distance := decimal.NewFromFloat(stopPrice).Sub(decimal.NewFromFloat(stopLoss)).Abs()
	if distance.IsZero() {
		return 0, errors.Newf(errors.ErrCodePositionSizing, "stop price equals stop loss for %s", signal.Symbol)
	}

	balance := decimal.NewFromFloat(r.Balance).Round(2)
	riskAmount := balance.Mul(decimal.NewFromFloat(r.RiskFraction))
	volume := riskAmount.Div(distance.Mul(decimal.NewFromFloat(r.ContractSize))).InexactFloat64()
	volume = utils.FloorToStep(volume, r.LotStep)

	if r.MaxLot > 0 && volume > r.MaxLot {
		volume = r.MaxLot
	}

	if volume <= 0 || volume < r.MinLot {
		return 0, errors.Newf(errors.ErrCodePositionSizing,
			"volume %.4f for %s is below the minimum lot %.4f", volume, signal.Symbol, r.MinLot)
	}

	return volume, nil
}

package types

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/ema-cross/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type TypesTestSuite struct {
	suite.Suite
}

func TestTypesSuite(t *testing.T) {
	suite.Run(t, new(TypesTestSuite))
}

func (suite *TypesTestSuite) TestIsBullish() {
	suite.True(Candle{Open: 1, Close: 2}.IsBullish())
	suite.False(Candle{Open: 2, Close: 1}.IsBullish())
	// doji counts as bearish
	suite.False(Candle{Open: 1.5, Close: 1.5}.IsBullish())
}

func (suite *TypesTestSuite) TestCloses() {
	closes := Closes([]Candle{{Close: 1}, {Close: 2}, {Close: 3}})
	suite.Equal([]float64{1, 2, 3}, closes)
	suite.Empty(Closes(nil))
}

func (suite *TypesTestSuite) TestParseTimeframe() {
	tf, err := ParseTimeframe("15m")
	suite.NoError(err)
	suite.Equal(TimeframeFifteenMinutes, tf)
	suite.Equal(15*time.Minute, tf.Duration())

	tf, err = ParseTimeframe("M1")
	suite.NoError(err)
	suite.Equal(TimeframeOneMinute, tf)

	_, err = ParseTimeframe("7m")
	suite.Error(err)
	suite.Equal(errors.ErrCodeInvalidTimeframe, errors.GetCode(err))
	suite.Equal(time.Duration(0), Timeframe("7m").Duration())
}

func (suite *TypesTestSuite) TestSignalRisk() {
	suite.Equal(2.0, TradeSignal{StopPrice: 12, StopLoss: 10}.Risk())
	suite.Equal(2.0, TradeSignal{StopPrice: 8, StopLoss: 10}.Risk())
}

func (suite *TypesTestSuite) TestStopOrderTypeFor() {
	suite.Equal(OrderTypeBuyStop, StopOrderTypeFor(DirectionBuy))
	suite.Equal(OrderTypeSellStop, StopOrderTypeFor(DirectionSell))
}

func validOrder(orderType StopOrderType) StopOrder {
	order := StopOrder{
		ID:        uuid.New().String(),
		Symbol:    "EURUSD",
		Type:      orderType,
		Volume:    0.1,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if orderType == OrderTypeBuyStop {
		order.StopLoss, order.StopPrice, order.TakeProfit = 1.0, 1.1, 1.2
	} else {
		order.StopLoss, order.StopPrice, order.TakeProfit = 1.2, 1.1, 1.0
	}

	return order
}

func (suite *TypesTestSuite) TestStopOrderValidate() {
	buy := validOrder(OrderTypeBuyStop)
	suite.NoError(buy.Validate())

	sell := validOrder(OrderTypeSellStop)
	suite.NoError(sell.Validate())
}

func (suite *TypesTestSuite) TestStopOrderValidateRejectsNonPositiveLevels() {
	order := validOrder(OrderTypeBuyStop)
	order.StopLoss = 0
	err := order.Validate()
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidOrder))

	order = validOrder(OrderTypeBuyStop)
	order.ID = "not-a-uuid"
	suite.True(errors.HasCode(order.Validate(), errors.ErrCodeInvalidOrder))
}

func (suite *TypesTestSuite) TestStopOrderValidateRejectsInvertedLevels() {
	order := validOrder(OrderTypeBuyStop)
	order.StopLoss = 1.15
	suite.True(errors.HasCode(order.Validate(), errors.ErrCodeInvalidStopLoss))

	order = validOrder(OrderTypeSellStop)
	order.TakeProfit = 1.1
	suite.True(errors.HasCode(order.Validate(), errors.ErrCodeInvalidTakeProfit))
}

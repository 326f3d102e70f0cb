package indicator

import (
	"math/rand"
	"testing"

	"github.com/rxtech-lab/ema-cross/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type CrossoverTestSuite struct {
	suite.Suite
}

func TestCrossoverSuite(t *testing.T) {
	suite.Run(t, new(CrossoverTestSuite))
}

func (suite *CrossoverTestSuite) TestDetectCrossovers() {
	a := []float64{1, 3, 3, 1, 1, 4}
	b := []float64{2, 2, 2, 2, 2, 2}

	crossovers, err := DetectCrossovers(a, b)
	suite.Require().NoError(err)
	suite.Equal([]int{1, 2, 3, 4, 5}, crossovers.Indices)
	suite.Equal([]bool{true, false, true, false, true}, crossovers.Flags)
	suite.Equal([]int{1, 3, 5}, crossovers.Events())
	suite.Equal(5, crossovers.Len())
}

func (suite *CrossoverTestSuite) TestIndexZeroIsExcluded() {
	crossovers, err := DetectCrossovers([]float64{5, 5}, []float64{1, 1})
	suite.Require().NoError(err)

	_, ok := crossovers.At(0)
	suite.False(ok)
	suite.False(crossovers.Crossed(0))

	flag, ok := crossovers.At(1)
	suite.True(ok)
	suite.False(flag)

	_, ok = crossovers.At(2)
	suite.False(ok)
}

func (suite *CrossoverTestSuite) TestEqualValuesAreNotAbove() {
	// a == b is "not above", so moving from equal to below is no cross
	crossovers, err := DetectCrossovers([]float64{2, 2, 1, 3}, []float64{2, 2, 2, 2})
	suite.Require().NoError(err)
	suite.Equal([]bool{false, false, true}, crossovers.Flags)
}

func (suite *CrossoverTestSuite) TestShortInputs() {
	crossovers, err := DetectCrossovers(nil, nil)
	suite.NoError(err)
	suite.Equal(0, crossovers.Len())
	suite.Empty(crossovers.Events())

	crossovers, err = DetectCrossovers([]float64{1}, []float64{2})
	suite.NoError(err)
	suite.Equal(0, crossovers.Len())
	_, ok := crossovers.At(0)
	suite.False(ok)
}

func (suite *CrossoverTestSuite) TestLengthMismatch() {
	_, err := DetectCrossovers([]float64{1, 2, 3}, []float64{1, 2})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeLengthMismatch))

	_, err = DetectCrossovers([]float64{}, []float64{1})
	suite.True(errors.HasCode(err, errors.ErrCodeLengthMismatch))
}

func (suite *CrossoverTestSuite) TestFlagsMatchDefinition() {
	rng := rand.New(rand.NewSource(7))
	a := make([]float64, 300)
	b := make([]float64, 300)
	for i := range a {
		a[i] = rng.Float64()
		b[i] = rng.Float64()
	}

	crossovers, err := DetectCrossovers(a, b)
	suite.Require().NoError(err)
	suite.Equal(len(a)-1, crossovers.Len())

	for k, i := range crossovers.Indices {
		expected := (a[i] > b[i]) != (a[i-1] > b[i-1])
		suite.Equal(expected, crossovers.Flags[k], "index %d", i)
	}
}

func (suite *CrossoverTestSuite) TestSeriesCrossovers() {
	candles := candlesFromCloses(10, 10, 10, 12, 14, 16, 18, 20)
	fast, err := ComputeEMA(candles, 2)
	suite.Require().NoError(err)
	slow, err := ComputeEMA(candles, 3)
	suite.Require().NoError(err)

	crossovers, err := DetectSeriesCrossovers(fast, slow)
	suite.Require().NoError(err)
	// ema_2 seeds at index 2 while ema_3 still reads 0.0
	suite.Equal([]int{2}, crossovers.Events())
}

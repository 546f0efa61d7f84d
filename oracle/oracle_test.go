package oracle

import (
	"errors"
	"math/big"
	"testing"

	"gotest.tools/assert"
)

type badFeed struct{}

func (badFeed) LatestPrice() (*big.Int, uint8, error) {
	return nil, 0, errors.New("feed offline")
}

func (badFeed) Version() (int, error) {
	return 0, errors.New("feed offline")
}

// 1原生单位 = 2000 USD，价格按8位小数上报（模拟chainlink风格的喂价）
func newTestAdapter() *Adapter {
	return NewAdapter(&StaticFeed{
		Price:    big.NewInt(200000000000),
		Decimals: 8,
		Ver:      4,
	})
}

func TestConvertToUsd(t *testing.T) {
	a := newTestAdapter()

	one := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	usd, err := a.ConvertToUsd(one)
	assert.NilError(t, err)
	// 1个原生单位应换算为2000 USD（18位定点数）
	want := new(big.Int).Mul(big.NewInt(2000), one)
	assert.Equal(t, usd.Cmp(want), 0)

	// 0.0025原生单位恰好是5 USD
	usd, err = a.ConvertToUsd(big.NewInt(2500000000000000))
	assert.NilError(t, err)
	want = new(big.Int).Mul(big.NewInt(5), one)
	assert.Equal(t, usd.Cmp(want), 0)
}

func TestConvertTruncates(t *testing.T) {
	// 价格带零头时结果向下取整
	a := NewAdapter(&StaticFeed{Price: big.NewInt(3), Decimals: 18, Ver: 1})
	usd, err := a.ConvertToUsd(big.NewInt(1))
	assert.NilError(t, err)
	// 1 * 3 / 10^18 = 0（截断）
	assert.Equal(t, usd.Sign(), 0)
}

func TestOracleUnavailable(t *testing.T) {
	a := NewAdapter(badFeed{})
	_, _, err := a.GetPrice()
	assert.Equal(t, err, ErrUnavailable)

	_, err = a.ConvertToUsd(big.NewInt(1))
	assert.Equal(t, err, ErrUnavailable)

	_, err = a.FeedVersion()
	assert.Equal(t, err, ErrUnavailable)
}

func TestInvalidPrice(t *testing.T) {
	// 非正报价同样视为喂价源失效
	a := NewAdapter(&StaticFeed{Price: big.NewInt(0), Decimals: 8, Ver: 1})
	_, _, err := a.GetPrice()
	assert.Equal(t, err, ErrUnavailable)

	a = NewAdapter(&StaticFeed{Price: big.NewInt(-5), Decimals: 8, Ver: 1})
	_, _, err = a.GetPrice()
	assert.Equal(t, err, ErrUnavailable)
}

func TestFeedVersion(t *testing.T) {
	a := newTestAdapter()
	v, err := a.FeedVersion()
	assert.NilError(t, err)
	assert.Equal(t, v, 4)
}

package oracle

import (
	"errors"
	"math/big"

	"github.com/cloudflare/cfssl/log"
)

// 喂价源不可达或报价非法
var ErrUnavailable = errors.New("oracle: price feed unavailable")

var e18 = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// 外部喂价源。链下的价格服务在部署时注入，核心逻辑只依赖该接口
type Feed interface {
	LatestPrice() (price *big.Int, decimals uint8, err error)
	Version() (int, error)
}

// 封装对喂价源的读取，统一换算为18位定点数
type Adapter struct {
	feed Feed
}

func NewAdapter(feed Feed) *Adapter {
	return &Adapter{feed: feed}
}

// 返回喂价源句柄（部署时注入后不再变化）
func (a *Adapter) Feed() Feed {
	return a.feed
}

// 查询最新报价及其小数位数。报价非正视为喂价源失效，错误向上传递
func (a *Adapter) GetPrice() (*big.Int, uint8, error) {
	price, decimals, err := a.feed.LatestPrice()
	if err != nil {
		log.Errorf("oracle query error: %s", err)
		return nil, 0, ErrUnavailable
	}
	if price == nil || price.Sign() <= 0 {
		log.Errorf("oracle returned invalid price: %v", price)
		return nil, 0, ErrUnavailable
	}
	return price, decimals, nil
}

// 原生金额换算为USD等值（18位定点数）
// price先按10^(18-decimals)对齐到18位，再 usd = native * price / 10^18，整数运算，结果向下取整
func (a *Adapter) ConvertToUsd(native *big.Int) (*big.Int, error) {
	price, decimals, err := a.GetPrice()
	if err != nil {
		return nil, err
	}
	normalized := new(big.Int)
	if decimals <= 18 {
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(18-int(decimals))), nil)
		normalized.Mul(price, scale)
	} else {
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(int(decimals)-18)), nil)
		normalized.Div(price, scale)
	}
	usd := new(big.Int).Mul(native, normalized)
	usd.Div(usd, e18)
	return usd, nil
}

// 喂价接口版本号，用于兼容性检查
func (a *Adapter) FeedVersion() (int, error) {
	v, err := a.feed.Version()
	if err != nil {
		return 0, ErrUnavailable
	}
	return v, nil
}

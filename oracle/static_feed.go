package oracle

import (
	"math/big"

	"github.com/crowdfundV2/config"
)

// 模拟喂价源：固定报价，报价内容从配置读取
// 单机运行和测试时代替真实的链下价格服务
type StaticFeed struct {
	Price    *big.Int
	Decimals uint8
	Ver      int
}

func (f *StaticFeed) LatestPrice() (*big.Int, uint8, error) {
	return f.Price, f.Decimals, nil
}

func (f *StaticFeed) Version() (int, error) {
	return f.Ver, nil
}

// 从config/config.yaml读取喂价参数
func FromConfig() *StaticFeed {
	price := int64(config.Get("oracle.price").(int))
	decimals := config.Get("oracle.decimals").(int)
	version := config.Get("oracle.version").(int)
	return &StaticFeed{
		Price:    big.NewInt(price),
		Decimals: uint8(decimals),
		Ver:      version,
	}
}

package meta

import (
	"encoding/hex"
	"math/big"

	"github.com/rjkris/go-jellyfish-merkletree/common"
)

// 状态树节点需要实现的接口
type JFTreeData interface {
	GetKey() common.HashValue
}

// 单个出资人的累计出资记录（台账快照中的一项）
type FundingRecord struct {
	Address string   //出资人地址
	Amount  *big.Int //累计出资额（18位定点数）
}

func (r FundingRecord) GetKey() common.HashValue {
	keyBytes, _ := hex.DecodeString(r.Address)
	return common.BytesToHash(keyBytes)
}

// 众筹事件，用于前端展示
type FundingEvent struct {
	Type      string   `json:"type"`      // fund / withdraw
	From      string   `json:"from"`      // 调用者地址
	Value     *big.Int `json:"value"`     // 金额
	Timestamp string   `json:"timestamp"` // 发生时间
}

package fundme

import (
	"fmt"

	"github.com/cloudflare/cfssl/log"
	"github.com/crowdfundV2/global"
)

// 合约执行日志，同时推送到前端日志通道（通道满时丢弃，不阻塞合约执行）
func Info(info ...interface{}) {
	log.Info(info...)
	select {
	case global.FundingLog <- fmt.Sprint(info...):
	default:
	}
}

package client

import (
	"github.com/cloudflare/cfssl/log"
	"github.com/crowdfundV2/fundme"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
)

var contract *fundme.FundMe

// 注入合约实例（启动时由main调用一次）
func SetContract(f *fundme.FundMe) {
	contract = f
}

// 监听用户请求
func ListenRequest(addr string) {
	r := gin.Default()
	r.Use(Cors()) // 使用跨域组件
	//r.Use(TlsHandler()) // 重定向为https
	r.GET("/registerAccount", registerAccount)     // 注册账户
	r.POST("/fund", fund)                          // 出资
	r.POST("/withdraw", withdraw)                  // 提取（所有者）
	r.POST("/cheaperWithdraw", cheaperWithdraw)    // 提取（低迭代开销版本）
	r.POST("/transfer", fallbackTransfer)          // 不走fund的直接转账，一律拒绝
	r.GET("/owner", getOwner)                      // 合约所有者
	r.GET("/version", getVersion)                  // 喂价接口版本
	r.GET("/minimumUsd", getMinimumUsd)            // 最低出资门槛
	r.GET("/priceFeed", getPriceFeed)              // 当前喂价
	r.GET("/funded", getAddressToAmountFunded)     // 某地址累计出资额
	r.GET("/funder", getFunder)                    // 名单中第index位出资人
	r.GET("/events", getEvents)                    // 众筹事件列表
	r.POST("/clearEvents", clearEvents)            // 清空事件记录
	r.GET("/stateRoot", getStateRoot)              // 台账状态树根hash
	r.GET("/inspect", inspect)                     // 合约状态dump
	err := r.Run(addr)
	if err != nil {
		log.Error("client listen error:", err)
	}
}

func TlsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		secureMiddleware := secure.New(secure.Options{
			SSLRedirect: true,
			SSLHost:     "localhost:8088",
		})
		err := secureMiddleware.Process(c.Writer, c.Request)

		// If there was an error, do not continue.
		if err != nil {
			c.Abort()
			return
		}
		c.Next()
	}
}

package client

import (
	"encoding/hex"
	"math/big"
	"net/http"
	"strconv"
	"sync"

	"github.com/cloudflare/cfssl/log"
	"github.com/crowdfundV2/account"
	commonconst "github.com/crowdfundV2/common"
	"github.com/crowdfundV2/event"
	"github.com/crowdfundV2/fundme"
	"github.com/crowdfundV2/global"
	"github.com/crowdfundV2/merkle"
	"github.com/crowdfundV2/meta"
	"github.com/crowdfundV2/redis"
	"github.com/crowdfundV2/util"
	"github.com/davecgh/go-spew/spew"
	"github.com/gin-gonic/gin"
)

// 注册账户时的水龙头额度：10个原生单位，方便测试
var faucetAmount = new(big.Int).Mul(big.NewInt(10), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))

// gin对每个请求起一个goroutine，改变状态的请求在这里全程串行，
// 复现链上逐笔执行的语义（合约调用、事件记录、状态树提交作为一个整体）
var reqMu sync.Mutex

func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method

		origin := c.Request.Header.Get("Origin")

		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Headers", "Content-Type,AccessToken,X-CSRF-Token, Authorization") //自定义 Header
			c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			c.Header("Access-Control-Expose-Headers", "Content-Length, Access-Control-Allow-Origin, Access-Control-Allow-Headers, Content-Type")
			c.Header("Access-Control-Allow-Credentials", "true")
		}

		if method == "OPTIONS" {
			c.Header("Access-Control-Allow-Origin", "*")
			c.Header("Access-Control-Allow-Headers", "Content-Type,AccessToken,X-CSRF-Token, Authorization")
			c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			c.Header("Access-Control-Expose-Headers", "Content-Length, Access-Control-Allow-Origin, Access-Control-Allow-Headers, Content-Type")
			c.Header("Access-Control-Allow-Credentials", "true")
			c.AbortWithStatus(http.StatusNoContent)
		}

		c.Next()
	}
}

func goodResponse(data interface{}) meta.HttpResponse {
	return meta.HttpResponse{Data: data, Code: 20000}
}

func errResponse(msg string) meta.HttpResponse {
	return meta.HttpResponse{Error: msg, Code: 20000}
}

//账户注册
func registerAccount(ctx *gin.Context) {
	reqMu.Lock()
	defer reqMu.Unlock()

	//首先生成公私钥
	priKey, pubKey := util.GetKeyPair()
	//将公钥hash作为账户地址,256位
	pubHash, _ := util.CalculateHash(pubKey)
	address := hex.EncodeToString(pubHash)

	acc := account.CreateAccount(address, pubKey)
	//水龙头给新账户发初始资金
	account.Mint(address, faucetAmount)

	res := map[string]interface{}{
		"address":    acc.Address,
		"publicKey":  string(pubKey),
		"privateKey": string(priKey),
		"balance":    account.GetBalance(address).String(),
	}
	ctx.JSON(http.StatusOK, goodResponse(res))
}

// 出资
func fund(ctx *gin.Context) {
	reqMu.Lock()
	defer reqMu.Unlock()

	post := meta.FundPost{}
	_ = ctx.ShouldBind(&post)

	if !account.ContainsAddress(post.From) {
		log.Error("发起地址不存在")
		ctx.JSON(http.StatusOK, errResponse("发起地址不存在"))
		return
	}
	value, ok := new(big.Int).SetString(post.Value, 10)
	if !ok {
		ctx.JSON(http.StatusOK, errResponse("金额格式错误"))
		return
	}

	if err := contract.Fund(post.From, value); err != nil {
		ctx.JSON(http.StatusOK, errResponse(err.Error()))
		return
	}
	event.Record(commonconst.EventFund, post.From, value)
	commitState()
	ctx.JSON(http.StatusOK, goodResponse(""))
}

// 提取
func withdraw(ctx *gin.Context) {
	doWithdraw(ctx, contract.Withdraw)
}

// 低迭代开销版本的提取
func cheaperWithdraw(ctx *gin.Context) {
	doWithdraw(ctx, contract.CheaperWithdraw)
}

func doWithdraw(ctx *gin.Context, call func(string) error) {
	reqMu.Lock()
	defer reqMu.Unlock()

	post := meta.WithdrawPost{}
	_ = ctx.ShouldBind(&post)

	amount := contract.HeldBalance()
	if err := call(post.From); err != nil {
		ctx.JSON(http.StatusOK, errResponse(err.Error()))
		return
	}
	event.Record(commonconst.EventWithdraw, post.From, amount)
	commitState()
	ctx.JSON(http.StatusOK, goodResponse(amount.String()))
}

// 不经过fund的转账请求一律走合约的回退入口
func fallbackTransfer(ctx *gin.Context) {
	post := meta.FundPost{}
	_ = ctx.ShouldBind(&post)

	value, _ := new(big.Int).SetString(post.Value, 10)
	err := contract.Fallback(post.From, value)
	ctx.JSON(http.StatusOK, errResponse(err.Error()))
}

func getOwner(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, goodResponse(contract.Owner()))
}

func getVersion(ctx *gin.Context) {
	v, err := contract.Version()
	if err != nil {
		ctx.JSON(http.StatusOK, errResponse(err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, goodResponse(v))
}

func getMinimumUsd(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, goodResponse(fundme.MinimumUsd.String()))
}

func getPriceFeed(ctx *gin.Context) {
	price, decimals, err := contract.PriceFeed().LatestPrice()
	if err != nil {
		ctx.JSON(http.StatusOK, errResponse(err.Error()))
		return
	}
	res := map[string]interface{}{
		"price":    price.String(),
		"decimals": decimals,
	}
	ctx.JSON(http.StatusOK, goodResponse(res))
}

func getAddressToAmountFunded(ctx *gin.Context) {
	address := ctx.Query("address")
	if address == "" {
		ctx.JSON(http.StatusOK, errResponse("缺少address参数"))
		return
	}
	amount := contract.AddressToAmountFunded(address)
	ctx.JSON(http.StatusOK, goodResponse(amount.String()))
}

func getFunder(ctx *gin.Context) {
	indexStr := ctx.Query("index")
	index, err := strconv.Atoi(indexStr)
	if err != nil {
		ctx.JSON(http.StatusOK, errResponse("缺少index参数"))
		return
	}
	funder, err := contract.Funder(index)
	if err != nil {
		ctx.JSON(http.StatusOK, errResponse(err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, goodResponse(funder))
}

func getEvents(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, goodResponse(event.GetEvents()))
}

// 清空事件记录（运维入口，不影响账户和台账）
func clearEvents(ctx *gin.Context) {
	reqMu.Lock()
	defer reqMu.Unlock()

	event.Clear()
	ctx.JSON(http.StatusOK, goodResponse(""))
}

// 最近一次提交的台账状态树根hash
func getStateRoot(ctx *gin.Context) {
	root, err := redis.GetFromRedis(commonconst.StateRootKey)
	if err != nil {
		ctx.JSON(http.StatusOK, errResponse(err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, goodResponse(root))
}

// 合约状态dump，排查问题用
func inspect(ctx *gin.Context) {
	state := map[string]interface{}{
		"owner":       contract.Owner(),
		"self":        contract.Self(),
		"heldBalance": contract.HeldBalance().String(),
		"funderCount": contract.FunderCount(),
		"records":     contract.Records(),
	}
	ctx.String(http.StatusOK, "%s", spew.Sdump(state))
}

// 把本次调用的账户变更和台账快照提交到状态树
func commitState() {
	if merkle.AccountStatePath != "" && len(global.ChangedAccounts) > 0 {
		_, err := merkle.UpdateStateTree(global.ChangedAccounts, merkle.GetVersion(), merkle.AccountStatePath)
		if err != nil {
			log.Errorf("account state commit error: %s", err)
		}
	}
	global.ChangedAccounts = []meta.JFTreeData{}

	records := contract.Records()
	if merkle.FundingStatePath != "" && len(records) > 0 {
		root, err := merkle.UpdateStateTree(records, merkle.GetVersion(), merkle.FundingStatePath)
		if err != nil {
			log.Errorf("funding state commit error: %s", err)
			return
		}
		// 根hash写入redis，前端通过/stateRoot读取
		_ = redis.SetIntoRedis(commonconst.StateRootKey, hex.EncodeToString(root.Bytes()))
	}
}

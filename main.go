package main

import (
	"encoding/hex"
	"flag"

	"github.com/cloudflare/cfssl/log"
	"github.com/crowdfundV2/account"
	"github.com/crowdfundV2/client"
	commonconst "github.com/crowdfundV2/common"
	"github.com/crowdfundV2/config"
	"github.com/crowdfundV2/event"
	"github.com/crowdfundV2/fundme"
	"github.com/crowdfundV2/global"
	"github.com/crowdfundV2/levelDB"
	"github.com/crowdfundV2/merkle"
	"github.com/crowdfundV2/oracle"
	"github.com/crowdfundV2/redis"
	"github.com/crowdfundV2/util"
)

func main() {
	Start()
}

func Start() {
	//获取执行参数
	rootDir := flag.String("r", ".", "project root dir")
	nodeID := flag.String("n", "N0", "node id")
	flag.Parse()
	global.RootDir = *rootDir
	global.NodeID = *nodeID

	levelDB.InitDB(config.Get("db.path").(string) + "/" + global.NodeID)
	account.GetFromDisk()
	event.InitEventData()
	redis.InitClient(config.Get("redis.addr").(string))

	merkle.AccountStatePath = "accountState/" + global.NodeID
	merkle.FundingStatePath = "fundingState/" + global.NodeID

	//部署者地址（重启时复用上次的owner，保证提取权限不变）
	owner := deployerAddress()

	feed := oracle.FromConfig()
	f := fundme.New(owner, feed)
	f.LoadState()
	client.SetContract(f)

	log.Infof("owner address: %s", owner)
	log.Info(" ---------------------------------------------------------------------------------")
	log.Info("|  众筹合约节点已启动  |")
	log.Info(" ---------------------------------------------------------------------------------")
	client.ListenRequest(config.Get("http.listen").(string))
}

// 部署者即构造合约的调用者。首次启动生成公私钥并落盘，之后复用
func deployerAddress() string {
	stored := levelDB.DBGet(commonconst.OwnerKey)
	if len(stored) > 0 {
		return string(stored)
	}
	_, pubKey := util.GetKeyPair()
	pubHash, _ := util.CalculateHash(pubKey)
	owner := hex.EncodeToString(pubHash)
	account.CreateAccount(owner, pubKey)
	levelDB.DBPut(commonconst.OwnerKey, []byte(owner))
	return owner
}

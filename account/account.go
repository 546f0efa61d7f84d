package account

import (
	"encoding/json"
	"math/big"
	"sync"

	"github.com/cloudflare/cfssl/log"
	commonconst "github.com/crowdfundV2/common"
	"github.com/crowdfundV2/levelDB"
	"github.com/crowdfundV2/meta"
	"github.com/crowdfundV2/util"
)

/* 这里封装了所有的对账户的操作
 * 每个节点默认包含一个全局的State，所以这里直接将State设置为私有，
 * 不用每个节点显式地创建，直接在init()创建
 * 通过调用函数进行操作
 * 状态会被多个请求goroutine并发访问，读写都要经过mu
 */

var state State // 私有，通过函数进行操作
var mu sync.RWMutex

type State struct {
	Accounts map[string]meta.Account // key: 账户地址 - val: 账户信息
}

func init() {
	state.Accounts = map[string]meta.Account{}
}

// 创建普通账户
func CreateAccount(address string, publicKey []byte) meta.Account {
	mu.Lock()
	defer mu.Unlock()
	account := meta.Account{
		Address:    address,
		Balance:    big.NewInt(0),
		Data:       meta.AccountData{},
		PrivateKey: nil,
		PublicKey:  publicKey,
	}
	state.Accounts[address] = account

	PutIntoDisk(state.Accounts)
	return account
}

// 创建合约账户。payable标记该合约是否接受普通转账
func CreateContract(address, name string, payable bool) meta.Account {
	mu.Lock()
	defer mu.Unlock()
	contract := meta.Account{
		Address: address,
		Balance: big.NewInt(0),
		Data: meta.AccountData{
			ContractName: name,
			Payable:      payable,
		},
		IsContract: true,
	}
	state.Accounts[address] = contract

	PutIntoDisk(state.Accounts)
	return contract
}

func SubBalance(sender string, amount *big.Int) meta.Account {
	mu.Lock()
	defer mu.Unlock()
	senderAccount := state.Accounts[sender]
	if senderAccount.Balance.Cmp(amount) < 0 { // 调用SubBalance前会先调用CanTransfer，理论上不会出现余额不足的情况
		log.Infof("[SubBalance]: Insufficient balance.")
	}
	senderAccount.Balance = new(big.Int).Sub(senderAccount.Balance, amount)
	state.Accounts[sender] = senderAccount

	PutIntoDisk(state.Accounts)
	return senderAccount
}

func AddBalance(receiver string, amount *big.Int) meta.Account {
	mu.Lock()
	defer mu.Unlock()
	receiverAccount := state.Accounts[receiver]
	if receiverAccount.Balance == nil {
		receiverAccount.Balance = big.NewInt(0)
	}
	receiverAccount.Balance = new(big.Int).Add(receiverAccount.Balance, amount)
	state.Accounts[receiver] = receiverAccount

	PutIntoDisk(state.Accounts)
	return receiverAccount
}

// 测试网水龙头：给新注册账户发初始资金
func Mint(address string, amount *big.Int) meta.Account {
	return AddBalance(address, amount)
}

// 判断交易发起方是否有足够余额
func CanTransfer(sender string, amount *big.Int) bool {
	mu.RLock()
	defer mu.RUnlock()
	senderAccount := state.Accounts[sender]
	if senderAccount.Balance == nil || senderAccount.Balance.Cmp(amount) < 0 {
		log.Infof("[CanTransfer]: Insufficient balance.")
		return false
	}
	return true
}

// 接收方能否接受普通转账：未声明payable的合约账户会拒收
func CanReceive(receiver string) bool {
	mu.RLock()
	defer mu.RUnlock()
	receiverAccount, ok := state.Accounts[receiver]
	if !ok {
		return true // 转入未注册地址等同于创建新账户，总是允许
	}
	if receiverAccount.IsContract && !receiverAccount.Data.Payable {
		return false
	}
	return true
}

// 持久化（每次对账户信息的更改都需要持久化到磁盘，调用方需持有mu）
func PutIntoDisk(accounts map[string]meta.Account) {
	bytes, err := json.Marshal(accounts)
	util.DealJsonErr("PutIntoDisk", err)
	levelDB.DBPut(commonconst.AccountsKey, bytes)
}

// 从磁盘获取已有的账户信息（在节点启动时执行）
func GetFromDisk() {
	mu.Lock()
	defer mu.Unlock()
	accountBytes := levelDB.DBGet(commonconst.AccountsKey)
	_ = json.Unmarshal(accountBytes, &state.Accounts)
}

// 账户地址是否存在
func ContainsAddress(address string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := state.Accounts[address]
	return ok
}

// 获取账户信息
func GetAccount(address string) meta.Account {
	mu.RLock()
	defer mu.RUnlock()
	return state.Accounts[address]
}

// 账户余额（未知地址返回0）
func GetBalance(address string) *big.Int {
	mu.RLock()
	defer mu.RUnlock()
	acc, ok := state.Accounts[address]
	if !ok || acc.Balance == nil {
		return big.NewInt(0)
	}
	return acc.Balance
}

// 获取所有的账户地址
func GetTotalAddress() []string {
	mu.RLock()
	defer mu.RUnlock()
	var totalAddress []string
	for address := range state.Accounts {
		totalAddress = append(totalAddress, address)
	}
	return totalAddress
}

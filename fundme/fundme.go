package fundme

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/cloudflare/cfssl/log"
	"github.com/crowdfundV2/account"
	"github.com/crowdfundV2/global"
	"github.com/crowdfundV2/ledger"
	"github.com/crowdfundV2/meta"
	"github.com/crowdfundV2/oracle"
	"github.com/crowdfundV2/util"
)

// 出资额的USD等值低于最低门槛
var ErrBelowMinimum = errors.New("fundme: contribution below minimum usd value")

// 非合约所有者调用提取
var ErrNotOwner = errors.New("fundme: caller is not the owner")

// 接收方拒收转账，本次提取整体回退
var ErrTransferFailed = errors.New("fundme: value transfer failed")

// 出资人余额不足
var ErrInsufficientBalance = errors.New("fundme: insufficient balance")

// 不走Fund入口的直接转账一律拒收，防止出现台账外的资产
var ErrDirectTransfer = errors.New("fundme: direct transfer rejected, use fund")

// 最低出资门槛：5 USD（18位定点数）
var MinimumUsd = new(big.Int).Mul(big.NewInt(5), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))

/* 众筹合约：组合喂价适配器和众筹台账
 * owner在构造时固定为部署者地址，之后不可更改
 * 所有对外方法串行执行（实例级互斥锁），每次调用要么完整提交要么完全无副作用
 */
type FundMe struct {
	mu      sync.Mutex
	owner   string          // 部署者地址，仅owner可提取
	self    string          // 合约自身的账户地址
	adapter *oracle.Adapter // 喂价适配器
	book    *ledger.Ledger  // 众筹台账
}

// 部署众筹合约。owner为部署者，feed为部署环境选定的喂价源句柄
func New(owner string, feed oracle.Feed) *FundMe {
	selfHash, _ := util.CalculateHash([]byte(owner + "/fundme"))
	self := hex.EncodeToString(selfHash)
	if !account.ContainsAddress(self) { // 节点重启时合约账户已从磁盘恢复
		// 合约经由Fund入口收款；绕过Fund的直接转账在Fallback里拒绝
		account.CreateContract(self, "fundme", true)
	}

	f := &FundMe{
		owner:   owner,
		self:    self,
		adapter: oracle.NewAdapter(feed),
		book:    ledger.New(),
	}
	log.Infof("fundme deployed: owner=%s self=%s", owner, self)
	return f
}

// 出资。USD等值达到门槛才入账，重复出资累加
func (f *FundMe) Fund(caller string, value *big.Int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if value == nil {
		value = big.NewInt(0)
	}
	usd, err := f.adapter.ConvertToUsd(value)
	if err != nil {
		return err
	}
	if usd.Cmp(MinimumUsd) < 0 {
		Info("出资额不足5USD，拒绝入账")
		return ErrBelowMinimum
	}
	if err := f.transferValue(caller, f.self, value); err != nil {
		return err
	}
	f.book.RecordContribution(caller, value)
	Info(fmt.Sprintf("收到出资：%s -> %s", caller, value.String()))
	return nil
}

// 提取全部余额并清空台账。清零循环每轮重新读取名单长度
func (f *FundMe) Withdraw(caller string) error {
	return f.withdraw(caller, false)
}

// 与Withdraw结果完全一致，清零循环只读取一次名单长度，迭代开销更低
func (f *FundMe) CheaperWithdraw(caller string) error {
	return f.withdraw(caller, true)
}

func (f *FundMe) withdraw(caller string, cacheLen bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.requireOwner(caller); err != nil {
		return err
	}
	amount := account.GetBalance(f.self)
	// 余额为0时也是一次成功的提取（空转）
	if err := f.transferValue(f.self, f.owner, amount); err != nil {
		return err
	}
	// 台账在转账确认成功之后才清空，转账失败不会触碰台账
	f.book.Reset(cacheLen)
	Info(fmt.Sprintf("提取完成：%s <- %s", f.owner, amount.String()))
	return nil
}

// 回退入口：没有匹配Fund的转账一律拒绝，不产生任何状态变化
func (f *FundMe) Fallback(caller string, value *big.Int) error {
	Info(fmt.Sprintf("拒绝来自 %s 的直接转账", caller))
	return ErrDirectTransfer
}

// 所有者校验，Withdraw和CheaperWithdraw共用同一个入口检查
func (f *FundMe) requireOwner(caller string) error {
	if caller != f.owner {
		Info("非合约所有者，无法提取")
		return ErrNotOwner
	}
	return nil
}

// 合约内部转账，镜像平台的Transfer语义：
// 金额非正直接成功；余额不足或接收方拒收则无任何变化
func (f *FundMe) transferValue(from, to string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return nil
	}
	if !account.CanTransfer(from, amount) {
		return ErrInsufficientBalance
	}
	if !account.CanReceive(to) {
		return ErrTransferFailed
	}
	global.ChangedAccounts = append(global.ChangedAccounts, account.SubBalance(from, amount))
	global.ChangedAccounts = append(global.ChangedAccounts, account.AddBalance(to, amount))
	return nil
}

// ------ 只读方法 ------

func (f *FundMe) Owner() string {
	return f.owner
}

func (f *FundMe) Self() string {
	return f.self
}

// 喂价接口版本号（透传）
func (f *FundMe) Version() (int, error) {
	return f.adapter.FeedVersion()
}

// 某地址的累计出资额，从未出资返回0
func (f *FundMe) AddressToAmountFunded(address string) *big.Int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.book.BalanceOf(address)
}

// 名单中第index位出资人，越界返回ledger.ErrIndexOutOfRange
func (f *FundMe) Funder(index int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.book.FunderAt(index)
}

func (f *FundMe) FunderCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.book.FunderCount()
}

// 当前持有的众筹总额
func (f *FundMe) HeldBalance() *big.Int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return account.GetBalance(f.self)
}

// 部署时注入的喂价源句柄
func (f *FundMe) PriceFeed() oracle.Feed {
	return f.adapter.Feed()
}

// 台账快照的状态树投影（提交状态树时使用）
func (f *FundMe) Records() []meta.JFTreeData {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.book.Records()
}

// 节点重启时从磁盘恢复台账
func (f *FundMe) LoadState() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.book.GetFromDisk()
}

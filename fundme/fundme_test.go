package fundme

import (
	"encoding/hex"
	"errors"
	"math/big"
	"strconv"
	"sync"
	"testing"

	"github.com/crowdfundV2/account"
	"github.com/crowdfundV2/ledger"
	"github.com/crowdfundV2/oracle"
	"github.com/crowdfundV2/util"
	"gotest.tools/assert"
)

var e18 = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// 1原生单位 = 2000 USD，8位小数。最低出资额为0.0025原生单位
func testFeed() *oracle.StaticFeed {
	return &oracle.StaticFeed{
		Price:    big.NewInt(200000000000),
		Decimals: 8,
		Ver:      4,
	}
}

type downFeed struct{}

func (downFeed) LatestPrice() (*big.Int, uint8, error) {
	return nil, 0, errors.New("feed offline")
}

func (downFeed) Version() (int, error) {
	return 0, errors.New("feed offline")
}

func testAddress(seed string) string {
	hash, _ := util.CalculateHash([]byte(seed))
	return hex.EncodeToString(hash)
}

// 注册账户并预置余额（单位：原生单位的10^18定点数）
func newFundedAccount(seed string, balance *big.Int) string {
	address := testAddress(seed)
	account.CreateAccount(address, []byte(seed))
	account.Mint(address, balance)
	return address
}

func newContract(seed string) (*FundMe, string) {
	owner := newFundedAccount(seed+"/owner", big.NewInt(0))
	return New(owner, testFeed()), owner
}

func TestZeroWithdrawIdempotent(t *testing.T) {
	f, owner := newContract("zero-withdraw")

	assert.NilError(t, f.Withdraw(owner))
	assert.Equal(t, f.HeldBalance().Sign(), 0)
	assert.Equal(t, f.FunderCount(), 0)

	// 再提一次仍然成功
	assert.NilError(t, f.CheaperWithdraw(owner))
	assert.Equal(t, f.HeldBalance().Sign(), 0)
}

func TestFundAccumulates(t *testing.T) {
	f, _ := newContract("accumulate")
	alice := newFundedAccount("accumulate/alice", e18)

	a := big.NewInt(10000000000000000) // 0.01原生单位 = 20 USD
	assert.NilError(t, f.Fund(alice, a))
	assert.NilError(t, f.Fund(alice, a))

	want := new(big.Int).Mul(a, big.NewInt(2))
	assert.Equal(t, f.AddressToAmountFunded(alice).Cmp(want), 0)
	assert.Equal(t, f.HeldBalance().Cmp(want), 0)
	assert.Equal(t, f.FunderCount(), 1)
}

func TestFundBelowMinimum(t *testing.T) {
	f, _ := newContract("below-min")
	alice := newFundedAccount("below-min/alice", e18)

	// 10^12 = 0.000001原生单位，折合0.002 USD，低于5 USD门槛
	err := f.Fund(alice, big.NewInt(1000000000000))
	assert.Equal(t, err, ErrBelowMinimum)

	// 拒绝后无任何状态变化
	assert.Equal(t, f.HeldBalance().Sign(), 0)
	assert.Equal(t, f.FunderCount(), 0)
	assert.Equal(t, account.GetBalance(alice).Cmp(e18), 0)
}

func TestFundZeroValue(t *testing.T) {
	f, _ := newContract("zero-value")
	alice := newFundedAccount("zero-value/alice", e18)

	assert.Equal(t, f.Fund(alice, big.NewInt(0)), ErrBelowMinimum)
	assert.Equal(t, f.Fund(alice, nil), ErrBelowMinimum)
	assert.Equal(t, f.HeldBalance().Sign(), 0)
}

func TestFundInsufficientBalance(t *testing.T) {
	f, _ := newContract("insufficient")
	alice := newFundedAccount("insufficient/alice", big.NewInt(0))

	err := f.Fund(alice, big.NewInt(10000000000000000))
	assert.Equal(t, err, ErrInsufficientBalance)
	assert.Equal(t, f.HeldBalance().Sign(), 0)
	assert.Equal(t, f.FunderCount(), 0)
}

func TestWithdrawNotOwner(t *testing.T) {
	f, _ := newContract("not-owner")
	alice := newFundedAccount("not-owner/alice", e18)
	assert.NilError(t, f.Fund(alice, big.NewInt(10000000000000000)))

	held := f.HeldBalance()
	mallory := newFundedAccount("not-owner/mallory", big.NewInt(0))

	assert.Equal(t, f.Withdraw(mallory), ErrNotOwner)
	assert.Equal(t, f.CheaperWithdraw(mallory), ErrNotOwner)

	// 拒绝后余额和台账原样保留
	assert.Equal(t, f.HeldBalance().Cmp(held), 0)
	assert.Equal(t, f.FunderCount(), 1)
}

func TestWithdrawFullReset(t *testing.T) {
	f, owner := newContract("full-reset")

	// 10个出资人各出0.1原生单位
	a := big.NewInt(100000000000000000)
	for i := 0; i < 10; i++ {
		funder := newFundedAccount("full-reset/funder"+strconv.Itoa(i), e18)
		assert.NilError(t, f.Fund(funder, a))
	}
	assert.Equal(t, f.FunderCount(), 10)

	before := account.GetBalance(owner)
	assert.NilError(t, f.Withdraw(owner))

	// 合约清空，owner收到 10*0.1 = 1 原生单位
	assert.Equal(t, f.HeldBalance().Sign(), 0)
	delta := new(big.Int).Sub(account.GetBalance(owner), before)
	assert.Equal(t, delta.Cmp(e18), 0)
	_, err := f.Funder(0)
	assert.Equal(t, err, ledger.ErrIndexOutOfRange)
	assert.Equal(t, f.FunderCount(), 0)
}

// 两种提取算法对相同初始状态必须产生完全相同的结果
func TestWithdrawEquivalence(t *testing.T) {
	run := func(seed string, cheaper bool) (*big.Int, int, *big.Int) {
		f, owner := newContract(seed)
		var funders []string
		for i := 0; i < 5; i++ {
			funder := newFundedAccount(seed+"/funder"+strconv.Itoa(i), e18)
			funders = append(funders, funder)
			assert.NilError(t, f.Fund(funder, big.NewInt(10000000000000000)))
		}
		before := account.GetBalance(owner)
		if cheaper {
			assert.NilError(t, f.CheaperWithdraw(owner))
		} else {
			assert.NilError(t, f.Withdraw(owner))
		}
		for _, funder := range funders {
			assert.Equal(t, f.AddressToAmountFunded(funder).Sign(), 0)
		}
		delta := new(big.Int).Sub(account.GetBalance(owner), before)
		return f.HeldBalance(), f.FunderCount(), delta
	}

	held1, count1, delta1 := run("equiv-classic", false)
	held2, count2, delta2 := run("equiv-cheaper", true)

	assert.Equal(t, held1.Cmp(held2), 0)
	assert.Equal(t, count1, count2)
	assert.Equal(t, delta1.Cmp(delta2), 0)
}

func TestWithdrawTransferFailed(t *testing.T) {
	// owner是一个拒收普通转账的合约账户
	owner := testAddress("transfer-failed/owner")
	account.CreateContract(owner, "vault", false)
	f := New(owner, testFeed())

	alice := newFundedAccount("transfer-failed/alice", e18)
	assert.NilError(t, f.Fund(alice, big.NewInt(10000000000000000)))
	held := f.HeldBalance()

	err := f.Withdraw(owner)
	assert.Equal(t, err, ErrTransferFailed)

	// 转账失败时整体回退：余额未动、台账未清
	assert.Equal(t, f.HeldBalance().Cmp(held), 0)
	assert.Equal(t, f.FunderCount(), 1)
	assert.Equal(t, f.AddressToAmountFunded(alice).Cmp(held), 0)
}

func TestFunderOutOfRangeOnEmpty(t *testing.T) {
	f, _ := newContract("empty-roster")
	_, err := f.Funder(0)
	assert.Equal(t, err, ledger.ErrIndexOutOfRange)
}

func TestNonContributorBalance(t *testing.T) {
	f, _ := newContract("non-contributor")
	assert.Equal(t, f.AddressToAmountFunded(testAddress("never-funded")).Sign(), 0)
}

func TestFundOracleUnavailable(t *testing.T) {
	owner := newFundedAccount("oracle-down/owner", big.NewInt(0))
	f := New(owner, downFeed{})
	alice := newFundedAccount("oracle-down/alice", e18)

	err := f.Fund(alice, big.NewInt(10000000000000000))
	assert.Equal(t, err, oracle.ErrUnavailable)
	assert.Equal(t, f.HeldBalance().Sign(), 0)
	assert.Equal(t, account.GetBalance(alice).Cmp(e18), 0)
}

func TestFallbackRejected(t *testing.T) {
	f, _ := newContract("fallback")
	alice := newFundedAccount("fallback/alice", e18)

	err := f.Fallback(alice, big.NewInt(10000000000000000))
	assert.Equal(t, err, ErrDirectTransfer)
	// 回退入口不吞资产
	assert.Equal(t, f.HeldBalance().Sign(), 0)
	assert.Equal(t, account.GetBalance(alice).Cmp(e18), 0)
}

func TestOwnerImmutable(t *testing.T) {
	f, owner := newContract("owner-immutable")
	assert.Equal(t, f.Owner(), owner)

	alice := newFundedAccount("owner-immutable/alice", e18)
	_ = f.Fund(alice, big.NewInt(10000000000000000))
	_ = f.Withdraw(owner)

	// 任何操作都不会改变owner
	assert.Equal(t, f.Owner(), owner)
}

func TestVersionPassThrough(t *testing.T) {
	f, _ := newContract("version")
	v, err := f.Version()
	assert.NilError(t, err)
	assert.Equal(t, v, 4)
}

// 并发出资和并发注册新账户互不干扰，最终台账一致（-race下验证）
func TestConcurrentFundAndRegister(t *testing.T) {
	f, owner := newContract("concurrent")

	a := big.NewInt(10000000000000000)
	var funders []string
	for i := 0; i < 8; i++ {
		funders = append(funders, newFundedAccount("concurrent/funder"+strconv.Itoa(i), e18))
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := f.Fund(funders[i], a); err != nil {
				t.Errorf("fund failed: %s", err)
			}
		}(i)
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			account.CreateAccount(testAddress("concurrent/new"+strconv.Itoa(i)), nil)
			f.HeldBalance()
			f.FunderCount()
		}(i)
	}
	wg.Wait()

	want := new(big.Int).Mul(a, big.NewInt(8))
	assert.Equal(t, f.HeldBalance().Cmp(want), 0)
	assert.Equal(t, f.FunderCount(), 8)
	assert.NilError(t, f.Withdraw(owner))
	assert.Equal(t, f.HeldBalance().Sign(), 0)
}

func TestMinimumUsd(t *testing.T) {
	want, _ := new(big.Int).SetString("5000000000000000000", 10)
	assert.Equal(t, MinimumUsd.Cmp(want), 0)
}

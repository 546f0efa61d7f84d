package account

import (
	"math/big"
	"strconv"
	"sync"
	"testing"

	"gotest.tools/assert"
)

func TestCreateAndBalance(t *testing.T) {
	acc := CreateAccount("addr-create", []byte("pub"))
	assert.Equal(t, acc.Balance.Sign(), 0)
	assert.Equal(t, ContainsAddress("addr-create"), true)
	assert.Equal(t, ContainsAddress("addr-none"), false)
	assert.Equal(t, GetBalance("addr-none").Sign(), 0)
}

func TestAddSubBalance(t *testing.T) {
	CreateAccount("addr-sub", []byte("pub"))
	Mint("addr-sub", big.NewInt(100))

	assert.Equal(t, CanTransfer("addr-sub", big.NewInt(100)), true)
	assert.Equal(t, CanTransfer("addr-sub", big.NewInt(101)), false)

	SubBalance("addr-sub", big.NewInt(40))
	assert.Equal(t, GetBalance("addr-sub").Cmp(big.NewInt(60)), 0)

	AddBalance("addr-sub", big.NewInt(15))
	assert.Equal(t, GetBalance("addr-sub").Cmp(big.NewInt(75)), 0)
}

func TestCanReceive(t *testing.T) {
	CreateAccount("addr-recv", []byte("pub"))
	assert.Equal(t, CanReceive("addr-recv"), true)

	// 未声明payable的合约账户拒收普通转账
	CreateContract("addr-vault", "vault", false)
	assert.Equal(t, CanReceive("addr-vault"), false)

	CreateContract("addr-payable", "bank", true)
	assert.Equal(t, CanReceive("addr-payable"), true)

	// 未注册地址视为可接收（转入即创建）
	assert.Equal(t, CanReceive("addr-unknown"), true)
}

func TestCanTransferUnknown(t *testing.T) {
	assert.Equal(t, CanTransfer("addr-ghost", big.NewInt(1)), false)
}

// 注册和转账来自不同的请求goroutine，状态并发读写不能崩（-race下验证）
func TestConcurrentStateAccess(t *testing.T) {
	CreateAccount("addr-conc", []byte("pub"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			CreateAccount("addr-conc-"+strconv.Itoa(i), []byte("pub"))
			AddBalance("addr-conc", big.NewInt(1))
			GetBalance("addr-conc")
			ContainsAddress("addr-conc-" + strconv.Itoa(i))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, GetBalance("addr-conc").Cmp(big.NewInt(8)), 0)
	for i := 0; i < 8; i++ {
		assert.Equal(t, ContainsAddress("addr-conc-"+strconv.Itoa(i)), true)
	}
}

package meta

import (
	"encoding/hex"
	"math/big"

	"github.com/rjkris/go-jellyfish-merkletree/common"
)

//账户

type Account struct {
	Address    string   //账户地址
	Balance    *big.Int //账户余额（18位定点数，原生价值单位）
	Data       AccountData
	PublicKey  []byte //账户公钥
	PrivateKey []byte //账户私钥
	IsContract bool   //是否为合约账户
}

type AccountData struct {
	ContractName string //合约名称
	Payable      bool   //合约账户是否接受普通转账（外部账户恒为可接收）
}

func (a Account) GetKey() common.HashValue {
	keyBytes, _ := hex.DecodeString(a.Address)
	return common.BytesToHash(keyBytes)
}

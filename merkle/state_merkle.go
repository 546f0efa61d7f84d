package merkle

import (
	"encoding/hex"
	"encoding/json"
	"sync"

	"github.com/cloudflare/cfssl/log"
	"github.com/crowdfundV2/meta"
	"github.com/rjkris/go-jellyfish-merkletree/common"
	"github.com/rjkris/go-jellyfish-merkletree/jellyfish"
)

var AccountStatePath string
var FundingStatePath string

var version uint64 = 0 // 只有在状态变动时，版本号才加一
var versionMu sync.Mutex

// 将一批变更写入状态树，返回新的根hash
func UpdateStateTree(data []meta.JFTreeData, version uint64, path string) (common.HashValue, error) {
	db := jellyfish.NewTreeStore(path)
	defer db.Db.Close()
	tree := jellyfish.JfMerkleTree{
		db,
		nil,
	}
	var kvs []jellyfish.ValueSetItem
	for _, item := range data {
		valueBytes, _ := json.Marshal(item)
		kvs = append(kvs, jellyfish.ValueSetItem{
			item.GetKey(),
			jellyfish.ValueT{valueBytes},
		})
	}
	rootHash, batch := tree.PutValueSet(kvs, jellyfish.Version(version))
	err := db.WriteTreeUpdateBatch(batch)
	if err != nil {
		log.Errorf("state update error: %s", err)
		return rootHash, err
	}
	return rootHash, nil
}

// 获取状态数据和proof
func getProofValue(address string, version uint64, path string) ([]byte, jellyfish.SparseMerkleProof, error) {
	db := jellyfish.NewTreeStore(path)
	defer db.Db.Close()
	tree := jellyfish.JfMerkleTree{db, nil}
	addressBytes, _ := hex.DecodeString(address)
	k := common.BytesToHash(addressBytes)
	proofValue, proof := tree.GetWithProof(k, jellyfish.Version(version))
	return proofValue.GetValue(), proof, nil
}

// 存在性验证
func ProofVerify(rootHash common.HashValue, proof jellyfish.SparseMerkleProof, address string, value meta.JFTreeData) (bool, error) {
	addressBytes, _ := hex.DecodeString(address)
	k := common.BytesToHash(addressBytes)
	dataBytes, err := json.Marshal(value)
	if err != nil {
		log.Errorf("record marshal error: %s", err)
		return false, err
	}
	res := proof.Verify(rootHash, k, jellyfish.ValueT{dataBytes})
	return res, nil
}

func GetVersion() uint64 {
	versionMu.Lock()
	defer versionMu.Unlock()
	curr := version
	version++
	return curr
}

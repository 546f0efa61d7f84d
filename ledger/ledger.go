package ledger

import (
	"encoding/json"
	"errors"
	"math/big"

	"github.com/cloudflare/cfssl/log"
	commonconst "github.com/crowdfundV2/common"
	"github.com/crowdfundV2/levelDB"
	"github.com/crowdfundV2/meta"
)

// 台账下标越界
var ErrIndexOutOfRange = errors.New("ledger: funder index out of range")

/* 众筹台账：出资人累计出资额 + 出资人名单
 * 名单按首次出资顺序排列，每个地址至多出现一次
 * 名单和出资额映射只能一起清空，不存在单独移除某个出资人的操作
 */
type Ledger struct {
	funded  map[string]*big.Int // key: 出资人地址 - val: 累计出资额
	funders []string            // 出资人名单（首次出资顺序）
}

func New() *Ledger {
	return &Ledger{
		funded:  map[string]*big.Int{},
		funders: []string{},
	}
}

// 记录一笔出资。首次出资的地址追加进名单
func (l *Ledger) RecordContribution(funder string, amount *big.Int) {
	cur, ok := l.funded[funder]
	if !ok {
		cur = big.NewInt(0)
		l.funders = append(l.funders, funder)
	}
	l.funded[funder] = new(big.Int).Add(cur, amount)

	l.PutIntoDisk()
}

// 累计出资额。从未出资或已清空的地址返回0
func (l *Ledger) BalanceOf(funder string) *big.Int {
	amount, ok := l.funded[funder]
	if !ok {
		return big.NewInt(0)
	}
	return amount
}

// 名单中第index位出资人
func (l *Ledger) FunderAt(index int) (string, error) {
	if index < 0 || index >= len(l.funders) {
		return "", ErrIndexOutOfRange
	}
	return l.funders[index], nil
}

func (l *Ledger) FunderCount() int {
	return len(l.funders)
}

/* 清空台账。cacheLen选择清零循环读取名单长度的方式：
 * false - 每轮重新读取（对应withdraw）
 * true  - 进入循环前读取一次（对应cheaperWithdraw）
 * 两者唯一的区别是迭代开销，对外结果完全一致
 */
func (l *Ledger) Reset(cacheLen bool) {
	if cacheLen {
		count := len(l.funders)
		for i := 0; i < count; i++ {
			l.funded[l.funders[i]] = big.NewInt(0)
		}
	} else {
		for i := 0; i < len(l.funders); i++ {
			l.funded[l.funders[i]] = big.NewInt(0)
		}
	}
	// 映射和名单一起换新，不存在只清了一边的中间状态
	l.funded = map[string]*big.Int{}
	l.funders = []string{}

	l.PutIntoDisk()
}

// 台账快照的状态树投影
func (l *Ledger) Records() []meta.JFTreeData {
	var records []meta.JFTreeData
	for _, funder := range l.funders {
		records = append(records, meta.FundingRecord{
			Address: funder,
			Amount:  l.funded[funder],
		})
	}
	return records
}

// 持久化用的台账快照
type snapshot struct {
	Funded  map[string]*big.Int
	Funders []string
}

func (l *Ledger) PutIntoDisk() {
	bytes, err := json.Marshal(snapshot{Funded: l.funded, Funders: l.funders})
	if err != nil {
		log.Errorf("ledger marshal error: %s", err)
		return
	}
	levelDB.DBPut(commonconst.FundersKey, bytes)
}

func (l *Ledger) GetFromDisk() {
	dataBytes := levelDB.DBGet(commonconst.FundersKey)
	if dataBytes == nil {
		return
	}
	var s snapshot
	if err := json.Unmarshal(dataBytes, &s); err != nil {
		log.Errorf("ledger unmarshal error: %s", err)
		return
	}
	if s.Funded != nil {
		l.funded = s.Funded
	}
	if s.Funders != nil {
		l.funders = s.Funders
	}
}

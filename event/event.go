package event

import (
	"encoding/json"
	"math/big"
	"sync"
	"time"

	"github.com/cloudflare/cfssl/log"
	commonconst "github.com/crowdfundV2/common"
	"github.com/crowdfundV2/levelDB"
	"github.com/crowdfundV2/meta"
	"github.com/crowdfundV2/redis"
)

var events []meta.FundingEvent
var mu sync.Mutex // 事件表会被请求goroutine并发读写

// 节点启动时恢复历史事件
func InitEventData() {
	mu.Lock()
	defer mu.Unlock()
	dataBytes := levelDB.DBGet(commonconst.EventsKey)
	_ = json.Unmarshal(dataBytes, &events)
}

// 记录一次众筹事件：追加到本地事件表，同时推送到redis供前端消费
func Record(eventType, from string, value *big.Int) {
	mu.Lock()
	defer mu.Unlock()
	ev := meta.FundingEvent{
		Type:      eventType,
		From:      from,
		Value:     value,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	events = append(events, ev)

	bytes, err := json.Marshal(events)
	if err != nil {
		log.Errorf("event marshal error: %s", err)
		return
	}
	levelDB.DBPut(commonconst.EventsKey, bytes)

	evBytes, _ := json.Marshal(ev)
	_ = redis.PushToList(commonconst.EventListKey, string(evBytes))
}

// 全部已记录的众筹事件
func GetEvents() []meta.FundingEvent {
	mu.Lock()
	defer mu.Unlock()
	out := make([]meta.FundingEvent, len(events))
	copy(out, events)
	return out
}

// 清空事件记录（运维入口）
func Clear() {
	mu.Lock()
	defer mu.Unlock()
	events = nil
	levelDB.DBDelete(commonconst.EventsKey)
}

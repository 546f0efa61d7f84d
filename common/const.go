package common

// levelDB 所有账户的key（key: AccountsKey - val: 全部账户信息）
const AccountsKey = "levelDBAccountsKey"

// levelDB 众筹台账的key（key: FundersKey - val: 台账快照）
const FundersKey = "levelDBFundersKey"

// levelDB 众筹事件列表的key
const EventsKey = "levelDBEventsKey"

// levelDB 合约所有者地址的key（首次启动写入，重启时复用）
const OwnerKey = "levelDBOwnerKey"

// 众筹事件类型
const (
	EventFund     = "fund"     // 出资
	EventWithdraw = "withdraw" // 提取
)

// redis 众筹事件推送列表的key
const EventListKey = "fundingEventList"

// redis 最近一次台账状态树根hash的key
const StateRootKey = "fundingStateRoot"

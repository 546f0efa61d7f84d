package meta

type HttpResponse struct {
	Error string      `json:"error"` // 如果不为空代表错误信息
	Data  interface{} `json:"data"`
	Code  int         `json:"code"` // vue-element-admin的前端校验码，必须为20000
}

// fund 请求体
type FundPost struct {
	From  string `json:"from"`  // 出资人地址
	Value string `json:"value"` // 出资额（18位定点数的十进制字符串）
}

// withdraw / cheaperWithdraw 请求体
type WithdrawPost struct {
	From string `json:"from"` // 调用者地址
}

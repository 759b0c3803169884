package response

// 业务码沿用 HTTP 语义，随统一响应体以 200 返回。
// 唯一例外是 Stripe 回调接口：渠道按真实 HTTP 状态码决定重投，不走业务码。
const (
	CodeOK              = 0
	CodeBadRequest      = 400
	CodeUnauthorized    = 401
	CodeNotFound        = 404
	CodeTooManyRequests = 429
	CodeInternal        = 500
)

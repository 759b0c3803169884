package service

import "errors"

var (
	// ErrWebhookConfigInvalid 支付回调配置缺失或不完整
	ErrWebhookConfigInvalid = errors.New("支付回调配置不完整")
	// ErrWebhookSignatureInvalid 回调签名校验失败
	ErrWebhookSignatureInvalid = errors.New("回调签名校验失败")
	// ErrWebhookPayloadInvalid 回调报文不合法
	ErrWebhookPayloadInvalid = errors.New("回调报文不合法")
	// ErrFulfillmentStoreFailed 履约过程中存储层失败
	ErrFulfillmentStoreFailed = errors.New("履约存储操作失败")
	// ErrListingVanished 事务内房源消失（先前存在性检查通过后被并发删除）
	ErrListingVanished = errors.New("履约事务内房源不存在")
	// ErrListingNotFound 房源不存在
	ErrListingNotFound = errors.New("房源不存在")
	// ErrListingInvalid 房源参数不合法
	ErrListingInvalid = errors.New("房源参数不合法")
	// ErrPaymentRecordNotFound 履约台账不存在
	ErrPaymentRecordNotFound = errors.New("履约台账不存在")
	// ErrCheckoutInvalid 创建支付会话参数不合法
	ErrCheckoutInvalid = errors.New("支付会话参数不合法")
	// ErrCheckoutGatewayFailed 支付网关请求失败
	ErrCheckoutGatewayFailed = errors.New("支付网关请求失败")
	// ErrInvalidCredentials 用户名或密码错误
	ErrInvalidCredentials = errors.New("用户名或密码错误")
)

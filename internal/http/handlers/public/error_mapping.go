package public

import (
	"errors"

	"github.com/hausmarkt/internal/http/response"
	"github.com/hausmarkt/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var checkoutErrorRules = []mappedHandlerError{
	{target: service.ErrCheckoutInvalid, code: response.CodeBadRequest, msg: "结账参数无效"},
	{target: service.ErrListingNotFound, code: response.CodeNotFound, msg: "房源不存在"},
	{target: service.ErrCheckoutGatewayFailed, code: response.CodeBadRequest, msg: "支付网关请求失败"},
}

var listingErrorRules = []mappedHandlerError{
	{target: service.ErrListingNotFound, code: response.CodeNotFound, msg: "房源不存在"},
	{target: service.ErrListingInvalid, code: response.CodeBadRequest, msg: "房源参数无效"},
}

func respondCheckoutError(c *gin.Context, err error) {
	respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "创建支付会话失败")
}

func respondListingError(c *gin.Context, err error) {
	respondWithMappedError(c, err, listingErrorRules, response.CodeInternal, "房源查询失败")
}

package public

import (
	"errors"

	"github.com/giftlink-next/internal/chain"
	"github.com/giftlink-next/internal/giftlink"
	"github.com/giftlink-next/internal/http/response"
	"github.com/giftlink-next/internal/service"
	"github.com/giftlink-next/internal/verifier"

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

var giftLookupErrorRules = []mappedHandlerError{
	{target: giftlink.ErrGiftNotFound, code: response.CodeNotFound, msg: "gift not found"},
	{target: chain.ErrGiftNotFound, code: response.CodeNotFound, msg: "gift not found"},
	{target: chain.ErrRequestFailed, code: response.CodeInternal, msg: "chain unavailable"},
	{target: chain.ErrResponseInvalid, code: response.CodeInternal, msg: "chain response invalid"},
}

var claimErrorRules = []mappedHandlerError{
	{target: giftlink.ErrExpired, code: response.CodeGone, msg: "gift expired"},
	{target: giftlink.ErrExhausted, code: response.CodeGone, msg: "gift exhausted"},
	{target: giftlink.ErrBadSecret, code: response.CodeForbidden, msg: "wrong secret"},
	{target: giftlink.ErrUnverifiedActor, code: response.CodeForbidden, msg: "actor not verified"},
	{target: giftlink.ErrDegenerateSplit, code: response.CodeConflict, msg: "gift not splittable"},
	{target: giftlink.ErrInvalidParameters, code: response.CodeBadRequest, msg: "invalid parameters"},
	{target: verifier.ErrRequestFailed, code: response.CodeInternal, msg: "verifier unavailable"},
	{target: verifier.ErrResponseInvalid, code: response.CodeInternal, msg: "verifier response invalid"},
}

var refundErrorRules = []mappedHandlerError{
	{target: giftlink.ErrNotSender, code: response.CodeForbidden, msg: "only sender can refund"},
	{target: giftlink.ErrNotExpired, code: response.CodeConflict, msg: "gift not expired yet"},
	{target: giftlink.ErrNothingToRefund, code: response.CodeConflict, msg: "nothing to refund"},
}

var registerErrorRules = []mappedHandlerError{
	{target: service.ErrGiftAlreadyRegistered, code: response.CodeConflict, msg: "gift already registered"},
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

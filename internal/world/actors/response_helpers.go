package actors

import (
	"Wyrmgus/internal/shared/actor/messages"
	"Wyrmgus/modules/kit/errx"

	"github.com/asynkron/protoactor-go/actor"
)

func ok(payload any) messages.Reply {
	return messages.Reply{Ok: true, Payload: payload}
}

// fail 把错误链上的 errx 错误码带回调用方，没有错误码的一律算内部错误。
func fail(err error) messages.Reply {
	code := errx.CodeOf(err)
	if code == "" {
		code = errx.CodeInternal
	}
	return messages.Reply{Code: string(code), Message: err.Error()}
}

func failCode(code errx.Code, reason string) messages.Reply {
	return messages.Reply{Code: string(code), Message: reason}
}

func respond(ctx actor.Context, payload any, err error) {
	if err != nil {
		ctx.Respond(fail(err))
		return
	}
	ctx.Respond(ok(payload))
}

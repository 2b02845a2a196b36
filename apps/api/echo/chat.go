package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/elimuhq/elimu/core/chat"
)

type chatApi struct {
	svc      chat.Service
	validate *validator.Validate
}

func registerChatAPI(
	g *echo.Group,
	jwt, resolve echo.MiddlewareFunc,
	svc chat.Service,
	validate *validator.Validate,
) {
	api := chatApi{svc: svc, validate: validate}
	g.POST("/chat", api.complete, jwt, resolve)
}

type ChatRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

func (api chatApi) complete(ctx echo.Context) error {
	var req ChatRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if err := api.validate.Struct(&req); err != nil {
		return err
	}

	reply, err := api.svc.Complete(ctx.Request().Context(), req.Prompt)
	if err != nil {
		if errors.Cause(err) == chat.ErrUnavailable {
			return echo.NewHTTPError(http.StatusBadGateway, chat.ErrUnavailable.Error())
		}
		return errors.Wrap(err, "completing chat prompt")
	}
	return ctx.JSON(http.StatusOK, ChatResponse{Reply: reply})
}

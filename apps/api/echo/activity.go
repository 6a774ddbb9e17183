package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nickmarkin/AAA-Summarizer/core/activity"
)

type activityApi struct {
	reg      *activity.Registry
	validate *validator.Validate
}

func registerActivityAPI(g *echo.Group, deps ServerDeps) {
	api := activityApi{reg: deps.ActivityReg, validate: deps.Validate}

	ag := g.Group("/activity-types")
	ag.POST("", api.create)
	ag.GET("", api.query)
	ag.GET("/:key", api.retrieve)
	ag.PUT("/:key", api.update)
	ag.POST("/:key/deactivate", api.deactivate)
}

func (api *activityApi) create(ctx echo.Context) error {
	var data activity.NewActivityType
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewActivityType")
	}
	if err := data.Validate(api.validate, api.reg); err != nil {
		return err
	}
	at, err := api.reg.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, at)
}

func (api *activityApi) query(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	var (
		types []activity.ActivityType
		err   error
	)
	if boolParam(ctx, "active") {
		types, err = api.reg.AllActive(reqCtx)
	} else {
		types, err = api.reg.All(reqCtx)
	}
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, types)
}

func (api *activityApi) retrieve(ctx echo.Context) error {
	at, err := api.reg.Lookup(ctx.Request().Context(), ctx.Param("key"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, at)
}

func (api *activityApi) update(ctx echo.Context) error {
	var data activity.UpdateActivityType
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateActivityType")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	at, err := api.reg.Update(ctx.Request().Context(), ctx.Param("key"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, at)
}

func (api *activityApi) deactivate(ctx echo.Context) error {
	at, err := api.reg.Deactivate(ctx.Request().Context(), ctx.Param("key"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, at)
}

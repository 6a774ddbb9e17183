package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nickmarkin/AAA-Summarizer/core/department"
)

type departmentApi struct {
	svc *department.Service
}

func registerDepartmentAPI(g *echo.Group, deps ServerDeps) {
	api := departmentApi{svc: deps.DeptSvc}

	dg := g.Group("/departmental")
	dg.GET("", api.query)
	dg.GET("/:email", api.retrieve)
	dg.PUT("/:email", api.update)
}

func (api *departmentApi) query(ctx echo.Context) error {
	records, err := api.svc.QueryByYear(ctx.Request().Context(), yearCode(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *departmentApi) retrieve(ctx echo.Context) error {
	rec, err := api.svc.Get(ctx.Request().Context(), ctx.Param("email"), yearCode(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

// update applies administrator edits, creating the year's record on first
// touch.
func (api *departmentApi) update(ctx echo.Context) error {
	var data department.UpdateRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateRecord")
	}
	rec, err := api.svc.Update(ctx.Request().Context(), ctx.Param("email"), yearCode(ctx), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

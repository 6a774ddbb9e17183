package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nickmarkin/AAA-Summarizer/core/faculty"
)

type facultyApi struct {
	svc *faculty.Service
}

func registerFacultyAPI(g *echo.Group, deps ServerDeps) {
	api := facultyApi{svc: deps.FacultySvc}

	fg := g.Group("/faculty")
	fg.POST("", api.create)
	fg.GET("", api.query)
	fg.POST("/roster-import", api.importRoster)
	fg.GET("/:email", api.retrieve)
	fg.PUT("/:email", api.update)
	fg.POST("/:email/deactivate", api.deactivate)
}

func (api *facultyApi) create(ctx echo.Context) error {
	var data faculty.NewFacultyMember
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFacultyMember")
	}
	fm, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, fm)
}

func (api *facultyApi) query(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	var (
		members []faculty.FacultyMember
		err     error
	)
	if boolParam(ctx, "active") {
		members, err = api.svc.AllActive(reqCtx)
	} else {
		members, err = api.svc.All(reqCtx)
	}
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, members)
}

func (api *facultyApi) retrieve(ctx echo.Context) error {
	fm, err := api.svc.GetByEmail(ctx.Request().Context(), ctx.Param("email"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, fm)
}

func (api *facultyApi) update(ctx echo.Context) error {
	var data faculty.UpdateFacultyMember
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateFacultyMember")
	}
	fm, err := api.svc.Update(ctx.Request().Context(), ctx.Param("email"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, fm)
}

func (api *facultyApi) deactivate(ctx echo.Context) error {
	fm, err := api.svc.Deactivate(ctx.Request().Context(), ctx.Param("email"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, fm)
}

// importRoster takes a multipart `file` and upserts its rows. Pass
// `update_existing=true` to overwrite members already on the roster.
func (api *facultyApi) importRoster(ctx echo.Context) error {
	fileHdr, err := ctx.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing `file` upload")
	}
	file, err := fileHdr.Open()
	if err != nil {
		return errors.Wrap(err, "opening roster upload")
	}
	defer file.Close() //nolint:errcheck

	stats, err := api.svc.ImportRoster(ctx.Request().Context(), file, boolParam(ctx, "update_existing"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stats)
}

package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nickmarkin/AAA-Summarizer/core/report"
)

type reportApi struct {
	svc *report.Service
}

func registerReportAPI(g *echo.Group, deps ServerDeps) {
	api := reportApi{svc: deps.ReportSvc}

	rg := g.Group("/reports")
	rg.GET("/points-summary", api.pointsSummary)
	rg.GET("/points-summary.csv", api.pointsSummaryCSV)
	rg.GET("/roster.csv", api.rosterCSV)
	rg.GET("/activities.csv", api.activitiesCSV)
}

func (api *reportApi) pointsSummary(ctx echo.Context) error {
	rows, err := api.svc.PointsSummary(ctx.Request().Context(), yearCode(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rows)
}

func csvAttachment(ctx echo.Context, filename string) {
	ctx.Response().Header().Set(echo.HeaderContentType, "text/csv")
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Response().WriteHeader(http.StatusOK)
}

func (api *reportApi) pointsSummaryCSV(ctx echo.Context) error {
	year := yearCode(ctx)
	csvAttachment(ctx, fmt.Sprintf("points-summary-%s.csv", year))
	return api.svc.WritePointsSummaryCSV(ctx.Request().Context(), ctx.Response(), year)
}

func (api *reportApi) rosterCSV(ctx echo.Context) error {
	csvAttachment(ctx, "roster.csv")
	return api.svc.WriteRosterCSV(ctx.Request().Context(), ctx.Response())
}

func (api *reportApi) activitiesCSV(ctx echo.Context) error {
	year := yearCode(ctx)
	csvAttachment(ctx, fmt.Sprintf("activities-%s.csv", year))
	return api.svc.WriteActivitiesCSV(ctx.Request().Context(), ctx.Response(), year)
}

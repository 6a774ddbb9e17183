package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nickmarkin/AAA-Summarizer/core/review"
)

type reviewApi struct {
	svc *review.Service
}

func registerReviewAPI(g *echo.Group, deps ServerDeps) {
	api := reviewApi{svc: deps.ReviewSvc}

	rg := g.Group("/reviews/:email")
	rg.GET("", api.retrieve)
	rg.PUT("/entries/:entryID", api.reviewEntry)
	rg.DELETE("/entries/:entryID", api.clearEntry)
	rg.POST("/verify", api.verifyYear)
	rg.POST("/unverify", api.unverifyYear)
}

type reviewOverlayResponse struct {
	Annual  review.FacultyAnnualReview `json:"annual"`
	Entries []review.EntryReview       `json:"entries"`
}

func (api *reviewApi) retrieve(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	email, year := ctx.Param("email"), yearCode(ctx)

	annual, err := api.svc.AnnualReview(reqCtx, email, year)
	if err != nil {
		return err
	}
	entries, err := api.svc.EntryReviews(reqCtx, email, year)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, reviewOverlayResponse{Annual: annual, Entries: entries})
}

type reviewEntryRequest struct {
	Status     string `json:"status"`
	Note       string `json:"note"`
	ReviewedBy string `json:"reviewed_by"`
}

func (api *reviewApi) reviewEntry(ctx echo.Context) error {
	var data reviewEntryRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to reviewEntryRequest")
	}
	er, err := api.svc.ReviewEntry(ctx.Request().Context(), ctx.Param("email"), yearCode(ctx), ctx.Param("entryID"), data.Status, data.Note, data.ReviewedBy)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, er)
}

func (api *reviewApi) clearEntry(ctx echo.Context) error {
	er, err := api.svc.ClearEntry(ctx.Request().Context(), ctx.Param("email"), yearCode(ctx), ctx.Param("entryID"), ctx.QueryParam("reviewed_by"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, er)
}

type verifyYearRequest struct {
	VerifiedBy string `json:"verified_by"`
}

func (api *reviewApi) verifyYear(ctx echo.Context) error {
	var data verifyYearRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to verifyYearRequest")
	}
	ar, err := api.svc.VerifyYear(ctx.Request().Context(), ctx.Param("email"), yearCode(ctx), data.VerifiedBy)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ar)
}

func (api *reviewApi) unverifyYear(ctx echo.Context) error {
	ar, err := api.svc.UnverifyYear(ctx.Request().Context(), ctx.Param("email"), yearCode(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ar)
}

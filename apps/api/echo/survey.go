package echoapi

import (
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nickmarkin/AAA-Summarizer/core/survey"
)

type surveyApi struct {
	svc      *survey.Service
	verifier IFVerifier
}

func registerSurveyAPI(g *echo.Group, deps ServerDeps) {
	api := surveyApi{svc: deps.SurveySvc, verifier: deps.IFVerifier}

	// admin endpoints
	sg := g.Group("/surveys")
	sg.GET("/records", api.queryRecords)
	sg.GET("/records/:email", api.retrieveRecord)
	sg.POST("/records/:email/entries", api.addEntry)
	sg.PUT("/records/:email/entries/:id", api.updateEntry)
	sg.DELETE("/records/:email/entries/:id", api.deleteEntry)

	sg.POST("/imports/preview", api.previewImport)
	sg.POST("/imports", api.confirmImport)
	sg.GET("/imports", api.queryImports)

	sg.POST("/campaigns", api.createCampaign)
	sg.GET("/campaigns", api.queryCampaigns)
	sg.GET("/campaigns/:id", api.retrieveCampaign)
	sg.GET("/campaigns/:id/invitations", api.queryInvitations)
	sg.POST("/campaigns/:id/send-invitations", api.sendInvitations)
	sg.POST("/campaigns/:id/send-reminders", api.sendReminders)
	sg.POST("/invitations/:id/unlock", api.unlockInvitation)

	// token endpoints (no auth beyond the opaque token itself)
	tg := g.Group("/survey/:token")
	tg.GET("", api.accessByToken)
	tg.PUT("/categories/:category", api.saveCategory)
	tg.POST("/submit", api.submit)
}

// --- records ---

func (api *surveyApi) queryRecords(ctx echo.Context) error {
	records, err := api.svc.QueryRecordsByYear(ctx.Request().Context(), yearCode(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, records)
}

type recordDetailResponse struct {
	Record survey.Record `json:"record"`
	Merged survey.Tree   `json:"merged"`

	// DOI verification stats, present when `verify_if=true`.
	IFChecked     *int `json:"if_checked,omitempty"`
	IFUnconfirmed *int `json:"if_unconfirmed,omitempty"`
}

// retrieveRecord returns the stored record and its merged display tree.
// `quarter` enables carry-forward injection for that quarter's view;
// `verify_if=true` runs a best-effort Crossref check over reported DOIs.
func (api *surveyApi) retrieveRecord(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	email, year := ctx.Param("email"), yearCode(ctx)

	rec, err := api.svc.GetRecord(reqCtx, email, year)
	if err != nil {
		return err
	}
	merged, err := api.svc.MergedView(reqCtx, email, year, ctx.QueryParam("quarter"))
	if err != nil {
		return err
	}

	resp := recordDetailResponse{Record: rec, Merged: merged}
	if api.verifier != nil && boolParam(ctx, "verify_if") {
		checked, unconfirmed := api.verifier.VerifyTree(reqCtx, merged)
		resp.IFChecked, resp.IFUnconfirmed = &checked, &unconfirmed
	}
	return ctx.JSON(http.StatusOK, resp)
}

// --- manual entries ---

func (api *surveyApi) addEntry(ctx echo.Context) error {
	var data survey.NewManualEntry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewManualEntry")
	}
	entry, err := api.svc.AddManualEntry(ctx.Request().Context(), ctx.Param("email"), yearCode(ctx), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, entry)
}

func (api *surveyApi) updateEntry(ctx echo.Context) error {
	var data survey.NewManualEntry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewManualEntry")
	}
	entry, err := api.svc.UpdateManualEntry(ctx.Request().Context(), ctx.Param("email"), yearCode(ctx), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, entry)
}

func (api *surveyApi) deleteEntry(ctx echo.Context) error {
	if err := api.svc.DeleteManualEntry(ctx.Request().Context(), ctx.Param("email"), yearCode(ctx), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// --- imports ---

type importPreviewRow struct {
	Email         string   `json:"email"`
	DisplayName   string   `json:"display_name"`
	Quarters      []string `json:"quarters"`
	ActivityCount int      `json:"activity_count"`
	Total         int      `json:"total"`
	HasIncomplete bool     `json:"has_incomplete"`
}

func (api *surveyApi) parseUpload(ctx echo.Context) (*survey.ParsedImport, string, error) {
	fileHdr, err := ctx.FormFile("file")
	if err != nil {
		return nil, "", echo.NewHTTPError(http.StatusBadRequest, "missing `file` upload")
	}
	file, err := fileHdr.Open()
	if err != nil {
		return nil, "", errors.Wrap(err, "opening survey upload")
	}
	defer file.Close() //nolint:errcheck

	parsed, err := api.svc.ParseImport(ctx.Request().Context(), file, yearCode(ctx))
	if err != nil {
		return nil, "", err
	}
	return parsed, fileHdr.Filename, nil
}

// previewImport parses the upload without writing anything.
func (api *surveyApi) previewImport(ctx echo.Context) error {
	parsed, _, err := api.parseUpload(ctx)
	if err != nil {
		return err
	}

	rows := make([]importPreviewRow, 0, len(parsed.Faculty))
	for _, fac := range parsed.Faculty {
		rows = append(rows, importPreviewRow{
			Email:         fac.Email,
			DisplayName:   fac.DisplayName,
			Quarters:      fac.Quarters,
			ActivityCount: fac.ActivityCount,
			Total:         fac.Total,
			HasIncomplete: fac.HasIncomplete,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Email < rows[j].Email })
	return ctx.JSON(http.StatusOK, rows)
}

func (api *surveyApi) confirmImport(ctx echo.Context) error {
	parsed, filename, err := api.parseUpload(ctx)
	if err != nil {
		return err
	}
	imp, err := api.svc.ImportConfirm(ctx.Request().Context(), parsed, yearCode(ctx), filename, ctx.FormValue("imported_by"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, imp)
}

func (api *surveyApi) queryImports(ctx echo.Context) error {
	imports, err := api.svc.QueryImports(ctx.Request().Context(), yearCode(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, imports)
}

// --- campaigns ---

func (api *surveyApi) createCampaign(ctx echo.Context) error {
	var data survey.NewCampaign
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCampaign")
	}
	cmp, err := api.svc.CreateCampaign(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, cmp)
}

type campaignResponse struct {
	survey.Campaign
	Status string `json:"status"`
}

func withStatus(cmp survey.Campaign, now time.Time) campaignResponse {
	return campaignResponse{Campaign: cmp, Status: cmp.Status(now)}
}

func (api *surveyApi) queryCampaigns(ctx echo.Context) error {
	campaigns, err := api.svc.QueryCampaigns(ctx.Request().Context(), yearCode(ctx))
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	out := make([]campaignResponse, len(campaigns))
	for i, cmp := range campaigns {
		out[i] = withStatus(cmp, now)
	}
	return ctx.JSON(http.StatusOK, out)
}

func (api *surveyApi) retrieveCampaign(ctx echo.Context) error {
	cmp, err := api.svc.GetCampaign(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, withStatus(cmp, time.Now().UTC()))
}

func (api *surveyApi) queryInvitations(ctx echo.Context) error {
	invs, err := api.svc.CampaignInvitations(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, invs)
}

func (api *surveyApi) sendInvitations(ctx echo.Context) error {
	sent, err := api.svc.SendInvitations(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"sent": sent})
}

func (api *surveyApi) sendReminders(ctx echo.Context) error {
	sent, err := api.svc.SendReminders(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"sent": sent})
}

func (api *surveyApi) unlockInvitation(ctx echo.Context) error {
	inv, err := api.svc.UnlockInvitation(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, inv)
}

// --- token access ---

type tokenAccessResponse struct {
	Campaign   campaignResponse  `json:"campaign"`
	Invitation survey.Invitation `json:"invitation"`
	Response   survey.Response   `json:"response"`
}

func (api *surveyApi) accessByToken(ctx echo.Context) error {
	cmp, inv, res, err := api.svc.AccessByToken(ctx.Request().Context(), ctx.Param("token"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tokenAccessResponse{
		Campaign:   withStatus(cmp, time.Now().UTC()),
		Invitation: inv,
		Response:   res,
	})
}

type saveCategoryRequest struct {
	Data     survey.CategoryData `json:"data"`
	Complete bool                `json:"complete"`
}

func (api *surveyApi) saveCategory(ctx echo.Context) error {
	var data saveCategoryRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to saveCategoryRequest")
	}
	res, err := api.svc.SaveCategory(ctx.Request().Context(), ctx.Param("token"), ctx.Param("category"), data.Data, data.Complete)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *surveyApi) submit(ctx echo.Context) error {
	res, err := api.svc.SubmitResponse(ctx.Request().Context(), ctx.Param("token"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

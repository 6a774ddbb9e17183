package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/nickmarkin/AAA-Summarizer/core/faculty"
)

// yearCode returns the `year` query parameter, defaulting to the current
// academic year (July-June).
func yearCode(ctx echo.Context) string {
	if year := ctx.QueryParam("year"); year != "" {
		return year
	}
	return faculty.CurrentYearCode()
}

func boolParam(ctx echo.Context, name string) bool {
	switch ctx.QueryParam(name) {
	case "1", "true", "yes":
		return true
	}
	return false
}

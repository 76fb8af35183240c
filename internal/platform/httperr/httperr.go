package httperr

import "github.com/labstack/echo/v4"

// Payload is the error body every handler returns: a stable machine code and
// a human message.
type Payload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func JSON(c echo.Context, status int, code, message string) error {
	return c.JSON(status, Payload{Code: code, Message: message})
}

package handlers

import (
	"github.com/labstack/echo/v4"
)

// Envelope is the uniform response body of the kiosk API.
type Envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func ok(c echo.Context, code int, data interface{}) error {
	return c.JSON(code, Envelope{Status: "OK", Data: data})
}

func okMsg(c echo.Context, code int, msg string, data interface{}) error {
	return c.JSON(code, Envelope{Status: "OK", Message: msg, Data: data})
}

func fail(c echo.Context, code int, msg string, err error) error {
	env := Envelope{Status: "ERROR", Message: msg}
	if err != nil {
		env.Error = err.Error()
	}
	return c.JSON(code, env)
}

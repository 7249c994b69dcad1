package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Recover returns middleware that recovers from panics in handlers.
func Recover() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					err := fmt.Errorf("panic: %v", r)
					c.Logger().Error(err)
					_ = c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
				}
			}()
			return next(c)
		}
	}
}

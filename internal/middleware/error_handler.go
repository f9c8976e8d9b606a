package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// JSONErrorHandler creates a custom error handler for Echo that renders every
// error as a JSON body with a stable shape.
func JSONErrorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	errorMessage := ""

	// Check if it's an Echo HTTPError
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code

		// Try to extract message from HTTPError
		if msg, ok := he.Message.(string); ok && msg != "" {
			errorMessage = msg
		}

		// Set default message if no custom message provided
		if errorMessage == "" {
			switch code {
			case http.StatusNotFound:
				errorMessage = "The resource you're looking for doesn't exist."
			case http.StatusForbidden:
				errorMessage = "You don't have permission to access this resource."
			case http.StatusUnauthorized:
				errorMessage = "Authentication required."
			case http.StatusBadRequest:
				errorMessage = "The request could not be processed."
			case http.StatusConflict:
				errorMessage = "The request conflicts with the current state."
			default:
				errorMessage = "Something went wrong. Please try again later."
			}
		}
	} else {
		// Non-HTTPError, use default
		errorMessage = "Something went wrong. Please try again later."
	}

	// Log the error
	c.Logger().Error(err)

	if c.Response().Committed {
		return
	}
	if jsonErr := c.JSON(code, map[string]string{"error": errorMessage}); jsonErr != nil {
		c.Logger().Error(jsonErr)
	}
}

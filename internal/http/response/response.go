// Package response формирует HTTP ответы API: тела без обёртки для успешных
// запросов и единый формат ошибок.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-catalog/internal/logger"
	"github.com/ignatzorin/freelance-catalog/internal/pkg/apperror"
)

type ErrorResponse struct {
	Success bool       `json:"success"`
	Error   *ErrorInfo `json:"error"`
}

type ErrorInfo struct {
	Code    string                `json:"code"`
	Message string                `json:"message"`
	Entity  string                `json:"entity,omitempty"`
	Key     string                `json:"key,omitempty"`
	Fields  []apperror.FieldError `json:"fields,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created отвечает 201 с заголовком Location.
func Created(c *gin.Context, location string, data interface{}) {
	if location != "" {
		c.Header("Location", location)
	}
	c.JSON(http.StatusCreated, data)
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error пишет ошибку в едином формате. Неизвестные ошибки маскируются, причина уходит в лог.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			logger.FromContext(c.Request.Context()).WithError(err).Error("ошибка обработки запроса")
		}
		c.JSON(appErr.HTTPStatus, ErrorResponse{
			Success: false,
			Error: &ErrorInfo{
				Code:    string(appErr.Code),
				Message: appErr.Message,
				Entity:  appErr.Entity,
				Key:     appErr.Key,
				Fields:  appErr.Fields,
			},
		})
		return
	}

	logger.FromContext(c.Request.Context()).WithError(err).Error("необработанная ошибка")
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Success: false,
		Error: &ErrorInfo{
			Code:    string(apperror.ErrCodeInternal),
			Message: "внутренняя ошибка сервера",
		},
	})
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"game_store_backend/internal/middleware"
	"game_store_backend/internal/services"
	"game_store_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type errorMapping struct {
	targets []error
	status  int
	code    string
}

// serviceErrors maps service sentinels to HTTP answers. The first match wins.
var serviceErrors = []errorMapping{
	{[]error{
		services.ErrUserNotFound, services.ErrStaffNotFound, services.ErrClientNotFound,
		services.ErrConsoleNotFound, services.ErrPricingNotFound, services.ErrSessionNotFound,
		services.ErrProductNotFound, services.ErrSaleNotFound, services.ErrServiceNotFound,
		services.ErrRequestNotFound, services.ErrOrderNotFound, services.ErrReservationNotFound,
		services.ErrPostNotFound, services.ErrSettingNotFound, services.ErrExpenseNotFound,
		services.ErrCartItemMissing, services.ErrNoOpenShift,
	}, http.StatusNotFound, utils.ErrCodeNotFound},
	{[]error{
		services.ErrEmailExists, services.ErrPhoneNumberExists, services.ErrConsoleExists,
		services.ErrClientInUse, services.ErrConsoleInUse, services.ErrPricingInUse,
		services.ErrServiceInUse, services.ErrStaffInUse, services.ErrConsoleNotAvailable,
		services.ErrSessionNotActive, services.ErrRequestClosed, services.ErrOrderClosed,
		services.ErrReservationConflict, services.ErrReservationTransition, services.ErrShiftAlreadyOpen,
		services.ErrLastOwner, services.ErrInsufficientPoints, services.ErrProductInactive,
	}, http.StatusConflict, utils.ErrCodeConflict},
	{[]error{
		services.ErrWeakPassword, services.ErrStaffValidation, services.ErrClientValidation,
		services.ErrPointsValidation, services.ErrConsoleValidation, services.ErrPricingValidation,
		services.ErrPricingMismatch, services.ErrSessionValidation, services.ErrProductValidation,
		services.ErrSaleValidation, services.ErrRepairValidation, services.ErrOrderValidation,
		services.ErrInvalidOrderStatus, services.ErrEmptyOrder, services.ErrReservationValidation,
		services.ErrInvalidReservationTime, services.ErrPostValidation, services.ErrSettingValidation,
		services.ErrExpenseValidation, services.ErrInvalidRange, services.ErrContactValidation,
		services.ErrInvalidCartID, services.ErrInvalidResetToken, services.ErrCleanupValidation,
	}, http.StatusBadRequest, utils.ErrCodeValidationFailed},
	{[]error{services.ErrInvalidCredentials}, http.StatusUnauthorized, utils.ErrCodeUnauthorized},
	{[]error{services.ErrCannotDeleteSelf}, http.StatusForbidden, utils.ErrCodeForbidden},
	{[]error{services.ErrNotifyTimeout}, http.StatusGatewayTimeout, utils.ErrCodeGatewayTimeout},
	{[]error{services.ErrCartUnavailable}, http.StatusServiceUnavailable, utils.ErrCodeServiceUnavailable},
}

// respondServiceError logs err and answers with the mapped status. message is
// the user-facing text for unexpected failures.
func respondServiceError(c *gin.Context, err error, op, message string) {
	for _, m := range serviceErrors {
		for _, target := range m.targets {
			if errors.Is(err, target) {
				if m.status >= http.StatusInternalServerError {
					utils.LogError(err, op)
				} else {
					utils.LogDebug(op, map[string]interface{}{"error": err.Error()})
				}
				utils.RespondWithError(c, utils.NewAPIError(m.status, m.code, publicMessage(target), err.Error()))
				return
			}
		}
	}
	utils.LogError(err, op)
	utils.RespondInternalError(c, message)
}

func publicMessage(target error) string {
	if errors.Is(target, services.ErrNotifyTimeout) {
		return "The email service did not answer in time. Please try again."
	}
	return target.Error()
}

func bindJSON(c *gin.Context, req interface{}, op string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.LogDebug(op+": failed to bind JSON", map[string]interface{}{"error": err.Error()})
		utils.RespondValidationFailed(c, err.Error())
		return false
	}
	return true
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid "+name+" format", c.Param(name)))
		return 0, false
	}
	return id, true
}

// actorID is the authenticated staff id, nil on public routes.
func actorID(c *gin.Context) *int64 {
	if id, ok := middleware.CurrentUserID(c); ok {
		return &id
	}
	return nil
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return page, pageSize
}

func optString(c *gin.Context, key string) *string {
	if v, ok := c.GetQuery(key); ok && v != "" {
		return &v
	}
	return nil
}

func optInt64(c *gin.Context, key string) (*int64, bool) {
	v, ok := c.GetQuery(key)
	if !ok || v == "" {
		return nil, true
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid "+key, v))
		return nil, false
	}
	return &n, true
}

// optTime accepts RFC 3339 or a plain YYYY-MM-DD date.
func optTime(c *gin.Context, key string) (*time.Time, bool) {
	v, ok := c.GetQuery(key)
	if !ok || v == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return &t, true
		}
	}
	utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid "+key+" date", "use YYYY-MM-DD or RFC 3339"))
	return nil, false
}

type listResponse struct {
	Data     interface{} `json:"data"`
	Total    int         `json:"total"`
	Page     int         `json:"page,omitempty"`
	PageSize int         `json:"page_size,omitempty"`
}

package breakpolicy

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go-timeclock/internal/shared/apperror"
	"go-timeclock/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const activeBreakCacheTTL = 10 * time.Second

type Handler struct {
	service Service
	rdb     *redis.Client
	sf      *singleflight.Group
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service, sf: &singleflight.Group{}}
}

func NewHandlerWithRedis(service Service, rdb *redis.Client) *Handler {
	return &Handler{service: service, rdb: rdb, sf: &singleflight.Group{}}
}

func getActorID(c *gin.Context) string {
	actorID := c.GetString("employee_id")
	if actorID == "" {
		actorID = c.GetString("user_id_validated")
	}
	return actorID
}

func activeBreakCacheKey(companyID, employeeID string) string {
	return fmt.Sprintf("break:active:%s:%s", companyID, employeeID)
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) invalidateActiveBreak(c *gin.Context, companyID, employeeID string) {
	if h.rdb == nil {
		return
	}
	_ = h.rdb.Del(c.Request.Context(), activeBreakCacheKey(companyID, employeeID)).Err()
}

func (h *Handler) Start(c *gin.Context) {
	companyID := c.GetString("company_id")
	actorID := getActorID(c)

	var req StartBreakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Input tidak valid", err.Error())
		return
	}

	resp, err := h.service.StartBreak(c.Request.Context(), companyID, actorID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.invalidateActiveBreak(c, companyID, actorID)
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) End(c *gin.Context) {
	companyID := c.GetString("company_id")
	actorID := getActorID(c)

	var req EndBreakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Input tidak valid", err.Error())
		return
	}

	resp, err := h.service.EndBreak(c.Request.Context(), companyID, actorID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.invalidateActiveBreak(c, companyID, actorID)
	response.Success(c, http.StatusOK, resp, nil)
}

// GetActive is polled by clients showing a live break timer, so reads go
// through a short redis cache with singleflight collapsing concurrent misses.
func (h *Handler) GetActive(c *gin.Context) {
	ctx := c.Request.Context()
	companyID := c.GetString("company_id")
	actorID := getActorID(c)

	cacheKey := activeBreakCacheKey(companyID, actorID)
	if h.rdb != nil {
		cached, err := h.rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			if cached == "null" {
				response.SuccessNull(c, http.StatusOK)
				return
			}
			var resp ActiveBreakResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				response.Success(c, http.StatusOK, resp, nil)
				return
			}
		}
	}

	v, err, _ := h.sf.Do(cacheKey, func() (interface{}, error) {
		resp, err := h.service.GetActiveBreak(ctx, companyID, actorID)
		if err != nil {
			return nil, err
		}
		if h.rdb != nil {
			if payload, marshalErr := json.Marshal(resp); marshalErr == nil {
				_ = h.rdb.Set(ctx, cacheKey, payload, activeBreakCacheTTL).Err()
			}
		}
		return resp, nil
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp := v.(*ActiveBreakResponse)
	if resp == nil {
		response.SuccessNull(c, http.StatusOK)
		return
	}
	response.Success(c, http.StatusOK, *resp, nil)
}

func (h *Handler) GetViolations(c *gin.Context) {
	companyID := c.GetString("company_id")
	actorID := getActorID(c)
	role := c.GetString("role")
	canReadAll := role == "MANAGER" || role == "HR" || role == "ADMIN" || role == "SUPER_ADMIN"

	if canReadAll {
		if v := c.Query("employee_id"); v != "" {
			actorID = v
			canReadAll = false
		}
	}

	resp, err := h.service.GetViolations(c.Request.Context(), companyID, actorID, canReadAll)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Review(c *gin.Context) {
	companyID := c.GetString("company_id")
	reviewerID := getActorID(c)
	targetID := c.Param("id")

	var req ReviewViolationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Input tidak valid", err.Error())
		return
	}

	resp, err := h.service.ReviewViolation(c.Request.Context(), companyID, reviewerID, targetID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/grigta/numbering/pkg/logger"
	"github.com/grigta/numbering/services/numbering-service/internal/models"
	"github.com/grigta/numbering/services/numbering-service/internal/validation"
)

type AccountService interface {
	Create(ctx context.Context, input validation.CreateAccountInput) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	Update(ctx context.Context, id string, input validation.UpdateAccountInput) (*models.Account, error)
	Delete(ctx context.Context, id string) (string, error)
	List(ctx context.Context, q models.PageQuery) (*models.Page[models.Account], error)
}

type VirtualNumberService interface {
	Create(ctx context.Context, input validation.CreateVirtualNumberInput) (*models.VirtualNumber, error)
	GetByID(ctx context.Context, id string) (*models.VirtualNumber, error)
	Delete(ctx context.Context, id string) (int64, error)
	List(ctx context.Context, q models.PageQuery) (*models.Page[models.VirtualNumber], error)
	ListByOwner(ctx context.Context, ownerID string, q models.PageQuery) (*models.Page[models.VirtualNumberWithOwner], error)
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HTTPHandler struct {
	accounts       AccountService
	numbers        VirtualNumberService
	store          Pinger
	exposeInternal bool
	logger         logger.Logger
}

// NewHTTPHandler builds the API handler. exposeInternal makes internal error
// text visible to clients and is meant for development only.
func NewHTTPHandler(accounts AccountService, numbers VirtualNumberService, store Pinger, exposeInternal bool, log logger.Logger) *HTTPHandler {
	return &HTTPHandler{
		accounts:       accounts,
		numbers:        numbers,
		store:          store,
		exposeInternal: exposeInternal,
		logger:         log,
	}
}

func (h *HTTPHandler) RegisterRoutes(api *gin.RouterGroup) {
	users := api.Group("/users")
	{
		users.POST("/new", h.CreateUser)
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUser)
		users.PATCH("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
		users.GET("/:id/virtual-numbers", h.ListUserVirtualNumbers)
	}

	numbers := api.Group("/virtual-numbers")
	{
		numbers.POST("/new", h.CreateVirtualNumber)
		numbers.GET("", h.ListVirtualNumbers)
		numbers.GET("/:id", h.GetVirtualNumber)
		numbers.DELETE("/:id", h.DeleteVirtualNumber)
	}
}

func (h *HTTPHandler) Health(c *gin.Context) {
	status := http.StatusOK
	state := "healthy"

	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			h.logger.Warn("Health check failed", logger.Err(err))
			status = http.StatusServiceUnavailable
			state = "unhealthy"
		}
	}

	c.JSON(status, gin.H{
		"status": state,
		"time":   time.Now().Unix(),
	})
}

func (h *HTTPHandler) CreateUser(c *gin.Context) {
	var input validation.CreateAccountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, bindError(), h.exposeInternal)
		return
	}

	account, err := h.accounts.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, h.exposeInternal)
		return
	}

	respondSuccess(c, http.StatusCreated, "User created successfully", account)
}

func (h *HTTPHandler) ListUsers(c *gin.Context) {
	page, err := h.accounts.List(c.Request.Context(), pageQuery(c))
	if err != nil {
		respondError(c, err, h.exposeInternal)
		return
	}

	respondSuccess(c, http.StatusOK, "Users retrieved successfully", page)
}

func (h *HTTPHandler) GetUser(c *gin.Context) {
	account, err := h.accounts.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, h.exposeInternal)
		return
	}

	respondSuccess(c, http.StatusOK, "User retrieved successfully", account)
}

func (h *HTTPHandler) UpdateUser(c *gin.Context) {
	var input validation.UpdateAccountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, bindError(), h.exposeInternal)
		return
	}

	account, err := h.accounts.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, err, h.exposeInternal)
		return
	}

	respondSuccess(c, http.StatusOK, "User updated successfully", account)
}

func (h *HTTPHandler) DeleteUser(c *gin.Context) {
	id, err := h.accounts.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, h.exposeInternal)
		return
	}

	respondSuccess(c, http.StatusOK, "User deleted successfully", gin.H{"user_id": id})
}

func (h *HTTPHandler) ListUserVirtualNumbers(c *gin.Context) {
	page, err := h.numbers.ListByOwner(c.Request.Context(), c.Param("id"), pageQuery(c))
	if err != nil {
		respondError(c, err, h.exposeInternal)
		return
	}

	respondSuccess(c, http.StatusOK, "Virtual numbers retrieved successfully", page)
}

func (h *HTTPHandler) CreateVirtualNumber(c *gin.Context) {
	var input validation.CreateVirtualNumberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, bindError(), h.exposeInternal)
		return
	}

	number, err := h.numbers.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, h.exposeInternal)
		return
	}

	respondSuccess(c, http.StatusCreated, "Virtual number created successfully", number)
}

func (h *HTTPHandler) ListVirtualNumbers(c *gin.Context) {
	page, err := h.numbers.List(c.Request.Context(), pageQuery(c))
	if err != nil {
		respondError(c, err, h.exposeInternal)
		return
	}

	respondSuccess(c, http.StatusOK, "Virtual numbers retrieved successfully", page)
}

// GetVirtualNumber answers 200 with a null result when the id is unknown.
func (h *HTTPHandler) GetVirtualNumber(c *gin.Context) {
	number, err := h.numbers.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, h.exposeInternal)
		return
	}

	var result interface{}
	if number != nil {
		result = number
	}
	respondSuccess(c, http.StatusOK, "Virtual number retrieved successfully", result)
}

func (h *HTTPHandler) DeleteVirtualNumber(c *gin.Context) {
	deleted, err := h.numbers.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, h.exposeInternal)
		return
	}

	respondSuccess(c, http.StatusOK, "Virtual number deleted successfully", gin.H{"deleted_count": deleted})
}

// pageQuery reads page, limit and filter. Values that are not integers are
// left at zero so the service applies its defaults.
func pageQuery(c *gin.Context) models.PageQuery {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	return models.PageQuery{
		Page:   page,
		Limit:  limit,
		Filter: c.Query("filter"),
	}
}

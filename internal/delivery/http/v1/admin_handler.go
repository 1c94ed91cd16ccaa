package v1

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"inquiry-backend/internal/delivery/http/response"
	"inquiry-backend/internal/domain"
	"inquiry-backend/pkg/apperror"
	"inquiry-backend/pkg/export"
	"inquiry-backend/pkg/i18n"
	"inquiry-backend/pkg/logger"
	"inquiry-backend/pkg/validation"

	"github.com/gin-gonic/gin"
)

// exportPageSize is the largest page ListInquiries serves
const exportPageSize = 100

type AdminHandler struct {
	adminUC domain.AdminUsecase
	locale  *i18n.Store
}

func NewAdminHandler(public *gin.RouterGroup, protected *gin.RouterGroup, adminUC domain.AdminUsecase, locale *i18n.Store, loginLimit gin.HandlerFunc) {
	handler := &AdminHandler{adminUC: adminUC, locale: locale}

	public.POST("/admin/login", loginLimit, handler.Login)

	admin := protected.Group("/admin")
	{
		admin.GET("/inquiries", handler.ListInquiries)
		admin.GET("/inquiries/export", handler.ExportInquiries)
	}
}

// Login godoc
// @Summary      Staff login
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      domain.AdminLoginRequest  true  "Credentials"
// @Success      200   {object}  response.Response{data=domain.AdminToken}
// @Failure      400   {object}  response.Response
// @Failure      401   {object}  response.Response
// @Router       /admin/login [post]
func (h *AdminHandler) Login(c *gin.Context) {
	lang := requestLang(c)

	var req domain.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request").
			WithDetails(validation.FormatValidationErrors(err, h.locale, lang)))
		return
	}

	req.ClientIP = c.ClientIP()

	token, err := h.adminUC.Login(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Login successful", token)
}

// ListInquiries godoc
// @Summary      List archived inquiries
// @Description  Returns dispatched inquiries, newest first
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        page      query     int  false  "Page number"
// @Param        pageSize  query     int  false  "Items per page"
// @Success      200       {object}  response.Response
// @Failure      401       {object}  response.Response
// @Router       /admin/inquiries [get]
func (h *AdminHandler) ListInquiries(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	items, total, err := h.adminUC.ListInquiries(c.Request.Context(), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}
	if items == nil {
		items = []domain.ArchivedInquiry{}
	}

	response.Success(c, http.StatusOK, "Inquiries", domain.PaginatedResult[domain.ArchivedInquiry]{
		Data:       items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	})
}

// ExportInquiries godoc
// @Summary      Export archived inquiries
// @Description  Downloads every archived inquiry as an xlsx workbook
// @Tags         admin
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Success      200  {file}    file
// @Failure      401  {object}  response.Response
// @Router       /admin/inquiries/export [get]
func (h *AdminHandler) ExportInquiries(c *gin.Context) {
	lang := requestLang(c)
	ctx := c.Request.Context()

	var all []domain.ArchivedInquiry
	for page := 1; ; page++ {
		items, total, err := h.adminUC.ListInquiries(ctx, page, exportPageSize)
		if err != nil {
			c.Error(err)
			return
		}
		all = append(all, items...)
		if len(items) < exportPageSize || int64(len(all)) >= total {
			break
		}
	}

	headers := export.InquiryHeaders(func(key string) string {
		return strings.TrimSuffix(h.locale.T(key, lang), ":")
	})

	filename := fmt.Sprintf("inquiries-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Type", export.XLSXContentType)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	if err := export.WriteInquiries(c.Writer, headers, all); err != nil {
		// headers are already sent; all we can do is log
		logger.Log.Error("inquiry export failed", "count", len(all), "error", err)
	}
}

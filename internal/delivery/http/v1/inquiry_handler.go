package v1

import (
	"errors"
	"net/http"

	"inquiry-backend/internal/delivery/http/response"
	"inquiry-backend/internal/domain"
	"inquiry-backend/pkg/apperror"
	"inquiry-backend/pkg/i18n"
	"inquiry-backend/pkg/validation"

	"github.com/gin-gonic/gin"
)

type InquiryHandler struct {
	inquiryUC domain.InquiryUsecase
	locale    *i18n.Store
}

// inquiryRequest is the contact form body; lang overrides the request language
type inquiryRequest struct {
	domain.Inquiry
	Lang string `json:"lang" binding:"omitempty,max=16"`
}

type verificationRequest struct {
	Token string `json:"g-recaptcha-response" binding:"required"`
}

type fieldCheckRequest struct {
	Email string `json:"user_email" binding:"omitempty,max=254,valid_email"`
	Phone string `json:"user_phone" binding:"omitempty,max=32,valid_phone"`
}

type fieldCheckResult struct {
	Email          domain.Outcome `json:"user_email"`
	Phone          domain.Outcome `json:"user_phone"`
	FormattedPhone string         `json:"formatted_phone,omitempty"`
}

type markerResult struct {
	Submitted bool `json:"submitted"`
}

type formConfig struct {
	VerificationRequired bool   `json:"verification_required"`
	ClientID             string `json:"client_id"`
	Lang                 string `json:"lang"`
}

// NewInquiryHandler registers the public contact form routes
func NewInquiryHandler(public *gin.RouterGroup, inquiryUC domain.InquiryUsecase, locale *i18n.Store, submitLimit gin.HandlerFunc) {
	handler := &InquiryHandler{
		inquiryUC: inquiryUC,
		locale:    locale,
	}

	inquiries := public.Group("/inquiries")
	{
		inquiries.GET("/config", handler.GetConfig)
		inquiries.GET("/marker", handler.ConsumeMarker)
		inquiries.POST("/check", handler.CheckFields)
		inquiries.POST("", submitLimit, handler.Start)
		inquiries.GET("/:id", handler.Get)
		inquiries.POST("/:id/submit", submitLimit, handler.Resubmit)
		inquiries.POST("/:id/verification", submitLimit, handler.CompleteVerification)
		inquiries.DELETE("/:id/verification", handler.CancelVerification)
	}
}

func requestLang(c *gin.Context) string {
	return c.GetString(string(domain.KeyLanguage))
}

// GetConfig godoc
// @Summary      Contact form settings
// @Description  Returns whether a bot check precedes dispatch, plus the resolved client id and language
// @Tags         inquiries
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /inquiries/config [get]
func (h *InquiryHandler) GetConfig(c *gin.Context) {
	response.Success(c, http.StatusOK, "Form configuration", formConfig{
		VerificationRequired: h.inquiryUC.VerificationRequired(),
		ClientID:             c.GetString(string(domain.KeyClientID)),
		Lang:                 requestLang(c),
	})
}

// Start godoc
// @Summary      Submit the contact form
// @Description  Opens a form instance and submits it. Returns 202 when a bot check must be completed first.
// @Tags         inquiries
// @Accept       json
// @Produce      json
// @Param        inquiry  body      inquiryRequest  true  "Contact form fields"
// @Success      201      {object}  response.Response{data=domain.AttemptView}
// @Success      202      {object}  response.Response{data=domain.AttemptView}
// @Failure      400      {object}  response.Response
// @Failure      502      {object}  response.Response
// @Failure      503      {object}  response.Response
// @Router       /inquiries [post]
func (h *InquiryHandler) Start(c *gin.Context) {
	lang := requestLang(c)

	var req inquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(h.locale.T("messages.error", lang)).
			WithDetails(validation.FormatValidationErrors(err, h.locale, lang)))
		return
	}
	if req.Lang != "" {
		lang = h.locale.Normalize(req.Lang)
	}

	clientID := c.GetString(string(domain.KeyClientID))
	view, err := h.inquiryUC.Start(c.Request.Context(), clientID, lang, req.Inquiry)
	if err != nil {
		c.Error(h.mapError(err, view, lang))
		return
	}
	response.Attempt(c, view)
}

// Resubmit godoc
// @Summary      Submit the same form instance again
// @Tags         inquiries
// @Accept       json
// @Produce      json
// @Param        id       path      string          true  "Attempt ID"
// @Param        inquiry  body      inquiryRequest  true  "Contact form fields"
// @Success      201      {object}  response.Response{data=domain.AttemptView}
// @Success      202      {object}  response.Response{data=domain.AttemptView}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      502      {object}  response.Response
// @Router       /inquiries/{id}/submit [post]
func (h *InquiryHandler) Resubmit(c *gin.Context) {
	lang := requestLang(c)

	var req inquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(h.locale.T("messages.error", lang)).
			WithDetails(validation.FormatValidationErrors(err, h.locale, lang)))
		return
	}

	view, err := h.inquiryUC.Resubmit(c.Request.Context(), c.Param("id"), req.Inquiry)
	if err != nil {
		c.Error(h.mapError(err, view, lang))
		return
	}
	response.Attempt(c, view)
}

// CompleteVerification godoc
// @Summary      Complete the bot check
// @Description  Verifies the challenge token and dispatches the waiting inquiry
// @Tags         inquiries
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Attempt ID"
// @Param        body  body      verificationRequest  true  "Challenge token"
// @Success      201   {object}  response.Response{data=domain.AttemptView}
// @Failure      404   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Failure      422   {object}  response.Response
// @Failure      502   {object}  response.Response
// @Failure      503   {object}  response.Response
// @Router       /inquiries/{id}/verification [post]
func (h *InquiryHandler) CompleteVerification(c *gin.Context) {
	lang := requestLang(c)

	var req verificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(h.locale.T("recaptcha.rejected", lang)))
		return
	}

	view, err := h.inquiryUC.CompleteVerification(c.Request.Context(), c.Param("id"), req.Token, c.ClientIP())
	if err != nil {
		c.Error(h.mapError(err, view, lang))
		return
	}
	response.Attempt(c, view)
}

// CancelVerification godoc
// @Summary      Close the bot check
// @Description  Returns a form waiting on the challenge to idle so it can be edited and submitted again
// @Tags         inquiries
// @Produce      json
// @Param        id   path      string  true  "Attempt ID"
// @Success      200  {object}  response.Response{data=domain.AttemptView}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /inquiries/{id}/verification [delete]
func (h *InquiryHandler) CancelVerification(c *gin.Context) {
	lang := requestLang(c)
	view, err := h.inquiryUC.CancelVerification(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(h.mapError(err, view, lang))
		return
	}
	response.Success(c, http.StatusOK, view.Control.Label, view)
}

// Get godoc
// @Summary      Form instance snapshot
// @Tags         inquiries
// @Produce      json
// @Param        id   path      string  true  "Attempt ID"
// @Success      200  {object}  response.Response{data=domain.AttemptView}
// @Failure      404  {object}  response.Response
// @Router       /inquiries/{id} [get]
func (h *InquiryHandler) Get(c *gin.Context) {
	lang := requestLang(c)
	view, err := h.inquiryUC.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(h.mapError(err, view, lang))
		return
	}
	response.Success(c, http.StatusOK, view.Message, view)
}

// ConsumeMarker godoc
// @Summary      Check the just-submitted marker
// @Description  Reports whether this client submitted within the marker window, and clears the marker
// @Tags         inquiries
// @Produce      json
// @Success      200  {object}  response.Response{data=markerResult}
// @Router       /inquiries/marker [get]
func (h *InquiryHandler) ConsumeMarker(c *gin.Context) {
	submitted, err := h.inquiryUC.ConsumeMarker(c.Request.Context(), c.GetString(string(domain.KeyClientID)))
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	response.Success(c, http.StatusOK, "Submission marker", markerResult{Submitted: submitted})
}

// CheckFields godoc
// @Summary      Check e-mail and phone without submitting
// @Tags         inquiries
// @Accept       json
// @Produce      json
// @Param        body  body      fieldCheckRequest  true  "Fields to check"
// @Success      200   {object}  response.Response{data=fieldCheckResult}
// @Failure      400   {object}  response.Response
// @Router       /inquiries/check [post]
func (h *InquiryHandler) CheckFields(c *gin.Context) {
	lang := requestLang(c)

	var req fieldCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(h.locale.T("messages.error", lang)).
			WithDetails(validation.FormatValidationErrors(err, h.locale, lang)))
		return
	}

	outcomes := validation.Classify(domain.Inquiry{Email: req.Email, Phone: req.Phone})
	result := fieldCheckResult{
		Email: outcomes[domain.FieldEmail],
		Phone: outcomes[domain.FieldPhone],
	}
	if result.Phone == domain.OutcomeOK {
		result.FormattedPhone = validation.FormatPhone(req.Phone)
	}
	response.Success(c, http.StatusOK, "Fields checked", result)
}

// mapError turns a usecase error into a localized AppError carrying the attempt snapshot
func (h *InquiryHandler) mapError(err error, view *domain.AttemptView, lang string) error {
	msg := ""
	if view != nil {
		msg = view.Message
		lang = view.Lang
	}
	or := func(key string) string {
		if msg != "" {
			return msg
		}
		return h.locale.T(key, lang)
	}

	var appErr *apperror.AppError
	var fieldErr *domain.FieldError
	var dispatchErr *domain.DispatchError
	switch {
	case errors.As(err, &fieldErr):
		appErr = apperror.BadRequest(or("validation.invalid"))
		appErr.Err = err
	case errors.Is(err, domain.ErrNotFound):
		appErr = apperror.NotFound(h.locale.T("messages.notFound", lang))
	case errors.Is(err, domain.ErrDispatchInFlight):
		appErr = apperror.Conflict(h.locale.T("messages.inFlight", lang), err)
	case errors.Is(err, domain.ErrInvalidTransition):
		appErr = apperror.Conflict(h.locale.T("messages.invalidState", lang), err)
	case errors.Is(err, domain.ErrVerificationRejected):
		appErr = apperror.Unprocessable(or("recaptcha.rejected"), err)
	case errors.Is(err, domain.ErrDispatchUnconfigured):
		appErr = apperror.Unavailable(or("messages.unavailable"), err)
	case errors.As(err, &dispatchErr):
		appErr = apperror.BadGateway(or("messages.error"), err)
	case errors.Is(err, domain.ErrVerificationUnavailable):
		appErr = apperror.Unavailable(or("recaptcha.unavailable"), err)
	default:
		return apperror.Internal(err)
	}

	if view != nil {
		appErr.WithDetails(view)
	}
	return appErr
}

package v1

import (
	"net/http"

	"inquiry-backend/internal/delivery/http/response"
	"inquiry-backend/pkg/i18n"

	"github.com/gin-gonic/gin"
)

type I18nHandler struct {
	locale *i18n.Store
}

type localeTable struct {
	Lang      string            `json:"lang"`
	Languages []string          `json:"languages"`
	Strings   map[string]string `json:"strings"`
}

func NewI18nHandler(public *gin.RouterGroup, locale *i18n.Store) {
	handler := &I18nHandler{locale: locale}
	public.GET("/i18n/:lang", handler.GetTable)
}

// GetTable godoc
// @Summary      Page strings for a language
// @Description  Returns the flattened string table; unknown languages fall back to the default
// @Tags         i18n
// @Produce      json
// @Param        lang  path      string  true  "Language code (en, vi)"
// @Success      200   {object}  response.Response{data=localeTable}
// @Router       /i18n/{lang} [get]
func (h *I18nHandler) GetTable(c *gin.Context) {
	lang := h.locale.Normalize(c.Param("lang"))
	table, _ := h.locale.Table(lang)

	response.Success(c, http.StatusOK, "Translations", localeTable{
		Lang:      lang,
		Languages: h.locale.Languages(),
		Strings:   table,
	})
}

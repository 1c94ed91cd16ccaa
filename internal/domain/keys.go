package domain

type CtxKey string

const (
	KeyClientID  CtxKey = "ClientID"
	KeyLanguage  CtxKey = "Language"
	KeyAdminName CtxKey = "AdminName"
	KeyAdminRole CtxKey = "AdminRole"
)

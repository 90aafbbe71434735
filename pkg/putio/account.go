package putio

// AccountInfo describes the authenticated user.
type AccountInfo struct {
	Username      string
	Mail          string
	AccountActive bool
}

// DecodeAccountInfo decodes the "info" object of an account payload.
func DecodeAccountInfo(m map[string]any) AccountInfo {
	return AccountInfo{
		Username:      stringField(m, "username", ""),
		Mail:          stringField(m, "mail", ""),
		AccountActive: boolField(m, "account_active"),
	}
}

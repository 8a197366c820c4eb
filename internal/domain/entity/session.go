package entity

// Session maps a chat identifier to an upstream helpdesk identity. It is
// created at authentication and destroyed on logout; the engine treats a
// missing session as "skip this chat".
type Session struct {
	UpstreamUserID int64  `json:"upstream_user_id"`
	DisplayName    string `json:"display_name"`
	Phone          string `json:"phone"`
}

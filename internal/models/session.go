package models

// UserAuth is the stored credential record for the login adapter. The
// core never reads it; it only ever sees a resolved username.
type UserAuth struct {
	Username     string `json:"username" redis:"username"`
	PasswordHash string `json:"password_hash" redis:"password_hash"`
	Salt         string `json:"salt" redis:"salt"`
	CreatedAt    int64  `json:"created_at" redis:"created_at"`
}

type UserSession struct {
	Username     string `json:"username" redis:"username"`
	SessionID    string `json:"session_id" redis:"session_id"`
	IsAdmin      bool   `json:"is_admin" redis:"is_admin"`
	CreatedAt    int64  `json:"created_at" redis:"created_at"`
	LastAccessed int64  `json:"last_accessed" redis:"last_accessed"`
}

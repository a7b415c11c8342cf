package models

import "time"

// AdminSession is the server-side half of an admin login. The cookie holds
// a signed token whose jti names this record; deleting it revokes the token.
type AdminSession struct {
	ID        string    `json:"id"`
	Device    string    `json:"device"`
	IP        string    `json:"ip"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AdminLoginRequest is the body of POST /api/admin/login.
type AdminLoginRequest struct {
	Password   string `json:"password"`
	RedirectTo string `json:"redirectTo"`
}

package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the access token payload issued by the auth provider.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}

// SubjectID returns the user id, falling back to the registered subject.
func (c *JWTClaims) SubjectID() string {
	if c == nil {
		return ""
	}
	if c.UserID != "" {
		return c.UserID
	}
	return c.RegisteredClaims.Subject
}

// Principal is the caller of a request together with the raw bearer token
// forwarded to the analysis backend.
type Principal struct {
	UserID string
	Role   UserRole
	Token  string
}

// CanAccess reports whether the caller may read the data of userID. Coaches
// and admins may read any speaker.
func (p Principal) CanAccess(userID string) bool {
	if userID == "" || userID == p.UserID {
		return true
	}
	return p.Role == RoleCoach || p.Role == RoleAdmin
}

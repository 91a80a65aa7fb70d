package auth

// TokenSession exposes the role resolved from a bearer token as the opaque
// capability the response form consumes.
type TokenSession struct {
	role Role
}

// SessionFromToken builds a session capability from a signed token
func SessionFromToken(tokenString, secret string) (*TokenSession, error) {
	claims, err := parseClaims(tokenString, secret)
	if err != nil {
		return nil, err
	}
	role, _ := claims["role"].(string)
	return &TokenSession{role: Role(role)}, nil
}

// StaticSession builds a session capability with a fixed role
func StaticSession(role Role) *TokenSession {
	return &TokenSession{role: role}
}

func (s *TokenSession) IsTenant() bool   { return s.role == RoleTenant }
func (s *TokenSession) IsLandlord() bool { return s.role == RoleLandlord }

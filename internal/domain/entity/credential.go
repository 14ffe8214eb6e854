package entity

import "time"

// Credential guarda las credenciales y el token vigente contra el proveedor
// de facturación electrónica. Una fila por ambiente (sandbox/production).
// Solo el TokenManager muta AccessToken/RefreshToken/ExpiresAt.
type Credential struct {
	ID           string
	Environment  string // sandbox | production
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time // vencimiento del AccessToken
	UpdatedAt    time.Time
}

// HasValidToken indica si el token cacheado sigue siendo usable con el margen dado.
func (c *Credential) HasValidToken(lead time.Duration, now time.Time) bool {
	return c.AccessToken != "" && c.ExpiresAt.After(now.Add(lead))
}

package repository

import (
	"context"

	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
)

// CredentialRepository define el puerto de persistencia para credenciales del
// proveedor de facturación. El TokenManager lo usa para que los refresh tokens
// rotados sobrevivan reinicios del servicio.
type CredentialRepository interface {
	GetByEnvironment(ctx context.Context, environment string) (*entity.Credential, error)
	// SaveTokens persiste access_token, refresh_token y expires_at de la credencial.
	SaveTokens(ctx context.Context, cred *entity.Credential) error
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/facturacion-api/internal/domain"
	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
	"github.com/tu-usuario/facturacion-api/internal/domain/repository"
)

var _ repository.CredentialRepository = (*CredentialRepo)(nil)

// CredentialRepo implementación del puerto CredentialRepository sobre PostgreSQL.
// Una fila por ambiente; los tokens sobreviven reinicios del servicio.
type CredentialRepo struct {
	q Querier
}

// NewCredentialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCredentialRepository(q Querier) *CredentialRepo {
	return &CredentialRepo{q: q}
}

// GetByEnvironment obtiene la credencial del ambiente dado. nil, nil si no existe.
func (r *CredentialRepo) GetByEnvironment(ctx context.Context, environment string) (*entity.Credential, error) {
	query := `
		SELECT id, environment, client_id, client_secret, username, password,
			access_token, refresh_token, expires_at, updated_at
		FROM factus_credentials WHERE environment = $1`
	var c entity.Credential
	var expiresAt *time.Time
	err := r.q.QueryRow(ctx, query, environment).Scan(
		&c.ID, &c.Environment, &c.ClientID, &c.ClientSecret, &c.Username, &c.Password,
		&c.AccessToken, &c.RefreshToken, &expiresAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get credential: %w", err)
	}
	if expiresAt != nil {
		c.ExpiresAt = *expiresAt
	}
	return &c, nil
}

// SaveTokens persiste los tokens renovados de la credencial.
func (r *CredentialRepo) SaveTokens(ctx context.Context, cred *entity.Credential) error {
	query := `
		UPDATE factus_credentials
		SET access_token = $2, refresh_token = $3, expires_at = $4, updated_at = now()
		WHERE environment = $1`
	cmd, err := r.q.Exec(ctx, query, cred.Environment, cred.AccessToken, cred.RefreshToken, nullIfZeroTime(cred.ExpiresAt))
	if err != nil {
		return fmt.Errorf("save credential tokens: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

package factus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
	"github.com/tu-usuario/facturacion-api/internal/domain/repository"
	"github.com/tu-usuario/facturacion-api/pkg/config"
	"github.com/tu-usuario/facturacion-api/pkg/logger"
)

// Errores fatales de autenticación. El emisor NO debe reintentar ante ellos:
// requieren intervención del operador (credenciales o request malformado).
var (
	ErrMissingCredentials = errors.New("factus: client_id/client_secret no configurados")
	ErrAuthRejected       = errors.New("factus: credenciales rechazadas por el proveedor")
	ErrAuthBadRequest     = errors.New("factus: request de autenticación malformado")
)

const (
	// tokenExpiryLead margen antes del vencimiento a partir del cual se renueva el token.
	tokenExpiryLead = 10 * time.Minute
	// defaultTokenLifetime vida del token cuando el proveedor no reporta expires_in.
	defaultTokenLifetime = 3600 * time.Second
)

// tokenResponse cuerpo de POST /oauth/token.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

// TokenManager administra el ciclo de vida del bearer token contra el
// proveedor: cache en memoria, renovación por refresh_token y, si no es
// posible, password grant completo. Los tokens rotados se persisten vía
// CredentialRepository para sobrevivir reinicios.
//
// Todas las operaciones están serializadas con un mutex: dos emisiones
// concurrentes con token vencido producen una sola renovación.
type TokenManager struct {
	mu         sync.Mutex
	httpClient *http.Client
	cfg        config.FactusConfig
	store      repository.CredentialRepository // puede ser nil (solo cache en memoria)
	cached     *entity.Credential
	log        *logger.Logger
	now        func() time.Time
}

// NewTokenManager construye el administrador de tokens.
// store puede ser nil: en ese caso los tokens solo viven en memoria.
func NewTokenManager(cfg config.FactusConfig, store repository.CredentialRepository, log *logger.Logger) *TokenManager {
	return &TokenManager{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cfg:        cfg,
		store:      store,
		log:        log,
		now:        time.Now,
	}
}

// GetToken devuelve un bearer token vigente. Si el cacheado vence en menos de
// 10 minutos intenta refresh grant y, si falla o no hay refresh token,
// password grant con las credenciales configuradas.
func (m *TokenManager) GetToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cred, err := m.loadCredential(ctx)
	if err != nil {
		return "", err
	}

	if cred.HasValidToken(tokenExpiryLead, m.now()) {
		return cred.AccessToken, nil
	}

	// Refresh grant si hay refresh token; un fallo aquí no es fatal, se cae al password grant.
	if cred.RefreshToken != "" {
		err := m.exchange(ctx, cred, url.Values{
			"grant_type":    {"refresh_token"},
			"client_id":     {cred.ClientID},
			"client_secret": {cred.ClientSecret},
			"refresh_token": {cred.RefreshToken},
		})
		if err == nil {
			return cred.AccessToken, nil
		}
		m.log.Warn().Err(err).Msg("refresh grant falló, intentando password grant")
		if isFatalAuthErr(err) {
			cred.RefreshToken = "" // refresh token inválido o revocado: descartarlo
		}
	}

	if cred.ClientID == "" || cred.ClientSecret == "" {
		return "", ErrMissingCredentials
	}
	if err := m.exchange(ctx, cred, url.Values{
		"grant_type":    {"password"},
		"client_id":     {cred.ClientID},
		"client_secret": {cred.ClientSecret},
		"username":      {cred.Username},
		"password":      {cred.Password},
	}); err != nil {
		return "", err
	}
	return cred.AccessToken, nil
}

// InvalidateToken fuerza el vencimiento del token cacheado (recuperación y tests).
func (m *TokenManager) InvalidateToken() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cached != nil {
		m.cached.AccessToken = ""
		m.cached.ExpiresAt = time.Time{}
	}
}

// loadCredential carga la credencial del store (una vez) o la arma desde la
// configuración si no hay fila persistida.
func (m *TokenManager) loadCredential(ctx context.Context) (*entity.Credential, error) {
	if m.cached != nil {
		return m.cached, nil
	}
	if m.store != nil {
		cred, err := m.store.GetByEnvironment(ctx, m.cfg.Environment)
		if err != nil {
			return nil, fmt.Errorf("factus: cargar credencial: %w", err)
		}
		if cred != nil {
			m.cached = cred
			return cred, nil
		}
	}
	m.cached = &entity.Credential{
		Environment:  m.cfg.Environment,
		ClientID:     m.cfg.ClientID,
		ClientSecret: m.cfg.ClientSecret,
		Username:     m.cfg.Username,
		Password:     m.cfg.Password,
	}
	return m.cached, nil
}

// exchange ejecuta un intercambio contra /oauth/token y actualiza la credencial
// en memoria y en el store.
func (m *TokenManager) exchange(ctx context.Context, cred *entity.Credential, form url.Values) error {
	endpoint := strings.TrimRight(m.cfg.BaseURL, "/") + PathOAuthToken
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("factus: crear request de token: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("factus: auth no alcanzable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // max 1 MB
	if err != nil {
		return fmt.Errorf("factus: leer respuesta de token: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w (status %d)", ErrAuthRejected, resp.StatusCode)
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrAuthBadRequest, truncate(string(body), 300))
	case resp.StatusCode >= 500:
		return fmt.Errorf("factus: auth respondió %d: %s", resp.StatusCode, truncate(string(body), 300))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("factus: auth respondió %d inesperado", resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return fmt.Errorf("factus: respuesta de token inválida: %w", err)
	}
	if tok.AccessToken == "" {
		return fmt.Errorf("factus: respuesta de token sin access_token")
	}

	lifetime := defaultTokenLifetime
	if tok.ExpiresIn > 0 {
		lifetime = time.Duration(tok.ExpiresIn) * time.Second
	}
	cred.AccessToken = tok.AccessToken
	cred.ExpiresAt = m.now().Add(lifetime)
	if tok.RefreshToken != "" {
		cred.RefreshToken = tok.RefreshToken // rotación de refresh token
	}
	cred.UpdatedAt = m.now()

	if m.store != nil {
		if err := m.store.SaveTokens(ctx, cred); err != nil {
			// La credencial en memoria ya es válida; la persistencia fallida solo se reporta.
			m.log.Error().Err(err).Msg("no se pudo persistir el token renovado")
		}
	}
	m.log.Debug().Time("expires_at", cred.ExpiresAt).Msg("token del proveedor renovado")
	return nil
}

func isFatalAuthErr(err error) bool {
	return errors.Is(err, ErrAuthRejected) || errors.Is(err, ErrAuthBadRequest)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

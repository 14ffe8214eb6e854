package factus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
	"github.com/tu-usuario/facturacion-api/pkg/config"
	"github.com/tu-usuario/facturacion-api/pkg/logger"
)

// fakeCredentialStore guarda la credencial en memoria y cuenta escrituras.
type fakeCredentialStore struct {
	cred  *entity.Credential
	saves int
}

func (s *fakeCredentialStore) GetByEnvironment(_ context.Context, _ string) (*entity.Credential, error) {
	return s.cred, nil
}

func (s *fakeCredentialStore) SaveTokens(_ context.Context, cred *entity.Credential) error {
	s.saves++
	s.cred = cred
	return nil
}

// authServer simula /oauth/token registrando los grant_type recibidos.
func authServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *[]string) {
	t.Helper()
	var grants []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, PathOAuthToken, r.URL.Path)
		require.NoError(t, r.ParseForm())
		grants = append(grants, r.PostFormValue("grant_type"))
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &grants
}

func newManager(srv *httptest.Server, store *fakeCredentialStore) *TokenManager {
	cfg := config.FactusConfig{
		BaseURL:      srv.URL,
		ClientID:     "client-1",
		ClientSecret: "secret-1",
		Username:     "usuario@empresa.co",
		Password:     "clave",
		Environment:  "sandbox",
	}
	m := NewTokenManager(cfg, nil, logger.Nop())
	if store != nil {
		m.store = store
	}
	m.httpClient = srv.Client()
	return m
}

func TestGetToken_PasswordGrantYCache(t *testing.T) {
	srv, grants := authServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","expires_in":3600,"refresh_token":"ref-1"}`))
	})
	m := newManager(srv, nil)

	tok, err := m.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)

	tok2, err := m.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok2)
	assert.Equal(t, []string{"password"}, *grants, "el token vigente se sirve del cache sin nueva llamada")
}

func TestGetToken_RefreshGrantConTokenPorVencer(t *testing.T) {
	srv, grants := authServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-nuevo","expires_in":3600,"refresh_token":"ref-rotado"}`))
	})
	store := &fakeCredentialStore{cred: &entity.Credential{
		Environment:  "sandbox",
		ClientID:     "client-1",
		ClientSecret: "secret-1",
		AccessToken:  "tok-viejo",
		RefreshToken: "ref-viejo",
		ExpiresAt:    time.Now().Add(5 * time.Minute), // dentro del margen de renovación
	}}
	m := newManager(srv, store)

	tok, err := m.GetToken(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "tok-nuevo", tok)
	assert.Equal(t, []string{"refresh_token"}, *grants)
	assert.Equal(t, "ref-rotado", store.cred.RefreshToken, "el refresh token rotado queda persistido")
	assert.Equal(t, 1, store.saves)
}

func TestGetToken_RefreshFallidoCaeAPasswordGrant(t *testing.T) {
	srv, grants := authServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.PostFormValue("grant_type") == "refresh_token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-pw","expires_in":3600}`))
	})
	store := &fakeCredentialStore{cred: &entity.Credential{
		Environment:  "sandbox",
		ClientID:     "client-1",
		ClientSecret: "secret-1",
		Username:     "usuario@empresa.co",
		Password:     "clave",
		RefreshToken: "ref-revocado",
	}}
	m := newManager(srv, store)

	tok, err := m.GetToken(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "tok-pw", tok)
	assert.Equal(t, []string{"refresh_token", "password"}, *grants)
	assert.Empty(t, store.cred.RefreshToken, "un refresh token rechazado se descarta")
}

func TestGetToken_CredencialesRechazadasEsFatal(t *testing.T) {
	srv, grants := authServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	m := newManager(srv, nil)

	_, err := m.GetToken(context.Background())

	assert.ErrorIs(t, err, ErrAuthRejected)
	assert.Equal(t, []string{"password"}, *grants, "un 401 de auth no se reintenta")
}

func TestGetToken_BadRequestEsFatal(t *testing.T) {
	srv, _ := authServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"unsupported_grant_type"}`))
	})
	m := newManager(srv, nil)

	_, err := m.GetToken(context.Background())

	assert.ErrorIs(t, err, ErrAuthBadRequest)
}

func TestGetToken_SinClientIDNiSecret(t *testing.T) {
	m := NewTokenManager(config.FactusConfig{BaseURL: "http://localhost:0"}, nil, logger.Nop())

	_, err := m.GetToken(context.Background())

	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestGetToken_VidaPorDefectoSinExpiresIn(t *testing.T) {
	srv, _ := authServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1"}`))
	})
	m := newManager(srv, nil)
	ahora := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return ahora }

	_, err := m.GetToken(context.Background())

	require.NoError(t, err)
	assert.Equal(t, ahora.Add(3600*time.Second), m.cached.ExpiresAt, "sin expires_in la vida por defecto es 3600s")
}

func TestInvalidateToken_FuerzaRenovacion(t *testing.T) {
	srv, grants := authServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","expires_in":3600}`))
	})
	m := newManager(srv, nil)

	_, err := m.GetToken(context.Background())
	require.NoError(t, err)
	m.InvalidateToken()
	_, err = m.GetToken(context.Background())
	require.NoError(t, err)

	assert.Len(t, *grants, 2, "tras invalidar, la siguiente llamada renueva el token")
}

package factus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/facturacion-api/pkg/logger"
)

// fakeTokens entrega siempre el mismo token y cuenta invalidaciones.
type fakeTokens struct {
	token        string
	err          error
	invalidated  int32
	tokensServed int32
}

func (f *fakeTokens) GetToken(_ context.Context) (string, error) {
	atomic.AddInt32(&f.tokensServed, 1)
	return f.token, f.err
}

func (f *fakeTokens) InvalidateToken() {
	atomic.AddInt32(&f.invalidated, 1)
}

func newTestSender(t *testing.T, handler http.HandlerFunc) (*Sender, *int32, *fakeTokens) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	tokens := &fakeTokens{token: "tok-1"}
	s := NewSender(srv.URL, tokens, logger.Nop())
	s.httpClient = srv.Client()
	s.sleep = func(time.Duration) {} // sin esperas reales en tests
	return s, &hits, tokens
}

func TestSend_ExitoDevuelveCuerpoVerbatim(t *testing.T) {
	body := `{"data":{"bill":{"number":"SETP000123"}}}`
	s, hits, _ := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, PathValidateBill, r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(body))
	})

	res, err := s.Send(context.Background(), PathValidateBill, map[string]any{"number": "1"}, SendOptions{Retries: 2})

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.JSONEq(t, body, string(res.Data))
	assert.Equal(t, int32(1), *hits)
}

func TestSend_5xxPersistenteAgotaLosIntentos(t *testing.T) {
	s, hits, _ := newTestSender(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	res, err := s.Send(context.Background(), PathValidateBill, nil, SendOptions{Retries: 2})

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, int32(3), *hits, "con retries=2 se hacen exactamente 3 intentos")
	assert.Contains(t, res.Error, "no está disponible", "503 se traduce a mensaje amigable")
}

func TestSend_4xxEsTerminalSinReintento(t *testing.T) {
	s, hits, _ := newTestSender(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"Los datos no son válidos","errors":{"reference_code":["ya fue registrado"]}}`))
	})

	res, err := s.Send(context.Background(), PathValidateBill, nil, SendOptions{Retries: 5})

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.Equal(t, int32(1), *hits, "un 4xx nunca se reintenta")
	assert.Contains(t, res.Error, "reference_code: ya fue registrado")
}

func TestSend_401InvalidaElTokenYNoReintenta(t *testing.T) {
	s, hits, tokens := newTestSender(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Unauthenticated."}`))
	})

	res, err := s.Send(context.Background(), PathValidateBill, nil, SendOptions{Retries: 3})

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, int32(1), *hits)
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokens.invalidated), "el 401 descarta el token cacheado")
	assert.Contains(t, res.Error, "autenticación")
}

func TestSend_ErrorDeRedSeReintentaYTraduce(t *testing.T) {
	tokens := &fakeTokens{token: "tok-1"}
	s := NewSender("http://127.0.0.1:1", tokens, logger.Nop()) // puerto cerrado
	s.sleep = func(time.Duration) {}

	res, err := s.Send(context.Background(), PathValidateBill, nil, SendOptions{Retries: 1, Timeout: time.Second})

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 0, res.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&tokens.tokensServed), "dos intentos con retries=1")
	assert.Contains(t, res.Error, "conectividad")
}

func TestSend_TokenFatalAbortaSinIntentos(t *testing.T) {
	s, hits, _ := newTestSender(t, func(w http.ResponseWriter, _ *http.Request) {})
	s.tokens = &fakeTokens{err: ErrAuthRejected}

	_, err := s.Send(context.Background(), PathValidateBill, nil, SendOptions{Retries: 3})

	assert.ErrorIs(t, err, ErrAuthRejected)
	assert.Equal(t, int32(0), *hits, "sin token no hay ningún intento HTTP")
}

func TestSend_BackoffLineal(t *testing.T) {
	var esperas []time.Duration
	s, _, _ := newTestSender(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	s.sleep = func(d time.Duration) { esperas = append(esperas, d) }

	_, err := s.Send(context.Background(), PathValidateBill, nil, SendOptions{Retries: 3, RetryDelay: 100 * time.Millisecond})

	require.NoError(t, err)
	assert.Equal(t, []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		300 * time.Millisecond,
	}, esperas, "la espera crece linealmente con el número de intento")
}

func TestParseErrorBody_Formas(t *testing.T) {
	tests := []struct {
		nombre   string
		body     string
		esperado string
	}{
		{
			"array de field/message",
			`[{"field":"customer.identification","message":"es obligatorio"},{"message":"sin campo"}]`,
			"customer.identification: es obligatorio; sin campo",
		},
		{
			"mapa errors anidado con mensaje general",
			`{"message":"Los datos no son válidos","errors":{"items":["debe tener al menos un elemento"]}}`,
			"Los datos no son válidos: items: debe tener al menos un elemento",
		},
		{
			"message plano",
			`{"message":"rango de numeración inválido"}`,
			"rango de numeración inválido",
		},
		{
			"error plano",
			`{"error":"invalid_client"}`,
			"invalid_client",
		},
		{
			"detail plano",
			`{"detail":"no autorizado"}`,
			"no autorizado",
		},
		{
			"cuerpo vacío",
			``,
			"el proveedor no devolvió detalle del error",
		},
		{
			"JSON desconocido cae al crudo",
			`{"foo":"bar"}`,
			`{"foo":"bar"}`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.nombre, func(t *testing.T) {
			assert.Equal(t, tc.esperado, ParseErrorBody([]byte(tc.body)))
		})
	}
}

package factus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/tu-usuario/facturacion-api/pkg/logger"
)

// TokenProvider es el puerto hacia el TokenManager que consume el Sender.
type TokenProvider interface {
	GetToken(ctx context.Context) (string, error)
	InvalidateToken()
}

// Sender ejecuta el envío HTTP de documentos al proveedor con reintentos y
// backoff lineal. No tiene más efectos que la llamada de red: la persistencia
// del resultado es responsabilidad del reconciliador.
//
// Clasificación por status:
//   - 2xx            → éxito, cuerpo verbatim en SendResult.Data
//   - 4xx            → error terminal del payload, sin reintento
//   - 5xx / sin resp → transitorio, se reintenta hasta agotar el presupuesto
type Sender struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenProvider
	log        *logger.Logger
	sleep      func(time.Duration) // inyectable en tests
}

// NewSender construye el sender. El timeout por intento viene en SendOptions.
func NewSender(baseURL string, tokens TokenProvider, log *logger.Logger) *Sender {
	return &Sender{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		log:        log,
		sleep:      time.Sleep,
	}
}

// Send envía el payload como JSON a la ruta dada. Hace opts.Retries + 1
// intentos como máximo; antes del intento n (n > 0) espera RetryDelay * n.
// Un error retornado (en vez de SendResult) significa que ni siquiera se pudo
// construir el intento (token fatal, payload no serializable).
func (s *Sender) Send(ctx context.Context, path string, payload any, opts SendOptions) (*SendResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("factus: serializar payload: %w", err)
	}

	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	var lastStatus int
	var lastErr string

	for attempt := 0; attempt <= opts.Retries; attempt++ {
		if attempt > 0 {
			s.sleep(opts.RetryDelay * time.Duration(attempt)) // backoff lineal
		}

		token, err := s.tokens.GetToken(ctx)
		if err != nil {
			// Error fatal de autenticación o configuración: no tiene sentido reintentar aquí.
			return nil, err
		}

		result, retryable := s.attempt(ctx, path, body, token, opts.Timeout)
		if result != nil {
			return result, nil
		}
		lastStatus, lastErr = retryable.status, retryable.message
		s.log.Warn().
			Int("attempt", attempt+1).
			Int("status", lastStatus).
			Str("path", path).
			Msg("envío al proveedor falló, reintentando")
	}

	return &SendResult{
		Success:    false,
		StatusCode: lastStatus,
		Error:      friendlyInfraMessage(lastStatus, lastErr),
	}, nil
}

// retryableFailure describe un intento fallido que admite reintento.
type retryableFailure struct {
	status  int // 0 = sin respuesta
	message string
}

// attempt ejecuta un único intento HTTP. Retorna (resultado, nil) cuando el
// intento es definitivo (éxito o 4xx terminal) y (nil, fallo) cuando es
// reintentable.
func (s *Sender) attempt(ctx context.Context, path string, body []byte, token string, timeout time.Duration) (*SendResult, *retryableFailure) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, &retryableFailure{message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &retryableFailure{message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20)) // max 4 MB
	if err != nil {
		return nil, &retryableFailure{status: resp.StatusCode, message: "leer respuesta: " + err.Error()}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return &SendResult{Success: true, StatusCode: resp.StatusCode, Data: raw}, nil

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		// Terminal: el token fue rechazado por el endpoint de documentos.
		// Se invalida el cache para que la próxima emisión renueve credenciales.
		s.tokens.InvalidateToken()
		return &SendResult{
			Success:    false,
			StatusCode: resp.StatusCode,
			Data:       raw,
			Error:      friendlyInfraMessage(resp.StatusCode, ParseErrorBody(raw)),
		}, nil

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// Error terminal del cliente: el payload o la configuración están mal.
		return &SendResult{
			Success:    false,
			StatusCode: resp.StatusCode,
			Data:       raw,
			Error:      ParseErrorBody(raw),
		}, nil

	default: // >= 500
		return nil, &retryableFailure{status: resp.StatusCode, message: ParseErrorBody(raw)}
	}
}

// friendlyInfraMessage traduce fallos de infraestructura conocidos a un
// mensaje accionable para el operador.
func friendlyInfraMessage(status int, last string) string {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return "el servicio de facturación no está disponible en este momento, intente de nuevo más tarde"
	case http.StatusUnauthorized, http.StatusForbidden:
		return "error de autenticación con el servicio de facturación, verifique las credenciales"
	case 0:
		return "error de conectividad con el servicio de facturación: " + last
	default:
		if last == "" {
			return fmt.Sprintf("el servicio de facturación respondió %d", status)
		}
		return last
	}
}

// ── Parsing de cuerpos de error ───────────────────────────────────────────────

// ParseErrorBody extrae un mensaje legible de las formas de error conocidas
// del proveedor, en orden:
//
//  1. [{"field": "...", "message": "..."}, ...]
//  2. {"errors": {"campo": ["msg", ...], ...}}
//  3. {"message": "..."} | {"error": "..."} | {"detail": "..."}
//  4. JSON crudo (truncado) como último recurso
func ParseErrorBody(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "el proveedor no devolvió detalle del error"
	}

	// Forma 1: array de {field, message}
	var fieldErrs []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(trimmed, &fieldErrs); err == nil && len(fieldErrs) > 0 {
		var parts []string
		for _, fe := range fieldErrs {
			if fe.Message == "" {
				continue
			}
			if fe.Field != "" {
				parts = append(parts, fe.Field+": "+fe.Message)
			} else {
				parts = append(parts, fe.Message)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "; ")
		}
	}

	var generic struct {
		Message string                       `json:"message"`
		Error   json.RawMessage              `json:"error"`
		Detail  string                       `json:"detail"`
		Errors  map[string][]json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(trimmed, &generic); err == nil {
		// Forma 2: mapa errors anidado {campo: [mensajes]}
		if len(generic.Errors) > 0 {
			fields := make([]string, 0, len(generic.Errors))
			for f := range generic.Errors {
				fields = append(fields, f)
			}
			sort.Strings(fields) // salida estable
			var parts []string
			for _, f := range fields {
				for _, m := range generic.Errors[f] {
					parts = append(parts, f+": "+rawToString(m))
				}
			}
			msg := strings.Join(parts, "; ")
			if generic.Message != "" {
				msg = generic.Message + ": " + msg
			}
			return msg
		}
		// Forma 3: campos genéricos
		if generic.Message != "" {
			return generic.Message
		}
		if s := rawToString(generic.Error); s != "" {
			return s
		}
		if generic.Detail != "" {
			return generic.Detail
		}
	}

	// Forma 4: fallback al JSON crudo
	return truncate(string(trimmed), 500)
}

// rawToString convierte un valor JSON (string, número u objeto) a texto plano.
func rawToString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

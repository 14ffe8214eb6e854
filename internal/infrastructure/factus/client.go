package factus

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client expone las operaciones de solo lectura del proveedor (estado,
// descargas). Comparte el TokenProvider con el Sender pero no participa de la
// ruta crítica de emisión.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenProvider
}

// NewClient construye el cliente de consultas.
func NewClient(baseURL string, tokens TokenProvider) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
	}
}

// GetBill consulta el estado de un documento por su número externo.
// Devuelve el cuerpo crudo del proveedor.
func (c *Client) GetBill(ctx context.Context, externalID string) (json.RawMessage, error) {
	return c.get(ctx, PathShowBill+url.PathEscape(externalID))
}

// DownloadPDF descarga la representación gráfica PDF del documento.
// El proveedor responde JSON con el archivo en base64.
func (c *Client) DownloadPDF(ctx context.Context, externalID string) ([]byte, string, error) {
	raw, err := c.get(ctx, PathDownloadPDF+url.PathEscape(externalID))
	if err != nil {
		return nil, "", err
	}
	return decodeFilePayload(raw, "pdf_base_64_encoded")
}

// DownloadXML descarga el XML firmado del documento.
func (c *Client) DownloadXML(ctx context.Context, externalID string) ([]byte, string, error) {
	raw, err := c.get(ctx, PathDownloadXML+url.PathEscape(externalID))
	if err != nil {
		return nil, "", err
	}
	return decodeFilePayload(raw, "xml_base_64_encoded")
}

func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	token, err := c.tokens.GetToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("factus: crear request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("factus: consulta fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20)) // max 16 MB (PDF en base64)
	if err != nil {
		return nil, fmt.Errorf("factus: leer respuesta: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("factus: documento no encontrado en el proveedor")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("factus: consulta respondió %d: %s", resp.StatusCode, ParseErrorBody(raw))
	}
	return raw, nil
}

// decodeFilePayload extrae y decodifica el archivo base64 de la respuesta de
// descarga: {"data": {"file_name": "...", "<campo>": "<base64>"}}.
func decodeFilePayload(raw json.RawMessage, field string) ([]byte, string, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, "", fmt.Errorf("factus: respuesta de descarga inválida: %w", err)
	}
	encoded := lookupFirst(doc, [][]string{
		{"data", field},
		{field},
	})
	if encoded == "" {
		return nil, "", fmt.Errorf("factus: la respuesta de descarga no contiene el archivo")
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", fmt.Errorf("factus: decodificar base64: %w", err)
	}
	name := lookupFirst(doc, [][]string{
		{"data", "file_name"},
		{"file_name"},
	})
	return decoded, name, nil
}

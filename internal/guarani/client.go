// Package guarani habla con la API del sistema registral (Guaraní): catálogo
// de carreras e inscripciones por DNI. La lista de carreras cambia poco y la
// API es lenta, así que se consume a través de CacheCarreras.
package guarani

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mlorenzatti/turnero-campus/internal/apperr"
	"github.com/mlorenzatti/turnero-campus/internal/models"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Carreras trae el catálogo completo. Cualquier falla se reporta como
// upstream no disponible; el cache decide si puede servir algo viejo.
func (c *Client) Carreras(ctx context.Context) ([]models.Carrera, error) {
	var carreras []carreraDTO
	if err := c.get(ctx, "/carreras", &carreras); err != nil {
		return nil, err
	}
	out := make([]models.Carrera, 0, len(carreras))
	for _, dto := range carreras {
		out = append(out, models.Carrera{ID: dto.ID, Nombre: dto.Nombre})
	}
	return out, nil
}

// InscripcionesPara devuelve los ids de carrera en los que el DNI está
// inscripto. Un 404 significa "Guaraní no lo conoce": lista vacía, no error.
func (c *Client) InscripcionesPara(ctx context.Context, dni int64) ([]int64, error) {
	var resp inscripcionesDTO
	err := c.get(ctx, fmt.Sprintf("/inscripciones/%d", dni), &resp)
	if errNotFound(err) {
		return []int64{}, nil
	}
	if err != nil {
		return nil, err
	}
	return resp.Carreras, nil
}

type carreraDTO struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
}

type inscripcionesDTO struct {
	Carreras []int64 `json:"carreras"`
}

type errorHTTP struct {
	status int
	cuerpo string
	path   string
}

func (e *errorHTTP) Error() string {
	return fmt.Sprintf("%s: http %d: %s", e.path, e.status, e.cuerpo)
}

func errNotFound(err error) bool {
	he, ok := err.(*errorHTTP)
	return ok && he.status == http.StatusNotFound
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return apperr.Upstream(err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.Upstream(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		body, _ := io.ReadAll(resp.Body)
		return &errorHTTP{status: resp.StatusCode, cuerpo: strings.TrimSpace(string(body)), path: path}
	}
	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(resp.Body)
		return apperr.Upstream(&errorHTTP{
			status: resp.StatusCode,
			cuerpo: strings.TrimSpace(string(body)),
			path:   path,
		})
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Upstream(fmt.Errorf("%s: decodificando respuesta: %w", path, err))
	}
	return nil
}

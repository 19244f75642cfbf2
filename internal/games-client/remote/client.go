// Package remote é o cliente HTTP tipado da coleção /games.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/sports-games-client/internal/shared/logger"
	"github.com/radieske/sports-games-client/pkg/contracts/games"
)

// Client faz as chamadas ao serviço de jogos. Não faz retry: quem chama
// decide se tenta de novo.
type Client struct {
	BaseURL string // ex: "https://host/api", sem barra final
	HTTP    *http.Client
	Log     *zap.Logger

	// OnResult é chamado ao fim de cada requisição (métricas)
	OnResult func(method, outcome string, elapsed time.Duration)
}

// New cria o cliente com timeout próprio; timeout <= 0 usa 10s
func New(base string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(base, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		Log:     logger.OrNop(log),
	}
}

// ListGames lista os jogos na ordem devolvida pelo servidor. O parâmetro
// status só vai na query quando filter não é AllStatuses.
func (c *Client) ListGames(ctx context.Context, filter games.StatusFilter) ([]games.Game, error) {
	u := c.BaseURL + "/games"
	if !filter.IsAll() {
		u += "?" + url.Values{"status": {string(filter)}}.Encode()
	}

	var out []games.Game
	if err := c.do(ctx, http.MethodGet, u, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []games.Game{}
	}
	return out, nil
}

// CreateGame envia o draft e devolve o jogo com o id atribuído
func (c *Client) CreateGame(ctx context.Context, draft games.GameDraft) (games.Game, error) {
	body, err := json.Marshal(draft)
	if err != nil {
		return games.Game{}, &Error{Kind: ParseFailure, Method: http.MethodPost, Err: err}
	}

	var out games.Game
	if err := c.do(ctx, http.MethodPost, c.BaseURL+"/games", body, &out); err != nil {
		return games.Game{}, err
	}
	if out.ID == nil {
		return games.Game{}, &Error{Kind: ParseFailure, Method: http.MethodPost, Err: errors.New("created game has no id")}
	}
	return out, nil
}

// Greeting chama /greeting?name=... e devolve o texto; serve de sonda de
// conectividade com o backend
func (c *Client) Greeting(ctx context.Context, name string) (string, error) {
	u := c.BaseURL + "/greeting?" + url.Values{"name": {name}}.Encode()
	start := time.Now()
	res, err := c.send(ctx, http.MethodGet, u, nil)
	if err != nil {
		c.report(http.MethodGet, err, start)
		return "", err
	}
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		err = &Error{Kind: Transport, Method: http.MethodGet, Err: err}
		c.report(http.MethodGet, err, start)
		return "", err
	}
	c.report(http.MethodGet, nil, start)
	return string(b), nil
}

func (c *Client) do(ctx context.Context, method, u string, body []byte, dst any) error {
	start := time.Now()
	res, err := c.send(ctx, method, u, body)
	if err != nil {
		c.report(method, err, start)
		return err
	}
	defer res.Body.Close()

	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		err = &Error{Kind: ParseFailure, Method: method, Err: err}
		c.report(method, err, start)
		return err
	}
	c.report(method, nil, start)
	return nil
}

// send executa a requisição e converte transporte/status em *Error.
// Em caso de sucesso quem chama fecha o corpo.
func (c *Client) send(ctx context.Context, method, u string, body []byte) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, &Error{Kind: Transport, Method: method, Err: err}
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := logger.OrNop(c.Log)
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}

	res, err := hc.Do(req)
	if err != nil {
		log.Warn("games request failed", zap.String("method", method), zap.String("url", u), zap.String("request_id", reqID), zap.Error(err))
		return nil, &Error{Kind: Transport, Method: method, Err: err}
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 4<<10))
		res.Body.Close()
		log.Warn("games request rejected", zap.String("method", method), zap.String("url", u), zap.String("request_id", reqID), zap.Int("status", res.StatusCode))
		return nil, &Error{Kind: HTTPStatus, Method: method, StatusCode: res.StatusCode, Err: fmt.Errorf("http %d", res.StatusCode)}
	}
	log.Debug("games request ok", zap.String("method", method), zap.String("url", u), zap.String("request_id", reqID), zap.Int("status", res.StatusCode))
	return res, nil
}

func (c *Client) report(method string, err error, start time.Time) {
	if c.OnResult == nil {
		return
	}
	outcome := "ok"
	var re *Error
	if errors.As(err, &re) {
		outcome = re.Kind.String()
	}
	c.OnResult(method, outcome, time.Since(start))
}

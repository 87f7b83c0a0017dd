package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mymoney-app/mymoney-go/internal/domain"
)

// ============================================================
// HTTP helpers for POST, PATCH, DELETE
//
// Writes go through the circuit breaker but are never retried:
// PostgREST inserts are not idempotent.
// ============================================================

// num renders a decimal as an unquoted JSON number so PostgREST numeric
// columns accept it.
func num(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func (c *Client) doPost(ctx context.Context, table string, data map[string]any) ([]byte, error) {
	body, err := c.write(ctx, http.MethodPost, table, data, "return=representation")
	if err != nil {
		c.logger.Warn("supabase: POST failed", zap.String("table", table), zap.Error(err))
		return nil, err
	}
	c.logger.Debug("supabase: POST OK", zap.String("table", table))
	return body, nil
}

func (c *Client) doPatch(ctx context.Context, path string, data map[string]any) error {
	_, err := c.write(ctx, http.MethodPatch, path, data, "return=minimal")
	if err != nil {
		c.logger.Warn("supabase: PATCH failed", zap.String("path", path), zap.Error(err))
		return err
	}
	c.logger.Debug("supabase: PATCH OK", zap.String("path", path))
	return nil
}

// doUpsert inserts or updates on conflict with the table's unique constraint.
func (c *Client) doUpsert(ctx context.Context, table string, data map[string]any) ([]byte, error) {
	body, err := c.write(ctx, http.MethodPost, table, data, "return=representation,resolution=merge-duplicates")
	if err != nil {
		c.logger.Warn("supabase: upsert failed", zap.String("table", table), zap.Error(err))
		return nil, err
	}
	c.logger.Debug("supabase: upsert OK", zap.String("table", table))
	return body, nil
}

func (c *Client) doDelete(ctx context.Context, path string) error {
	_, err := c.write(ctx, http.MethodDelete, path, nil, "return=minimal")
	if err != nil {
		c.logger.Warn("supabase: DELETE failed", zap.String("path", path), zap.Error(err))
		return err
	}
	c.logger.Debug("supabase: DELETE OK", zap.String("path", path))
	return nil
}

func (c *Client) write(ctx context.Context, method, path string, data map[string]any, prefer string) ([]byte, error) {
	var respBody []byte
	_, err := c.cb.Execute(func() (any, error) {
		if err := c.bulkhead.Acquire(ctx); err != nil {
			return nil, err
		}
		defer c.bulkhead.Release()

		var reqBody *bytes.Reader
		if data != nil {
			jsonBody, err := json.Marshal(data)
			if err != nil {
				return nil, err
			}
			reqBody = bytes.NewReader(jsonBody)
		} else {
			reqBody = bytes.NewReader(nil)
		}

		url := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, path)
		req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
		if err != nil {
			return nil, err
		}
		c.setHeaders(req, prefer)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := readBody(resp)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusConflict {
			return nil, &domain.ErrConflict{Message: fmt.Sprintf("%s already exists: %s", tableOf(path), string(body))}
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("supabase %s %s returned %d: %s", method, path, resp.StatusCode, string(body))
		}
		respBody = body
		return nil, nil
	})
	if err != nil {
		c.countError(path)
		return nil, wrapStoreError(method+" "+tableOf(path), err)
	}
	return respBody, nil
}

func readBody(resp *http.Response) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

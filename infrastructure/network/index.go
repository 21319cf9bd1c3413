package network

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"matchbox.io/infrastructure/logger"
)

const defaultTimeout = 15 * time.Second

var ErrResponseTooLarge = errors.New("response body exceeds limit")

// NetworkController is a small HTTP client bound to a vendor base url.
// Every call is bounded by Timeout on top of the caller's context.
type NetworkController struct {
	BaseUrl string
	Client  *http.Client
	Timeout time.Duration
}

func (n *NetworkController) client() *http.Client {
	if n.Client != nil {
		return n.Client
	}
	return http.DefaultClient
}

func (n *NetworkController) timeout() time.Duration {
	if n.Timeout > 0 {
		return n.Timeout
	}
	return defaultTimeout
}

func (n *NetworkController) resolve(path string, params *map[string]string) (string, error) {
	target := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		target = strings.TrimRight(n.BaseUrl, "/") + "/" + strings.TrimLeft(path, "/")
	}
	if params == nil || len(*params) == 0 {
		return target, nil
	}
	parsed, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	query := parsed.Query()
	for key, value := range *params {
		query.Set(key, value)
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// Post sends body as JSON.
func (n *NetworkController) Post(ctx context.Context, path string, headers *map[string]string, body any, params *map[string]string) (*[]byte, *int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, nil, err
	}
	allHeaders := map[string]string{"Content-Type": "application/json"}
	if headers != nil {
		for key, value := range *headers {
			allHeaders[key] = value
		}
	}
	return n.do(ctx, http.MethodPost, path, allHeaders, bytes.NewReader(payload), params, 0)
}

// PostForm sends fields as multipart/form-data.
func (n *NetworkController) PostForm(ctx context.Context, path string, fields map[string]string) (*[]byte, *int, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, nil, err
	}
	return n.do(ctx, http.MethodPost, path, map[string]string{
		"Content-Type": writer.FormDataContentType(),
	}, &buf, nil, 0)
}

// Get downloads path. maxBytes <= 0 means unlimited.
func (n *NetworkController) Get(ctx context.Context, path string, maxBytes int64) (*[]byte, *int, error) {
	return n.do(ctx, http.MethodGet, path, nil, nil, nil, maxBytes)
}

func (n *NetworkController) do(ctx context.Context, method string, path string, headers map[string]string, body io.Reader, params *map[string]string, maxBytes int64) (*[]byte, *int, error) {
	target, err := n.resolve(path, params)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, n.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, nil, err
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	res, err := n.client().Do(req)
	if err != nil {
		logger.Error("network request failed", logger.LoggerOptions{
			Key:  "host",
			Data: req.URL.Host,
		}, logger.LoggerOptions{
			Key:  "error",
			Data: err.Error(),
		})
		return nil, nil, err
	}
	defer res.Body.Close()

	var reader io.Reader = res.Body
	if maxBytes > 0 {
		reader = io.LimitReader(res.Body, maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, &res.StatusCode, fmt.Errorf("reading response from %s: %w", req.URL.Host, err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, &res.StatusCode, ErrResponseTooLarge
	}
	logger.Info("network request completed", logger.LoggerOptions{
		Key:  "host",
		Data: req.URL.Host,
	}, logger.LoggerOptions{
		Key:  "status",
		Data: res.StatusCode,
	}, logger.LoggerOptions{
		Key:  "duration_ms",
		Data: time.Since(start).Milliseconds(),
	})
	return &data, &res.StatusCode, nil
}

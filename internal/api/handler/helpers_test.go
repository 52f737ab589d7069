package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/api/middleware"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/odoo"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/queue"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

// decodeData 把 resp.Data 解到目标结构
func decodeData(t *testing.T, resp response.Response, out interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

// asUser 模拟 Auth 中间件写入的用户 ID
func asUser(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

type fakeProvisioner struct {
	mu        sync.Mutex
	createErr error
	created   []string
}

func (p *fakeProvisioner) CreateDatabase(_ context.Context, req odoo.CreateDatabaseRequest) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.createErr != nil {
		return p.createErr
	}
	p.created = append(p.created, req.Name)
	return nil
}

func (p *fakeProvisioner) DatabaseExists(_ context.Context, name string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, n := range p.created {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

type discardQueue struct{}

func (discardQueue) Push(context.Context, *queue.EmailJob) error { return nil }

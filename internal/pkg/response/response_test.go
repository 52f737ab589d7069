package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// serve 执行一个只调用 write 的路由，返回状态码与解析后的响应体
func serve(t *testing.T, write func(c *gin.Context)) (int, Response) {
	t.Helper()

	router := gin.New()
	router.GET("/", write)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestHelpers_CodesAndDefaultMessages(t *testing.T) {
	tests := []struct {
		name    string
		write   func(c *gin.Context, message string)
		code    int
		message string
	}{
		{"param", ParamError, CodeParamError, "参数错误"},
		{"auth", AuthError, CodeAuthFailed, "认证失败"},
		{"permission", PermissionError, CodePermissionDenied, "权限不足"},
		{"not found", NotFoundError, CodeResourceNotFound, "资源不存在"},
		{"not subscribed", NotSubscribedError, CodeNotSubscribed, "没有有效的订阅"},
		{"conflict", ConflictError, CodeConflict, "资源冲突"},
		{"server", ServerError, CodeServerError, "服务器内部错误"},
		{"upstream", UpstreamError, CodeUpstreamError, "上游服务错误"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := serve(t, func(c *gin.Context) { tt.write(c, "") })
			assert.Equal(t, http.StatusOK, status, "business errors keep HTTP 200")
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, tt.message, resp.Message)
			assert.Nil(t, resp.Data)

			_, resp = serve(t, func(c *gin.Context) { tt.write(c, "custom detail") })
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, "custom detail", resp.Message)
		})
	}
}

func TestDomainCodesAreDistinct(t *testing.T) {
	codes := []int{CodeSuccess, CodeParamError, CodeAuthFailed, CodePermissionDenied, CodeResourceNotFound,
		CodeNotSubscribed, CodeConflict, CodeServerError, CodeUpstreamError}

	seen := map[int]bool{}
	for _, code := range codes {
		assert.False(t, seen[code], "duplicate code %d", code)
		seen[code] = true
		assert.NotEmpty(t, codeMessages[code], "code %d has no default message", code)
	}
	assert.Equal(t, 1004, CodeNotSubscribed)
	assert.Equal(t, 1005, CodeConflict)
	assert.Equal(t, 5002, CodeUpstreamError)
}

func TestErrorWithStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		code    int
		message string
		want    string
	}{
		{"webhook retry", http.StatusInternalServerError, CodeServerError, "", "服务器内部错误"},
		{"bad signature", http.StatusBadRequest, CodeAuthFailed, "invalid signature", "invalid signature"},
		{"payload too large", http.StatusRequestEntityTooLarge, CodeParamError, "", "参数错误"},
		{"websocket unauthorized", http.StatusUnauthorized, CodeAuthFailed, "", "认证失败"},
		{"unknown code", http.StatusTeapot, 9999, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := serve(t, func(c *gin.Context) {
				ErrorWithStatus(c, tt.status, tt.code, tt.message)
			})
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, tt.want, resp.Message)
		})
	}
}

func TestSuccessVariants(t *testing.T) {
	status, resp := serve(t, func(c *gin.Context) { Success(c, gin.H{"plan": "starter"}) })
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, CodeSuccess, resp.Code)
	assert.Equal(t, "success", resp.Message)
	assert.Equal(t, map[string]interface{}{"plan": "starter"}, resp.Data)

	_, resp = serve(t, func(c *gin.Context) { SuccessWithMessage(c, "已发送", nil) })
	assert.Equal(t, "已发送", resp.Message)
	assert.Nil(t, resp.Data)
}

func TestSuccessPage(t *testing.T) {
	_, resp := serve(t, func(c *gin.Context) {
		SuccessPage(c, 41, 3, 20, []string{"acme", "globex"})
	})
	require.Equal(t, CodeSuccess, resp.Code)

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var page struct {
		PageData
		Items []string `json:"items"`
	}
	require.NoError(t, json.Unmarshal(raw, &page))
	assert.Equal(t, int64(41), page.Total)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 20, page.PageSize)
	assert.Equal(t, []string{"acme", "globex"}, page.Items)
}

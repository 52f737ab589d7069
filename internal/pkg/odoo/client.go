package odoo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/config"
)

var (
	ErrRejected    = errors.New("odoo rejected the request")
	ErrBadResponse = errors.New("odoo returned an unexpected response")
)

// 数据库管理页出错时会带 alert-danger 提示重新渲染
var alertPattern = regexp.MustCompile(`(?s)class="[^"]*alert-danger[^"]*"[^>]*>(.*?)</`)

const maxBodySize = 1 << 20

// CreateDatabaseRequest 创建租户数据库参数
type CreateDatabaseRequest struct {
	Login       string
	Name        string
	Password    string
	Lang        string
	Phone       string
	CountryCode string
}

// Client Odoo 数据库管理接口
type Client struct {
	baseURL        string
	masterPassword string
	httpClient     *http.Client
}

func NewClient(cfg config.OdooConfig) *Client {
	return &Client{
		baseURL:        strings.TrimRight(cfg.AdminURL, "/"),
		masterPassword: cfg.AdminPassword,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
			// 成功时 Odoo 返回 303 跳转，不跟随
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// CreateDatabase 调用 /web/database/create
func (c *Client) CreateDatabase(ctx context.Context, req CreateDatabaseRequest) error {
	form := url.Values{}
	form.Set("master_pwd", c.masterPassword)
	form.Set("login", req.Login)
	form.Set("name", req.Name)
	form.Set("password", req.Password)
	form.Set("lang", req.Lang)
	form.Set("create_uid", "1")
	form.Set("create_user", "true")
	form.Set("phone", req.Phone)
	if req.CountryCode != "" {
		form.Set("country_code", strings.ToLower(req.CountryCode))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/web/database/create", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("create database %s: %w", req.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: create database %s: status %d", ErrBadResponse, req.Name, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("create database %s: read body: %w", req.Name, err)
	}
	if m := alertPattern.FindSubmatch(body); m != nil {
		return fmt.Errorf("%w: %s", ErrRejected, strings.TrimSpace(string(m[1])))
	}
	return nil
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type rpcError struct {
	Message string `json:"message"`
	Data    struct {
		Message string `json:"message"`
	} `json:"data"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// ListDatabases 调用 /web/database/list
func (c *Client) ListDatabases(ctx context.Context) ([]string, error) {
	payload, err := json.Marshal(rpcRequest{JSONRPC: "2.0", Method: "call", Params: map[string]interface{}{}})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/web/database/list", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: list databases: status %d", ErrBadResponse, resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("%w: list databases: %v", ErrBadResponse, err)
	}
	if rpcResp.Error != nil {
		msg := rpcResp.Error.Data.Message
		if msg == "" {
			msg = rpcResp.Error.Message
		}
		return nil, fmt.Errorf("%w: %s", ErrRejected, msg)
	}

	var names []string
	if err := json.Unmarshal(rpcResp.Result, &names); err != nil {
		return nil, fmt.Errorf("%w: list databases: %v", ErrBadResponse, err)
	}
	return names, nil
}

// DatabaseExists 判断租户数据库是否已存在
func (c *Client) DatabaseExists(ctx context.Context, name string) (bool, error) {
	names, err := c.ListDatabases(ctx)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// Ping 用于健康检查
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := c.ListDatabases(ctx)
	return err
}

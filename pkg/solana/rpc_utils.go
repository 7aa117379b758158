package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Global HTTP client with connection pooling for better performance
var (
	rpcHTTPClient *http.Client
	clientOnce    sync.Once
)

// getRPCClient returns a shared HTTP client with optimized settings
func getRPCClient() *http.Client {
	clientOnce.Do(func() {
		transport := &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			DisableKeepAlives:   false,
		}
		rpcHTTPClient = &http.Client{
			Transport: transport,
			Timeout:   5 * time.Second,
		}
	})
	return rpcHTTPClient
}

// RPCRequest represents a JSON-RPC request
type RPCRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// RPCResponse represents a JSON-RPC response
type RPCResponse struct {
	Jsonrpc string           `json:"jsonrpc"`
	Result  json.RawMessage  `json:"result"`
	Error   *json.RawMessage `json:"error"`
	ID      int              `json:"id"`
}

// callRPC issues a raw JSON-RPC request against the given endpoint and
// decodes the result field into out.
func callRPC(ctx context.Context, url, method string, params []interface{}, out interface{}) error {
	req := RPCRequest{
		Jsonrpc: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal rpc request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create rpc request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := getRPCClient().Do(httpReq)
	if err != nil {
		return fmt.Errorf("rpc request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rpc request failed with status: %d", resp.StatusCode)
	}

	var rpcResp RPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("failed to decode rpc response: %w", err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("rpc error: %s", string(*rpcResp.Error))
	}
	if out != nil {
		if err := json.Unmarshal(rpcResp.Result, out); err != nil {
			return fmt.Errorf("failed to unmarshal rpc result: %w", err)
		}
	}
	return nil
}

// RPCCheckResult represents the result of checking an RPC endpoint
type RPCCheckResult struct {
	URL     string        `json:"url"`
	OK      bool          `json:"ok"`
	Latency time.Duration `json:"latency"`
	Error   string        `json:"error,omitempty"`
}

// checkRPCAsync checks a single RPC endpoint asynchronously with context support
func checkRPCAsync(ctx context.Context, url string, timeout time.Duration, ch chan<- RPCCheckResult, wg *sync.WaitGroup) {
	defer wg.Done()

	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := callRPC(reqCtx, url, "getHealth", []interface{}{}, nil)
	latency := time.Since(start)
	if err != nil {
		ch <- RPCCheckResult{URL: url, OK: false, Latency: latency, Error: err.Error()}
		return
	}

	ch <- RPCCheckResult{URL: url, OK: true, Latency: latency}
}

// CheckRPCListAsync checks multiple RPC endpoints asynchronously with context support
func CheckRPCListAsync(ctx context.Context, rpcList []string, timeout time.Duration) []RPCCheckResult {
	var wg sync.WaitGroup
	resultCh := make(chan RPCCheckResult, len(rpcList))

	for _, url := range rpcList {
		wg.Add(1)
		go checkRPCAsync(ctx, url, timeout, resultCh, &wg)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
	case <-done:
	}
	close(resultCh)

	var results []RPCCheckResult
	for res := range resultCh {
		results = append(results, res)
	}
	return results
}

// file: internal/mcp/dispatch/types.go
package dispatch

import "encoding/json"

// request is an incoming request or notification. A missing id marks a notification.
type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

func (r request) isNotification() bool {
	return len(r.ID) == 0
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

type implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type initializeParams struct {
	ProtocolVersion string          `json:"protocolVersion"`
	Capabilities    json.RawMessage `json:"capabilities,omitempty"`
	ClientInfo      *implementation `json:"clientInfo,omitempty"`
}

type listChanged struct {
	ListChanged bool `json:"listChanged"`
}

type serverCapabilities struct {
	Prompts   listChanged `json:"prompts"`
	Resources listChanged `json:"resources"`
}

type initializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    serverCapabilities `json:"capabilities"`
	ServerInfo      implementation     `json:"serverInfo"`
}

type promptDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type listPromptsResult struct {
	Prompts []promptDescriptor `json:"prompts"`
}

type getPromptParams struct {
	Name string `json:"name"`
}

type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type promptMessage struct {
	Role    string      `json:"role"`
	Content textContent `json:"content"`
}

type getPromptResult struct {
	Description string          `json:"description"`
	Messages    []promptMessage `json:"messages"`
}

type resourceDescriptor struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MIMEType    string `json:"mimeType"`
}

type listResourcesResult struct {
	Resources []resourceDescriptor `json:"resources"`
}

type readResourceParams struct {
	URI string `json:"uri"`
}

type resourceContents struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType"`
	Text     string `json:"text"`
}

type readResourceResult struct {
	Contents []resourceContents `json:"contents"`
}

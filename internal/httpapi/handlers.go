// file: internal/httpapi/handlers.go
package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/voicestyle/internal/catalog"
	"github.com/dkoosis/voicestyle/internal/metrics"
)

// protocolVersion is what the REST mirror advertises; it predates the stdio protocol versions.
const protocolVersion = "0.1.0"

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /mcp/capabilities", s.handleCapabilities)
	mux.HandleFunc("GET /mcp/prompts/list", s.handlePromptsList)
	mux.HandleFunc("POST /mcp/prompts/get", s.handlePromptsGet)
	mux.HandleFunc("GET /mcp/resources/list", s.handleResourcesList)
	mux.HandleFunc("POST /mcp/resources/read", s.handleResourcesRead)
	mux.HandleFunc("GET /mcp/tools/list", s.handleToolsList)
	mux.HandleFunc("POST /mcp/tools/call", s.handleToolsCall)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
}

type serviceDescriptor struct {
	Service     string            `json:"service"`
	Version     string            `json:"version"`
	Endpoints   map[string]string `json:"endpoints"`
	Description string            `json:"description"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, serviceDescriptor{
		Service: "Matt's Voice, Style, and Tone MCP Server",
		Version: s.info.Version,
		Endpoints: map[string]string{
			"capabilities": "/mcp/capabilities",
			"prompts":      "/mcp/prompts/list",
			"resources":    "/mcp/resources/list",
			"tools":        "/mcp/tools/list",
			"health":       "/health",
		},
		Description: "Model Context Protocol server serving Matt's voice, style, and tone preferences",
	})
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: s.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Service:   s.info.ServiceName(),
	})
}

type listChanged struct {
	ListChanged bool `json:"listChanged"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type capabilitiesResponse struct {
	Capabilities struct {
		Prompts   listChanged `json:"prompts"`
		Resources listChanged `json:"resources"`
		Tools     listChanged `json:"tools"`
	} `json:"capabilities"`
	ProtocolVersion string     `json:"protocolVersion"`
	ServerInfo      serverInfo `json:"serverInfo"`
}

func (s *Server) handleCapabilities(w http.ResponseWriter, _ *http.Request) {
	var resp capabilitiesResponse
	resp.Capabilities.Prompts.ListChanged = true
	resp.Capabilities.Resources.ListChanged = true
	resp.Capabilities.Tools.ListChanged = true
	resp.ProtocolVersion = protocolVersion
	resp.ServerInfo = serverInfo{Name: s.info.ServiceName(), Version: s.info.Version}
	writeJSON(w, s.logger, http.StatusOK, resp)
}

type promptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

type promptDescriptor struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Arguments   []promptArgument `json:"arguments"`
}

func (s *Server) handlePromptsList(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()
	prompts := s.catalogs.Prompts.List()
	out := make([]promptDescriptor, len(prompts))
	for i, p := range prompts {
		out[i] = promptDescriptor{Name: p.Name, Description: p.Description, Arguments: []promptArgument{}}
	}
	s.metrics.RecordRequest(metrics.SurfaceHTTP, "prompts/list", start, nil)
	writeJSON(w, s.logger, http.StatusOK, map[string]interface{}{"prompts": out})
}

type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type promptMessage struct {
	Role    string      `json:"role"`
	Content textContent `json:"content"`
}

type promptResponse struct {
	Description string          `json:"description"`
	Messages    []promptMessage `json:"messages"`
}

func (s *Server) handlePromptsGet(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if !s.decodeBody(w, r, &body) {
		return
	}
	start := time.Now()
	res, err := s.catalogs.Prompts.Render(body.Name)
	s.metrics.RecordRequest(metrics.SurfaceHTTP, "prompts/get", start, err)
	if err != nil {
		writeCatalogError(w, s.logger, err)
		return
	}
	out := promptResponse{Description: res.Description, Messages: make([]promptMessage, len(res.Messages))}
	for i, m := range res.Messages {
		out.Messages[i] = promptMessage{Role: m.Role, Content: textContent{Type: "text", Text: m.Text}}
	}
	writeJSON(w, s.logger, http.StatusOK, out)
}

func (s *Server) handleResourcesList(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()
	resources := s.catalogs.Resources.List()
	s.metrics.RecordRequest(metrics.SurfaceHTTP, "resources/list", start, nil)
	writeJSON(w, s.logger, http.StatusOK, map[string]interface{}{"resources": resourceList(resources)})
}

type resourceDescriptor struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MIMEType    string `json:"mimeType"`
}

func resourceList(in []catalog.ResourceInfo) []resourceDescriptor {
	out := make([]resourceDescriptor, len(in))
	for i, r := range in {
		out[i] = resourceDescriptor{URI: r.URI, Name: r.Name, Description: r.Description, MIMEType: r.MIMEType}
	}
	return out
}

type resourceContents struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType"`
	Text     string `json:"text"`
}

func (s *Server) handleResourcesRead(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URI string `json:"uri"`
	}
	if !s.decodeBody(w, r, &body) {
		return
	}
	start := time.Now()
	content, err := s.catalogs.Resources.Read(body.URI)
	s.metrics.RecordRequest(metrics.SurfaceHTTP, "resources/read", start, err)
	if err != nil {
		writeCatalogError(w, s.logger, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, map[string]interface{}{
		"contents": []resourceContents{{URI: content.URI, MIMEType: content.MIMEType, Text: content.Text}},
	})
}

type toolDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

func (s *Server) handleToolsList(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()
	tools := s.catalogs.Tools.List()
	out := make([]toolDescriptor, len(tools))
	for i, t := range tools {
		out[i] = toolDescriptor{Name: t.Name, Description: t.Description, InputSchema: t.InputSchema}
	}
	s.metrics.RecordRequest(metrics.SurfaceHTTP, "tools/list", start, nil)
	writeJSON(w, s.logger, http.StatusOK, map[string]interface{}{"tools": out})
}

func (s *Server) handleToolsCall(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if !s.decodeBody(w, r, &body) {
		return
	}
	start := time.Now()
	text, err := s.catalogs.Tools.Invoke(r.Context(), body.Name, body.Arguments)
	s.metrics.RecordRequest(metrics.SurfaceHTTP, "tools/call", start, err)
	if err != nil {
		writeCatalogError(w, s.logger, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, map[string]interface{}{
		"content": []textContent{{Type: "text", Text: text}},
	})
}

// decodeBody reads a JSON body into dst. An empty body decodes as {}. It writes the 400
// response itself and reports false when the body is malformed.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	s.logger.WithContext(r.Context()).Debug("Rejected request body.", "path", r.URL.Path, "error", err)
	writeError(w, s.logger, http.StatusBadRequest, "Invalid request body")
	return false
}

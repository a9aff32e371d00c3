// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Vellum annotation tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/vellum/internal/models"
	"github.com/starford/vellum/internal/service"
)

const formatURI = "vellum://annotation-format"

// DefaultAuthor is recorded as the creator of annotations made through MCP
// when New is given a zero user.
var DefaultAuthor = models.User{ID: "mcp", Name: "MCP assistant", Type: "user"}

// Server wraps the MCP server with Vellum tools.
type Server struct {
	mcp    *server.MCPServer
	svc    *service.Service
	author models.User
}

// New creates a new MCP server with all Vellum tools registered.
func New(svc *service.Service, author models.User) *Server {
	if author.ID == "" {
		author = DefaultAuthor
	}
	s := &Server{svc: svc, author: author}

	s.mcp = server.NewMCPServer(
		"Vellum",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_annotations",
		mcp.WithDescription("List the annotations of a file, oldest first, one page at a time."),
		mcp.WithString("file_id", mcp.Required(), mcp.Description("File whose annotations to list")),
		mcp.WithString("version_id", mcp.Description("Optional file version filter (empty for all versions)")),
		mcp.WithString("marker", mcp.Description("next_marker of the previous page (empty for the first page)")),
	), s.listAnnotations)

	s.mcp.AddTool(mcp.NewTool("get_annotation",
		mcp.WithDescription("Read a single annotation by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Annotation id")),
	), s.getAnnotation)

	s.mcp.AddTool(mcp.NewTool("create_annotation",
		mcp.WithDescription("Create an annotation on a file. "+
			"The annotation argument MUST be a JSON object in the canonical payload format. "+
			"Read the contract first via the get_annotation_contract tool or the "+formatURI+" resource."),
		mcp.WithString("file_id", mcp.Required(), mcp.Description("File to annotate")),
		mcp.WithString("annotation", mcp.Required(), mcp.Description("JSON annotation payload following the Vellum annotation format contract")),
	), s.createAnnotation)

	s.mcp.AddTool(mcp.NewTool("delete_annotation",
		mcp.WithDescription("Delete an annotation by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Annotation id")),
	), s.deleteAnnotation)

	s.mcp.AddTool(mcp.NewTool("search_annotations",
		mcp.WithDescription("Full-text search through annotation messages."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchAnnotations)

	s.mcp.AddTool(mcp.NewTool("list_imports",
		mcp.WithDescription("List the batch files currently in the import inbox."),
	), s.listImports)

	s.mcp.AddTool(mcp.NewTool("import_batch",
		mcp.WithDescription("Fetch a YAML or JSON annotation batch and import it into the inbox. "+
			"Accepts an http(s) URL or a base64 data URI."),
		mcp.WithString("source", mcp.Required(), mcp.Description("http(s) URL or data:...;base64,... URI of the batch")),
		mcp.WithString("filename", mcp.Description("Optional inbox file name (derived from the URL when empty)")),
	), s.importBatch)

	s.mcp.AddTool(mcp.NewTool("get_annotation_contract",
		mcp.WithDescription("Returns the canonical Vellum annotation format contract. "+
			"Call this before creating annotations or importing batches."),
	), s.getAnnotationContract)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Annotation Format Contract",
			mcp.WithResourceDescription("Canonical annotation payload and batch file format."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) listAnnotations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fileID, err := req.RequireString("file_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := s.svc.ListAnnotations(ctx, fileID,
		req.GetString("version_id", ""), service.DefaultLimit, req.GetString("marker", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(page), nil
}

func (s *Server) getAnnotation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a, err := s.svc.GetAnnotation(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", id, err)), nil
	}
	return jsonResult(a), nil
}

func (s *Server) createAnnotation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fileID, err := req.RequireString("file_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("annotation")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var in models.NewAnnotation
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid annotation JSON: %v", err)), nil
	}

	a, err := s.svc.CreateAnnotation(ctx, fileID, s.author, in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(a), nil
}

func (s *Server) deleteAnnotation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.DeleteAnnotation(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", id, err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", id)), nil
}

func (s *Server) searchAnnotations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results), nil
}

func (s *Server) listImports(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metas, err := s.svc.ListImports(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(metas) == 0 {
		return mcp.NewToolResultText("inbox is empty"), nil
	}
	paths := make([]string, 0, len(metas))
	for _, m := range metas {
		paths = append(paths, m.Path)
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) getAnnotationContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(AnnotationFormatContract), nil
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     AnnotationFormatContract,
		},
	}, nil
}

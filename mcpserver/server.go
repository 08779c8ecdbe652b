package mcpserver

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/raushankrgupta/product-page-extractor/extractor"
	"github.com/raushankrgupta/product-page-extractor/models"
	"github.com/raushankrgupta/product-page-extractor/utils"
)

// maxVerifyURLs bounds a single verify_images call
const maxVerifyURLs = 100

// PageRunner runs the crawl and extraction for one URL
type PageRunner interface {
	Run(ctx context.Context, url string) (*models.PageReport, error)
}

// Server exposes page extraction as MCP tools
type Server struct {
	MCPServer *sdkmcp.Server

	runner   PageRunner
	verifier extractor.Verifier
}

// NewServer creates an MCP server with the extract_page and verify_images tools
func NewServer(runner PageRunner, verifier extractor.Verifier, version string) *Server {
	s := &Server{runner: runner, verifier: verifier}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "pagex", Version: version},
		nil,
	)
	s.registerTools()
	return s
}

// Run serves over stdin/stdout until ctx is done or the client disconnects
func (s *Server) Run(ctx context.Context) error {
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "extract_page",
		Description: "Render a web page and return its title, links, price data and verified product images.",
	}, s.handleExtractPage)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "verify_images",
		Description: "Check candidate image URLs and return only those that really serve images.",
	}, s.handleVerifyImages)
}

type extractPageInput struct {
	URL string `json:"url" jsonschema:"absolute http or https URL of the page"`
}

type verifyImagesInput struct {
	URLs       []string `json:"urls" jsonschema:"candidate image URLs"`
	Confidence *float64 `json:"confidence,omitempty" jsonschema:"confidence to report with the result"`
}

func (s *Server) handleExtractPage(ctx context.Context, _ *sdkmcp.CallToolRequest, input extractPageInput) (*sdkmcp.CallToolResult, models.PageReport, error) {
	if !utils.IsValidURL(input.URL) {
		return nil, models.PageReport{}, eris.Errorf("invalid URL %q: provide a URL starting with http:// or https://", input.URL)
	}

	zap.L().Info("extract_page", zap.String("url", input.URL))
	report, err := s.runner.Run(ctx, input.URL)
	if err != nil {
		zap.L().Error("extraction failed", zap.String("url", input.URL), zap.Error(err))
		return nil, models.PageReport{}, eris.Wrap(err, "extract_page")
	}
	return nil, *report, nil
}

func (s *Server) handleVerifyImages(ctx context.Context, _ *sdkmcp.CallToolRequest, input verifyImagesInput) (*sdkmcp.CallToolResult, models.ImageExtraction, error) {
	if len(input.URLs) > maxVerifyURLs {
		return nil, models.ImageExtraction{}, eris.Errorf("at most %d urls per call", maxVerifyURLs)
	}

	candidates := make([]models.ImageCandidate, len(input.URLs))
	for i, u := range input.URLs {
		candidates[i] = models.ImageCandidate{URL: u}
	}
	return nil, extractor.ValidateImages(ctx, s.verifier, candidates, input.Confidence), nil
}

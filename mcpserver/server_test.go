package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/raushankrgupta/product-page-extractor/models"
)

// MockRunner implements PageRunner for testing.
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, url string) (*models.PageReport, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PageReport), args.Error(1)
}

type tableVerifier map[string]models.VerificationOutcome

func (v tableVerifier) Verify(ctx context.Context, rawURL string) models.VerificationOutcome {
	if o, ok := v[rawURL]; ok {
		return o
	}
	return models.VerificationOutcome{Error: "Invalid URL format"}
}

func connect(t *testing.T, srv *Server) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	t1, t2 := sdkmcp.NewInMemoryTransports()
	serverSession, err := srv.MCPServer.Connect(ctx, t1, nil)
	require.NoError(t, err)
	t.Cleanup(func() { serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, t2, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func callTool(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any) *sdkmcp.CallToolResult {
	t.Helper()
	res, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	return res
}

func resultText(t *testing.T, res *sdkmcp.CallToolResult) string {
	t.Helper()
	for _, c := range res.Content {
		if tc, ok := c.(*sdkmcp.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatal("no text content in tool result")
	return ""
}

func TestListTools(t *testing.T) {
	session := connect(t, NewServer(new(MockRunner), tableVerifier{}, "test"))

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"extract_page", "verify_images"}, names)
}

func TestExtractPage(t *testing.T) {
	mr := new(MockRunner)
	mr.On("Run", mock.Anything, "https://shop.example/p/1").
		Return(&models.PageReport{URL: "https://shop.example/p/1", Title: "Kettle", Links: []string{"https://shop.example/"}}, nil)

	session := connect(t, NewServer(mr, tableVerifier{}, "test"))
	res := callTool(t, session, "extract_page", map[string]any{"url": "https://shop.example/p/1"})

	require.False(t, res.IsError, resultText(t, res))
	var report models.PageReport
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &report))
	assert.Equal(t, "Kettle", report.Title)
	assert.Equal(t, []string{"https://shop.example/"}, report.Links)
	mr.AssertExpectations(t)
}

func TestExtractPage_InvalidURL(t *testing.T) {
	mr := new(MockRunner)
	session := connect(t, NewServer(mr, tableVerifier{}, "test"))

	res := callTool(t, session, "extract_page", map[string]any{"url": "shop.example"})

	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "invalid URL")
	mr.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestExtractPage_RunnerError(t *testing.T) {
	mr := new(MockRunner)
	mr.On("Run", mock.Anything, "https://down.example/").Return(nil, errors.New("net::ERR_NAME_NOT_RESOLVED"))

	session := connect(t, NewServer(mr, tableVerifier{}, "test"))
	res := callTool(t, session, "extract_page", map[string]any{"url": "https://down.example/"})

	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "ERR_NAME_NOT_RESOLVED")
}

func TestVerifyImages(t *testing.T) {
	v := tableVerifier{
		"https://cdn.example/a.png": {IsImage: true, ContentType: "image/png"},
		"https://cdn.example/b":     {ContentType: "text/html", Error: "URL does not point to an image"},
	}
	session := connect(t, NewServer(new(MockRunner), v, "test"))

	res := callTool(t, session, "verify_images", map[string]any{
		"urls":       []string{"https://cdn.example/b", "https://cdn.example/a.png"},
		"confidence": 0.6,
	})

	require.False(t, res.IsError, resultText(t, res))
	assert.JSONEq(t, `{"productImages":[{"url":"https://cdn.example/a.png","contentType":"image/png"}],"confidence":0.6}`, resultText(t, res))
}

func TestVerifyImages_TooMany(t *testing.T) {
	urls := make([]string, maxVerifyURLs+1)
	for i := range urls {
		urls[i] = "https://cdn.example/x.png"
	}
	session := connect(t, NewServer(new(MockRunner), tableVerifier{}, "test"))

	res := callTool(t, session, "verify_images", map[string]any{"urls": urls})
	assert.True(t, res.IsError)
}

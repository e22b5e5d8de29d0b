package openapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pb33f/libopenapi"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
)

// HTTPClient interface for making HTTP requests
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Parser loads an OpenAPI v3 document and answers questions about its operations
type Parser struct {
	model      *libopenapi.DocumentModel[v3.Document]
	httpClient HTTPClient
}

func NewParser() *Parser {
	return &Parser{httpClient: http.DefaultClient}
}

func NewParserWithClient(client HTTPClient) *Parser {
	return &Parser{httpClient: client}
}

// Loaded reports whether a document has been loaded
func (p *Parser) Loaded() bool {
	return p.model != nil
}

// LoadFromURL loads a document over HTTP(S), lambda:// (through the client) or file://
func (p *Parser) LoadFromURL(ctx context.Context, urlStr string) error {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("parsing URL: %w", err)
	}

	if parsedURL.Scheme == "file" {
		filePath := parsedURL.Path
		// file://relative/path puts the first segment in Host
		if parsedURL.Host != "" {
			filePath = parsedURL.Host + parsedURL.Path
		}
		if !filepath.IsAbs(filePath) {
			filePath, err = filepath.Abs(filePath)
			if err != nil {
				return fmt.Errorf("resolving absolute path: %w", err)
			}
		}
		return p.loadFromFile(filePath)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching OpenAPI document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	return p.LoadFromBytes(body)
}

func (p *Parser) loadFromFile(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading file %s: %w", filePath, err)
	}
	return p.LoadFromBytes(data)
}

func (p *Parser) LoadFromBytes(data []byte) error {
	document, err := libopenapi.NewDocument(data)
	if err != nil {
		return fmt.Errorf("parsing OpenAPI document: %w", err)
	}

	model, errs := document.BuildV3Model()
	if len(errs) > 0 {
		return fmt.Errorf("building v3 model: %v", errs)
	}

	p.model = model
	return nil
}

// PathInfo is one operation of the document
type PathInfo struct {
	Path       string
	Method     string
	Summary    string
	Parameters []*v3.Parameter
}

// GetPaths returns the operations matching pathFilter (exact, "*" or "prefix*")
// and methodFilter ("ANY", "*", a method, or a comma-separated list).
func (p *Parser) GetPaths(pathFilter, methodFilter string) ([]PathInfo, error) {
	if p.model == nil {
		return nil, fmt.Errorf("no OpenAPI document loaded")
	}

	var paths []PathInfo

	if p.model.Model.Paths == nil || p.model.Model.Paths.PathItems == nil {
		return paths, nil
	}

	for pathPattern, pathItem := range p.model.Model.Paths.PathItems.FromOldest() {
		if !matchesPathFilter(pathPattern, pathFilter) {
			continue
		}

		for method, op := range getOperations(pathItem) {
			if !matchesMethodFilter(method, methodFilter) {
				continue
			}
			paths = append(paths, PathInfo{
				Path:       pathPattern,
				Method:     strings.ToUpper(method),
				Summary:    op.Summary,
				Parameters: mergeParameters(pathItem.Parameters, op.Parameters),
			})
		}
	}

	sort.Slice(paths, func(i, j int) bool {
		if paths[i].Path != paths[j].Path {
			return paths[i].Path < paths[j].Path
		}
		return methodOrder(paths[i].Method) < methodOrder(paths[j].Method)
	})

	return paths, nil
}

func (p *Parser) GetServers() ([]*v3.Server, error) {
	if p.model == nil {
		return nil, fmt.Errorf("no OpenAPI document loaded")
	}
	return p.model.Model.Servers, nil
}

// QueryParameter is a query-string parameter declared by an operation
type QueryParameter struct {
	Name        string
	Description string
	Required    bool
	Repeated    bool // schema type is array
}

// QueryParameters returns the query parameters of the operation at exactly
// path and method, in name order.
func (p *Parser) QueryParameters(path, method string) ([]QueryParameter, error) {
	paths, err := p.GetPaths(path, method)
	if err != nil {
		return nil, err
	}

	var params []QueryParameter
	for _, info := range paths {
		if info.Path != path {
			continue
		}
		for _, param := range info.Parameters {
			if param.In != "query" {
				continue
			}
			qp := QueryParameter{
				Name:        param.Name,
				Description: param.Description,
				Required:    param.Required != nil && *param.Required,
			}
			if param.Schema != nil {
				if schema := param.Schema.Schema(); schema != nil && len(schema.Type) > 0 {
					qp.Repeated = schema.Type[0] == "array"
				}
			}
			params = append(params, qp)
		}
	}
	return params, nil
}

func matchesPathFilter(path, filter string) bool {
	if filter == "" || filter == "*" {
		return true
	}
	if strings.HasSuffix(filter, "*") {
		return strings.HasPrefix(path, strings.TrimSuffix(filter, "*"))
	}
	return path == filter
}

func matchesMethodFilter(method, filter string) bool {
	if filter == "" || strings.EqualFold(filter, "ANY") || filter == "*" {
		return true
	}
	for _, m := range strings.Split(filter, ",") {
		if strings.EqualFold(method, strings.TrimSpace(m)) {
			return true
		}
	}
	return false
}

func getOperations(pathItem *v3.PathItem) map[string]*v3.Operation {
	ops := make(map[string]*v3.Operation)

	if pathItem.Get != nil {
		ops["get"] = pathItem.Get
	}
	if pathItem.Post != nil {
		ops["post"] = pathItem.Post
	}
	if pathItem.Put != nil {
		ops["put"] = pathItem.Put
	}
	if pathItem.Delete != nil {
		ops["delete"] = pathItem.Delete
	}
	if pathItem.Patch != nil {
		ops["patch"] = pathItem.Patch
	}
	if pathItem.Head != nil {
		ops["head"] = pathItem.Head
	}
	if pathItem.Options != nil {
		ops["options"] = pathItem.Options
	}

	return ops
}

// mergeParameters overlays operation parameters on path-level ones, keyed by in+name
func mergeParameters(pathParams, opParams []*v3.Parameter) []*v3.Parameter {
	paramMap := make(map[string]*v3.Parameter)

	for _, list := range [][]*v3.Parameter{pathParams, opParams} {
		for _, p := range list {
			if p.Name != "" && p.In != "" {
				paramMap[p.In+":"+p.Name] = p
			}
		}
	}

	result := make([]*v3.Parameter, 0, len(paramMap))
	for _, p := range paramMap {
		result = append(result, p)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].In != result[j].In {
			return parameterInOrder(result[i].In) < parameterInOrder(result[j].In)
		}
		return result[i].Name < result[j].Name
	})

	return result
}

var methodRank = map[string]int{
	"GET":     0,
	"POST":    1,
	"PUT":     2,
	"PATCH":   3,
	"DELETE":  4,
	"HEAD":    5,
	"OPTIONS": 6,
}

func methodOrder(method string) int {
	if v, ok := methodRank[method]; ok {
		return v
	}
	return 999
}

var inRank = map[string]int{
	"path":   0,
	"query":  1,
	"header": 2,
	"cookie": 3,
}

func parameterInOrder(in string) int {
	if v, ok := inRank[in]; ok {
		return v
	}
	return 999
}

package http

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/dchest/uniuri"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// LambdaInvoker is the subset of the Lambda API the client uses
type LambdaInvoker interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// Client wraps the standard http.Client and adds Lambda invocation support
type Client struct {
	*http.Client
	lambdaClient LambdaInvoker
}

// NewClient creates a new HTTP client with Lambda support
func NewClient() (*Client, error) {
	return NewClientWithHTTPClient(http.DefaultClient)
}

// NewClientWithHTTPClient creates a new client with a custom HTTP client
func NewClientWithHTTPClient(httpClient *http.Client) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &Client{
		Client:       httpClient,
		lambdaClient: lambda.NewFromConfig(cfg),
	}, nil
}

// NewClientWithInvoker creates a client that sends lambda:// requests to invoker
func NewClientWithInvoker(httpClient *http.Client, invoker LambdaInvoker) *Client {
	return &Client{Client: httpClient, lambdaClient: invoker}
}

// Do performs the request, routing to Lambda or HTTP based on the URL scheme
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme == "lambda" {
		return c.doLambda(req)
	}
	return c.Client.Do(req)
}

func (c *Client) doLambda(req *http.Request) (*http.Response, error) {
	functionName := req.URL.Host
	if functionName == "" {
		return nil, fmt.Errorf("lambda URL missing function name")
	}
	if c.lambdaClient == nil {
		return nil, fmt.Errorf("lambda invocation not configured")
	}

	event, err := httpRequestToLambdaEvent(req)
	if err != nil {
		return nil, fmt.Errorf("converting request to Lambda event: %w", err)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshaling Lambda event: %w", err)
	}

	output, err := c.lambdaClient.Invoke(req.Context(), &lambda.InvokeInput{
		FunctionName:   aws.String(functionName),
		InvocationType: types.InvocationTypeRequestResponse,
		Payload:        payload,
	})
	if err != nil {
		return nil, fmt.Errorf("invoking Lambda function: %w", err)
	}

	if output.FunctionError != nil {
		return nil, fmt.Errorf("Lambda function error: %s", *output.FunctionError)
	}

	resp, err := lambdaResponseToHTTP(output.Payload)
	if err != nil {
		return nil, err
	}
	resp.Request = req
	return resp, nil
}

// httpRequestToLambdaEvent converts an http.Request to an API Gateway v2 HTTP proxy event
func httpRequestToLambdaEvent(req *http.Request) (*events.APIGatewayV2HTTPRequest, error) {
	var body string
	var isBase64Encoded bool

	if req.Body != nil {
		bodyBytes, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}
		req.Body = io.NopCloser(bytes.NewReader(bodyBytes))

		if utf8.Valid(bodyBytes) {
			body = string(bodyBytes)
		} else {
			body = base64.StdEncoding.EncodeToString(bodyBytes)
			isBase64Encoded = true
		}
	}

	headers := make(map[string]string)
	for key, values := range req.Header {
		headers[key] = strings.Join(values, ",")
	}
	if req.Host != "" {
		headers["Host"] = req.Host
	}

	var cookies []string
	for _, c := range req.Cookies() {
		cookies = append(cookies, c.String())
	}

	// Repeated keys (ingredient=a&ingredient=b) are comma-joined, matching
	// API Gateway's own behaviour; RawQueryString keeps the exact encoding.
	queryParams := make(map[string]string)
	for key, values := range req.URL.Query() {
		queryParams[key] = strings.Join(values, ",")
	}

	now := time.Now()
	routeKey := fmt.Sprintf("%s %s", req.Method, req.URL.Path)

	event := &events.APIGatewayV2HTTPRequest{
		Version:               "2.0",
		RouteKey:              routeKey,
		RawPath:               req.URL.Path,
		RawQueryString:        req.URL.RawQuery,
		Cookies:               cookies,
		Headers:               headers,
		QueryStringParameters: queryParams,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			AccountID:    "000000000000",
			APIID:        "recipeq",
			DomainName:   "lambda.local",
			DomainPrefix: "lambda",
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method:    req.Method,
				Path:      req.URL.Path,
				Protocol:  "HTTP/1.1",
				SourceIP:  "127.0.0.1",
				UserAgent: req.UserAgent(),
			},
			RequestID: "recipeq-" + uniuri.NewLen(12),
			RouteKey:  routeKey,
			Stage:     "$default",
			Time:      now.Format("02/Jan/2006:15:04:05 -0700"),
			TimeEpoch: now.UnixMilli(),
		},
		Body:            body,
		IsBase64Encoded: isBase64Encoded,
	}

	return event, nil
}

// lambdaResponseToHTTP converts a Lambda response to an http.Response
func lambdaResponseToHTTP(payload []byte) (*http.Response, error) {
	var lambdaResp events.APIGatewayV2HTTPResponse
	if err := json.Unmarshal(payload, &lambdaResp); err != nil {
		return nil, fmt.Errorf("parsing Lambda response: %w", err)
	}

	resp := &http.Response{
		StatusCode: lambdaResp.StatusCode,
		Status:     fmt.Sprintf("%d %s", lambdaResp.StatusCode, http.StatusText(lambdaResp.StatusCode)),
		Header:     make(http.Header),
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
	}

	for key, value := range lambdaResp.Headers {
		resp.Header.Set(key, value)
	}
	for key, values := range lambdaResp.MultiValueHeaders {
		for _, v := range values {
			resp.Header.Add(key, v)
		}
	}
	for _, cookie := range lambdaResp.Cookies {
		resp.Header.Add("Set-Cookie", cookie)
	}

	bodyBytes := []byte(lambdaResp.Body)
	if lambdaResp.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(lambdaResp.Body)
		if err != nil {
			return nil, fmt.Errorf("decoding base64 Lambda body: %w", err)
		}
		bodyBytes = decoded
	}
	resp.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	resp.ContentLength = int64(len(bodyBytes))

	return resp, nil
}

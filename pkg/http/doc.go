// Package http provides an HTTP client that also understands lambda:// URLs.
//
// A blog deployed behind API Gateway can be called directly as a Lambda
// function instead of over the network:
//
//	lambda://<function-name>/<path>?<query>
//	lambda://recipe-blog/blog?title=Pasta%20Night
//
// The request is converted to an API Gateway v2 HTTP proxy event, the
// function is invoked synchronously, and its proxy response is turned back
// into an *http.Response. Every other scheme goes through the wrapped
// *http.Client unchanged.
package http

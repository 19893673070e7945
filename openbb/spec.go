package openbb

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/skosovsky/bbtools"
)

// ErrRouteNotInSpec is wrapped by CheckRoutes for every route the OpenAPI document lacks.
var ErrRouteNotInSpec = errors.New("route not in OpenAPI document")

// LoadSpec loads the API's OpenAPI document from a file path or an http(s) URL
// (e.g. "http://127.0.0.1:6900/openapi.json").
func LoadSpec(ctx context.Context, location string) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	var (
		doc *openapi3.T
		err error
	)
	if u, perr := url.Parse(location); perr == nil && (u.Scheme == "http" || u.Scheme == "https") {
		loader.IsExternalRefsAllowed = true
		doc, err = loader.LoadFromURI(u)
	} else {
		doc, err = loader.LoadFromFile(location)
	}
	if err != nil {
		return nil, fmt.Errorf("load openapi document %s: %w", location, err)
	}
	return doc, nil
}

// SpecRoutes lists the GET routes of doc under the /api/v1/ prefix, without the prefix, sorted.
// Routes with path templates are skipped because operations only take query parameters.
func SpecRoutes(doc *openapi3.T) []string {
	if doc == nil || doc.Paths == nil {
		return nil
	}
	var routes []string
	for path, item := range doc.Paths.Map() {
		if item == nil || item.Get == nil {
			continue
		}
		if !strings.HasPrefix(path, bbtools.APIPrefix) || strings.Contains(path, "{") {
			continue
		}
		routes = append(routes, normalizeRoute(path))
	}
	sort.Strings(routes)
	return routes
}

// CheckRoutes verifies that every route is a GET operation of doc.
// All missing routes are reported together.
func CheckRoutes(doc *openapi3.T, routes []string) error {
	if doc == nil || doc.Paths == nil {
		return fmt.Errorf("%w: document has no paths", ErrRouteNotInSpec)
	}
	var errs []error
	for _, route := range routes {
		item := doc.Paths.Find(bbtools.APIPrefix + normalizeRoute(route))
		if item == nil || item.Get == nil {
			errs = append(errs, fmt.Errorf("%w: %s", ErrRouteNotInSpec, route))
		}
	}
	return errors.Join(errs...)
}

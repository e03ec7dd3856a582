// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package framework

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/hoptrace/pkg/monitor"
	"github.com/telekom/hoptrace/test"
)

// resultMaxAge is how old the result of a finished run may be when it is asserted.
const resultMaxAge = time.Minute

// routeAsserter checks the route endpoints of a running agent. Every
// response is validated against the OpenAPI document the agent serves.
type routeAsserter struct {
	e2e    *E2E
	base   string
	router routers.Router
}

// Routes returns an asserter for the route API of the agent listening on base.
//
// Must be called after the API is up, see [E2E.AwaitStartup].
func (e *E2E) Routes(base string) *routeAsserter {
	e.t.Helper()
	if !e.isRunning() {
		e.t.Fatal("E2E.Routes must be called after E2E.Run")
	}

	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true
	doc, err := loader.LoadFromURI(test.ToURLOrFail(e.t, base+"/openapi"))
	require.NoError(e.t, err, "Failed to load the OpenAPI document")
	require.NoError(e.t, doc.Validate(context.Background()), "Served OpenAPI document is invalid")

	router, err := legacy.NewRouter(doc)
	require.NoError(e.t, err, "Failed to create router from OpenAPI document")
	return &routeAsserter{e2e: e, base: base, router: router}
}

// Route asserts the latest result of the target. Run id and timestamp
// differ between runs, so only their presence is checked.
func (a *routeAsserter) Route(target string, want monitor.Result) {
	a.e2e.t.Helper()
	body := a.get("/v1/routes/"+url.PathEscape(target), http.StatusOK)

	var got monitor.Result
	require.NoError(a.e2e.t, json.Unmarshal(body, &got), "Failed to decode route of %s", target)
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(monitor.Result{}, "RunID", "Timestamp")); diff != "" {
		a.e2e.t.Errorf("Route of %s mismatch (-want +got):\n%s", target, diff)
	}
	assert.NotEmpty(a.e2e.t, got.RunID, "Route of %s has no run id", target)
	assert.WithinDuration(a.e2e.t, time.Now(), got.Timestamp, resultMaxAge, "Route of %s is stale", target)
}

// Missing asserts that the agent has no result for the target.
func (a *routeAsserter) Missing(target string) {
	a.e2e.t.Helper()
	a.get("/v1/routes/"+url.PathEscape(target), http.StatusNotFound)
}

// Targets asserts that the result map holds exactly the targets.
func (a *routeAsserter) Targets(targets ...string) {
	a.e2e.t.Helper()
	body := a.get("/v1/routes", http.StatusOK)

	var results map[string]monitor.Result
	require.NoError(a.e2e.t, json.Unmarshal(body, &results), "Failed to decode routes")
	got := make([]string, 0, len(results))
	for target := range results {
		got = append(got, target)
	}
	slices.Sort(got)
	want := slices.Sorted(slices.Values(targets))
	assert.Equal(a.e2e.t, want, got, "Monitored targets differ")
}

// get requests the path, asserts the status and validates the response
// against the OpenAPI document. It returns the response body.
func (a *routeAsserter) get(path string, status int) []byte {
	a.e2e.t.Helper()
	ctx := context.Background()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.base+path, http.NoBody)
	require.NoError(a.e2e.t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.e2e.t, err, "Failed to get %s", path)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(a.e2e.t, err, "Failed to read %s", path)
	require.Equal(a.e2e.t, status, resp.StatusCode, "Unexpected status for %s: %s", path, body)

	route, params, err := a.router.FindRoute(req)
	require.NoError(a.e2e.t, err, "%s is not described by the OpenAPI document", path)
	err = openapi3filter.ValidateResponse(ctx, &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{
			Request:    req,
			PathParams: params,
			Route:      route,
		},
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   io.NopCloser(bytes.NewReader(body)),
	})
	assert.NoError(a.e2e.t, err, "Response of %s does not match the OpenAPI document", path)
	return body
}

// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package azuretesting

import (
	"bytes"
	"io"
	"net/http"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/juju/errors"
)

// RequestRecorderPolicy is a policy.Policy that records a copy of every
// request sent through the pipeline, so tests can assert on them after
// the fact.
type RequestRecorderPolicy struct {
	mu       sync.Mutex
	Requests *[]*http.Request
}

// Do implements policy.Policy.
func (p *RequestRecorderPolicy) Do(req *policy.Request) (*http.Response, error) {
	// Copy the request body aside so the assertions do not contend
	// with the transport for it.
	reqCopy := *req.Raw()
	if req.Raw().Body != nil {
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(req.Raw().Body); err != nil {
			return nil, errors.Annotate(err, "reading request body")
		}
		if err := req.Raw().Body.Close(); err != nil {
			return nil, errors.Annotate(err, "closing request body")
		}
		req.Raw().Body = io.NopCloser(&buf)
		reqCopy.Body = io.NopCloser(bytes.NewReader(buf.Bytes()))
	}
	p.mu.Lock()
	*p.Requests = append(*p.Requests, &reqCopy)
	p.mu.Unlock()

	return req.Next()
}

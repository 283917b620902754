// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package azuretesting provides fakes for the Azure SDK pipeline, so
// that tests can script the responses the clients see.
package azuretesting

import (
	"encoding/json"
	"io"
	"net/http"
	"regexp"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
)

var logger = loggo.GetLogger("azlab.provider.azure.azuretesting")

// Body implements io.ReadCloser over a byte slice, and can be rewound
// so a response may be replayed.
type Body struct {
	content []byte
	buf     io.Reader
	isOpen  bool
}

// NewBody returns a new instance of Body containing the given content.
func NewBody(content string) *Body {
	return (&Body{content: []byte(content)}).reset()
}

// Read reads into the passed byte slice. Part of io.ReadCloser.
func (b *Body) Read(p []byte) (int, error) {
	if !b.isOpen {
		return 0, errors.New("read from closed body")
	}
	return b.buf.Read(p)
}

// Close closes the body. Part of io.ReadCloser.
func (b *Body) Close() error {
	b.isOpen = false
	return nil
}

func (b *Body) reset() *Body {
	b.buf = &byteReader{content: b.content}
	b.isOpen = true
	return b
}

type byteReader struct {
	content []byte
	offset  int
}

func (r *byteReader) Read(p []byte) (int, error) {
	if r.offset >= len(r.content) {
		return 0, io.EOF
	}
	n := copy(p, r.content[r.offset:])
	r.offset += n
	return n, nil
}

// NewResponseWithContent returns an OK response with the given body
// content.
func NewResponseWithContent(content string) *http.Response {
	return NewResponseWithBodyAndStatus(NewBody(content), http.StatusOK, "OK")
}

// NewResponseWithStatus returns a response with the given status and an
// empty body.
func NewResponseWithStatus(status string, code int) *http.Response {
	return NewResponseWithBodyAndStatus(NewBody(""), code, status)
}

// NewResponseWithBodyAndStatus returns a response with the given body,
// status code and status text.
func NewResponseWithBodyAndStatus(body *Body, code int, status string) *http.Response {
	return &http.Response{
		Status:        status,
		StatusCode:    code,
		Proto:         "HTTP/1.0",
		ProtoMajor:    1,
		ProtoMinor:    0,
		Header:        http.Header{},
		Body:          body,
		ContentLength: int64(len(body.content)),
	}
}

type repeatedResponse struct {
	resp   *http.Response
	repeat int
}

// MockSender is a policy.Transporter that returns queued responses
// instead of performing network I/O, checking request paths against
// PathPattern when one is set.
type MockSender struct {
	// PathPattern, if non-empty, is a regular expression that must
	// match the path of every request sent through this sender.
	PathPattern string

	responses []*repeatedResponse
}

// AppendResponse adds a response to the queue.
func (s *MockSender) AppendResponse(resp *http.Response) {
	s.AppendAndRepeatResponse(resp, 1)
}

// AppendAndRepeatResponse adds a response to the queue that will be
// returned for repeat consecutive requests.
func (s *MockSender) AppendAndRepeatResponse(resp *http.Response, repeat int) {
	s.responses = append(s.responses, &repeatedResponse{resp: resp, repeat: repeat})
}

// NumResponses returns the number of responses left in the queue.
func (s *MockSender) NumResponses() int {
	var n int
	for _, rr := range s.responses {
		n += rr.repeat
	}
	return n
}

// Do implements policy.Transporter.
func (s *MockSender) Do(req *http.Request) (*http.Response, error) {
	if s.PathPattern != "" {
		matched, err := regexp.MatchString(s.PathPattern, req.URL.Path)
		if err != nil {
			return nil, errors.Trace(err)
		}
		if !matched {
			return nil, errors.Errorf(
				"request path %q did not match pattern %q",
				req.URL.Path, s.PathPattern,
			)
		}
	}
	if len(s.responses) == 0 {
		return nil, errors.Errorf("no response for %q", req.URL)
	}
	rr := s.responses[0]
	rr.repeat--
	if rr.repeat <= 0 {
		s.responses = s.responses[1:]
	}
	resp := rr.resp
	resp.Request = req
	if body, ok := resp.Body.(*Body); ok {
		body.reset()
	}
	return resp, nil
}

// NewSenderWithValue returns a *MockSender with the given object
// marshalled to JSON as its response content. This function panics if
// marshalling fails.
func NewSenderWithValue(v interface{}) *MockSender {
	content, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	sender := &MockSender{}
	sender.AppendResponse(NewResponseWithContent(string(content)))
	return sender
}

// Senders is a policy.Transporter that hands each request to the next
// sender in the collection, draining MockSenders response by response.
type Senders []policy.Transporter

// Do implements policy.Transporter.
func (s *Senders) Do(req *http.Request) (*http.Response, error) {
	logger.Debugf("Senders.Do(%s)", req.URL)
	if len(*s) == 0 {
		resp := NewResponseWithStatus("500 Internal Server Error", http.StatusInternalServerError)
		resp.Request = req
		return resp, errors.Errorf("no sender for %q", req.URL)
	}
	sender := (*s)[0]
	if mockSender, ok := sender.(*MockSender); !ok || mockSender.NumResponses() == 1 {
		*s = (*s)[1:]
	}
	return sender.Do(req)
}

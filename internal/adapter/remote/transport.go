package remote

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"hyligotchi/internal/app/ports"
)

const (
	instrumentationName = "hyligotchi/remote"

	HeaderIdentity  = "X-Identity"
	HeaderRequestID = "X-Request-ID"

	DefaultTimeout       = 10 * time.Second
	DefaultReadRetries   = 3
	DefaultRetryInterval = 200 * time.Millisecond
)

// Doer is the slice of the hertz client the adapters depend on.
type Doer interface {
	DoTimeout(ctx context.Context, req *protocol.Request, resp *protocol.Response, timeout time.Duration) error
}

func NewHertzClient(timeout time.Duration) (*client.Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return client.NewClient(
		client.WithDialTimeout(timeout),
		client.WithClientReadTimeout(timeout),
		client.WithWriteTimeout(timeout),
	)
}

type Options struct {
	Timeout       time.Duration
	ReadRetries   int
	RetryInterval time.Duration
}

func (o Options) normalized() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.ReadRetries <= 0 {
		o.ReadRetries = DefaultReadRetries
	}
	if o.RetryInterval <= 0 {
		o.RetryInterval = DefaultRetryInterval
	}
	return o
}

type transport struct {
	doer     Doer
	baseURL  string
	identity string
	opts     Options
}

type reply struct {
	status int
	body   []byte
}

func newTransport(doer Doer, baseURL, identity string, opts Options) transport {
	return transport{
		doer:     doer,
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		identity: identity,
		opts:     opts.normalized(),
	}
}

// send performs one request. Only transport failures are errors here; status
// handling belongs to the caller.
func (t transport) send(ctx context.Context, op, method, path string, query url.Values, body []byte) (reply, error) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.target", path),
		),
	)
	defer span.End()

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	target := t.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req.SetRequestURI(target)
	req.SetMethod(method)
	req.Header.Set(HeaderIdentity, t.identity)
	req.Header.Set(HeaderRequestID, uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.SetBody(body)
	}

	if err := t.doer.DoTimeout(ctx, req, resp, t.opts.Timeout); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return reply{}, fmt.Errorf("%w: %s %s: %v", ports.ErrNetworkUnavailable, method, path, err)
	}

	out := reply{status: resp.StatusCode(), body: append([]byte(nil), resp.Body()...)}
	span.SetAttributes(attribute.Int("http.status_code", out.status))
	if out.status >= consts.StatusBadRequest {
		span.SetStatus(codes.Error, fmt.Sprintf("status %d", out.status))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return out, nil
}

// read issues an idempotent GET, retrying transport failures and 5xx answers
// with exponential backoff. A status listed in passthrough is returned as is.
func (t transport) read(ctx context.Context, op, path string, passthrough ...int) (reply, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = t.opts.RetryInterval

	return backoff.Retry(ctx, func() (reply, error) {
		r, err := t.send(ctx, op, consts.MethodGet, path, nil, nil)
		if err != nil {
			return reply{}, err
		}
		for _, s := range passthrough {
			if r.status == s {
				return r, nil
			}
		}
		if err := statusError(r); err != nil {
			if r.status >= consts.StatusInternalServerError {
				return reply{}, err
			}
			return reply{}, backoff.Permanent(err)
		}
		return r, nil
	}, backoff.WithBackOff(b), backoff.WithMaxTries(uint(t.opts.ReadRetries)))
}

// write issues a mutation exactly once.
func (t transport) write(ctx context.Context, op, path string, query url.Values, body []byte) (reply, error) {
	r, err := t.send(ctx, op, consts.MethodPost, path, query, body)
	if err != nil {
		return reply{}, err
	}
	if err := statusError(r); err != nil {
		return reply{}, err
	}
	return r, nil
}

func statusError(r reply) error {
	if r.status >= consts.StatusOK && r.status < consts.StatusMultipleChoices {
		return nil
	}
	return &ports.RemoteError{StatusCode: r.status, Body: strings.TrimSpace(string(r.body))}
}

func malformed(what string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ports.ErrMalformedResponse, what)
	}
	return fmt.Errorf("%w: %s: %v", ports.ErrMalformedResponse, what, err)
}

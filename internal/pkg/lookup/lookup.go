// Package lookup fetches the option lists offered by select style fields,
// such as connectors, regions or feature flags, from a platform API or a
// local catalog.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/form"
)

type Kind string

const (
	KindConnectors   Kind = "connectors"
	KindSecrets      Kind = "secrets"
	KindRegions      Kind = "regions"
	KindVPCs         Kind = "vpcs"
	KindTags         Kind = "tags"
	KindEnvironments Kind = "environments"
	KindFeatures     Kind = "features"
	KindVariations   Kind = "variations"
	KindTargets      Kind = "targets"
	KindSegments     Kind = "segments"
)

// Kinds lists every option source in a stable order.
var Kinds = []Kind{
	KindConnectors, KindSecrets, KindRegions, KindVPCs, KindTags,
	KindEnvironments, KindFeatures, KindVariations, KindTargets, KindSegments,
}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unsupported lookup kind %q", s)
}

// Request asks for the options of one kind. Scope carries the values of the
// fields the lookup depends on, e.g. the connector a region list is for.
type Request struct {
	Kind  Kind
	Scope map[string]string
}

// Key identifies the request for caching. Scope keys are sorted.
func (r *Request) Key() string {
	q := url.Values{}
	for k, v := range r.Scope {
		q.Set(k, v)
	}
	return string(r.Kind) + "?" + q.Encode()
}

type Lookup interface {
	Options(ctx context.Context, req *Request) ([]form.Option, error)
}

// Func adapts a function to the Lookup interface.
type Func func(ctx context.Context, req *Request) ([]form.Option, error)

func (f Func) Options(ctx context.Context, req *Request) ([]form.Option, error) {
	return f(ctx, req)
}

// Error is returned when an upstream lookup fails. StatusCode is zero when
// no response was received.
type Error struct {
	Kind       Kind
	StatusCode int
	Msg        string
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("failed to fetch %s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("failed to fetch %s: status %d: %s", e.Kind, e.StatusCode, e.Msg)
}

// Retryable reports whether asking again may succeed.
func (e *Error) Retryable() bool {
	return e.StatusCode == 0 ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= http.StatusInternalServerError
}

// IsRetryable classifies any lookup failure. Errors that do not say
// otherwise are treated as transient.
func IsRetryable(err error) bool {
	var lookupErr *Error
	if errors.As(err, &lookupErr) {
		return lookupErr.Retryable()
	}
	return !errors.Is(err, context.Canceled)
}

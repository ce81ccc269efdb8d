package state

import (
	"github.com/oklog/ulid/v2"

	sharedstate "github.com/hashicorp-forge/pipeline-steps/internal/pkg/state"
)

// DefaultNamespace is created when the server starts and is used when a
// request names no namespace.
const DefaultNamespace = "default"

type State interface {
	Namespaces() Namespaces
	Steps() Steps
}

type Namespaces interface {
	Create(*NamespacesCreateReq) (*NamespacesCreateResp, *ErrorResp)
	Delete(*NamespacesDeleteReq) (*NamespacesDeleteResp, *ErrorResp)
	Get(*NamespacesGetReq) (*NamespacesGetResp, *ErrorResp)
	List(*NamespacesListReq) (*NamespacesListResp, *ErrorResp)
}

type NamespacesCreateReq struct {
	Namespace *sharedstate.Namespace
}

type NamespacesCreateResp struct{}

type NamespacesDeleteReq struct {
	Name string
}

type NamespacesDeleteResp struct{}

type NamespacesGetReq struct {
	Name string
}

type NamespacesGetResp struct {
	Namespace *sharedstate.Namespace
}

type NamespacesListReq struct{}

type NamespacesListResp struct {
	Namespaces []*sharedstate.NamespaceStub
}

type Steps interface {
	Create(*StepsCreateReq) (*StepsCreateResp, *ErrorResp)
	Delete(*StepsDeleteReq) (*StepsDeleteResp, *ErrorResp)
	Get(*StepsGetReq) (*StepsGetResp, *ErrorResp)
	List(*StepsListReq) (*StepsListResp, *ErrorResp)
	Update(*StepsUpdateReq) (*StepsUpdateResp, *ErrorResp)
}

type StepsCreateReq struct {
	Step *sharedstate.Step
}

type StepsCreateResp struct {
	Step *sharedstate.Step
}

type StepsDeleteReq struct {
	ID        string
	Namespace string
}

type StepsDeleteResp struct{}

type StepsGetReq struct {
	ID        string
	Namespace string
}

type StepsGetResp struct {
	Step *sharedstate.Step
}

// StepsListReq lists the steps of one namespace, or of all namespaces
// when Namespace is "*".
type StepsListReq struct {
	Namespace string
}

type StepsListResp struct {
	Steps []*sharedstate.StepStub
}

// StepsUpdateReq replaces a stored step. When ExpectedRevision is set, the
// update fails with 409 unless it matches the stored revision.
type StepsUpdateReq struct {
	Step             *sharedstate.Step
	ExpectedRevision ulid.ULID
}

type StepsUpdateResp struct {
	Step *sharedstate.Step
}

type ErrorResp struct {
	ErrorBody `json:"error"`
}

type ErrorBody struct {
	Msg  string `json:"message"`
	Code int    `json:"code"`
	err  error
}

func NewErrorResp(e error, c int) *ErrorResp {
	return &ErrorResp{
		ErrorBody: ErrorBody{
			err:  e,
			Code: c,
			Msg:  e.Error(),
		},
	}
}

func (e *ErrorResp) Error() string { return e.Msg }

func (e *ErrorResp) Err() error { return e.err }

func (e *ErrorResp) StatusCode() int { return e.Code }

func (e *ErrorResp) String() string { return e.Msg }

// Package context holds the values pipeline expressions are resolved
// against when a step is previewed outside of a running pipeline.
package context

// Context is the resolution context of one step inside one pipeline.
type Context struct {
	Pipeline *PipelineContext
	Step     *StepContext

	// Variables are exposed at the root of the expression namespace next to
	// "pipeline" and "step".
	Variables map[string]any
}

type PipelineContext struct {
	Identifier string
	Name       string
	SequenceID int
	Variables  map[string]any
}

type StepContext struct {
	Identifier string
	Name       string
	Type       string
}

func New(pipeline *PipelineContext, vars map[string]any) *Context {
	if pipeline == nil {
		pipeline = &PipelineContext{}
	}
	return &Context{
		Pipeline:  pipeline,
		Variables: vars,
	}
}

// ForStep returns a copy of the context describing the step document doc.
func (c *Context) ForStep(doc map[string]any) *Context {
	str := func(key string) string {
		s, _ := doc[key].(string)
		return s
	}

	out := *c
	out.Step = &StepContext{
		Identifier: str("identifier"),
		Name:       str("name"),
		Type:       str("type"),
	}
	return &out
}

// SetVariable sets a root level variable.
func (c *Context) SetVariable(name string, v any) {
	if c.Variables == nil {
		c.Variables = make(map[string]any)
	}
	c.Variables[name] = v
}

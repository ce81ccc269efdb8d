package context

func (c *Context) AsMap() map[string]any {
	m := make(map[string]any, len(c.Variables)+2)

	for k, v := range c.Variables {
		m[k] = v
	}

	m["pipeline"] = c.pipelineAsMap()

	if c.Step != nil {
		m["step"] = map[string]any{
			"identifier": c.Step.Identifier,
			"name":       c.Step.Name,
			"type":       c.Step.Type,
		}
	}

	return m
}

func (c *Context) pipelineAsMap() map[string]any {
	if c.Pipeline == nil {
		return map[string]any{}
	}

	vars := c.Pipeline.Variables
	if vars == nil {
		vars = map[string]any{}
	}

	return map[string]any{
		"identifier": c.Pipeline.Identifier,
		"name":       c.Pipeline.Name,
		"sequenceId": c.Pipeline.SequenceID,
		"variables":  vars,
	}
}

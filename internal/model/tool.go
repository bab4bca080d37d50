package model

// SearchPropertiesTool is the only capability the model may call
const SearchPropertiesTool = "searchProperties"

// ToolCallRequest is a tool call emitted by the model.
// Arguments is the raw JSON text the model produced.
type ToolCallRequest struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolCallResult is what the search capability hands back to the model
type ToolCallResult struct {
	Properties []PropertySummary `json:"properties"`
	Count      int               `json:"count"`
	Error      string            `json:"error,omitempty"`
}

// NewToolCallResult builds a successful result; Properties is never nil
func NewToolCallResult(properties []PropertySummary) ToolCallResult {
	if properties == nil {
		properties = []PropertySummary{}
	}
	return ToolCallResult{Properties: properties, Count: len(properties)}
}

// FailedToolCallResult builds the empty result carrying an error marker
func FailedToolCallResult(message string) ToolCallResult {
	return ToolCallResult{Properties: []PropertySummary{}, Count: 0, Error: message}
}

// Failed reports whether the search did not complete
func (r ToolCallResult) Failed() bool {
	return r.Error != ""
}

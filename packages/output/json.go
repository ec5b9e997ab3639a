package output

import (
	"encoding/json"
	"time"

	"github.com/sethetter/reqq/packages/core/runner"
	"github.com/sethetter/reqq/packages/http"
	"github.com/tidwall/gjson"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	File     string        `json:"file"`
	Request  *JSONRequest  `json:"request"`
	Response *JSONResponse `json:"response,omitempty"`
	Query    *JSONQuery    `json:"query,omitempty"`
	Time     string        `json:"time"`
}

// JSONHeader keeps request headers in file order.
type JSONHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// JSONRequest represents request details
type JSONRequest struct {
	Method  string       `json:"method"`
	URL     string       `json:"url"`
	Headers []JSONHeader `json:"headers,omitempty"`
	Body    *string      `json:"body,omitempty"`
}

// JSONResponse represents response details. Body is embedded as JSON when
// the response is JSON and as a string otherwise.
type JSONResponse struct {
	StatusCode int                 `json:"statusCode"`
	Status     string              `json:"status"`
	Proto      string              `json:"proto"`
	Headers    map[string][]string `json:"headers,omitempty"`
	Body       json.RawMessage     `json:"body,omitempty"`
	Duration   float64             `json:"duration"`
}

type JSONQuery struct {
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value"`
}

// JSONFormatter formats results as one indented JSON document
type JSONFormatter struct {
	options
	now func() time.Time
}

func NewJSONFormatter(opts ...Option) *JSONFormatter {
	return &JSONFormatter{options: newOptions(opts), now: time.Now}
}

func jsonRequest(req *http.Request) *JSONRequest {
	out := &JSONRequest{
		Method: req.Method,
		URL:    req.URL.String(),
		Body:   req.Body,
	}
	for _, h := range req.Headers {
		out.Headers = append(out.Headers, JSONHeader{Name: h.Name, Value: h.Value})
	}
	return out
}

func jsonBody(body []byte) (json.RawMessage, error) {
	if len(body) == 0 {
		return nil, nil
	}
	if gjson.ValidBytes(body) {
		return json.RawMessage(body), nil
	}
	return json.Marshal(string(body))
}

func (f *JSONFormatter) FormatResult(result *runner.Result) error {
	resp := result.Response
	out := JSONOutput{
		File:    result.File.Path(),
		Request: jsonRequest(result.Request),
		Time:    f.now().UTC().Format(time.RFC3339),
	}

	if f.query != "" {
		res, err := queryRaw(resp.Body, f.query)
		if err != nil {
			return err
		}
		out.Query = &JSONQuery{Path: f.query, Value: res}
	}

	body, err := jsonBody(resp.Body)
	if err != nil {
		return err
	}
	out.Response = &JSONResponse{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Proto:      resp.Proto,
		Headers:    resp.Headers,
		Body:       body,
		Duration:   float64(resp.DurationMs()),
	}

	return f.encode(out)
}

func queryRaw(body []byte, path string) (json.RawMessage, error) {
	if _, err := Query(body, path); err != nil {
		return nil, err
	}
	return json.RawMessage(gjson.GetBytes(body, path).Raw), nil
}

func (f *JSONFormatter) FormatPrepared(prepared *runner.Prepared) error {
	return f.encode(JSONOutput{
		File:    prepared.File.Path(),
		Request: jsonRequest(prepared.Request),
		Time:    f.now().UTC().Format(time.RFC3339),
	})
}

func (f *JSONFormatter) FormatError(err error) {
	_ = json.NewEncoder(f.errWriter).Encode(map[string]string{"error": err.Error()})
}

func (f *JSONFormatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}

package output

import (
	"fmt"

	"github.com/sethetter/reqq/packages/core/runner"
)

// BodyFormatter writes the response body exactly as received.
type BodyFormatter struct {
	options
}

func NewBodyFormatter(opts ...Option) *BodyFormatter {
	return &BodyFormatter{options: newOptions(opts)}
}

func (f *BodyFormatter) FormatResult(result *runner.Result) error {
	if f.query != "" {
		value, err := Query(result.Response.Body, f.query)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(f.writer, value)
		return err
	}
	_, err := f.writer.Write(result.Response.Body)
	return err
}

// FormatPrepared writes the rendered request body, if any.
func (f *BodyFormatter) FormatPrepared(prepared *runner.Prepared) error {
	if prepared.Request.Body == nil {
		return nil
	}
	_, err := fmt.Fprint(f.writer, *prepared.Request.Body)
	return err
}

func (f *BodyFormatter) FormatError(err error) {
	fmt.Fprintf(f.errWriter, "Error: %v\n", err)
}

package helper

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/pterm/pterm"
	"github.com/ryanuber/columnize"
	"sigs.k8s.io/yaml"

	"github.com/hashicorp-forge/pipeline-steps/pkg/api/v1"
)

func FormatKV(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"
	columnConf.Glue = " = "
	return columnize.Format(in, columnConf)
}

func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format(time.RFC3339)
}

// FormatYAML renders a document for the terminal.
func FormatYAML(doc any) string {
	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Sprintf("failed to render document: %v", err)
	}
	return string(out)
}

func FormatError(cliMsg string, err error) string {

	var code int

	var respErr *api.ResponseError
	var urlErr *url.Error

	switch {
	case errors.As(err, &respErr):
		code = respErr.ErrorBody.Code
	case errors.As(err, &urlErr):
		code = 500
	default:
		code = 400
	}

	return FormatKV([]string{
		fmt.Sprintf("Description|%s", cliMsg),
		fmt.Sprintf("Error|%s", err),
		fmt.Sprintf("Code|%v", code),
	})
}

// OutputErrors prints field errors as a table sorted by path. It returns
// false when there were none.
func OutputErrors(errs map[string]string) bool {
	if len(errs) == 0 {
		return false
	}

	paths := make([]string, 0, len(errs))
	for p := range errs {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	out := pterm.TableData{{"Path", "Error"}}
	for _, p := range paths {
		out = append(out, []string{p, errs[p]})
	}

	_ = pterm.DefaultTable.WithHasHeader().WithData(out).Render()
	return true
}

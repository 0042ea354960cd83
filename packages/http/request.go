package http

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	neturl "net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/abdul-hamid-achik/hitcall/packages/apicall"
	"github.com/abdul-hamid-achik/hitcall/packages/core/value"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

// queryMethods send request.params in the query string.
var queryMethods = []string{http.MethodGet, http.MethodHead, http.MethodDelete, http.MethodOptions}

func paramsInQuery(req *apicall.Request) bool {
	return len(req.Files) == 0 && slices.Contains(queryMethods, req.Method)
}

// BuildURL returns the request URL, with params appended to the query
// string for methods that carry no body.
func BuildURL(req *apicall.Request) (string, error) {
	if req.Params.Len() == 0 || !paramsInQuery(req) {
		return req.URL, nil
	}

	u, err := neturl.Parse(req.URL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	q := u.Query()
	addValues(q, req.Params)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// buildBody encodes the request body and returns the content type it
// implies, if any. Precedence: files (multipart with params as fields),
// then an explicit body, then params.
func buildBody(req *apicall.Request, baseDir string) (io.Reader, string, error) {
	if len(req.Files) > 0 {
		return BuildMultipartBody(req.Params, req.Files, baseDir)
	}

	if req.Body != nil {
		if s, ok := req.Body.(string); ok {
			return strings.NewReader(s), "", nil
		}
		data, err := value.Marshal(req.Body)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode body: %w", err)
		}
		return bytes.NewReader(data), contentTypeJSON, nil
	}

	if req.Params.Len() == 0 || paramsInQuery(req) {
		return nil, "", nil
	}

	if strings.Contains(req.Header("Content-Type"), "json") {
		data, err := value.Marshal(req.Params)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode params: %w", err)
		}
		return bytes.NewReader(data), contentTypeJSON, nil
	}

	form := neturl.Values{}
	addValues(form, req.Params)
	return strings.NewReader(form.Encode()), contentTypeForm, nil
}

// addValues flattens params into url values. Sequences repeat the key;
// null values are skipped.
func addValues(dst neturl.Values, params *value.Object) {
	for k, v := range params.All() {
		switch t := v.(type) {
		case nil:
		case []any:
			for _, e := range t {
				dst.Add(k, value.Format(e))
			}
		default:
			dst.Add(k, value.Format(t))
		}
	}
}

// BuildMultipartBody creates a multipart form body from params and files,
// where files maps field names to paths relative to baseDir.
func BuildMultipartBody(params *value.Object, files map[string]string, baseDir string) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	fields := neturl.Values{}
	addValues(fields, params)
	for _, name := range sortedKeys(fields) {
		for _, v := range fields[name] {
			if err := writer.WriteField(name, v); err != nil {
				return nil, "", err
			}
		}
	}

	for _, name := range sortedKeys(files) {
		if err := writeFile(writer, name, files[name], baseDir); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}

func writeFile(writer *multipart.Writer, name, path, baseDir string) error {
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	if err := validatePathWithinBase(path, baseDir); err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	part, err := writer.CreateFormFile(name, filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(part, file)
	return err
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

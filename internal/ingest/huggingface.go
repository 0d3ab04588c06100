package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"dmml/internal/datasource/httpds"
)

// HuggingFace downloads a CSV file of a Hub dataset repository over HTTP.
//
// The repository file list comes from GET {BaseURL}/api/datasets/{id}; the
// chosen file is fetched from {BaseURL}/datasets/{id}/resolve/main/{file}
// and written to {dir}/{Output}.
type HuggingFace struct {
	Client  *httpds.Client
	BaseURL string
	// File selects the repository file. Empty picks the first CSV whose
	// path contains "train", else the first CSV.
	File string
	// Output is the local file name; empty means "hf_churn.csv".
	Output string
	// Token is sent as a bearer token for gated or private datasets.
	Token string
}

func (HuggingFace) Name() string { return "huggingface" }

type hubDataset struct {
	ID       string `json:"id"`
	Siblings []struct {
		Name string `json:"rfilename"`
	} `json:"siblings"`
}

func (h HuggingFace) Fetch(ctx context.Context, datasetID, dir string) (string, error) {
	fail := func(op string, err error) error {
		return &IngestionError{Source: h.Name(), Dataset: datasetID, Op: op, Err: err}
	}
	client := h.Client
	if client == nil {
		client = httpds.NewClient(httpds.Config{})
	}
	base := strings.TrimRight(h.BaseURL, "/")
	if base == "" {
		base = "https://huggingface.co"
	}
	var headers http.Header
	if h.Token != "" {
		headers = http.Header{"Authorization": {"Bearer " + h.Token}}
	}

	file := h.File
	if file == "" {
		var info hubDataset
		if err := client.GetJSON(ctx, base+"/api/datasets/"+escapePath(datasetID), headers, &info); err != nil {
			return "", fail("list", err)
		}
		names := make([]string, 0, len(info.Siblings))
		for _, s := range info.Siblings {
			names = append(names, s.Name)
		}
		var ok bool
		if file, ok = pickTrainCSV(names); !ok {
			return "", fail("list", fmt.Errorf("%w in repository %s", ErrNoCSV, datasetID))
		}
	}

	out := h.Output
	if out == "" {
		out = "hf_churn.csv"
	}
	dst := filepath.Join(dir, out)
	src := fmt.Sprintf("%s/datasets/%s/resolve/main/%s", base, escapePath(datasetID), escapePath(file))
	if _, err := client.Download(ctx, src, headers, dst); err != nil {
		return "", fail("download", err)
	}
	return dst, nil
}

// pickTrainCSV returns the first CSV whose path contains "train", falling
// back to the first CSV.
func pickTrainCSV(names []string) (string, bool) {
	first := ""
	for _, n := range names {
		if !strings.EqualFold(filepath.Ext(n), ".csv") {
			continue
		}
		if strings.Contains(strings.ToLower(n), "train") {
			return n, true
		}
		if first == "" {
			first = n
		}
	}
	return first, first != ""
}

// escapePath escapes each segment of a slash-separated repository path.
func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

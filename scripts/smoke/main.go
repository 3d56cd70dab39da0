// Command smoke exercises a running harvester instance against a fixed set
// of page types and prints a classification/timing summary. It talks to the
// HTTP API only, so it works against local and deployed instances alike.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"
)

var (
	apiURL = flag.String("api-url", "http://localhost:8080", "Harvester API base URL")
	apiKey = flag.String("api-key", "", "API key for authenticated requests")
)

// Test URLs covering the classifier's content types.
var testURLs = []struct {
	Label string
	URL   string
}{
	{"Strain", "https://www.leafly.com/strains/gorilla-glue-4"},
	{"Product", "https://books.toscrape.com/catalogue/a-light-in-the-attic_1000/index.html"},
	{"Article", "https://go.dev/blog/go1.21"},
	{"Listing", "https://www.allbud.com/marijuana-strains"},
	{"Generic", "https://example.com"},
}

// --- Request / Response types (mirrors models package) ---

type extractRequest struct {
	URL     string `json:"url"`
	Timeout int    `json:"timeout"`
}

type extractResponse struct {
	Success       bool   `json:"success"`
	ContentType   string `json:"content_type"`
	Title         string `json:"title"`
	PopupsHandled int    `json:"popups_handled"`
	Timing        struct {
		TotalMs   int64 `json:"total_ms"`
		FetchMs   int64 `json:"fetch_ms"`
		ExtractMs int64 `json:"extract_ms"`
	} `json:"timing"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type row struct {
	label       string
	url         string
	contentType string
	totalMs     int64
	popups      int
	err         string
}

func main() {
	flag.Parse()

	fmt.Println("=== Harvester Smoke Suite ===")
	fmt.Printf("API URL: %s\n\n", *apiURL)

	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		os.Exit(1)
	}

	var rows []row
	for _, t := range testURLs {
		fmt.Printf("Extracting [%s] %s ... ", t.Label, t.URL)
		r := extractOne(t.Label, t.URL)
		if r.err == "" {
			fmt.Printf("OK  %s  %dms\n", r.contentType, r.totalMs)
		} else {
			fmt.Printf("FAILED: %s\n", r.err)
		}
		rows = append(rows, r)
	}

	fmt.Println()
	printTable(rows)
}

func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/api/v1/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func extractOne(label, url string) row {
	r := row{label: label, url: url}

	body, err := json.Marshal(extractRequest{URL: url, Timeout: 60})
	if err != nil {
		r.err = err.Error()
		return r
	}

	req, err := http.NewRequest(http.MethodPost, *apiURL+"/api/v1/extract", bytes.NewReader(body))
	if err != nil {
		r.err = err.Error()
		return r
	}
	req.Header.Set("Content-Type", "application/json")
	if *apiKey != "" {
		req.Header.Set("X-API-Key", *apiKey)
	}

	client := &http.Client{Timeout: 90 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		r.err = err.Error()
		return r
	}
	defer resp.Body.Close()

	var out extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		r.err = fmt.Sprintf("decode: %v", err)
		return r
	}

	if !out.Success {
		if out.Error != nil {
			r.err = fmt.Sprintf("%s: %s", out.Error.Code, out.Error.Message)
		} else {
			r.err = fmt.Sprintf("http %d", resp.StatusCode)
		}
		return r
	}

	r.contentType = out.ContentType
	r.totalMs = out.Timing.TotalMs
	r.popups = out.PopupsHandled
	return r
}

func printTable(rows []row) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LABEL\tTYPE\tTOTAL MS\tPOPUPS\tSTATUS")
	for _, r := range rows {
		status := "ok"
		if r.err != "" {
			status = r.err
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", r.label, r.contentType, r.totalMs, r.popups, status)
	}
	w.Flush()
}

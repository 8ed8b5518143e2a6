// Command smoke_check probes a deployed forum API with the requests listed
// in a targets file and exits non-zero when a critical probe misbehaves.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type target struct {
	Name     string          `json:"name"`
	Method   string          `json:"method"`
	Path     string          `json:"path"`
	Body     json.RawMessage `json:"body,omitempty"`
	Expect   int             `json:"expect"`
	Critical bool            `json:"critical"`
	// Meta lists keys that must be present in the response meta object.
	Meta []string `json:"meta,omitempty"`
}

type targetsFile struct {
	Targets []target `json:"targets"`
}

type result struct {
	target   target
	status   int
	missing  []string
	err      error
	duration time.Duration
}

func (r result) ok() bool {
	return r.err == nil && r.status == r.target.Expect && len(r.missing) == 0
}

func main() {
	var (
		base        string
		targetsPath string
		token       string
		timeout     time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API host, without the version prefix")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "smoke_check", "targets.json"), "JSON targets file")
	flag.StringVar(&token, "token", os.Getenv("FORUM_ADMIN_TOKEN"), "admin session marker for dashboard probes")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "per-request timeout")
	flag.Parse()

	targets, err := loadTargets(targetsPath)
	if err != nil {
		log.Fatalf("failed to load targets: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	var failed, warned int
	results := make([]result, 0, len(targets))
	for _, t := range targets {
		res := probe(client, base, token, t)
		if !res.ok() {
			if t.Critical {
				failed++
			} else {
				warned++
			}
		}
		results = append(results, res)
	}

	printReport(results)
	fmt.Printf("critical failures: %d, warnings: %d\n", failed, warned)
	if failed > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file targetsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	for i := range file.Targets {
		if file.Targets[i].Expect == 0 {
			file.Targets[i].Expect = http.StatusOK
		}
	}
	return file.Targets, nil
}

func probe(client *http.Client, base, token string, t target) result {
	res := result{target: t}

	method := strings.ToUpper(strings.TrimSpace(t.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := t.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var body io.Reader
	if len(t.Body) > 0 {
		body = bytes.NewReader(t.Body)
	}
	req, err := http.NewRequest(method, strings.TrimRight(base, "/")+path, body)
	if err != nil {
		res.err = err
		return res
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	res.duration = time.Since(start)
	if err != nil {
		res.err = err
		return res
	}
	defer resp.Body.Close()
	res.status = resp.StatusCode

	if len(t.Meta) == 0 {
		return res
	}
	var envelope struct {
		Meta map[string]json.RawMessage `json:"meta"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		res.err = fmt.Errorf("decode body: %w", err)
		return res
	}
	for _, key := range t.Meta {
		if _, ok := envelope.Meta[key]; !ok {
			res.missing = append(res.missing, key)
		}
	}
	return res
}

func printReport(results []result) {
	fmt.Println("Smoke Check Report")
	fmt.Println("==================")
	for _, res := range results {
		label := "OK"
		switch {
		case res.err != nil:
			label = "ERROR"
		case !res.ok():
			label = "FAIL"
		}
		name := res.target.Name
		if name == "" {
			name = res.target.Method + " " + res.target.Path
		}
		fmt.Printf("[%s] %s\n", label, name)
		fmt.Printf("  status %d, expected %d (%s)\n", res.status, res.target.Expect, res.duration)
		if res.err != nil {
			fmt.Printf("  error: %v\n", res.err)
		}
		if len(res.missing) > 0 {
			fmt.Printf("  missing meta: %s\n", strings.Join(res.missing, ", "))
		}
	}
}
